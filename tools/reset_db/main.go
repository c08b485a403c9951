// reset_db 清空 message、contact、user 三张表的数据，保留表结构
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"im-chat/config"
	"im-chat/internal/model"
	dbPkg "im-chat/pkg/db"

	"gorm.io/gorm"
)

func main() {
	// 与服务端使用同一份配置（YAML + 环境变量）
	cfg := config.LoadConfig()

	gdb, err := dbPkg.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		log.Fatalf("Database handle unavailable: %v", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("Database connection test failed: %v", err)
	}

	fmt.Println("Database connected successfully")
	fmt.Printf("Driver: %s, Database: %s\n", cfg.Database.Driver, cfg.Database.Database)

	fmt.Print("\nWARNING: This operation will CLEAR ALL DATA in tables [message, contact, user]!\n")
	fmt.Print("Type 'YES' to confirm: ")
	confirm, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	if strings.TrimSpace(confirm) != "YES" {
		fmt.Println("Operation cancelled")
		return
	}

	// 先清子表
	tables := []struct {
		name  string
		model interface{}
	}{
		{"message", &model.Message{}},
		{"contact", &model.Contact{}},
		{"user", &model.User{}},
	}
	all := gdb.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, t := range tables {
		fmt.Printf("Clearing table %s... ", t.name)
		if err := all.Delete(t.model).Error; err != nil {
			fmt.Printf("Failed: %v\n", err)
		} else {
			fmt.Println("Success")
		}
	}

	// 自增ID重置只对MySQL生效
	if cfg.Database.Driver == "" || cfg.Database.Driver == "mysql" {
		fmt.Println("\nResetting auto-increment IDs...")
		for _, t := range tables {
			fmt.Printf("Resetting %s auto-increment... ", t.name)
			if err := gdb.Exec(fmt.Sprintf("ALTER TABLE `%s` AUTO_INCREMENT = 1", t.name)).Error; err != nil {
				fmt.Printf("Failed: %v\n", err)
			} else {
				fmt.Println("Success")
			}
		}
	}

	fmt.Println("\nDatabase reset completed!")
}
