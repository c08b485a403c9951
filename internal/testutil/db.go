// Package testutil 提供测试用的数据库环境
package testutil

import (
	"path/filepath"
	"testing"

	"im-chat/config"
	"im-chat/internal/model"
	dbPkg "im-chat/pkg/db"

	"gorm.io/gorm"
)

// NewDB 创建已迁移的临时 sqlite 数据库，测试结束时关闭
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	gdb, err := dbPkg.Open(config.DatabaseConfig{
		Driver:   "sqlite",
		Database: filepath.Join(t.TempDir(), "im-chat.db"),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := dbPkg.AutoMigrate(gdb, &model.User{}, &model.Contact{}, &model.Message{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}
