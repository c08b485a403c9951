package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"im-chat/config"
	"im-chat/internal/handler"
	"im-chat/internal/model"
	dbPkg "im-chat/pkg/db"
	"im-chat/pkg/jwt"
	"im-chat/pkg/logger"
	"im-chat/pkg/redis"
	"im-chat/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	cfg := config.LoadConfig()

	// 2. 初始化日志系统
	logger.InitLogger(cfg.Log)
	defer logger.Sync()

	logger.Info("=== IM Chat 启动 ===")
	logger.Info("服务器配置信息",
		zap.String("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("database_host", cfg.Database.Host),
		zap.Int("database_port", cfg.Database.Port),
		zap.String("database_name", cfg.Database.Database),
		zap.Duration("jwt_expire_time", cfg.JWT.ExpireTime),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.String("log_level", cfg.Log.Level),
	)

	if err := cfg.Validate(); err != nil {
		logger.Fatal("配置校验失败", zap.Error(err))
	}
	if cfg.JWT.Secret == config.DefaultJWTSecret {
		logger.Warn("正在使用示例JWT密钥，仅限本地开发", zap.String("mode", cfg.Server.Mode))
	}

	// 3. 初始化数据库连接
	gdb, err := dbPkg.InitDB(cfg.Database)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	defer func() {
		if err := dbPkg.CloseDB(); err != nil {
			logger.Error("关闭数据库连接失败", zap.Error(err))
		}
	}()
	logger.Info("数据库连接成功")

	// 3.1 自动迁移表结构
	if err := dbPkg.AutoMigrate(gdb, &model.User{}, &model.Contact{}, &model.Message{}); err != nil {
		logger.Fatal("自动迁移失败", zap.Error(err))
	}
	logger.Info("自动迁移完成")

	// 3.2 初始化Redis（可选，失败时降级运行）
	if cfg.Redis.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redis.InitRedis(ctx, cfg.Redis); err != nil {
			logger.Warn("Redis连接失败，缓存与限流功能关闭", zap.Error(err))
		} else {
			logger.Info("Redis连接成功")
			defer redis.Close()
		}
		cancel()
	}

	// 4. 设置Gin模式
	gin.SetMode(cfg.Server.Mode)

	// 5. 创建Gin路由
	router := gin.New()
	// 未配置可信代理时 ClientIP 取连接地址，限流不受伪造的 X-Forwarded-For 影响
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		logger.Fatal("可信代理配置无效", zap.Error(err))
	}
	router.Use(logger.RequestIDMiddleware())   // 请求ID
	router.Use(logger.RequestLogger())         // 请求日志
	router.Use(logger.ErrorLoggerMiddleware()) // panic恢复与错误日志

	// 6. 设置基础路由与业务路由
	setupBasicRoutes(router)
	handler.RegisterRoutes(router, handler.Options{
		DB:         gdb,
		JWT:        jwt.NewJWTService(cfg.JWT),
		AuthLimit:  cfg.RateLimit.AuthLimit,
		AuthWindow: cfg.RateLimit.AuthWindow,
	})

	// 7. 创建HTTP服务器
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 8. 启动HTTP服务器
	go func() {
		logger.Info("HTTP服务器启动", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP服务器启动失败", zap.Error(err))
		}
	}()

	// 9. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("HTTP服务器关闭失败", zap.Error(err))
	}

	logger.Info("服务器已安全关闭")
}

// setupBasicRoutes 设置基础路由
func setupBasicRoutes(router *gin.Engine) {
	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		status := "ok"
		dbStatus := "up"
		if err := dbPkg.HealthCheck(); err != nil {
			status = "degraded"
			dbStatus = "down"
		}

		redisStatus := "disabled"
		if redis.Enabled() {
			redisStatus = "up"
			if err := redis.HealthCheck(c.Request.Context()); err != nil {
				redisStatus = "down"
			}
		}

		response.Success(c, gin.H{
			"status": status,
			"db":     dbStatus,
			"redis":  redisStatus,
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	router.GET("/", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "欢迎使用IM Chat",
			"version": "1.0.0",
		})
	})
}
