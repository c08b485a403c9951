package handler

import (
	"time"

	"im-chat/internal/repository"
	"im-chat/internal/service"
	"im-chat/pkg/jwt"
	"im-chat/pkg/ratelimit"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Options 路由所需的依赖
type Options struct {
	DB         *gorm.DB
	JWT        *jwt.JWTService
	AuthLimit  int           // 注册/登录限流：窗口内请求数，0为不限流
	AuthWindow time.Duration // 注册/登录限流窗口
}

// RegisterRoutes 组装仓库、服务与处理器，并注册 /api/v1 路由
func RegisterRoutes(router *gin.Engine, opts Options) {
	userRepo := repository.NewUserRepository(opts.DB)
	contactRepo := repository.NewContactRepository(opts.DB)
	messageRepo := repository.NewMessageRepository(opts.DB)

	userService := service.NewUserService(userRepo, opts.JWT)
	userHandler := NewUserHandler(userService)
	contactHandler := NewContactHandler(service.NewContactService(contactRepo, userRepo, messageRepo))
	messageHandler := NewMessageHandler(service.NewMessageService(messageRepo, userRepo))

	auth := opts.JWT.AuthMiddleware(userService)

	v1 := router.Group("/api/v1")
	{
		users := v1.Group("/users")
		{
			// 公开接口（无需认证），按IP限流
			limited := users.Group("", ratelimit.Middleware("auth", opts.AuthLimit, opts.AuthWindow))
			limited.POST("/register", userHandler.Register)
			limited.POST("/login", userHandler.Login)

			users.GET("/me", auth, userHandler.GetProfile)
		}

		contacts := v1.Group("/contacts")
		contacts.Use(auth)
		{
			contacts.POST("", contactHandler.AddContact)
			contacts.GET("", contactHandler.ListContacts)
		}

		messages := v1.Group("/messages")
		messages.Use(auth)
		{
			messages.POST("", messageHandler.SendMessage)
			messages.GET("/:user_id", messageHandler.GetConversation)
			messages.DELETE("/:message_id", messageHandler.DeleteMessage)
		}
	}
}
