package ratelimit

import (
	"time"

	"im-chat/pkg/logger"
	"im-chat/pkg/redis"
	"im-chat/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Middleware 按客户端IP限流，计数存放在Redis
// Redis未启用或故障时放行，不影响主流程
func Middleware(scope string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 || !redis.Enabled() {
			c.Next()
			return
		}

		key := scope + ":" + c.ClientIP()
		allowed, err := redis.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			logger.Warn("限流检查失败，放行请求", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			response.TooManyRequests(c, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}
