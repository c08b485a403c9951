package jwt

import (
	"context"
	"errors"
	"strings"

	"im-chat/internal/model"
	"im-chat/pkg/apperr"
	"im-chat/pkg/logger"
	"im-chat/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// ContextUserKey 当前用户在gin.Context中的键名
	ContextUserKey = "current_user"
	// ContextClaimsKey JWT声明在gin.Context中的键名
	ContextClaimsKey = "jwt_claims"

	// authFailedMessage 所有认证失败对外使用同一提示，不区分具体原因
	authFailedMessage = "认证失败"
)

// UserResolver 按用户名解析用户
type UserResolver interface {
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

// AuthMiddleware JWT认证中间件
// 从请求头中提取Authorization: Bearer <token>，校验后解析出当前用户并存入gin.Context
// 缺少令牌、令牌无效、用户不存在返回同样的401
func (s *JWTService) AuthMiddleware(users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, claims, reason, err := s.authenticate(c, users)
		if err != nil {
			logger.Error("解析当前用户失败",
				zap.String("request_id", logger.GetRequestID(c)),
				zap.Error(err),
			)
			response.InternalError(c, "服务器内部错误")
			c.Abort()
			return
		}
		if user == nil {
			logger.Warn("JWT认证失败",
				zap.String("request_id", logger.GetRequestID(c)),
				zap.String("reason", reason),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
			)
			response.Unauthorized(c, authFailedMessage)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextClaimsKey, claims)

		logger.Debug("用户访问接口",
			zap.Uint("user_id", user.ID),
			zap.String("username", user.Username),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)

		c.Next()
	}
}

// authenticate 解析当前用户
// 认证失败时 user 为 nil，reason 仅用于日志；存储故障通过 err 返回
func (s *JWTService) authenticate(c *gin.Context, users UserResolver) (*model.User, *CustomClaims, string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, nil, "missing authorization header", nil
	}

	scheme, tokenString, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return nil, nil, "malformed authorization header", nil
	}
	tokenString = strings.TrimSpace(tokenString)

	claims, err := s.ValidateToken(tokenString, s.now())
	if err != nil {
		return nil, nil, err.Error(), nil
	}

	user, err := users.GetByUsername(c.Request.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, nil, "unknown subject", nil
		}
		return nil, nil, "", err
	}
	return user, claims, "", nil
}

// CurrentUser 从gin.Context中获取当前用户
func CurrentUser(c *gin.Context) *model.User {
	if v, exists := c.Get(ContextUserKey); exists {
		if u, ok := v.(*model.User); ok {
			return u
		}
	}
	return nil
}

// GetClaims 从gin.Context中获取JWT声明
func GetClaims(c *gin.Context) *CustomClaims {
	if v, exists := c.Get(ContextClaimsKey); exists {
		if claims, ok := v.(*CustomClaims); ok {
			return claims
		}
	}
	return nil
}
