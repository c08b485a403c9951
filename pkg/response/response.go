package response

import (
	"net/http"
	"time"

	"im-chat/internal/model"
	"im-chat/pkg/apperr"
	"im-chat/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`            // 状态码：0表示成功，其他与HTTP状态码一致
	Message string      `json:"message"`         // 响应消息
	Data    interface{} `json:"data,omitempty"`  // 响应数据
	Error   string      `json:"error,omitempty"` // 错误详情（仅在开发环境显示）
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithMessage 带自定义消息的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: message,
		Data:    data,
	})
}

// Error 错误响应，HTTP状态码与code保持一致
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

// ErrorWithDetails 带错误详情的错误响应
func ErrorWithDetails(c *gin.Context, code int, message string, err error) {
	response := Response{
		Code:    code,
		Message: message,
	}

	// 在开发环境下显示错误详情
	if gin.Mode() == gin.DebugMode && err != nil {
		response.Error = err.Error()
	}

	c.JSON(code, response)
}

// BadRequest 400错误
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized 401错误
func Unauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", "Bearer")
	Error(c, http.StatusUnauthorized, message)
}

// NotFound 404错误
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// Conflict 409错误
func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

// TooManyRequests 429错误
func TooManyRequests(c *gin.Context, message string) {
	Error(c, http.StatusTooManyRequests, message)
}

// InternalError 500错误
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// FromError 按错误类别输出响应
// 未归类的错误视为内部错误：记录日志，不向调用方暴露细节
func FromError(c *gin.Context, err error) {
	switch apperr.KindOf(err) {
	case apperr.ErrValidation:
		BadRequest(c, err.Error())
	case apperr.ErrUnauthenticated:
		Unauthorized(c, err.Error())
	case apperr.ErrNotFound:
		NotFound(c, err.Error())
	case apperr.ErrConflict:
		Conflict(c, err.Error())
	default:
		logger.Error("请求处理失败",
			zap.String("request_id", c.GetString(logger.ContextRequestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		ErrorWithDetails(c, http.StatusInternalServerError, "服务器内部错误", err)
	}
}

// ProfileResponse 用户资料（不含密码哈希）
type ProfileResponse struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	About          string `json:"about"`
	ProfilePicture string `json:"profile_picture"`
}

// FilterUserInfo 过滤用户信息，隐藏敏感字段
func FilterUserInfo(user *model.User) *ProfileResponse {
	if user == nil {
		return nil
	}

	return &ProfileResponse{
		ID:             user.ID,
		Username:       user.Username,
		About:          user.About,
		ProfilePicture: user.ProfilePicture,
	}
}

// LoginResponse 登录响应
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// MessageResponse 消息响应
type MessageResponse struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	SenderID  uint      `json:"sender_id"`
}

// FilterMessageInfo 过滤消息信息
func FilterMessageInfo(message *model.Message) *MessageResponse {
	if message == nil {
		return nil
	}

	return &MessageResponse{
		ID:        message.ID,
		Content:   message.Content,
		Timestamp: message.CreatedAt,
		SenderID:  message.SenderID,
	}
}

// FilterMessageList 批量过滤消息，空结果返回空数组而非null
func FilterMessageList(messages []*model.Message) []*MessageResponse {
	result := make([]*MessageResponse, 0, len(messages))
	for _, m := range messages {
		result = append(result, FilterMessageInfo(m))
	}
	return result
}
