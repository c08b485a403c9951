package handler

import (
	"strconv"

	"im-chat/internal/service"
	"im-chat/pkg/jwt"
	"im-chat/pkg/response"

	"github.com/gin-gonic/gin"
)

// MessageHandler 消息处理器
type MessageHandler struct {
	service *service.MessageService
}

// NewMessageHandler 创建MessageHandler实例
func NewMessageHandler(s *service.MessageService) *MessageHandler {
	return &MessageHandler{service: s}
}

// SendMessage 发送消息
func (h *MessageHandler) SendMessage(c *gin.Context) {
	type req struct {
		ReceiverUsername string `json:"receiver_username" binding:"required"`
		Content          string `json:"content"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	message, err := h.service.SendMessage(c.Request.Context(), jwt.CurrentUser(c), r.ReceiverUsername, r.Content)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMessage(c, "消息发送成功", response.FilterMessageInfo(message))
}

// GetConversation 获取与指定用户的消息历史
// 可选参数 after_id：只返回比它新的消息，供客户端轮询
func (h *MessageHandler) GetConversation(c *gin.Context) {
	otherUserID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid user_id")
		return
	}

	var afterID uint64
	if s := c.Query("after_id"); s != "" {
		afterID, err = strconv.ParseUint(s, 10, 32)
		if err != nil {
			response.BadRequest(c, "invalid after_id")
			return
		}
	}

	messages, err := h.service.GetConversation(c.Request.Context(), jwt.CurrentUser(c), uint(otherUserID), uint(afterID))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMessage(c, "获取消息历史成功", response.FilterMessageList(messages))
}

// DeleteMessage 删除消息（软删除）
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	messageID, err := strconv.ParseUint(c.Param("message_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid message_id")
		return
	}

	if err := h.service.DeleteMessage(c.Request.Context(), jwt.CurrentUser(c), uint(messageID)); err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMessage(c, "消息删除成功", nil)
}
