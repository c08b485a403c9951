package handler

import (
	"im-chat/internal/service"
	"im-chat/pkg/jwt"
	"im-chat/pkg/response"

	"github.com/gin-gonic/gin"
)

// ContactHandler 联系人处理器
type ContactHandler struct {
	service *service.ContactService
}

// NewContactHandler 创建ContactHandler实例
func NewContactHandler(s *service.ContactService) *ContactHandler {
	return &ContactHandler{service: s}
}

// AddContact 添加联系人
// 联系人用户名可放在JSON body中，也兼容查询参数 contact_username
func (h *ContactHandler) AddContact(c *gin.Context) {
	type req struct {
		ContactUsername string `json:"contact_username"`
	}
	var r req
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&r); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}
	if r.ContactUsername == "" {
		r.ContactUsername = c.Query("contact_username")
	}
	if r.ContactUsername == "" {
		response.BadRequest(c, "contact_username is required")
		return
	}

	if err := h.service.AddContact(c.Request.Context(), jwt.CurrentUser(c), r.ContactUsername); err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMessage(c, "联系人添加成功", nil)
}

// ListContacts 获取联系人列表
func (h *ContactHandler) ListContacts(c *gin.Context) {
	contacts, err := h.service.ListContacts(c.Request.Context(), jwt.CurrentUser(c))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMessage(c, "获取联系人成功", contacts)
}
