package service

import (
	"context"
	"errors"

	"im-chat/internal/model"
	"im-chat/internal/repository"
	"im-chat/pkg/logger"
	"im-chat/pkg/redis"

	"go.uber.org/zap"
)

// NoMessagePlaceholder 会话中还没有消息时的预览占位
const NoMessagePlaceholder = "..."

// ContactService 联系人服务
type ContactService struct {
	contactRepo *repository.ContactRepository
	userRepo    *repository.UserRepository
	messageRepo *repository.MessageRepository
}

// NewContactService 创建ContactService实例
func NewContactService(contactRepo *repository.ContactRepository, userRepo *repository.UserRepository, messageRepo *repository.MessageRepository) *ContactService {
	return &ContactService{
		contactRepo: contactRepo,
		userRepo:    userRepo,
		messageRepo: messageRepo,
	}
}

// ContactSummary 联系人列表项
type ContactSummary struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	LastMessage string `json:"lastMessage"`
}

// AddContact 添加联系人
// 联系人不存在返回 ErrUserNotFound，已添加过返回 ErrContactExists
// 允许添加自己
func (s *ContactService) AddContact(ctx context.Context, owner *model.User, contactUsername string) error {
	contact, err := s.userRepo.GetByUsername(ctx, contactUsername)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	exists, err := s.contactRepo.Exists(ctx, owner.ID, contact.ID)
	if err != nil {
		return err
	}
	if exists {
		return ErrContactExists
	}

	// 并发添加时由联合唯一索引兜底
	if err := s.contactRepo.Create(ctx, &model.Contact{UserID: owner.ID, ContactID: contact.ID}); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrContactExists
		}
		return err
	}

	logger.Info("添加联系人成功", zap.Uint("user_id", owner.ID), zap.Uint("contact_id", contact.ID))
	return nil
}

// ListContacts 获取联系人列表，按添加顺序
// LastMessage 为双方最新一条未删除消息的内容，没有消息时为占位符
func (s *ContactService) ListContacts(ctx context.Context, owner *model.User) ([]ContactSummary, error) {
	edges, err := s.contactRepo.ListByOwner(ctx, owner.ID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.ContactID)
	}
	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]ContactSummary, 0, len(edges))
	for _, e := range edges {
		u, ok := users[e.ContactID]
		if !ok {
			continue
		}
		preview, err := s.lastMessage(ctx, owner.ID, e.ContactID)
		if err != nil {
			return nil, err
		}
		result = append(result, ContactSummary{
			ID:          u.ID,
			Username:    u.Username,
			LastMessage: preview,
		})
	}
	return result, nil
}

// lastMessage 优先读Redis预览缓存，未命中再查数据库并按版本号回填
func (s *ContactService) lastMessage(ctx context.Context, userID, otherID uint) (string, error) {
	cached := redis.Enabled()
	var version string
	if cached {
		content, v, ok, err := redis.GetLastMessage(ctx, userID, otherID)
		switch {
		case err != nil:
			logger.Warn("读取消息预览缓存失败", zap.Error(err))
			cached = false
		case ok:
			return content, nil
		default:
			version = v
		}
	}

	latest, err := s.messageRepo.GetLatest(ctx, userID, otherID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return NoMessagePlaceholder, nil
		}
		return "", err
	}

	// 读库期间会话有新消息或删除时版本号已变化，回填会被放弃
	if cached {
		if _, err := redis.FillLastMessage(ctx, userID, otherID, version, latest.Content); err != nil {
			logger.Warn("回填消息预览缓存失败", zap.Error(err))
		}
	}
	return latest.Content, nil
}
