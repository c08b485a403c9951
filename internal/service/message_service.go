package service

import (
	"context"
	"errors"
	"time"

	"im-chat/internal/model"
	"im-chat/internal/repository"
	"im-chat/pkg/logger"
	"im-chat/pkg/redis"

	"go.uber.org/zap"
)

// MessageService 消息服务
type MessageService struct {
	messageRepo *repository.MessageRepository
	userRepo    *repository.UserRepository
	now         func() time.Time
}

// NewMessageService 创建MessageService实例
func NewMessageService(messageRepo *repository.MessageRepository, userRepo *repository.UserRepository) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SendMessage 发送私聊消息
// 接收者不存在返回 ErrReceiverNotFound；不校验内容（允许空字符串）
func (s *MessageService) SendMessage(ctx context.Context, sender *model.User, receiverUsername, content string) (*model.Message, error) {
	receiver, err := s.userRepo.GetByUsername(ctx, receiverUsername)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrReceiverNotFound
		}
		return nil, err
	}

	message := &model.Message{
		SenderID:   sender.ID,
		ReceiverID: receiver.ID,
		Content:    content,
		CreatedAt:  s.now(),
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	// 预览缓存失效，由下一次读取回填
	if redis.Enabled() {
		if err := redis.InvalidateLastMessage(ctx, sender.ID, receiver.ID); err != nil {
			logger.Warn("清除消息预览缓存失败", zap.Error(err))
		}
	}

	logger.Debug("消息发送成功",
		zap.Uint("msg_id", message.ID),
		zap.Uint("from", sender.ID),
		zap.Uint("to", receiver.ID),
	)
	return message, nil
}

// GetConversation 获取与指定用户的会话消息，按发送顺序升序
// 对方不存在时返回空列表；afterID 用于增量拉取
func (s *MessageService) GetConversation(ctx context.Context, user *model.User, otherUserID, afterID uint) ([]*model.Message, error) {
	return s.messageRepo.GetConversation(ctx, user.ID, otherUserID, afterID)
}

// DeleteMessage 软删除消息
// 只能删除自己发送的消息；不存在、已删除或不属于自己统一返回 ErrMessageNotFound
func (s *MessageService) DeleteMessage(ctx context.Context, user *model.User, messageID uint) error {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return ErrMessageNotFound
		}
		return err
	}
	if message.SenderID != user.ID || message.IsDeleted {
		return ErrMessageNotFound
	}

	if err := s.messageRepo.SoftDelete(ctx, messageID, user.ID); err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return ErrMessageNotFound
		}
		return err
	}

	// 预览可能指向被删除的消息，直接失效
	if redis.Enabled() {
		if err := redis.InvalidateLastMessage(ctx, message.SenderID, message.ReceiverID); err != nil {
			logger.Warn("清除消息预览缓存失败", zap.Error(err))
		}
	}

	logger.Info("消息已删除", zap.Uint("msg_id", messageID), zap.Uint("user_id", user.ID))
	return nil
}
