package repository

import (
	"context"

	"im-chat/internal/model"

	"gorm.io/gorm"
)

// MessageRepository 消息数据仓储
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建MessageRepository实例
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create 创建消息
func (r *MessageRepository) Create(ctx context.Context, message *model.Message) error {
	return translate(r.db.WithContext(ctx).Create(message).Error)
}

// GetByID 根据ID获取消息（包含已删除的消息）
func (r *MessageRepository) GetByID(ctx context.Context, id uint) (*model.Message, error) {
	var message model.Message
	if err := r.db.WithContext(ctx).First(&message, id).Error; err != nil {
		return nil, translate(err)
	}
	return &message, nil
}

// pair 限定为两个用户之间的消息（双向），排除已删除
func pair(db *gorm.DB, userID1, userID2 uint) *gorm.DB {
	return db.Where(
		"((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)) AND is_deleted = ?",
		userID1, userID2, userID2, userID1, false,
	)
}

// GetConversation 获取两个用户之间的消息，按发送时间升序，同一时间按ID升序
// afterID > 0 时只返回ID大于afterID的消息
func (r *MessageRepository) GetConversation(ctx context.Context, userID1, userID2, afterID uint) ([]*model.Message, error) {
	var messages []*model.Message

	q := pair(r.db.WithContext(ctx), userID1, userID2)
	if afterID > 0 {
		q = q.Where("id > ?", afterID)
	}
	err := q.Order("created_at ASC").Order("id ASC").Find(&messages).Error

	return messages, err
}

// GetLatest 获取两个用户之间最新的一条未删除消息
func (r *MessageRepository) GetLatest(ctx context.Context, userID1, userID2 uint) (*model.Message, error) {
	var message model.Message
	err := pair(r.db.WithContext(ctx), userID1, userID2).
		Order("created_at DESC").
		Order("id DESC").
		Limit(1).
		Take(&message).Error
	if err != nil {
		return nil, translate(err)
	}
	return &message, nil
}

// SoftDelete 软删除消息
// 只能删除自己发送且未删除的消息，未命中返回 ErrRecordNotFound
func (r *MessageRepository) SoftDelete(ctx context.Context, messageID, senderID uint) error {
	res := r.db.WithContext(ctx).Model(&model.Message{}).
		Where("id = ? AND sender_id = ? AND is_deleted = ?", messageID, senderID, false).
		Update("is_deleted", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
