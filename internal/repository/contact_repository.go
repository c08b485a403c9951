package repository

import (
	"context"

	"im-chat/internal/model"

	"gorm.io/gorm"
)

// ContactRepository 联系人关系仓储
type ContactRepository struct {
	db *gorm.DB
}

// NewContactRepository 创建ContactRepository实例
func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// Create 添加联系人边，重复的 (user_id, contact_id) 返回 ErrDuplicate
func (r *ContactRepository) Create(ctx context.Context, contact *model.Contact) error {
	return translate(r.db.WithContext(ctx).Create(contact).Error)
}

// Exists 判断有向边是否存在
func (r *ContactRepository) Exists(ctx context.Context, userID, contactID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Contact{}).
		Where("user_id = ? AND contact_id = ?", userID, contactID).
		Count(&count).Error
	return count > 0, err
}

// ListByOwner 获取用户添加的全部联系人，按添加顺序
func (r *ContactRepository) ListByOwner(ctx context.Context, userID uint) ([]*model.Contact, error) {
	var contacts []*model.Contact
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&contacts).Error
	return contacts, err
}
