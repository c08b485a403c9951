package model

import (
	"time"
)

// Contact 联系人关系（有向边）
// UserID 添加了 ContactID；反向关系需要单独添加
// (user_id, contact_id) 联合唯一

type Contact struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_contact_pair,priority:1;comment:所属用户ID"`
	ContactID uint      `gorm:"not null;uniqueIndex:idx_contact_pair,priority:2;index;comment:联系人用户ID"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
}

func (Contact) TableName() string { return "contact" }
