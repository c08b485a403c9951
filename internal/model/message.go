package model

import (
	"time"
)

// Message 私聊消息
// 会话由 {SenderID, ReceiverID} 无序对确定
// IsDeleted 为软删除标记，查询会话时排除
// Content 不限长度：不指定类型，由方言选择（MySQL longtext，Postgres/SQLite text）
type Message struct {
	ID         uint      `gorm:"primaryKey"`
	SenderID   uint      `gorm:"not null;index:idx_message_pair,priority:1;comment:发送者ID"`
	ReceiverID uint      `gorm:"not null;index:idx_message_pair,priority:2;index;comment:接收者ID"`
	Content    string    `gorm:"not null;comment:消息内容"`
	IsDeleted  bool      `gorm:"not null;default:false;comment:是否已删除"`
	CreatedAt  time.Time `gorm:"index;comment:发送时间"`
}

func (Message) TableName() string { return "message" }
