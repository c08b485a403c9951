package model

import (
	"time"
)

// 新用户的默认资料
const (
	DefaultAbout          = "Hey there! I'm using IM Chat"
	DefaultProfilePicture = "default.jpg"
)

// UsernameMaxLength 用户名最大字符数，与列宽一致
const UsernameMaxLength = 64

// User 用户模型
// 用户名唯一且创建后不可修改，同时作为登录名
// 说明：密码仅存储哈希（PasswordHash），不存储明文，也不参与序列化
type User struct {
	ID             uint      `gorm:"primaryKey"`
	Username       string    `gorm:"size:64;not null;uniqueIndex;comment:用户名"`
	PasswordHash   string    `gorm:"type:varchar(255);not null;comment:密码哈希" json:"-"`
	About          string    `gorm:"type:varchar(255);comment:个人简介"`
	ProfilePicture string    `gorm:"type:varchar(255);comment:头像"`
	CreatedAt      time.Time `gorm:"comment:创建时间"`
	UpdatedAt      time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名（全局配置使用单数表名）
func (User) TableName() string { return "user" }
