// Package password 口令哈希与校验
package password

import (
	"errors"

	"im-chat/pkg/apperr"

	"golang.org/x/crypto/bcrypt"
)

// MaxLength bcrypt 只处理前72字节，更长的口令直接拒绝
const MaxLength = 72

// ErrTooLong 口令超过 MaxLength 字节
var ErrTooLong = apperr.New(apperr.ErrValidation, "password must be at most 72 bytes")

// Cost bcrypt 计算强度，测试中可调低
var Cost = bcrypt.DefaultCost

// Hash 生成口令哈希，每次调用使用新的随机盐
func Hash(plain string) (string, error) {
	if len(plain) > MaxLength {
		return "", ErrTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), Cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrTooLong
		}
		return "", err
	}
	return string(hashed), nil
}

// Verify 校验口令；哈希格式错误同样视为不匹配
func Verify(plain, hash string) bool {
	if len(plain) > MaxLength {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
