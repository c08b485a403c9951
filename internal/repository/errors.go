package repository

import (
	"errors"
	"strings"

	"im-chat/pkg/apperr"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// 仓储层通用错误，业务层据此转换为具体的业务错误
var (
	ErrRecordNotFound = apperr.New(apperr.ErrNotFound, "record not found")
	ErrDuplicate      = apperr.New(apperr.ErrConflict, "duplicate record")
)

// mysqlDuplicateEntry MySQL唯一键冲突错误码
const mysqlDuplicateEntry = 1062

// isDuplicateKey 判断是否违反唯一约束
// 优先使用 gorm 翻译后的错误，驱动未翻译时再按错误码/错误信息判断
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// translate 将 gorm 错误转换为仓储层错误
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrRecordNotFound
	case isDuplicateKey(err):
		return ErrDuplicate
	default:
		return err
	}
}
