package apperr

import "errors"

// 错误类别，边界层据此映射稳定的响应码
var (
	ErrValidation      = errors.New("validation failed")     // 输入格式错误 -> 400
	ErrUnauthenticated = errors.New("authentication failed") // 凭证/令牌无效 -> 401
	ErrNotFound        = errors.New("not found")             // 引用的对象不存在 -> 404
	ErrConflict        = errors.New("conflict")              // 唯一性冲突 -> 409
)

// Error 带类别的业务错误
// Error() 只返回面向调用方的描述，errors.Is 可匹配到类别
type Error struct {
	Kind error
	Msg  string
}

// New 创建指定类别的业务错误
func New(kind error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

// KindOf 返回错误所属类别，未知类别返回 nil
func KindOf(err error) error {
	for _, kind := range []error{ErrValidation, ErrUnauthenticated, ErrNotFound, ErrConflict} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
