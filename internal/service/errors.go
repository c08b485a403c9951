package service

import "im-chat/pkg/apperr"

// 业务错误
var (
	ErrUsernameRequired   = apperr.New(apperr.ErrValidation, "username is required")
	ErrPasswordRequired   = apperr.New(apperr.ErrValidation, "password is required")
	ErrUsernameTooLong    = apperr.New(apperr.ErrValidation, "username must be at most 64 characters")
	ErrUsernameTaken      = apperr.New(apperr.ErrConflict, "username already registered")
	ErrInvalidCredentials = apperr.New(apperr.ErrUnauthenticated, "invalid credentials")
	ErrUserNotFound       = apperr.New(apperr.ErrNotFound, "user not found")
	ErrContactExists      = apperr.New(apperr.ErrConflict, "contact already added")
	ErrReceiverNotFound   = apperr.New(apperr.ErrNotFound, "receiver not found")
	ErrMessageNotFound    = apperr.New(apperr.ErrNotFound, "message not found")
)
