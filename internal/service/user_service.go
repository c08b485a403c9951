package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"im-chat/internal/model"
	"im-chat/internal/repository"
	"im-chat/pkg/jwt"
	"im-chat/pkg/logger"
	"im-chat/pkg/password"

	"go.uber.org/zap"
)

// UserService 注册、登录与用户资料
type UserService struct {
	repo       *repository.UserRepository
	jwtService *jwt.JWTService
}

// NewUserService 创建UserService实例
func NewUserService(repo *repository.UserRepository, jwtService *jwt.JWTService) *UserService {
	return &UserService{repo: repo, jwtService: jwtService}
}

// LoginResult 登录结果
type LoginResult struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// Register 注册
// 用户名已存在返回 ErrUsernameTaken；密码只保存哈希
func (s *UserService) Register(ctx context.Context, username, plainPassword string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if utf8.RuneCountInString(username) > model.UsernameMaxLength {
		return nil, ErrUsernameTooLong
	}
	if plainPassword == "" {
		return nil, ErrPasswordRequired
	}

	// 密码哈希
	hash, err := password.Hash(plainPassword)
	if err != nil {
		if errors.Is(err, password.ErrTooLong) {
			return nil, err
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:       username,
		PasswordHash:   hash,
		About:          model.DefaultAbout,
		ProfilePicture: model.DefaultProfilePicture,
	}
	// 唯一性由数据库唯一索引保证，不做先查后写
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	logger.Info("用户注册成功", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Login 登录
// 用户不存在与密码错误返回同一个错误
func (s *UserService) Login(ctx context.Context, username, plainPassword string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || plainPassword == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !password.Verify(plainPassword, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.jwtService.IssueToken(u.Username, s.jwtService.Now())
	if err != nil {
		return nil, err
	}

	logger.Info("用户登录成功", zap.Uint("user_id", u.ID), zap.String("username", u.Username))
	return &LoginResult{
		AccessToken: token,
		TokenType:   jwt.TokenType,
		ExpiresAt:   expiresAt,
	}, nil
}

// GetByUsername 按用户名查找用户，不存在返回 ErrUserNotFound
func (s *UserService) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}
