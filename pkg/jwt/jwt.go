package jwt

import (
	"errors"
	"fmt"
	"time"

	"im-chat/config"
	"im-chat/pkg/apperr"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType 返回给客户端的令牌类型
const TokenType = "bearer"

// ErrInvalidToken 令牌签名错误、格式错误或已过期
// 对外统一表现为认证失败
var ErrInvalidToken = apperr.New(apperr.ErrUnauthenticated, "invalid token")

// JWTService 提供 JWT 生成与校验能力
// 使用对称密钥 HS256，Subject 存放用户名
// 令牌无状态：有效性只取决于签名与过期时间
type JWTService struct {
	secretKey   []byte           // 对称密钥
	issuer      string           // 签发者
	expireAfter time.Duration    // 有效期
	now         func() time.Time // 时钟
}

// CustomClaims 令牌声明载荷
// ID(jti) 为每个令牌唯一，预留给吊销名单使用
type CustomClaims struct {
	jwtv5.RegisteredClaims
}

// NewJWTService 创建 JWT 服务
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secretKey:   []byte(cfg.Secret),
		issuer:      cfg.Issuer,
		expireAfter: cfg.ExpireTime,
		now:         time.Now,
	}
}

// Now 当前时间（可在测试中替换时钟）
func (s *JWTService) Now() time.Time {
	return s.now()
}

// IssueToken 为用户名签发访问令牌，有效期从 now 开始计算
func (s *JWTService) IssueToken(username string, now time.Time) (string, time.Time, error) {
	if username == "" {
		return "", time.Time{}, errors.New("username is required")
	}

	claims := &CustomClaims{
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   username,
			IssuedAt:  jwtv5.NewNumericDate(now),
			NotBefore: jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(s.expireAfter)),
		},
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token failed: %w", err)
	}
	// exp 按秒截断，返回值与令牌内保持一致
	return signed, claims.ExpiresAt.Time, nil
}

// ValidateToken 校验并解析令牌
// now >= exp 视为过期；任何失败都包装为 ErrInvalidToken
func (s *JWTService) ValidateToken(tokenString string, now time.Time) (*CustomClaims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("%w: token is empty", ErrInvalidToken)
	}

	claims := &CustomClaims{}
	parsedToken, err := jwtv5.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwtv5.Token) (interface{}, error) {
			return s.secretKey, nil
		},
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithIssuer(s.issuer),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsedToken.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}
