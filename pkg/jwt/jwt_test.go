package jwt

import (
	"errors"
	"strings"
	"testing"
	"time"

	"im-chat/config"
	"im-chat/pkg/apperr"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

func newTestService(secret string) *JWTService {
	return NewJWTService(config.JWTConfig{Secret: secret, ExpireTime: 30 * time.Minute, Issuer: "im-chat"})
}

func TestTokenValidityWindow(t *testing.T) {
	s := newTestService("secret")
	issuedAt := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	token, expiresAt, err := s.IssueToken("alice", issuedAt)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !expiresAt.Equal(issuedAt.Add(30 * time.Minute)) {
		t.Fatalf("expiresAt = %v", expiresAt)
	}

	claims, err := s.ValidateToken(token, issuedAt.Add(29*time.Minute))
	if err != nil {
		t.Fatalf("token should be valid at T+29m: %v", err)
	}
	if claims.Subject != "alice" || claims.ID == "" {
		t.Fatalf("claims = %+v", claims)
	}

	for _, at := range []time.Duration{30 * time.Minute, 31 * time.Minute} {
		_, err := s.ValidateToken(token, issuedAt.Add(at))
		if !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("token at T+%v err = %v", at, err)
		}
		if !errors.Is(err, apperr.ErrUnauthenticated) {
			t.Fatalf("expired token should be an authentication error: %v", err)
		}
	}
}

func TestExpiresAtMatchesSignedClaim(t *testing.T) {
	s := newTestService("secret")
	issuedAt := time.Date(2026, 5, 1, 10, 0, 0, 900_000_000, time.UTC)

	token, expiresAt, err := s.IssueToken("alice", issuedAt)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := s.ValidateToken(token, issuedAt)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !expiresAt.Equal(claims.ExpiresAt.Time) {
		t.Fatalf("expiresAt = %v, signed exp = %v", expiresAt, claims.ExpiresAt.Time)
	}
	if _, err := s.ValidateToken(token, expiresAt); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("token must be expired at the reported expiry, err = %v", err)
	}
}

func TestTokenIDsAreUnique(t *testing.T) {
	s := newTestService("secret")
	now := time.Now()
	a, _, err := s.IssueToken("alice", now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	b, _, err := s.IssueToken("alice", now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if a == b {
		t.Fatal("tokens issued at the same instant should still differ by jti")
	}
}

func TestValidateRejectsForgedTokens(t *testing.T) {
	s := newTestService("secret")
	now := time.Now()
	token, _, err := s.IssueToken("alice", now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// 篡改载荷
	parts := strings.Split(token, ".")
	forgedPayload, _, err := newTestService("secret").IssueToken("mallory", now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	tampered := parts[0] + "." + strings.Split(forgedPayload, ".")[1] + "." + parts[2]

	other := newTestService("other-secret")
	otherToken, _, err := other.IssueToken("alice", now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	wrongIssuer := NewJWTService(config.JWTConfig{Secret: "secret", ExpireTime: time.Hour, Issuer: "someone-else"})
	wrongIssuerToken, _, err := wrongIssuer.IssueToken("alice", now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	noneToken, err := jwtv5.NewWithClaims(jwtv5.SigningMethodNone, jwtv5.RegisteredClaims{
		Subject:   "alice",
		Issuer:    "im-chat",
		ExpiresAt: jwtv5.NewNumericDate(now.Add(time.Hour)),
	}).SignedString(jwtv5.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	cases := map[string]string{
		"empty":        "",
		"garbage":      "not.a.token",
		"tampered":     tampered,
		"other secret": otherToken,
		"wrong issuer": wrongIssuerToken,
		"alg none":     noneToken,
	}
	for name, tok := range cases {
		if _, err := s.ValidateToken(tok, now); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: err = %v", name, err)
		}
	}
}

func TestIssueTokenRequiresUsername(t *testing.T) {
	if _, _, err := newTestService("secret").IssueToken("", time.Now()); err == nil {
		t.Fatal("expected error for empty username")
	}
}
