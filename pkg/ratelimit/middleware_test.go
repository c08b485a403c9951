package ratelimit

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"im-chat/pkg/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

func newTestRouter(t *testing.T, limit int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	if err := r.SetTrustedProxies(nil); err != nil {
		t.Fatalf("trusted proxies: %v", err)
	}
	r.POST("/login", Middleware("login", limit, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func useMiniredis(t *testing.T) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	redis.SetClient(c)
	t.Cleanup(func() {
		redis.SetClient(nil)
		_ = c.Close()
	})
}

func post(r *gin.Engine, remoteAddr, forwardedFor string) int {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestMiddlewarePassesThroughWithoutRedis(t *testing.T) {
	redis.SetClient(nil)
	r := newTestRouter(t, 1)

	for i := 0; i < 3; i++ {
		if code := post(r, "192.0.2.1:1234", ""); code != http.StatusNoContent {
			t.Fatalf("request %d: status = %d", i, code)
		}
	}
}

func TestMiddlewareRejectsOverLimit(t *testing.T) {
	useMiniredis(t)
	r := newTestRouter(t, 2)

	for i := 0; i < 2; i++ {
		if code := post(r, "192.0.2.1:1234", ""); code != http.StatusNoContent {
			t.Fatalf("request %d: status = %d", i, code)
		}
	}
	if code := post(r, "192.0.2.1:5678", ""); code != http.StatusTooManyRequests {
		t.Fatalf("over limit: status = %d, want 429", code)
	}
	if code := post(r, "192.0.2.2:1234", ""); code != http.StatusNoContent {
		t.Fatalf("other client: status = %d", code)
	}
}

func TestMiddlewareIgnoresSpoofedForwardedFor(t *testing.T) {
	useMiniredis(t)
	r := newTestRouter(t, 2)

	allowed := 0
	for i := 0; i < 10; i++ {
		if post(r, "192.0.2.1:1234", fmt.Sprintf("203.0.113.%d", i)) == http.StatusNoContent {
			allowed++
		}
	}
	if allowed != 2 {
		t.Fatalf("allowed %d of 10 requests with rotating X-Forwarded-For, want 2", allowed)
	}
}
