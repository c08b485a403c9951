package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"im-chat/config"
	"im-chat/internal/testutil"
	"im-chat/pkg/jwt"
	"im-chat/pkg/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newLimitedTestServer(t, 0, 0)
}

func newLimitedTestServer(t *testing.T, authLimit int, authWindow time.Duration) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	if err := router.SetTrustedProxies(nil); err != nil {
		t.Fatalf("trusted proxies: %v", err)
	}
	RegisterRoutes(router, Options{
		DB:         testutil.NewDB(t),
		JWT:        jwt.NewJWTService(config.JWTConfig{Secret: "handler-secret", ExpireTime: 30 * time.Minute, Issuer: "im-chat"}),
		AuthLimit:  authLimit,
		AuthWindow: authWindow,
	})
	return &testServer{t: t, router: router}
}

func (s *testServer) do(method, path, token string, body interface{}) (int, envelope) {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		s.t.Fatalf("%s %s: decode body %q: %v", method, path, w.Body.String(), err)
	}
	return w.Code, env
}

func (s *testServer) decode(env envelope, v interface{}) {
	s.t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		s.t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

type profile struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	About          string `json:"about"`
	ProfilePicture string `json:"profile_picture"`
}

// signup 注册并登录，返回用户资料与令牌
func (s *testServer) signup(username string) (profile, string) {
	s.t.Helper()

	code, env := s.do(http.MethodPost, "/api/v1/users/register", "", gin.H{"username": username, "password": "pw-" + username})
	if code != http.StatusOK {
		s.t.Fatalf("register %s: %d %s", username, code, env.Message)
	}
	var p profile
	s.decode(env, &p)

	code, env = s.do(http.MethodPost, "/api/v1/users/login", "", gin.H{"username": username, "password": "pw-" + username})
	if code != http.StatusOK {
		s.t.Fatalf("login %s: %d %s", username, code, env.Message)
	}
	var login struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	s.decode(env, &login)
	if login.TokenType != "bearer" || login.AccessToken == "" {
		s.t.Fatalf("login %s: unexpected payload %s", username, env.Data)
	}
	return p, login.AccessToken
}

func TestRegisterLoginProfile(t *testing.T) {
	s := newTestServer(t)
	registered, token := s.signup("alice")

	if registered.About != "Hey there! I'm using IM Chat" || registered.ProfilePicture != "default.jpg" {
		t.Fatalf("register returned %+v", registered)
	}

	code, env := s.do(http.MethodGet, "/api/v1/users/me", token, nil)
	if code != http.StatusOK || env.Code != 0 {
		t.Fatalf("me: %d %+v", code, env)
	}
	var me profile
	s.decode(env, &me)
	if me != registered {
		t.Fatalf("me = %+v, want %+v", me, registered)
	}
	if bytes.Contains(env.Data, []byte("password")) {
		t.Fatalf("profile leaks password field: %s", env.Data)
	}
}

func TestRegisterErrors(t *testing.T) {
	s := newTestServer(t)
	s.signup("alice")

	tests := []struct {
		name string
		body gin.H
		want int
	}{
		{"duplicate", gin.H{"username": "alice", "password": "other"}, http.StatusConflict},
		{"empty username", gin.H{"username": "  ", "password": "x"}, http.StatusBadRequest},
		{"empty password", gin.H{"username": "bob", "password": ""}, http.StatusBadRequest},
		{"long username", gin.H{"username": strings.Repeat("b", 65), "password": "x"}, http.StatusBadRequest},
		{"long password", gin.H{"username": "bob", "password": strings.Repeat("p", 73)}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := s.do(http.MethodPost, "/api/v1/users/register", "", tt.body)
			if code != tt.want || env.Code != tt.want {
				t.Fatalf("got %d/%d, want %d", code, env.Code, tt.want)
			}
		})
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	s := newTestServer(t)
	s.signup("alice")

	_, wrongPassword := s.do(http.MethodPost, "/api/v1/users/login", "", gin.H{"username": "alice", "password": "nope"})
	code, unknownUser := s.do(http.MethodPost, "/api/v1/users/login", "", gin.H{"username": "nobody", "password": "nope"})

	if code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", code)
	}
	if wrongPassword.Message != unknownUser.Message || wrongPassword.Code != unknownUser.Code {
		t.Fatalf("responses differ: %+v vs %+v", wrongPassword, unknownUser)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	s.signup("alice")

	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/v1/users/me"},
		{http.MethodGet, "/api/v1/contacts"},
		{http.MethodPost, "/api/v1/contacts"},
		{http.MethodPost, "/api/v1/messages"},
		{http.MethodGet, "/api/v1/messages/1"},
		{http.MethodDelete, "/api/v1/messages/1"},
	}
	for _, r := range routes {
		for _, token := range []string{"", "garbage"} {
			code, env := s.do(r.method, r.path, token, nil)
			if code != http.StatusUnauthorized || env.Message != "认证失败" || len(env.Data) != 0 {
				t.Errorf("%s %s token=%q: %d %+v", r.method, r.path, token, code, env)
			}
		}
	}
}

func TestContacts(t *testing.T) {
	s := newTestServer(t)
	_, aliceToken := s.signup("alice")
	bob, bobToken := s.signup("bob")
	s.signup("carol")

	if code, env := s.do(http.MethodPost, "/api/v1/contacts", aliceToken, gin.H{"contact_username": "bob"}); code != http.StatusOK {
		t.Fatalf("add bob: %d %+v", code, env)
	}
	if code, _ := s.do(http.MethodPost, "/api/v1/contacts", aliceToken, gin.H{"contact_username": "bob"}); code != http.StatusConflict {
		t.Fatalf("duplicate add: %d, want 409", code)
	}
	if code, _ := s.do(http.MethodPost, "/api/v1/contacts?contact_username=carol", aliceToken, nil); code != http.StatusOK {
		t.Fatalf("add via query: %d", code)
	}
	if code, _ := s.do(http.MethodPost, "/api/v1/contacts", aliceToken, gin.H{"contact_username": "zed"}); code != http.StatusNotFound {
		t.Fatalf("unknown contact: %d, want 404", code)
	}
	if code, _ := s.do(http.MethodPost, "/api/v1/contacts", aliceToken, gin.H{}); code != http.StatusBadRequest {
		t.Fatalf("missing contact: %d, want 400", code)
	}

	if code, _ := s.do(http.MethodPost, "/api/v1/messages", bobToken, gin.H{"receiver_username": "alice", "content": "hi alice"}); code != http.StatusOK {
		t.Fatalf("send: %d", code)
	}

	code, env := s.do(http.MethodGet, "/api/v1/contacts", aliceToken, nil)
	if code != http.StatusOK {
		t.Fatalf("list: %d", code)
	}
	var list []struct {
		ID          uint   `json:"id"`
		Username    string `json:"username"`
		LastMessage string `json:"lastMessage"`
	}
	s.decode(env, &list)
	if len(list) != 2 {
		t.Fatalf("list = %+v", list)
	}
	if list[0].ID != bob.ID || list[0].Username != "bob" || list[0].LastMessage != "hi alice" {
		t.Fatalf("first contact = %+v", list[0])
	}
	if list[1].Username != "carol" || list[1].LastMessage != "..." {
		t.Fatalf("second contact = %+v", list[1])
	}

	// bob 没有添加任何联系人
	_, env = s.do(http.MethodGet, "/api/v1/contacts", bobToken, nil)
	if string(env.Data) != "[]" {
		t.Fatalf("bob contacts = %s, want []", env.Data)
	}
}

type message struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	SenderID  uint      `json:"sender_id"`
}

func TestConversationFlow(t *testing.T) {
	s := newTestServer(t)
	alice, aliceToken := s.signup("alice")
	bob, bobToken := s.signup("bob")

	send := func(token, to, content string) message {
		t.Helper()
		code, env := s.do(http.MethodPost, "/api/v1/messages", token, gin.H{"receiver_username": to, "content": content})
		if code != http.StatusOK {
			t.Fatalf("send %q: %d %+v", content, code, env)
		}
		var m message
		s.decode(env, &m)
		return m
	}

	first := send(aliceToken, "bob", "hello")
	send(bobToken, "alice", "")
	third := send(aliceToken, "bob", "third")

	if first.SenderID != alice.ID || first.Timestamp.IsZero() {
		t.Fatalf("first = %+v", first)
	}

	history := func(token string, otherID uint, query string) []message {
		t.Helper()
		code, env := s.do(http.MethodGet, fmt.Sprintf("/api/v1/messages/%d%s", otherID, query), token, nil)
		if code != http.StatusOK {
			t.Fatalf("history: %d %+v", code, env)
		}
		var ms []message
		s.decode(env, &ms)
		return ms
	}

	fromAlice := history(aliceToken, bob.ID, "")
	fromBob := history(bobToken, alice.ID, "")
	if len(fromAlice) != 3 || len(fromBob) != 3 {
		t.Fatalf("history lengths %d/%d, want 3", len(fromAlice), len(fromBob))
	}
	for i := range fromAlice {
		if fromAlice[i].ID != fromBob[i].ID {
			t.Fatalf("history not symmetric at %d", i)
		}
	}
	if fromAlice[1].Content != "" || fromAlice[1].SenderID != bob.ID {
		t.Fatalf("empty message = %+v", fromAlice[1])
	}

	if ms := history(aliceToken, bob.ID, fmt.Sprintf("?after_id=%d", first.ID)); len(ms) != 2 || ms[0].ID == first.ID {
		t.Fatalf("after_id history = %+v", ms)
	}

	if code, _ := s.do(http.MethodPost, "/api/v1/messages", aliceToken, gin.H{"receiver_username": "ghost", "content": "x"}); code != http.StatusNotFound {
		t.Fatalf("send to unknown: %d, want 404", code)
	}
	if code, _ := s.do(http.MethodGet, "/api/v1/messages/abc", aliceToken, nil); code != http.StatusBadRequest {
		t.Fatalf("bad user_id: %d, want 400", code)
	}
	if code, _ := s.do(http.MethodGet, fmt.Sprintf("/api/v1/messages/%d?after_id=-1", bob.ID), aliceToken, nil); code != http.StatusBadRequest {
		t.Fatalf("bad after_id: %d, want 400", code)
	}

	// 只有发送者可以删除
	if code, _ := s.do(http.MethodDelete, fmt.Sprintf("/api/v1/messages/%d", third.ID), bobToken, nil); code != http.StatusNotFound {
		t.Fatalf("delete by receiver: %d, want 404", code)
	}
	if code, _ := s.do(http.MethodDelete, fmt.Sprintf("/api/v1/messages/%d", third.ID), aliceToken, nil); code != http.StatusOK {
		t.Fatalf("delete by sender: %d", code)
	}
	if code, _ := s.do(http.MethodDelete, fmt.Sprintf("/api/v1/messages/%d", third.ID), aliceToken, nil); code != http.StatusNotFound {
		t.Fatalf("second delete: %d, want 404", code)
	}
	if ms := history(bobToken, alice.ID, ""); len(ms) != 2 {
		t.Fatalf("history after delete = %+v", ms)
	}
}

func TestLoginRateLimitedPerConnection(t *testing.T) {
	mr := miniredis.RunT(t)
	c := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	redis.SetClient(c)
	t.Cleanup(func() {
		redis.SetClient(nil)
		_ = c.Close()
	})

	s := newLimitedTestServer(t, 3, time.Minute)
	login := func(forwardedFor string) int {
		body, _ := json.Marshal(gin.H{"username": "nobody", "password": "x"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", forwardedFor)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 3; i++ {
		if code := login(fmt.Sprintf("198.51.100.%d", i)); code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: status = %d, want 401", i, code)
		}
	}
	if code := login("198.51.100.99"); code != http.StatusTooManyRequests {
		t.Fatalf("attempt over limit: status = %d, want 429", code)
	}
}
