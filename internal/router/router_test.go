package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/videotube-api/internal/interface/http"
	"github.com/oksasatya/videotube-api/internal/router/modules"
	"github.com/oksasatya/videotube-api/pkg/helpers"
)

func newTestRegistry() *Registry {
	gin.SetMode(gin.TestMode)
	jwt := helpers.NewJWTManager("a", "r", time.Minute, time.Hour)
	r := NewRegistry(gin.New())
	r.Add(modules.NewHealthModule(handlers.NewHealthHandler(nil, nil)))
	r.Add(modules.NewUserModule(&handlers.UserHandler{}, nil, jwt))
	r.Add(modules.NewVideoModule(&handlers.VideoHandler{}, nil, jwt))
	r.Add(modules.NewTweetModule(&handlers.TweetHandler{}, nil, jwt))
	r.Add(modules.NewSubscriptionModule(&handlers.SubscriptionHandler{}, nil, jwt))
	r.Add(modules.NewDebugModule(nil))
	r.RegisterAll()
	return r
}

func TestRoutesRegistered(t *testing.T) {
	r := newTestRegistry()
	got := map[string]bool{}
	for _, ri := range r.Engine.Routes() {
		got[ri.Method+" "+ri.Path] = true
	}
	want := []string{
		"POST /api/v1/users/register",
		"POST /api/v1/users/login",
		"POST /api/v1/users/refresh-token",
		"POST /api/v1/users/logout",
		"POST /api/v1/users/change-password",
		"GET /api/v1/users/current-user",
		"PATCH /api/v1/users/update-account",
		"PATCH /api/v1/users/avatar",
		"PATCH /api/v1/users/cover-image",
		"GET /api/v1/users/c/:username",
		"GET /api/v1/users/history",
		"GET /api/v1/users/search",
		"GET /api/v1/videos",
		"POST /api/v1/videos",
		"GET /api/v1/videos/:videoId",
		"PATCH /api/v1/videos/:videoId",
		"DELETE /api/v1/videos/:videoId",
		"PATCH /api/v1/videos/toggle/publish/:videoId",
		"POST /api/v1/tweets",
		"GET /api/v1/tweets/user/:userId",
		"PATCH /api/v1/tweets/:tweetId",
		"DELETE /api/v1/tweets/:tweetId",
		"POST /api/v1/subscriptions/c/:channelId",
		"GET /api/v1/subscriptions/c/:channelId",
		"GET /api/v1/subscriptions/u/:subscriberId",
		"GET /api/v1/healthcheck",
		"GET /api/v1/debug/vars",
	}
	for _, w := range want {
		if !got[w] {
			t.Errorf("missing route %s", w)
		}
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newTestRegistry()
	for _, path := range []string{"/api/v1/users/current-user", "/api/v1/videos", "/api/v1/subscriptions/u/abc"} {
		w := httptest.NewRecorder()
		r.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: got %d want 401", path, w.Code)
		}
	}
}

func TestHealthcheckPublic(t *testing.T) {
	r := newTestRegistry()
	w := httptest.NewRecorder()
	r.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/healthcheck", nil))
	// no mongo pinger configured
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("got %d", w.Code)
	}
}

func TestLoginRateLimitedWithoutRedis(t *testing.T) {
	r := newTestRegistry()
	login := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", strings.NewReader("{}"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.Engine.ServeHTTP(w, req)
		return w.Code
	}
	for i := 0; i < 10; i++ {
		if code := login(); code != http.StatusBadRequest {
			t.Fatalf("request %d: got %d want 400", i, code)
		}
	}
	if code := login(); code != http.StatusTooManyRequests {
		t.Fatalf("11th login: got %d want 429", code)
	}
}

func TestHealthcheckWithoutRedis(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRegistry(gin.New())
	ok := func(context.Context) error { return nil }
	r.Add(modules.NewHealthModule(handlers.NewHealthHandler(ok, nil)))
	r.RegisterAll()

	w := httptest.NewRecorder()
	r.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/healthcheck", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("got %d", w.Code)
	}
	var env struct {
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if env.Data["mongo"] != "ok" {
		t.Fatalf("unexpected checks: %v", env.Data)
	}
	if _, present := env.Data["redis"]; present {
		t.Fatalf("redis should not be reported when disabled: %v", env.Data)
	}
}
