package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/videotube-api/internal/application"
	"github.com/oksasatya/videotube-api/internal/infrastructure/memory"
	"github.com/oksasatya/videotube-api/internal/interface/middleware"
	"github.com/oksasatya/videotube-api/pkg/helpers"
	"github.com/oksasatya/videotube-api/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	helpers.PasswordCost = bcrypt.MinCost
	validation.Init()
}

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter() *gin.Engine {
	jwt := helpers.NewJWTManager("access", "refresh", time.Minute, time.Hour)
	users := memory.NewUserRepository()
	store := &memory.Uploader{}

	userH := NewUserHandler(application.NewUserService(users, jwt, store, nil, nil), nil, "", false)
	videoH := NewVideoHandler(application.NewVideoService(memory.NewVideoRepository(), users, store, nil), nil)
	tweetH := NewTweetHandler(application.NewTweetService(memory.NewTweetRepository()), nil)
	subH := NewSubscriptionHandler(application.NewSubscriptionService(&memory.SubscriptionRepository{}, users), nil)

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	auth := middleware.Auth(nil, jwt)
	r.POST("/users/register", userH.Register)
	r.POST("/users/login", userH.Login)
	r.POST("/users/refresh-token", userH.RefreshAccessToken)
	r.GET("/users/current-user", auth, userH.CurrentUser)
	r.GET("/videos", auth, videoH.List)
	r.POST("/videos", auth, videoH.Publish)
	r.GET("/videos/:videoId", auth, videoH.Get)
	r.POST("/tweets", auth, tweetH.Create)
	r.GET("/tweets/user/:userId", auth, tweetH.ListByUser)
	r.POST("/subscriptions/c/:channelId", auth, subH.Toggle)
	r.GET("/subscriptions/c/:channelId", auth, subH.Subscribers)
	r.GET("/subscriptions/u/:subscriberId", auth, subH.Channels)
	return r
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = w.WriteField(k, v)
	}
	for field, name := range files {
		fw, err := w.CreateFormFile(field, name)
		if err != nil {
			t.Fatal(err)
		}
		_, _ = fw.Write([]byte("binary"))
	}
	_ = w.Close()
	return &buf, w.FormDataContentType()
}

func do(r http.Handler, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func jsonRequest(method, path string, body any, token string) *http.Request {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func register(t *testing.T, r http.Handler, username string) {
	t.Helper()
	body, ct := multipartBody(t, map[string]string{
		"fullName": "Jane Doe",
		"email":    username + "@example.com",
		"username": username,
		"password": "secret123",
	}, map[string]string{"avatar": "me.png"})
	req := httptest.NewRequest(http.MethodPost, "/users/register", body)
	req.Header.Set("Content-Type", ct)
	if w, env := do(r, req); w.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", w.Code, env.Message)
	}
}

func login(t *testing.T, r http.Handler, username string) (string, string) {
	t.Helper()
	w, env := do(r, jsonRequest(http.MethodPost, "/users/login", gin.H{"username": username, "password": "secret123"}, ""))
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, env.Message)
	}
	var data struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	_ = json.Unmarshal(env.Data, &data)
	return data.AccessToken, data.RefreshToken
}

func currentUserID(t *testing.T, r http.Handler, access string) string {
	t.Helper()
	w, env := do(r, jsonRequest(http.MethodGet, "/users/current-user", nil, access))
	if w.Code != http.StatusOK {
		t.Fatalf("current user: %d %s", w.Code, env.Message)
	}
	var u struct {
		ID string `json:"_id"`
	}
	_ = json.Unmarshal(env.Data, &u)
	return u.ID
}

func postRegister(t *testing.T, r http.Handler, fields map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	body, ct := multipartBody(t, fields, map[string]string{"avatar": "a.png"})
	req := httptest.NewRequest(http.MethodPost, "/users/register", body)
	req.Header.Set("Content-Type", ct)
	return do(r, req)
}

func TestRegisterAndLogin(t *testing.T) {
	r := newTestRouter()
	register(t, r, "janedoe")

	access, _ := login(t, r, "janedoe")
	w, env := do(r, jsonRequest(http.MethodGet, "/users/current-user", nil, access))
	if w.Code != http.StatusOK {
		t.Fatalf("current user: %d %s", w.Code, env.Message)
	}
	var user map[string]any
	_ = json.Unmarshal(env.Data, &user)
	if user["username"] != "janedoe" {
		t.Fatalf("unexpected user: %v", user)
	}
	if _, leaked := user["password"]; leaked {
		t.Fatal("password hash must not be serialized")
	}
	if _, leaked := user["refreshToken"]; leaked {
		t.Fatal("refresh token must not be serialized")
	}
}

func TestRegisterErrors(t *testing.T) {
	r := newTestRouter()

	body, ct := multipartBody(t, map[string]string{"fullName": "J", "email": "j@example.com", "username": "jdoe", "password": "secret123"}, nil)
	req := httptest.NewRequest(http.MethodPost, "/users/register", body)
	req.Header.Set("Content-Type", ct)
	if w, env := do(r, req); w.Code != http.StatusBadRequest || env.Message != "avatar is required" {
		t.Fatalf("missing avatar: %d %q", w.Code, env.Message)
	}

	body, ct = multipartBody(t, map[string]string{"fullName": " ", "email": "j@example.com", "username": "jdoe", "password": "secret123"},
		map[string]string{"avatar": "a.png"})
	req = httptest.NewRequest(http.MethodPost, "/users/register", body)
	req.Header.Set("Content-Type", ct)
	if w, env := do(r, req); w.Code != http.StatusBadRequest || env.Message != "all fields are required" {
		t.Fatalf("blank name: %d %q", w.Code, env.Message)
	}

	register(t, r, "jdoe")
	body, ct = multipartBody(t, map[string]string{"fullName": "J", "email": "other@example.com", "username": "JDOE", "password": "secret123"},
		map[string]string{"avatar": "a.png"})
	req = httptest.NewRequest(http.MethodPost, "/users/register", body)
	req.Header.Set("Content-Type", ct)
	if w, _ := do(r, req); w.Code != http.StatusConflict {
		t.Fatalf("duplicate username: %d", w.Code)
	}
}

func TestLoginErrors(t *testing.T) {
	r := newTestRouter()
	register(t, r, "janedoe")

	cases := []struct {
		body gin.H
		code int
	}{
		{gin.H{"password": "secret123"}, http.StatusBadRequest},
		{gin.H{"username": "ghost", "password": "secret123"}, http.StatusNotFound},
		{gin.H{"username": "janedoe", "password": "wrong-password"}, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		if w, env := do(r, jsonRequest(http.MethodPost, "/users/login", tc.body, "")); w.Code != tc.code {
			t.Fatalf("%v: got %d (%s) want %d", tc.body, w.Code, env.Message, tc.code)
		}
	}
}

func TestRegisterTrimsEmail(t *testing.T) {
	r := newTestRouter()

	w, env := postRegister(t, r, map[string]string{
		"fullName": "Pat", "email": "  Pat@Example.com ", "username": " pat01 ", "password": "secret123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("padded email should register: %d %q", w.Code, env.Message)
	}
	var u struct {
		Email    string `json:"email"`
		Username string `json:"username"`
	}
	_ = json.Unmarshal(env.Data, &u)
	if u.Email != "pat@example.com" || u.Username != "pat01" {
		t.Fatalf("fields should be normalized: %+v", u)
	}

	if w, env := do(r, jsonRequest(http.MethodPost, "/users/login", gin.H{"email": " PAT@example.com ", "password": "secret123"}, "")); w.Code != http.StatusOK {
		t.Fatalf("padded email login: %d %q", w.Code, env.Message)
	}
}

func TestRegisterBlankOrInvalidEmail(t *testing.T) {
	r := newTestRouter()

	w, env := postRegister(t, r, map[string]string{"fullName": "Pat", "email": "   ", "username": "pat01", "password": "secret123"})
	if w.Code != http.StatusBadRequest || env.Message != "all fields are required" {
		t.Fatalf("blank email: %d %q", w.Code, env.Message)
	}
	w, env = postRegister(t, r, map[string]string{"fullName": "Pat", "email": " nope ", "username": "pat01", "password": "secret123"})
	if w.Code != http.StatusBadRequest || env.Message != "invalid payload" {
		t.Fatalf("malformed email: %d %q", w.Code, env.Message)
	}
	w, env = do(r, jsonRequest(http.MethodPost, "/users/login", gin.H{"email": "  ", "password": "secret123"}, ""))
	if w.Code != http.StatusBadRequest || env.Message != "username or email is required" {
		t.Fatalf("blank login email: %d %q", w.Code, env.Message)
	}
}

func TestRefreshTokenFromBody(t *testing.T) {
	r := newTestRouter()
	register(t, r, "janedoe")
	_, refresh := login(t, r, "janedoe")

	if w, env := do(r, jsonRequest(http.MethodPost, "/users/refresh-token", gin.H{}, "")); w.Code != http.StatusUnauthorized || env.Message != "unauthorized request" {
		t.Fatalf("missing token: %d %q", w.Code, env.Message)
	}
	w, _ := do(r, jsonRequest(http.MethodPost, "/users/refresh-token", gin.H{"refreshToken": refresh}, ""))
	if w.Code != http.StatusOK {
		t.Fatalf("refresh: %d", w.Code)
	}
	if len(w.Result().Cookies()) != 2 {
		t.Fatal("refresh should set both cookies")
	}
	if w, env := do(r, jsonRequest(http.MethodPost, "/users/refresh-token", gin.H{"refreshToken": refresh}, "")); w.Code != http.StatusUnauthorized || env.Message != "refresh token is expired or used" {
		t.Fatalf("reused token: %d %q", w.Code, env.Message)
	}
}

func TestVideoEndpoints(t *testing.T) {
	r := newTestRouter()
	register(t, r, "janedoe")
	access, _ := login(t, r, "janedoe")

	if w, env := do(r, jsonRequest(http.MethodGet, "/videos", nil, access)); w.Code != http.StatusNotFound || env.Message != "no videos found" {
		t.Fatalf("empty listing: %d %q", w.Code, env.Message)
	}
	if w, _ := do(r, jsonRequest(http.MethodGet, "/videos/not-an-id", nil, access)); w.Code != http.StatusBadRequest {
		t.Fatalf("invalid id: %d", w.Code)
	}
	if w, _ := do(r, jsonRequest(http.MethodGet, "/videos?userId=nope", nil, access)); w.Code != http.StatusBadRequest {
		t.Fatalf("invalid userId: %d", w.Code)
	}

	body, ct := multipartBody(t, map[string]string{"title": "Intro", "description": "hello", "duration": "12.5"},
		map[string]string{"thumbnail": "t.jpg"})
	req := httptest.NewRequest(http.MethodPost, "/videos", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+access)
	if w, env := do(r, req); w.Code != http.StatusBadRequest || env.Message != "video file is required" {
		t.Fatalf("missing video file: %d %q", w.Code, env.Message)
	}

	body, ct = multipartBody(t, map[string]string{"title": "Intro", "description": "hello", "duration": "12.5"},
		map[string]string{"thumbnail": "t.jpg", "videoFile": "v.mp4"})
	req = httptest.NewRequest(http.MethodPost, "/videos", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+access)
	w, env := do(r, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("publish: %d %q", w.Code, env.Message)
	}
	var video struct {
		ID       string  `json:"_id"`
		Duration float64 `json:"duration"`
	}
	_ = json.Unmarshal(env.Data, &video)
	if video.Duration != 12.5 {
		t.Fatalf("unexpected duration: %v", video.Duration)
	}

	w, env = do(r, jsonRequest(http.MethodGet, "/videos/"+video.ID, nil, access))
	if w.Code != http.StatusOK {
		t.Fatalf("get video: %d %q", w.Code, env.Message)
	}

	w, env = do(r, jsonRequest(http.MethodGet, "/videos?page=1&limit=5", nil, access))
	if w.Code != http.StatusOK {
		t.Fatalf("list: %d %q", w.Code, env.Message)
	}
	var page struct {
		TotalVideos int64 `json:"totalVideos"`
		Limit       int64 `json:"limit"`
	}
	_ = json.Unmarshal(env.Data, &page)
	if page.TotalVideos != 1 || page.Limit != 5 {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestTweetEndpoints(t *testing.T) {
	r := newTestRouter()
	register(t, r, "janedoe")
	access, _ := login(t, r, "janedoe")

	if w, _ := do(r, jsonRequest(http.MethodPost, "/tweets", gin.H{}, access)); w.Code != http.StatusBadRequest {
		t.Fatalf("missing content: %d", w.Code)
	}
	w, env := do(r, jsonRequest(http.MethodPost, "/tweets", gin.H{"content": "first!"}, access))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %q", w.Code, env.Message)
	}
	var tw struct {
		Owner string `json:"owner"`
	}
	_ = json.Unmarshal(env.Data, &tw)

	w, env = do(r, jsonRequest(http.MethodGet, "/tweets/user/"+tw.Owner, nil, access))
	if w.Code != http.StatusOK {
		t.Fatalf("list: %d %q", w.Code, env.Message)
	}
	var list struct {
		TotalTweets int `json:"totalTweets"`
	}
	_ = json.Unmarshal(env.Data, &list)
	if list.TotalTweets != 1 {
		t.Fatalf("unexpected total: %d", list.TotalTweets)
	}
	if w, _ := do(r, jsonRequest(http.MethodGet, "/tweets/user/xyz", nil, access)); w.Code != http.StatusBadRequest {
		t.Fatalf("invalid user id: %d", w.Code)
	}
}

func TestSubscriptionEndpoints(t *testing.T) {
	r := newTestRouter()
	register(t, r, "janedoe")
	register(t, r, "channel")
	access, _ := login(t, r, "janedoe")
	self := currentUserID(t, r, access)
	chAccess, _ := login(t, r, "channel")
	channel := currentUserID(t, r, chAccess)

	cases := []struct {
		name, path, msg string
		code            int
	}{
		{"invalid id", "/subscriptions/c/not-an-id", "invalid channelId", http.StatusBadRequest},
		{"unknown channel", "/subscriptions/c/" + primitive.NewObjectID().Hex(), "channel does not exist", http.StatusNotFound},
		{"self", "/subscriptions/c/" + self, "cannot subscribe to your own channel", http.StatusBadRequest},
	}
	for _, tc := range cases {
		if w, env := do(r, jsonRequest(http.MethodPost, tc.path, nil, access)); w.Code != tc.code || env.Message != tc.msg {
			t.Fatalf("%s: got %d %q want %d %q", tc.name, w.Code, env.Message, tc.code, tc.msg)
		}
	}

	toggle := func() bool {
		t.Helper()
		w, env := do(r, jsonRequest(http.MethodPost, "/subscriptions/c/"+channel, nil, access))
		if w.Code != http.StatusOK {
			t.Fatalf("toggle: %d %q", w.Code, env.Message)
		}
		var data struct {
			Subscribed bool `json:"subscribed"`
		}
		_ = json.Unmarshal(env.Data, &data)
		return data.Subscribed
	}
	if !toggle() {
		t.Fatal("first toggle should subscribe")
	}

	count := func(path string) int {
		t.Helper()
		w, env := do(r, jsonRequest(http.MethodGet, path, nil, access))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: %d %q", path, w.Code, env.Message)
		}
		var list []json.RawMessage
		_ = json.Unmarshal(env.Data, &list)
		return len(list)
	}
	if n := count("/subscriptions/c/" + channel); n != 1 {
		t.Fatalf("expected 1 subscriber, got %d", n)
	}
	if n := count("/subscriptions/u/" + self); n != 1 {
		t.Fatalf("expected 1 subscribed channel, got %d", n)
	}
	if w, _ := do(r, jsonRequest(http.MethodGet, "/subscriptions/u/xyz", nil, access)); w.Code != http.StatusBadRequest {
		t.Fatalf("invalid subscriber id: %d", w.Code)
	}

	if toggle() {
		t.Fatal("second toggle should unsubscribe")
	}
	if n := count("/subscriptions/c/" + channel); n != 0 {
		t.Fatalf("expected no subscribers, got %d", n)
	}
}

func TestHealthCheck(t *testing.T) {
	r := gin.New()
	down := func(context.Context) error { return errors.New("down") }
	up := func(context.Context) error { return nil }
	r.GET("/down", NewHealthHandler(down, nil).Check)
	r.GET("/up", NewHealthHandler(up, down).Check)

	if w, _ := do(r, httptest.NewRequest(http.MethodGet, "/down", nil)); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("mongo down: %d", w.Code)
	}
	w, env := do(r, httptest.NewRequest(http.MethodGet, "/up", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("mongo up: %d", w.Code)
	}
	var checks map[string]string
	_ = json.Unmarshal(env.Data, &checks)
	if checks["redis"] != "down" {
		t.Fatalf("redis state should be reported: %v", checks)
	}
}
