package helpers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestCookieSetPairAndClear(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewCookie("example.com", true)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	m.SetPair(c, "a", time.Now().Add(time.Hour), "r", time.Now().Add(2*time.Hour))

	cookies := rec.Result().Cookies()
	if len(cookies) != 2 {
		t.Fatalf("expected 2 cookies, got %d", len(cookies))
	}
	for _, ck := range cookies {
		if !ck.HttpOnly || !ck.Secure {
			t.Fatalf("cookie %s should be httpOnly and secure", ck.Name)
		}
		if ck.MaxAge <= 0 {
			t.Fatalf("cookie %s should have positive max-age", ck.Name)
		}
		want := "/"
		if ck.Name == RefreshCookie {
			want = DefaultRefreshPath
		}
		if ck.Path != want {
			t.Fatalf("cookie %s path = %q, want %q", ck.Name, ck.Path, want)
		}
	}

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	m.Clear(c)
	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge >= 0 || ck.Value != "" {
			t.Fatalf("cookie %s should be expired: %+v", ck.Name, ck)
		}
	}
}
