package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"bahth.org/engagement/internal/access"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(3, 50*time.Millisecond)
	defer rl.Close()

	for i := 0; i < 3; i++ {
		if !rl.Allow("u1") {
			t.Fatalf("request %d rejected", i)
		}
	}
	if rl.Allow("u1") {
		t.Error("fourth request allowed")
	}
	if !rl.Allow("u2") {
		t.Error("other key rejected")
	}

	time.Sleep(60 * time.Millisecond)
	if !rl.Allow("u1") {
		t.Error("request after window rejected")
	}
}

func TestRateLimiterExhausted(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Close()

	for i := 0; i < 5; i++ {
		if rl.Exhausted("ip") {
			t.Fatal("Exhausted() must not record requests")
		}
	}
	rl.Allow("ip")
	rl.Allow("ip")
	if !rl.Exhausted("ip") {
		t.Error("Exhausted() = false after the budget was spent")
	}
	if rl.Exhausted("other") {
		t.Error("Exhausted() leaked across keys")
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc ", "abc", true},
		{"Basic abc", "", false},
		{"Bearer ", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := bearerToken(tt.header)
		if got != tt.want || ok != tt.ok {
			t.Errorf("bearerToken(%q) = %q, %v; want %q, %v", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRequire(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		principal *access.Principal
		want      int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"no user id", &access.Principal{Roles: []access.Role{access.RoleAdmin}}, http.StatusUnauthorized},
		{"wrong role", &access.Principal{UserID: "u1", Roles: []access.Role{access.RoleReviewer}}, http.StatusForbidden},
		{"editor", &access.Principal{UserID: "u1", Roles: []access.Role{access.RoleEditor}}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/x", func(c *gin.Context) {
				if tt.principal != nil {
					c.Set(principalKey, *tt.principal)
				}
				c.Next()
			}, Require(access.CapRecomputeScores), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}
