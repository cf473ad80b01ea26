package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func okHandler(c *gin.Context) { c.Status(http.StatusOK) }

func TestSecurityHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/", okHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(rate.Every(time.Hour), 2, time.Minute)
	defer rl.Stop()

	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/", okHandler)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, "budgets are per IP")
}

func TestRateLimiter_SweepDropsIdleEntries(t *testing.T) {
	rl := NewRateLimiter(rate.Every(time.Second), 1, time.Minute)
	defer rl.Stop()

	rl.GetLimiter("10.0.0.1")
	rl.GetLimiter("10.0.0.2")
	assert.Equal(t, 2, rl.size())

	rl.sweep(time.Now())
	assert.Equal(t, 2, rl.size())

	rl.sweep(time.Now().Add(2 * time.Minute))
	assert.Zero(t, rl.size())
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		allowed     string
		origin      string
		method      string
		status      int
		echoed      string
		credentials string
	}{
		{"no origin passes", "https://shop.example.com", "", http.MethodGet, http.StatusOK, "", ""},
		{"allowed origin", "https://shop.example.com/, https://admin.example.com", "https://admin.example.com", http.MethodGet, http.StatusOK, "https://admin.example.com", "true"},
		{"disallowed origin", "https://shop.example.com", "https://evil.example.com", http.MethodGet, http.StatusForbidden, "", ""},
		{"disallowed preflight", "https://shop.example.com", "https://evil.example.com", http.MethodOptions, http.StatusForbidden, "", ""},
		{"wildcard never sends credentials", "*", "https://any.example.com", http.MethodGet, http.StatusOK, "*", ""},
		{"frontend fallback", "", "http://localhost:5174", http.MethodGet, http.StatusOK, "http://localhost:5174", "true"},
		{"invalid entries fall back", "shop.example.com", "http://localhost:5173", http.MethodGet, http.StatusOK, "http://localhost:5173", "true"},
		{"preflight", "https://shop.example.com", "https://shop.example.com", http.MethodOptions, http.StatusNoContent, "https://shop.example.com", "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(CORSMiddleware(tt.allowed, "http://localhost:5174"))
			r.Handle(tt.method, "/", okHandler)

			req := httptest.NewRequest(tt.method, "/", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.method == http.MethodOptions {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
				req.Header.Set("Access-Control-Request-Headers", "Idempotency-Key")
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.echoed, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.credentials, w.Header().Get("Access-Control-Allow-Credentials"))
		})
	}
}

func TestCORSMiddleware_PreflightAllowsCheckoutHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware("https://shop.example.com", ""))
	r.POST("/", okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	allowed := w.Header().Get("Access-Control-Allow-Headers")
	assert.Contains(t, allowed, "Idempotency-Key")
	assert.Contains(t, allowed, "X-Request-Id")
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestOriginList(t *testing.T) {
	assert.Equal(t, []string{"https://a.example.com", "http://b.example.com"},
		originList(" https://a.example.com/ ,ftp://x, http://b.example.com", "http://localhost:5174"))
	assert.Equal(t, []string{"http://localhost:5174", "http://localhost:5173"}, originList("", "http://localhost:5174/"))
	assert.Equal(t, []string{"http://localhost:5173"}, originList("", ""))
}
