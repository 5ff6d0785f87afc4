package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func request(router *gin.Engine, method, path, remote, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if remote != "" {
		req.RemoteAddr = remote
	}
	if origin != "" {
		req.Header.Set("Origin", origin)
		if method == http.MethodOptions {
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCORS(t *testing.T) {
	router := setupTestRouter()
	router.Use(CORS(DefaultCORSConfig()))
	router.GET("/documents", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"items": []string{}})
	})

	tests := []struct {
		name           string
		method         string
		origin         string
		wantStatus     int
		wantCORSHeader bool
	}{
		{"simple GET request with origin", "GET", "http://localhost:3000", http.StatusOK, true},
		{"preflight OPTIONS request", "OPTIONS", "http://localhost:3000", http.StatusNoContent, true},
		{"no origin header", "GET", "", http.StatusOK, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := request(router, tt.method, "/documents", "", tt.origin)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCORSHeader {
				assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestCORSWithOrigins(t *testing.T) {
	cfg := DefaultCORSConfig().WithOrigins([]string{"http://localhost:5173"})
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowOrigins)
	assert.Equal(t, []string{"*"}, DefaultCORSConfig().WithOrigins(nil).AllowOrigins)

	router := setupTestRouter()
	router.Use(CORS(cfg))
	router.GET("/documents", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	allowed := request(router, "GET", "/documents", "", "http://localhost:5173")
	assert.Equal(t, http.StatusOK, allowed.Code)
	assert.Equal(t, "http://localhost:5173", allowed.Header().Get("Access-Control-Allow-Origin"))

	denied := request(router, "GET", "/documents", "", "http://evil.example")
	assert.Equal(t, http.StatusForbidden, denied.Code)
}

func TestRateLimit(t *testing.T) {
	router := setupTestRouter()
	router.Use(RateLimit(RateLimitConfig{RequestsPerSecond: 2, Burst: 2}))
	router.GET("/documents", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// First 2 requests should succeed (burst capacity)
	for i := 0; i < 2; i++ {
		w := request(router, "GET", "/documents", "192.168.1.1:1234", "")
		assert.Equal(t, http.StatusOK, w.Code, "Request %d should succeed", i+1)
	}

	w := request(router, "GET", "/documents", "192.168.1.1:1234", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRateLimitDifferentClients(t *testing.T) {
	router := setupTestRouter()
	router.Use(RateLimit(RateLimitConfig{RequestsPerSecond: 1, Burst: 1}))
	router.GET("/documents", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, request(router, "GET", "/documents", "192.168.1.1:1234", "").Code)
	assert.Equal(t, http.StatusOK, request(router, "GET", "/documents", "192.168.1.2:1234", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, request(router, "GET", "/documents", "192.168.1.1:1234", "").Code)
}

func TestRateLimitSkip(t *testing.T) {
	router := setupTestRouter()
	router.Use(RateLimit(RateLimitConfig{
		RequestsPerSecond: 1,
		Burst:             1,
		Skip:              SkipPaths("/stream"),
	}))
	router.GET("/stream", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/documents", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, request(router, "GET", "/stream", "10.0.0.1:1", "").Code)
	}
	assert.Equal(t, http.StatusOK, request(router, "GET", "/documents", "10.0.0.1:1", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, request(router, "GET", "/documents", "10.0.0.1:1", "").Code)
}

func TestRateLimitIdleClientsForgotten(t *testing.T) {
	router := setupTestRouter()
	router.Use(RateLimit(RateLimitConfig{
		RequestsPerSecond: 1,
		Burst:             1,
		IdleTimeout:       20 * time.Millisecond,
	}))
	router.GET("/documents", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, request(router, "GET", "/documents", "10.0.0.1:1", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, request(router, "GET", "/documents", "10.0.0.1:1", "").Code)

	time.Sleep(50 * time.Millisecond)

	// Another client triggers the sweep; the idle limiter starts fresh.
	assert.Equal(t, http.StatusOK, request(router, "GET", "/documents", "10.0.0.2:1", "").Code)
	assert.Equal(t, http.StatusOK, request(router, "GET", "/documents", "10.0.0.1:1", "").Code)
}

func TestGlobalRateLimit(t *testing.T) {
	router := setupTestRouter()
	router.Use(GlobalRateLimit(RateLimitConfig{RequestsPerSecond: 2, Burst: 2}))
	router.GET("/documents", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, request(router, "GET", "/documents", "192.168.1.1:1234", "").Code)
	assert.Equal(t, http.StatusOK, request(router, "GET", "/documents", "192.168.1.2:1234", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, request(router, "GET", "/documents", "192.168.1.3:1234", "").Code)
}

func TestDefaultConfigs(t *testing.T) {
	cors := DefaultCORSConfig()
	assert.Contains(t, cors.AllowOrigins, "*")
	assert.Contains(t, cors.AllowMethods, "PUT")
	assert.Equal(t, 12*time.Hour, cors.MaxAge)

	rl := DefaultRateLimitConfig()
	assert.Equal(t, 100, rl.RequestsPerSecond)
	assert.Equal(t, 200, rl.Burst)
	assert.Equal(t, 10*time.Minute, rl.IdleTimeout)
}

func BenchmarkRateLimit(b *testing.B) {
	router := setupTestRouter()
	router.Use(RateLimit(DefaultRateLimitConfig()))
	router.GET("/documents", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/documents", nil)
	req.RemoteAddr = "192.168.1.1:1234"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
	}
}
