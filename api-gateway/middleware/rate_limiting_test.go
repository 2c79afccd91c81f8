package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFallbackLimiter returns a limiter whose Redis client points at a
// closed port, forcing the in-memory path.
func newFallbackLimiter() *RateLimiter {
	return &RateLimiter{
		rdb:   redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 10 * time.Millisecond}),
		local: make(map[string]*windowState),
	}
}

func limitedRouter(limiter *RateLimiter, limit RateLimitConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/npd", limiter.Middleware("global", limit), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func TestRateLimiterAllowsWithinWindow(t *testing.T) {
	limiter := newFallbackLimiter()
	router := limitedRouter(limiter, RateLimitConfig{MaxRequests: 3, TimeWindow: time.Minute})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/npd", nil))
		assert.Equal(t, http.StatusOK, w.Code, "request %d should pass", i+1)
	}
}

func TestRateLimiterBlocksOverLimit(t *testing.T) {
	limiter := newFallbackLimiter()
	router := limitedRouter(limiter, RateLimitConfig{MaxRequests: 2, TimeWindow: time.Minute})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/npd", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/npd", nil))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Terlalu banyak permintaan")

	retryAfter, err := strconv.Atoi(w.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.Greater(t, retryAfter, 0)
}

func TestRateLimiterHeaders(t *testing.T) {
	limiter := newFallbackLimiter()
	router := limitedRouter(limiter, RateLimitConfig{MaxRequests: 5, TimeWindow: time.Minute})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/npd", nil))

	assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))

	reset, err := strconv.ParseInt(w.Header().Get("X-RateLimit-Reset"), 10, 64)
	require.NoError(t, err)
	assert.Greater(t, reset, time.Now().Unix()-1)
}

func TestRateLimiterRemainingCountsDown(t *testing.T) {
	limiter := newFallbackLimiter()
	router := limitedRouter(limiter, RateLimitConfig{MaxRequests: 3, TimeWindow: time.Minute})

	for _, want := range []string{"2", "1", "0"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/npd", nil))
		assert.Equal(t, want, w.Header().Get("X-RateLimit-Remaining"))
	}
}

func TestRateLimiterWindowExpires(t *testing.T) {
	limiter := newFallbackLimiter()
	limit := RateLimitConfig{MaxRequests: 1, TimeWindow: 30 * time.Millisecond}
	router := limitedRouter(limiter, limit)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/npd", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/npd", nil))
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	time.Sleep(40 * time.Millisecond)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/npd", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiterScopesAreIndependent(t *testing.T) {
	limiter := newFallbackLimiter()
	limit := RateLimitConfig{MaxRequests: 1, TimeWindow: time.Minute}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/npd", limiter.Middleware("global", limit), func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/api/documents/npd/1/pdf", limiter.Middleware("pdf", limit), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/npd", nil))
	require.Equal(t, http.StatusOK, w.Code)

	// The PDF scope keeps its own counter.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/documents/npd/1/pdf", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
