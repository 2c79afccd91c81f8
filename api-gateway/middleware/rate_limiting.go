package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"sinpd-backend/shared/config"
)

// RateLimitConfig bounds requests per client within a sliding window
type RateLimitConfig struct {
	MaxRequests int
	TimeWindow  time.Duration
}

// NewRateLimitConfig builds the gateway-wide limit from configuration
func NewRateLimitConfig() RateLimitConfig {
	cfg := config.GetConfig()
	return RateLimitConfig{
		MaxRequests: cfg.RateLimitMaxRequests,
		TimeWindow:  time.Duration(cfg.RateLimitWindowSeconds) * time.Second,
	}
}

// NewPDFRateLimitConfig builds the stricter limit for PDF rendering,
// which ties up a headless browser page per request.
func NewPDFRateLimitConfig() RateLimitConfig {
	cfg := config.GetConfig()
	return RateLimitConfig{
		MaxRequests: cfg.PDFRateLimitMaxRequests,
		TimeWindow:  time.Duration(cfg.PDFRateLimitWindowSeconds) * time.Second,
	}
}

type windowState struct {
	count   int
	resetAt time.Time
}

// RateLimiter counts requests per (scope, client) in Redis so the
// limit holds across gateway replicas. When Redis is unreachable it
// degrades to an in-process counter rather than failing open.
type RateLimiter struct {
	rdb *redis.Client

	mu    sync.Mutex
	local map[string]*windowState
}

// NewRateLimiter connects to Redis using the shared configuration
func NewRateLimiter() *RateLimiter {
	cfg := config.GetConfig()
	db, _ := strconv.Atoi(cfg.RedisDB)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisHost + ":" + cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️ Redis unavailable, rate limiting falls back to in-memory counters: %v", err)
	}

	limiter := &RateLimiter{
		rdb:   rdb,
		local: make(map[string]*windowState),
	}
	go limiter.cleanupLocal()
	return limiter
}

// cleanupLocal drops expired in-memory windows
func (rl *RateLimiter) cleanupLocal() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for key, state := range rl.local {
			if now.After(state.resetAt) {
				delete(rl.local, key)
			}
		}
		rl.mu.Unlock()
	}
}

// allow counts one request and reports whether it fits the window,
// along with the remaining quota and the window reset time.
func (rl *RateLimiter) allow(ctx context.Context, key string, limit RateLimitConfig) (bool, int, time.Time) {
	count, resetAt, err := rl.allowRedis(ctx, key, limit)
	if err != nil {
		count, resetAt = rl.allowLocal(key, limit)
	}

	remaining := limit.MaxRequests - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= limit.MaxRequests, remaining, resetAt
}

func (rl *RateLimiter) allowRedis(ctx context.Context, key string, limit RateLimitConfig) (int, time.Time, error) {
	count, err := rl.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, time.Time{}, err
	}
	// First hit in the window owns setting the expiry.
	if count == 1 {
		rl.rdb.Expire(ctx, key, limit.TimeWindow)
	}

	ttl, err := rl.rdb.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		ttl = limit.TimeWindow
	}
	return int(count), time.Now().Add(ttl), nil
}

func (rl *RateLimiter) allowLocal(key string, limit RateLimitConfig) (int, time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	state, exists := rl.local[key]
	if !exists || now.After(state.resetAt) {
		state = &windowState{resetAt: now.Add(limit.TimeWindow)}
		rl.local[key] = state
	}
	state.count++
	return state.count, state.resetAt
}

// Middleware enforces the limit for a named scope, keying by client
// IP. Every response carries the X-RateLimit-* headers so clients can
// pace themselves before hitting 429.
func (rl *RateLimiter) Middleware(scope string, limit RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:%s:%s", scope, c.ClientIP())

		allowed, remaining, resetAt := rl.allow(c.Request.Context(), key, limit)

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit.MaxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if !allowed {
			retryAfter := int(time.Until(resetAt).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "Rate limit exceeded",
				"message": "Terlalu banyak permintaan, silakan coba lagi nanti",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
