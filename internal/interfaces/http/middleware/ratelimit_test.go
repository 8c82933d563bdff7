package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/englishbooster/affiliate/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(2, 50*time.Millisecond)
	defer rl.Stop()
	ctx := context.Background()

	allowed, remaining, err := rl.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 1, remaining)

	allowed, remaining, _ = rl.Allow(ctx, "10.0.0.1")
	assert.True(t, allowed)
	assert.Equal(t, 0, remaining)

	allowed, _, _ = rl.Allow(ctx, "10.0.0.1")
	assert.False(t, allowed)

	allowed, _, _ = rl.Allow(ctx, "10.0.0.2")
	assert.True(t, allowed, "keys are limited independently")

	time.Sleep(60 * time.Millisecond)
	allowed, _, _ = rl.Allow(ctx, "10.0.0.1")
	assert.True(t, allowed, "a new window refills the bucket")
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	rl.Stop()
	rl.Stop()
}

func TestRateLimit_Middleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()

	r := gin.New()
	r.Use(RateLimit(rl, zap.NewNop()))
	r.GET("/home", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, httptest.NewRequest(http.MethodGet, "/home", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = perform(r, httptest.NewRequest(http.MethodGet, "/home", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, dto.ErrCodeRateLimited, decodeResponse(t, w).Error.Code)
}

func TestRateLimit_FailsOpenWhenRedisIsDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	limiter := NewRedisRateLimiter(client, 1, time.Minute, "")

	_, _, err := limiter.Allow(context.Background(), "10.0.0.1")
	assert.ErrorContains(t, err, "rate limit counter")

	r := gin.New()
	r.Use(RateLimit(limiter, zap.NewNop()))
	r.GET("/home", func(c *gin.Context) { c.Status(http.StatusOK) })

	for range 3 {
		assert.Equal(t, http.StatusOK, perform(r, httptest.NewRequest(http.MethodGet, "/home", nil)).Code)
	}
}
