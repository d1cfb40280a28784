package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/mayasama5/upe-program-sub001/internal/logger"
)

// RateLimiter is a fixed-window per-IP limiter backed by Redis. When
// Redis is unreachable the limiter fails open: throttling going down
// must not take anonymous-accessible content with it.
type RateLimiter struct {
	client *redis.Client
	max    int
	window time.Duration
	prefix string
}

func NewRateLimiter(client *redis.Client, max int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		max:    max,
		window: window,
		prefix: "ratelimit:",
	}
}

func (l *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := l.prefix + c.ClientIP()
		ctx := c.Request.Context()

		count, err := l.client.Incr(ctx, key).Result()
		if err != nil {
			logger.Warn("rate limiter unavailable, failing open", map[string]any{
				"error": err.Error(),
			})
			c.Next()
			return
		}
		if count == 1 {
			l.client.Expire(ctx, key, l.window)
		}

		if count > int64(l.max) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "Too many requests",
				"message": "Rate limit exceeded, try again later",
				"code":    "RATE_LIMITED",
			})
			return
		}

		c.Next()
	}
}
