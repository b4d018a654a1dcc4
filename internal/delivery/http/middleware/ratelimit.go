package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const redisOpTimeout = 500 * time.Millisecond

// RateLimiter is a fixed-window limiter keyed by client IP and backed by
// Redis INCR/EXPIRE. With a nil client, or when Redis fails, requests pass.
type RateLimiter struct {
	logger  zerolog.Logger
	client  *redis.Client
	metrics *Metrics
	prefix  string
	limit   int64
	window  time.Duration
}

func NewRateLimiter(
	logger zerolog.Logger,
	client *redis.Client,
	metrics *Metrics,
	prefix string,
	limit int,
	window time.Duration,
) *RateLimiter {
	return &RateLimiter{
		logger:  logger,
		client:  client,
		metrics: metrics,
		prefix:  prefix,
		limit:   int64(limit),
		window:  window,
	}
}

func (l *RateLimiter) key(ident string) string {
	return fmt.Sprintf("rl:%s:%d:%s", l.prefix, int64(l.window.Seconds()), ident)
}

func (l *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.client == nil || l.limit <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), redisOpTimeout)
		defer cancel()

		key := l.key(c.ClientIP())
		count, err := l.client.Incr(ctx, key).Result()
		if err != nil {
			l.logger.Warn().
				Err(err).
				Str("key", key).
				Msg("rate limiter unavailable, letting request through")
			c.Next()
			return
		}

		if count == 1 {
			err = l.client.Expire(ctx, key, l.window).Err()
			if err != nil {
				l.logger.Warn().
					Err(err).
					Str("key", key).
					Msg("failed to set rate limit window")
			}
		}

		if count > l.limit {
			retryAfter := l.window
			if ttl, err := l.client.TTL(ctx, key).Result(); err == nil && ttl > 0 {
				retryAfter = ttl
			}

			l.metrics.observeBlocked(c.FullPath())
			l.logger.Warn().
				Str("client_ip", c.ClientIP()).
				Int64("count", count).
				Msg("rate limit exceeded")

			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		c.Next()
	}
}
