package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const rateLimitPrefix = "habits:rate_limit"

// RateLimiterMiddleware gives every board its own request budget per fixed
// window. It must run after AuthMiddleware; requests without a resolved board
// are counted per client IP. Redis errors let the request through.
func RateLimiterMiddleware(rdb *redis.Client, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	if window < time.Second {
		window = time.Second
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key, resetAt := rateLimitBucket(c, time.Now(), window)

		var hits *redis.IntCmd
		_, err := rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			hits = pipe.Incr(ctx, key)
			pipe.ExpireAt(ctx, key, resetAt.Add(time.Second))
			return nil
		})
		if err != nil {
			logger.Warn("rate limiter skipped", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		count := hits.Val()
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(limit)-count), 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if count > int64(limit) {
			retry := max(1, int(time.Until(resetAt).Seconds()))
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":      "too many requests",
				"retry_in_s": retry,
			})
			return
		}

		c.Next()
	}
}

// rateLimitBucket names the counter for the window containing now and
// returns when that window ends.
func rateLimitBucket(c *gin.Context, now time.Time, window time.Duration) (string, time.Time) {
	scope := "ip:" + c.ClientIP()
	if board, ok := GetBoard(c); ok {
		scope = "board:" + board
	}

	start := now.Truncate(window)
	return fmt.Sprintf("%s:%s:%d", rateLimitPrefix, scope, start.Unix()), start.Add(window)
}
