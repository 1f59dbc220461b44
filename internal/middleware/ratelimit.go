package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/Javier-Villarroel93/Practicas-Backend/internal/httperr"
)

var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RateLimiter is a per-client fixed-window limiter shared across instances
// through Redis.
type RateLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	prefix string
	logger *slog.Logger
}

func NewRateLimiter(rdb *redis.Client, limit int, window time.Duration, logger *slog.Logger) *RateLimiter {
	if limit <= 0 {
		limit = 120
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		rdb:    rdb,
		limit:  limit,
		window: window,
		prefix: "vet:rl",
		logger: logger,
	}
}

// Middleware fails open: a Redis outage never blocks the API.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := rl.incr(c.Request.Context(), rl.prefix+":"+c.ClientIP())
		if err != nil {
			rl.logger.Warn("rate limiter unavailable", "err", err)
			c.Next()
			return
		}

		if count > int64(rl.limit) {
			c.Header("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			httperr.Write(c, http.StatusTooManyRequests, "rate_limited", "Demasiadas solicitudes, intente más tarde.")
			c.Abort()
			return
		}

		c.Next()
	}
}

func (rl *RateLimiter) incr(ctx context.Context, key string) (int64, error) {
	res, err := fixedWindowScript.Run(ctx, rl.rdb, []string{key}, rl.window.Milliseconds()).Result()
	if err != nil {
		return 0, err
	}
	switch v := res.(type) {
	case int64:
		return v, nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected redis script result type %T", res)
	}
}
