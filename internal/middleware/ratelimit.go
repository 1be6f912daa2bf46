package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/aghpoints/loyalty-server/internal/config"
)

// RateLimit returns a fixed-window request limiter backed by Redis:
// one counter per client IP and route, INCR + EXPIRE per request.
// With rate limiting disabled or no Redis client it is a pass-through,
// and Redis errors fail open so a broker outage never blocks traffic.
func RateLimit(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			window := time.Now().Unix() / int64(cfg.Window/time.Second)
			key := fmt.Sprintf("%s:%s:%s:%d", cfg.Prefix, c.RealIP(), c.Path(), window)

			n, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				return next(c)
			}
			if n == 1 {
				_ = rdb.Expire(ctx, key, cfg.Window).Err()
			}

			remaining := int64(cfg.Limit) - n
			if remaining < 0 {
				remaining = 0
			}
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if n > int64(cfg.Limit) {
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(cfg.Window/time.Second)))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":   "too_many_requests",
					"message": "rate limit exceeded",
				})
			}
			return next(c)
		}
	}
}
