package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/SouzaGabriel26/onde-ir/pkg/response"
)

// ipFromCtx prefers the address resolved by RealIP.
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func normalizePath(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// KeyFunc builds the Redis counter key for a request.
type KeyFunc func(c *gin.Context) string

func KeyByIP() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:ip:" + ipFromCtx(c)
	}
}

// KeyByIPAndPath gives every route its own budget per client. Auth routes use
// it so a burst of sign-in attempts cannot exhaust the forgot-password budget.
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:path:" + normalizePath(c) + ":ip:" + ipFromCtx(c)
	}
}

func KeyByUserID() KeyFunc {
	return func(c *gin.Context) string {
		uid := c.GetString(CtxUserIDKey)
		if uid == "" {
			return "rl:user:anon:ip:" + ipFromCtx(c)
		}
		return "rl:user:" + uid
	}
}

// hitScript counts one hit and returns {count, pttl}. The window starts on
// the first hit of a key and is not extended by later ones.
var hitScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {n, redis.call("PTTL", KEYS[1])}
`)

// AllowFunc returns true to let a request skip the limiter.
type AllowFunc func(*gin.Context) bool

// Limit is a fixed-window budget.
type Limit struct {
	Max    int
	Window time.Duration
}

type hit struct {
	count int64
	reset time.Duration
}

func (l Limit) record(ctx context.Context, rdb *redis.Client, key string) (hit, error) {
	vals, err := hitScript.Run(ctx, rdb, []string{key}, l.Window.Milliseconds()).Int64Slice()
	if err != nil {
		return hit{}, err
	}
	if len(vals) != 2 {
		return hit{}, fmt.Errorf("rate limit: unexpected reply %v", vals)
	}
	h := hit{count: vals[0]}
	if vals[1] > 0 {
		h.reset = time.Duration(vals[1]) * time.Millisecond
	}
	return h, nil
}

func (l Limit) writeHeaders(c *gin.Context, h hit) (retryAfter int) {
	remaining := max(int64(l.Max)-h.count, 0)
	resetSec := int((h.reset + time.Second - 1) / time.Second)
	c.Header("X-RateLimit-Limit", strconv.Itoa(l.Max))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
	c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))
	return resetSec
}

// RateLimit enforces l per key with a fixed window counter in Redis and sets
// the X-RateLimit-* headers. It is a no-op without Redis and fails open when
// Redis errors. Preflight requests are never counted.
func RateLimit(rdb *redis.Client, l Limit, keyFn KeyFunc, allow AllowFunc, logger *logrus.Logger) gin.HandlerFunc {
	if rdb == nil || l.Max <= 0 || l.Window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || (allow != nil && allow(c)) {
			c.Next()
			return
		}

		key := keyFn(c)
		h, err := l.record(c.Request.Context(), rdb, key)
		if err != nil {
			if logger != nil {
				logger.WithError(err).WithField("key", key).Warn("rate limit check failed")
			}
			c.Next()
			return
		}

		retryAfter := l.writeHeaders(c, h)
		if h.count > int64(l.Max) {
			if retryAfter > 0 {
				c.Header("Retry-After", strconv.Itoa(retryAfter))
			}
			response.Error[any](c, http.StatusTooManyRequests, "rate limit exceeded", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
