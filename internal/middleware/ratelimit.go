package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/yigit/alumnihub/internal/app/models/dto"
	"golang.org/x/time/rate"
)

// PerMinute builds a limit of n requests per minute with the given burst
func PerMinute(n, burst int) redis_rate.Limit {
	return redis_rate.Limit{Rate: n, Burst: burst, Period: time.Minute}
}

// RateLimiter throttles requests per caller. Redis keeps the counters when
// available; otherwise, or when redis errors, an in-process token bucket
// per key takes over.
type RateLimiter struct {
	limiter  *redis_rate.Limiter
	fallback *localLimiter
	limit    redis_rate.Limit
	prefix   string
	logger   zerolog.Logger
}

// NewRateLimiter creates a limiter. rdb may be nil.
func NewRateLimiter(rdb *redis.Client, limit redis_rate.Limit, prefix string, logger zerolog.Logger) *RateLimiter {
	rl := &RateLimiter{
		fallback: newLocalLimiter(),
		limit:    limit,
		prefix:   prefix,
		logger:   logger,
	}
	if rdb != nil {
		rl.limiter = redis_rate.NewLimiter(rdb)
	}
	return rl
}

// key prefers the authenticated user and falls back to the client ip
func (rl *RateLimiter) key(c *gin.Context) string {
	if userID, ok := GetUserID(c); ok {
		return fmt.Sprintf("ratelimit:%s:user:%s", rl.prefix, userID)
	}
	return fmt.Sprintf("ratelimit:%s:ip:%s", rl.prefix, c.ClientIP())
}

func (rl *RateLimiter) allow(ctx context.Context, key string) *redis_rate.Result {
	if rl.limiter != nil {
		res, err := rl.limiter.Allow(ctx, key, rl.limit)
		if err == nil {
			return res
		}
		rl.logger.Warn().Err(err).Str("key", key).Msg("Redis rate limiter failed, using local limiter")
	}
	return rl.fallback.allow(key, rl.limit)
}

// Middleware returns the gin handler
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		res := rl.allow(c.Request.Context(), rl.key(c))

		h := c.Writer.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(rl.limit.Rate))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(res.ResetAfter).Unix(), 10))

		if res.Allowed == 0 {
			retryAfter := int(res.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			h.Set("Retry-After", strconv.Itoa(retryAfter))
			detail := dto.NewErrorDetail(dto.ErrorCodeRateLimited,
				fmt.Sprintf("Rate limit exceeded. Retry after %d seconds.", retryAfter)).
				WithSeverity(dto.ErrorSeverityWarning)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse(detail))
			return
		}

		c.Next()
	}
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess atomic.Int64
}

type localLimiter struct {
	limiters  sync.Map
	lastSweep atomic.Int64
}

const (
	sweepInterval = 5 * time.Minute
	entryTTL      = 10 * time.Minute
)

func newLocalLimiter() *localLimiter {
	l := &localLimiter{}
	l.lastSweep.Store(time.Now().Unix())
	return l
}

// sweep drops idle buckets at most once per interval
func (l *localLimiter) sweep(now int64) {
	last := l.lastSweep.Load()
	if now-last < int64(sweepInterval.Seconds()) || !l.lastSweep.CompareAndSwap(last, now) {
		return
	}
	cutoff := now - int64(entryTTL.Seconds())
	l.limiters.Range(func(key, value any) bool {
		if value.(*limiterEntry).lastAccess.Load() < cutoff {
			l.limiters.Delete(key)
		}
		return true
	})
}

func (l *localLimiter) allow(key string, limit redis_rate.Limit) *redis_rate.Result {
	perSec := float64(limit.Rate) / limit.Period.Seconds()
	now := time.Now().Unix()
	l.sweep(now)

	entryI, ok := l.limiters.Load(key)
	if !ok {
		entryI, _ = l.limiters.LoadOrStore(key, &limiterEntry{limiter: rate.NewLimiter(rate.Limit(perSec), limit.Burst)})
	}
	entry := entryI.(*limiterEntry)
	entry.lastAccess.Store(now)

	allowed := entry.limiter.Allow()
	remaining := int(entry.limiter.Tokens())
	if remaining < 0 {
		remaining = 0
	}

	res := &redis_rate.Result{
		Limit:      limit,
		Remaining:  remaining,
		RetryAfter: -1,
		ResetAfter: time.Duration(float64(time.Second) / perSec),
	}
	if allowed {
		res.Allowed = 1
	} else {
		res.RetryAfter = time.Duration(float64(time.Second) / perSec)
	}
	return res
}
