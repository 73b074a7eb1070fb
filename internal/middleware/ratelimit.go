// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/carterperez-dev/templates/lms-backend/internal/core"
)

type RateLimitConfig struct {
	Limit    redis_rate.Limit
	KeyFunc  func(*http.Request) string
	FailOpen bool
	Skip     func(*http.Request) bool
}

// limitStore counts hits for a key within a limit's window.
type limitStore interface {
	allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

type redisStore struct {
	limiter *redis_rate.Limiter
}

func (s redisStore) allow(
	ctx context.Context,
	key string,
	limit redis_rate.Limit,
) (*redis_rate.Result, error) {
	return s.limiter.Allow(ctx, key, limit)
}

type RateLimiter struct {
	primary  limitStore
	fallback limitStore
	config   RateLimitConfig
}

// NewRateLimiter counts in Redis when rdb is non-nil and in process
// otherwise. Redis errors also fall through to the in-process counters.
func NewRateLimiter(rdb *redis.Client, cfg RateLimitConfig) *RateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = KeyByIP
	}

	memory := newMemoryStore()
	rl := &RateLimiter{primary: memory, config: cfg}
	if rdb != nil {
		rl.primary = redisStore{limiter: redis_rate.NewLimiter(rdb)}
		rl.fallback = memory
	}

	return rl
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.config.Skip != nil && rl.config.Skip(r) {
			next.ServeHTTP(w, r)
			return
		}

		key := rl.config.KeyFunc(r)
		res, err := rl.allow(r.Context(), key)
		switch {
		case err != nil && rl.config.FailOpen:
			slog.Warn("rate limiter error, failing open", "error", err, "key", key)
			next.ServeHTTP(w, r)
		case err != nil:
			core.JSON(w, http.StatusServiceUnavailable, core.ErrorResponse{
				Error: "Service unavailable",
				Code:  "RATE_LIMITER_UNAVAILABLE",
			})
		case res.Allowed == 0:
			setRateLimitHeaders(w, res, rl.config.Limit)
			writeRateLimitExceeded(w, res)
		default:
			setRateLimitHeaders(w, res, rl.config.Limit)
			next.ServeHTTP(w, r)
		}
	})
}

func (rl *RateLimiter) allow(ctx context.Context, key string) (*redis_rate.Result, error) {
	res, err := rl.primary.allow(ctx, key, rl.config.Limit)
	if err != nil && rl.fallback != nil {
		return rl.fallback.allow(ctx, key, rl.config.Limit)
	}
	return res, err
}

// SkipProbes exempts the health endpoints so orchestrator probes never
// eat into a client's budget.
func SkipProbes(r *http.Request) bool {
	switch r.URL.Path {
	case "/healthz", "/livez", "/readyz":
		return true
	}
	return false
}

func KeyByIP(r *http.Request) string {
	return core.RedisKey("ratelimit", "ip", clientIP(r))
}

// KeyByUser keys on the authenticated caller, falling back to the IP.
func KeyByUser(r *http.Request) string {
	if userID := GetUserID(r.Context()); userID != "" {
		return core.RedisKey("ratelimit", "user", userID)
	}
	return KeyByIP(r)
}

// KeyByUserAndEndpoint adds the matched chi route pattern, so
// /courses/1 and /courses/2 share a bucket.
func KeyByUserAndEndpoint(r *http.Request) string {
	endpoint := r.URL.Path
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			endpoint = pattern
		}
	}
	return KeyByUser(r) + ":" + r.Method + ":" + endpoint
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		return strings.TrimSpace(hops[len(hops)-1])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func setRateLimitHeaders(w http.ResponseWriter, res *redis_rate.Result, limit redis_rate.Limit) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(res.ResetAfter).Unix(), 10))
	h.Set("RateLimit-Policy", fmt.Sprintf("%d;w=%d", limit.Rate, int(limit.Period.Seconds())))
	h.Set("RateLimit", fmt.Sprintf("%d;t=%d", res.Remaining, int(res.ResetAfter.Seconds())))
}

func writeRateLimitExceeded(w http.ResponseWriter, res *redis_rate.Result) {
	retryAfter := max(int(res.RetryAfter.Seconds()), 1)

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	core.JSON(w, http.StatusTooManyRequests, core.ErrorResponse{
		Error: fmt.Sprintf("Rate limit exceeded. Retry after %d seconds.", retryAfter),
		Code:  "RATE_LIMITED",
	})
}

const (
	sweepInterval = 5 * time.Minute
	bucketIdleTTL = 10 * time.Minute
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// memoryStore is a token bucket per key. Idle buckets are swept lazily on
// access rather than by a background goroutine.
type memoryStore struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
	now       func() time.Time
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

func (m *memoryStore) allow(
	_ context.Context,
	key string,
	limit redis_rate.Limit,
) (*redis_rate.Result, error) {
	perSecond := float64(limit.Rate) / limit.Period.Seconds()
	interval := time.Duration(float64(time.Second) / perSecond)
	now := m.now()

	m.mu.Lock()
	if now.Sub(m.lastSweep) > sweepInterval {
		for k, b := range m.buckets {
			if now.Sub(b.lastSeen) > bucketIdleTTL {
				delete(m.buckets, k)
			}
		}
		m.lastSweep = now
	}

	b, ok := m.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Limit(perSecond), limit.Burst)}
		m.buckets[key] = b
	}
	b.lastSeen = now
	allowed := b.limiter.AllowN(now, 1)
	remaining := max(int(b.limiter.TokensAt(now)), 0)
	m.mu.Unlock()

	res := &redis_rate.Result{
		Limit:      limit,
		Remaining:  remaining,
		RetryAfter: -1,
		ResetAfter: interval,
	}
	if allowed {
		res.Allowed = 1
	} else {
		res.RetryAfter = interval
	}

	return res, nil
}

func PerMinute(rate, burst int) redis_rate.Limit {
	return PerWindow(rate, burst, time.Minute)
}

func PerWindow(rate, burst int, window time.Duration) redis_rate.Limit {
	if window <= 0 {
		window = time.Minute
	}
	return redis_rate.Limit{Rate: rate, Burst: burst, Period: window}
}
