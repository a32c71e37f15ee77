package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-pupuseria/internal/common"
)

// keyPrefix namespaces the per-client sorted sets in Redis.
const keyPrefix = "rl:orders:"

// OrderWrites throttles order mutations per client. The counter uses a Redis
// sorted set as a sliding window, so a burst right before the window boundary
// does not double the effective budget. A zero Client, Max or Window disables
// the limiter; Redis errors fail open so the register keeps taking orders.
type OrderWrites struct {
	Client  *redis.Client
	Window  time.Duration
	Max     int
	OnError func(error)
}

// Middleware guards order write endpoints, answering 429 with the standard
// error envelope once a client exhausts its window.
func (l OrderWrites) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.Client == nil || l.Max <= 0 || l.Window <= 0 {
			next.ServeHTTP(w, r)
			return
		}
		allowed, remaining, resetAt, err := l.take(r.Context(), common.ClientIP(r))
		if err != nil {
			if l.OnError != nil {
				l.OnError(err)
			}
			next.ServeHTTP(w, r)
			return
		}

		headers := w.Header()
		headers.Set("X-RateLimit-Limit", strconv.Itoa(l.Max))
		headers.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if !allowed {
			retryAfter := int(time.Until(resetAt).Seconds())
			if retryAfter < 0 {
				retryAfter = 0
			}
			headers.Set("Retry-After", strconv.Itoa(retryAfter))
			common.JSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many order submissions", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// take records one submission for the client and reports whether it fits the
// window. The trim, insert, count and expiry run in a single pipeline.
func (l OrderWrites) take(ctx context.Context, client string) (allowed bool, remaining int, resetAt time.Time, err error) {
	now := time.Now()
	resetAt = now.Add(l.Window)
	key := keyPrefix + client
	cutoff := strconv.FormatInt(now.Add(-l.Window).UnixNano(), 10)
	member := strconv.FormatInt(now.UnixNano(), 10) + ":" + uuid.NewString()

	pipe := l.Client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", cutoff)
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixNano()), Member: member})
	countCmd := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, l.Window)
	if _, err = pipe.Exec(ctx); err != nil {
		return false, 0, resetAt, err
	}

	taken := int(countCmd.Val())
	remaining = l.Max - taken
	if remaining < 0 {
		remaining = 0
	}
	return taken <= l.Max, remaining, resetAt, nil
}
