package httpapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// rateLimiter keeps one token bucket per client address.
type rateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	limit    rate.Limit
	burst    int
}

func newRateLimiter(perSecond float64, burst int) *rateLimiter {
	return &rateLimiter{
		limiters: make(map[string]*clientLimiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

// Middleware rejects clients that exceed their bucket with 429.
func (limiter *rateLimiter) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !limiter.allow(ctx.ClientIP()) {
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse("rate-limited", "too many requests"))
			return
		}
		ctx.Next()
	}
}

func (limiter *rateLimiter) allow(clientKey string) bool {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	now := time.Now()
	entry, ok := limiter.limiters[clientKey]
	if !ok {
		limiter.pruneLocked(now)
		entry = &clientLimiter{limiter: rate.NewLimiter(limiter.limit, limiter.burst)}
		limiter.limiters[clientKey] = entry
	}
	entry.lastAccess = now
	return entry.limiter.Allow()
}

// pruneLocked drops buckets idle past the TTL. Called with the mutex held,
// only when a new client shows up, so steady traffic pays nothing.
func (limiter *rateLimiter) pruneLocked(now time.Time) {
	for clientKey, entry := range limiter.limiters {
		if now.Sub(entry.lastAccess) > limiterIdleTTL {
			delete(limiter.limiters, clientKey)
		}
	}
}
