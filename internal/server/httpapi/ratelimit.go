package httpapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ipRateLimiter keeps one token bucket per client IP. Only the login
// endpoint uses it; the map is never pruned, which is acceptable at the
// expected scale.
type ipRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newIPRateLimiter(perMinute, burst int) *ipRateLimiter {
	return &ipRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    burst,
	}
}

func (l *ipRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[ip] = limiter
	}
	return limiter.Allow()
}

func (s *Server) rateLimitLogin(ctx *gin.Context) {
	if !s.limiter.allow(ctx.ClientIP()) {
		ctx.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many login attempts"})
		return
	}
	ctx.Next()
}
