package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/BruksfildServices01/salon-booking/internal/httperr"
)

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	perMin   int
	log      *zap.Logger
}

func NewRateLimiter(perMin int, log *zap.Logger) *RateLimiter {
	if perMin <= 0 {
		perMin = 120
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		perMin:   perMin,
		log:      log,
	}
}

func (r *RateLimiter) limiter(ip string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.limiters[ip]
	if !ok {
		l = rate.NewLimiter(rate.Every(time.Minute/time.Duration(r.perMin)), r.perMin)
		r.limiters[ip] = l
	}
	return l
}

func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !r.limiter(ip).Allow() {
			r.log.Warn("rate limit exceeded", zap.String("ip", ip), zap.String("path", c.FullPath()))
			httperr.TooManyRequests(c, "rate_limited", "Too many requests, try again later.")
			return
		}
		c.Next()
	}
}
