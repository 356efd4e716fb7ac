package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limiterInfo is a struct that holds a rate limiter and the last time it was seen.
type limiterInfo struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitByIP limits how often each client IP may submit queries. Limiters
// idle for longer than expiration are swept on a later request. A
// non-positive rps disables the limit.
func RateLimitByIP(rps int, expiration time.Duration) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	var (
		mu        sync.Mutex
		limiters  = make(map[string]*limiterInfo)
		lastSweep = time.Now()
	)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		mu.Lock()
		info, ok := limiters[ip]
		if !ok {
			info = &limiterInfo{limiter: rate.NewLimiter(rate.Limit(rps), rps)}
			limiters[ip] = info
		}
		info.lastSeen = now
		allowed := info.limiter.AllowN(now, 1)

		if now.Sub(lastSweep) > expiration {
			for key, value := range limiters {
				if now.Sub(value.lastSeen) > expiration {
					delete(limiters, key)
				}
			}
			lastSweep = now
		}
		mu.Unlock()

		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			c.Abort()
			return
		}

		c.Next()
	}
}
