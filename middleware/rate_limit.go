package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"bitwise74/course-api/apperr"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

var ErrTooManyRequests = &apperr.Error{
	Code:    "RATE_LIMITED",
	Status:  http.StatusTooManyRequests,
	Message: "Too many requests",
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type RateLimiterConfig struct {
	RequestsPerSecond int
	Burst             int
	CleanupInterval   time.Duration
	TTL               time.Duration
}

type limiterSet struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	cfg      RateLimiterConfig
}

func (s *limiterSet) get(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, exists := s.visitors[ip]
	if !exists {
		limiter := rate.NewLimiter(rate.Limit(s.cfg.RequestsPerSecond), s.cfg.Burst)
		s.visitors[ip] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

func (s *limiterSet) cleanup(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			for ip, v := range s.visitors {
				if time.Since(v.lastSeen) > s.cfg.TTL {
					delete(s.visitors, ip)
				}
			}
			s.mu.Unlock()
		}
	}
}

// RateLimiterMiddleware limits requests per client IP. Idle visitors are
// forgotten after TTL; the cleanup goroutine exits with ctx.
func RateLimiterMiddleware(ctx context.Context, config RateLimiterConfig) gin.HandlerFunc {
	if config.CleanupInterval == 0 {
		config.CleanupInterval = time.Minute
	}
	if config.TTL == 0 {
		config.TTL = 3 * time.Minute
	}
	if config.Burst == 0 {
		config.Burst = config.RequestsPerSecond
	}

	set := &limiterSet{
		visitors: make(map[string]*visitor),
		cfg:      config,
	}

	go set.cleanup(ctx)

	return func(c *gin.Context) {
		if !set.get(c.ClientIP()).Allow() {
			apperr.Abort(c, ErrTooManyRequests)
			return
		}

		c.Next()
	}
}
