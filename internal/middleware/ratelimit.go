package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	appErrors "github.com/campushq/course-scheduler-api/pkg/errors"
	"github.com/campushq/course-scheduler-api/pkg/response"
)

// RateLimiter tracks request timestamps per key over a sliding window.
type RateLimiter struct {
	mu      sync.Mutex
	hits    map[string][]time.Time
	limit   int
	window  time.Duration
	nowFunc func() time.Time
}

// NewRateLimiter constructs a limiter allowing limit requests per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 100
	}
	if window <= 0 {
		window = time.Hour
	}
	return &RateLimiter{
		hits:    make(map[string][]time.Time),
		limit:   limit,
		window:  window,
		nowFunc: time.Now,
	}
}

// Allow reports whether another request for key fits in the current window
// and records it when it does.
func (l *RateLimiter) Allow(key string) bool {
	now := l.nowFunc()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	recent := l.hits[key][:0]
	for _, at := range l.hits[key] {
		if at.After(cutoff) {
			recent = append(recent, at)
		}
	}
	if len(recent) >= l.limit {
		l.hits[key] = recent
		return false
	}
	l.hits[key] = append(recent, now)
	return true
}

// RateLimit rejects requests exceeding the per-client budget with a 429.
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		if !limiter.Allow(c.ClientIP()) {
			response.Error(c, appErrors.Clone(appErrors.ErrRateLimited, "rate limit exceeded, retry later"))
			c.Abort()
			return
		}
		c.Next()
	}
}
