package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// FixedWindowLimiter is a simple admission-control counter: at most limit
// hits per key per window. Windows reset rather than slide, matching the
// reference system's limiter.
type FixedWindowLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	entries map[string]*windowEntry
}

type windowEntry struct {
	start time.Time
	count int
}

func NewFixedWindowLimiter(limit int, window time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		limit:   limit,
		window:  window,
		entries: make(map[string]*windowEntry),
	}
}

// Allow reports whether a hit for key at time now fits in the current window.
func (l *FixedWindowLimiter) Allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := l.entries[key]
	if entry == nil || now.Sub(entry.start) >= l.window {
		if len(l.entries) > 1024 {
			l.prune(now)
		}
		l.entries[key] = &windowEntry{start: now, count: 1}
		return true
	}

	entry.count++
	return entry.count <= l.limit
}

// prune drops expired windows; caller holds the lock.
func (l *FixedWindowLimiter) prune(now time.Time) {
	for key, entry := range l.entries {
		if now.Sub(entry.start) >= l.window {
			delete(l.entries, key)
		}
	}
}

// VoteRateLimit caps vote casts per voter key. The key is the userId from
// the request body, falling back to the client IP, exactly like the
// reference limiter.
func VoteRateLimit(limit int, window time.Duration) gin.HandlerFunc {
	limiter := NewFixedWindowLimiter(limit, window)
	return func(c *gin.Context) {
		if !limiter.Allow(voterKey(c), time.Now()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": "Too many votes, please slow down.",
			})
			return
		}
		c.Next()
	}
}

// voterKey peeks at the request body for the voter id without consuming it.
func voterKey(c *gin.Context) string {
	body, err := io.ReadAll(c.Request.Body)
	if err == nil {
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		var probe struct {
			UserID string `json:"userId"`
		}
		if json.Unmarshal(body, &probe) == nil && probe.UserID != "" {
			return probe.UserID
		}
	}
	return c.ClientIP()
}
