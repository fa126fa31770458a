package middleware_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/communityforum/backend/internal/middleware"
)

func TestFixedWindowLimiter(t *testing.T) {
	limiter := middleware.NewFixedWindowLimiter(2, 10*time.Second)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, limiter.Allow("voter-1", now))
	assert.True(t, limiter.Allow("voter-1", now.Add(time.Second)))
	assert.False(t, limiter.Allow("voter-1", now.Add(2*time.Second)))

	// Other keys are independent.
	assert.True(t, limiter.Allow("voter-2", now.Add(2*time.Second)))

	// A fresh window resets the count.
	assert.True(t, limiter.Allow("voter-1", now.Add(10*time.Second)))
	assert.True(t, limiter.Allow("voter-1", now.Add(11*time.Second)))
	assert.False(t, limiter.Allow("voter-1", now.Add(12*time.Second)))
}
