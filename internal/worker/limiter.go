package worker

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter implements per-dataset rate limiting. The legacy reference
// connections degrade badly under bursts, so each named dataset gets its own
// token bucket.
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a new rate limiter
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 10
	}
	if burst <= 0 {
		burst = 5
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  rate.Limit(requestsPerSecond),
		defaultBurst: burst,
	}
}

// Wait waits for rate limit clearance for the named dataset
func (l *Limiter) Wait(ctx context.Context, dataset string) error {
	return l.getLimiter(dataset).Wait(ctx)
}

// Allow checks if a request to the named dataset is allowed without waiting
func (l *Limiter) Allow(dataset string) bool {
	return l.getLimiter(dataset).Allow()
}

// getLimiter returns the rate limiter for a dataset
func (l *Limiter) getLimiter(dataset string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[dataset]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[dataset]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[dataset] = limiter

	return limiter
}

// SetDatasetRate sets a custom rate limit for a specific dataset
func (l *Limiter) SetDatasetRate(dataset string, requestsPerSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if burst <= 0 {
		burst = l.defaultBurst
	}

	l.limiters[dataset] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}
