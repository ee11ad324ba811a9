package worker

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter spaces completion calls per provider. Every provider name gets
// its own token bucket, so a slow Ollama instance never throttles
// OpenRouter. A rate of zero or less disables limiting.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	perSec  rate.Limit
	burst   int
}

// NewLimiter creates a limiter giving each provider requestsPerSecond with
// the given burst.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	perSec := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		perSec = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		buckets: make(map[string]*rate.Limiter),
		perSec:  perSec,
		burst:   burst,
	}
}

// Wait blocks until the provider's bucket clears a request or the context
// ends.
func (l *Limiter) Wait(ctx context.Context, provider string) error {
	return l.bucket(provider).Wait(ctx)
}

// Allow reports whether a request may proceed right now, consuming a token
// when it may.
func (l *Limiter) Allow(provider string) bool {
	return l.bucket(provider).Allow()
}

func (l *Limiter) bucket(provider string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[provider]
	if !ok {
		b = rate.NewLimiter(l.perSec, l.burst)
		l.buckets[provider] = b
	}
	return b
}
