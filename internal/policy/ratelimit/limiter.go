// Package ratelimit throttles page uploads with a token bucket per destination.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/JakeFAU/seo-snapshot-generator/internal/metrics"
	"github.com/JakeFAU/seo-snapshot-generator/internal/snapshot"
)

// Limiter manages per-destination upload rates.
type Limiter struct {
	mu           sync.Mutex
	limiters     map[string]*rate.Limiter
	defaultRate  rate.Limit
	defaultBurst int
}

// Config holds rate limiter configuration. A non-positive rate disables throttling.
type Config struct {
	UploadsPerSecond float64
	Burst            int
}

// New creates a new Limiter.
func New(cfg Config) *Limiter {
	r := rate.Limit(cfg.UploadsPerSecond)
	if cfg.UploadsPerSecond <= 0 {
		r = rate.Inf
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  r,
		defaultBurst: burst,
	}
}

// Wait blocks until a token is available for the destination, respecting the context.
func (l *Limiter) Wait(ctx context.Context, destination string) error {
	if destination == "" {
		destination = "default"
	}
	l.mu.Lock()
	limiter, exists := l.limiters[destination]
	if !exists {
		limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
		l.limiters[destination] = limiter
	}
	l.mu.Unlock()

	start := time.Now()
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	// Immediate grants are not recorded.
	if waited := time.Since(start); waited > time.Millisecond {
		metrics.ObserveUploadThrottle(waited)
	}
	return nil
}

// Store throttles writes to the wrapped page store.
type Store struct {
	next        snapshot.PageStore
	limiter     *Limiter
	destination string
}

var _ snapshot.PageStore = (*Store)(nil)

// Wrap returns next unchanged when throttling is disabled.
func Wrap(next snapshot.PageStore, limiter *Limiter, destination string) snapshot.PageStore {
	if next == nil || limiter == nil || limiter.defaultRate == rate.Inf {
		return next
	}
	return &Store{next: next, limiter: limiter, destination: destination}
}

// PutObject waits for an upload slot and delegates to the wrapped store.
func (s *Store) PutObject(ctx context.Context, name string, data []byte, opts snapshot.PutOptions) (string, error) {
	if err := s.limiter.Wait(ctx, s.destination); err != nil {
		return "", err
	}
	return s.next.PutObject(ctx, name, data, opts)
}
