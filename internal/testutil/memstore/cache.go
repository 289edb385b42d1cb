package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/happeningnu/happening/internal/cache"
	"github.com/happeningnu/happening/internal/model"
)

// Flashes is an in-memory flash queue keyed by session token.
type Flashes struct {
	mu     sync.Mutex
	queues map[string][]model.Flash
}

// NewFlashes returns an empty flash store.
func NewFlashes() *Flashes {
	return &Flashes{queues: make(map[string][]model.Flash)}
}

// PushFlash appends f to token's queue.
func (f *Flashes) PushFlash(_ context.Context, token string, flash model.Flash) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queues[token] = append(f.queues[token], flash)
	return nil
}

// PopFlashes returns and clears token's queue.
func (f *Flashes) PopFlashes(_ context.Context, token string) ([]model.Flash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.queues[token]
	delete(f.queues, token)
	return out, nil
}

// Limiter allows Burst requests per IP, then denies.
type Limiter struct {
	Burst int

	mu   sync.Mutex
	seen map[string]int
}

// NewLimiter returns a Limiter with the given burst.
func NewLimiter(burst int) *Limiter {
	return &Limiter{Burst: burst, seen: make(map[string]int)}
}

// CheckAuthRateLimit spends one request from ip's allowance.
func (l *Limiter) CheckAuthRateLimit(_ context.Context, ip string, _ int, _ int) (*cache.RateLimitResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.seen[ip]++
	if l.seen[ip] > l.Burst {
		return &cache.RateLimitResult{
			Allowed:    false,
			ResetAt:    time.Now().Add(time.Second),
			RetryAfter: time.Second,
		}, nil
	}
	return &cache.RateLimitResult{
		Allowed:   true,
		Remaining: int64(l.Burst - l.seen[ip]),
		ResetAt:   time.Now().Add(time.Second),
	}, nil
}
