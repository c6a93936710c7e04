package ratelimit

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type bucket struct {
	count     int64
	expiresAt time.Time
}

// MemoryLimiter keeps buckets in a bounded LRU. State is process local and
// lost on restart.
type MemoryLimiter struct {
	cfg Config
	now func() time.Time

	mu      sync.Mutex
	buckets *lru.Cache[string, *bucket]
}

// NewMemoryLimiter constructs an in-process limiter.
func NewMemoryLimiter(cfg Config) (*MemoryLimiter, error) {
	cfg = cfg.withDefaults()
	cache, err := lru.New[string, *bucket](cfg.MaxTrackedClients)
	if err != nil {
		return nil, err
	}
	return &MemoryLimiter{cfg: cfg, now: time.Now, buckets: cache}, nil
}

// Check increments the bucket for token and reports whether the request is
// within the ceiling.
func (l *MemoryLimiter) Check(token string) bool {
	return l.hit(token).Allowed
}

// Allow implements Limiter.
func (l *MemoryLimiter) Allow(_ context.Context, token string) (Result, error) {
	if token == "" {
		return Result{}, ErrEmptyToken
	}
	return l.hit(token), nil
}

// Len reports how many buckets are tracked.
func (l *MemoryLimiter) Len() int {
	return l.buckets.Len()
}

func (l *MemoryLimiter) hit(token string) Result {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets.Get(token)
	if !ok || !now.Before(b.expiresAt) {
		b = &bucket{expiresAt: now.Add(l.cfg.Window)}
		l.buckets.Add(token, b)
	}
	b.count++

	return newResult(b.count, int64(l.cfg.RequestsPerWindow), b.expiresAt.Sub(now))
}
