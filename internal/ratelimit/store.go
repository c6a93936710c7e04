package ratelimit

import (
	"context"
	"fmt"

	"github.com/innut/innut/internal/cache"
)

const storeKeyPrefix = "ratelimit:"

// StoreLimiter keeps fixed-window counters in a shared cache.Store so that
// several server instances enforce one budget.
type StoreLimiter struct {
	cfg   Config
	store cache.Store
}

// NewStoreLimiter wraps a cache store.
func NewStoreLimiter(store cache.Store, cfg Config) (*StoreLimiter, error) {
	if store == nil {
		return nil, fmt.Errorf("ratelimit: cache store is required")
	}
	return &StoreLimiter{cfg: cfg.withDefaults(), store: store}, nil
}

// Allow implements Limiter.
func (l *StoreLimiter) Allow(ctx context.Context, token string) (Result, error) {
	if token == "" {
		return Result{}, ErrEmptyToken
	}
	count, ttl, err := l.store.IncrementWithTTL(ctx, storeKeyPrefix+token, l.cfg.Window)
	if err != nil {
		return Result{}, fmt.Errorf("ratelimit: increment: %w", err)
	}
	return newResult(count, int64(l.cfg.RequestsPerWindow), ttl), nil
}
