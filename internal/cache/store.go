package cache

import (
	"context"
	"time"
)

// Store is the shared counter surface used by the rate limiter. Counters live
// in fixed windows: the first increment opens a window of the requested length
// and later increments never extend it.
type Store interface {
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	Ping(ctx context.Context) error
}
