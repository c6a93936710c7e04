package checks

import (
	"context"
	"time"

	"github.com/innut/innut/internal/cache"
	"github.com/innut/innut/internal/monitoring"
)

// Counters probes the shared counter store behind the rate limiter. Limiter
// errors fail open, so an unreachable store only degrades readiness.
func Counters(store cache.Store) monitoring.Check {
	return monitoring.Check{
		Name: "counters",
		Run: func(ctx context.Context) monitoring.ProbeResult {
			if store == nil {
				return monitoring.ProbeResult{Status: monitoring.StatusUp, Details: "shared counters disabled"}
			}
			start := time.Now()
			result := monitoring.ResultFromError(store.Ping(ctx), time.Since(start))
			if result.Status == monitoring.StatusDown {
				result.Status = monitoring.StatusDegraded
			}
			return result
		},
	}
}
