// Package checks provides the dependency probes registered with the health manager.
package checks

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/innut/innut/internal/database"
	"github.com/innut/innut/internal/monitoring"
)

// Database returns a readiness probe that pings the notification database.
func Database(db *gorm.DB) monitoring.Check {
	return monitoring.Check{
		Name: "database",
		Run: func(ctx context.Context) monitoring.ProbeResult {
			start := time.Now()
			if db == nil {
				return monitoring.ProbeResult{Status: monitoring.StatusDown, Details: "database not configured"}
			}
			return monitoring.ResultFromError(database.Ping(ctx, db), time.Since(start))
		},
	}
}
