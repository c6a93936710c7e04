package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/innut/innut/internal/cache"
	"github.com/innut/innut/internal/handlers"
	"github.com/innut/innut/internal/monitoring"
	"github.com/innut/innut/internal/monitoring/checks"
	"github.com/innut/innut/internal/realtime"
)

func registerHealthRoutes(r *gin.Engine, db *gorm.DB, registry *realtime.Registry, counters cache.Store) {
	r.GET("/health", handlers.Health(databasePinger(db), registry))

	manager := monitoring.NewHealthManager(0)
	manager.RegisterLiveness(checks.Realtime(registry))
	manager.RegisterReadiness(checks.Database(db))
	manager.RegisterReadiness(checks.Counters(counters))

	r.GET("/health/live", func(c *gin.Context) {
		writeHealthReport(c, manager.EvaluateLiveness(c.Request.Context()))
	})
	r.GET("/health/ready", func(c *gin.Context) {
		writeHealthReport(c, manager.EvaluateReadiness(c.Request.Context()))
	})
}

func writeHealthReport(c *gin.Context, report monitoring.HealthReport) {
	status := http.StatusOK
	if report.Status == monitoring.StatusDown {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}
