package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/innut/innut/internal/app"
	iauth "github.com/innut/innut/internal/auth"
	"github.com/innut/innut/internal/cache"
	"github.com/innut/innut/internal/database"
	"github.com/innut/innut/internal/handlers"
	"github.com/innut/innut/internal/middleware"
	"github.com/innut/innut/internal/ratelimit"
	"github.com/innut/innut/internal/realtime"
	"github.com/innut/innut/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers every route.
// limiter may be nil to disable rate limiting; counters is the shared store
// probed for readiness and may be nil.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config, limiter ratelimit.Limiter, counters cache.Store) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	r := gin.New()
	if err := r.SetTrustedProxies(trustedProxies(cfg.Server.TrustedProxies)); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.RateLimit(limiter))

	registry := realtime.NewRegistry()
	broadcaster := realtime.NewBroadcaster(registry)

	store, err := services.NewNotificationStore(db)
	if err != nil {
		return nil, err
	}
	notificationSvc, err := services.NewNotificationService(store, broadcaster, cfg.Notifications.ServiceConfig())
	if err != nil {
		return nil, err
	}
	var notifier services.Notifier
	if cfg.Notifications.Enabled {
		notifier = notificationSvc
	}
	taskSvc, err := services.NewTaskService(db, notifier)
	if err != nil {
		return nil, err
	}

	// Public
	registerHealthRoutes(r, db, registry, counters)
	if cfg.Monitoring.Prometheus.Enabled {
		r.GET(metricsEndpoint(cfg.Monitoring.Prometheus.Endpoint), gin.WrapH(promhttp.Handler()))
	}

	realtimeServer := realtime.NewServer(broadcaster, cfg.Realtime.ServerConfig())
	registerRealtimeRoutes(r, handlers.NewRealtimeHandler(realtimeServer, jwt))

	// Protected
	api := r.Group("/api")
	api.Use(middleware.Auth(jwt))

	if cfg.Notifications.Enabled {
		registerNotificationRoutes(api, handlers.NewNotificationHandler(notificationSvc))
	}
	registerTaskRoutes(api, handlers.NewTaskHandler(taskSvc))

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}

func trustedProxies(values []string) []string {
	proxies := make([]string, 0, len(values))
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			proxies = append(proxies, value)
		}
	}
	return proxies
}

func metricsEndpoint(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return "/metrics"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

func databasePinger(db *gorm.DB) handlers.Pinger {
	return func(ctx context.Context) error {
		return database.Ping(ctx, db)
	}
}
