package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/innut/innut/internal/app"
	"github.com/innut/innut/internal/ratelimit"
)

func TestConvertDatabaseConfig(t *testing.T) {
	cfg := &app.Config{
		Database: app.DatabaseConfig{
			Driver: " PostgreSQL ",
			Postgres: app.DBAuthConfig{
				Host:     " db.internal ",
				Port:     5432,
				Database: "innut",
				Username: "svc",
				Password: " p@ss ",
			},
		},
	}

	dbCfg := convertDatabaseConfig(cfg)
	require.Equal(t, "postgres", dbCfg.Driver)
	require.Equal(t, "db.internal", dbCfg.Host)
	require.Equal(t, 5432, dbCfg.Port)
	require.Equal(t, "innut", dbCfg.Name)
	require.Equal(t, "svc", dbCfg.User)
	require.Equal(t, " p@ss ", dbCfg.Password)

	cfg.Database = app.DatabaseConfig{Driver: "mysql", MySQL: app.DBAuthConfig{Host: "mysql.internal", Port: 3306}}
	dbCfg = convertDatabaseConfig(cfg)
	require.Equal(t, "mysql", dbCfg.Driver)
	require.Equal(t, "mysql.internal", dbCfg.Host)

	cfg.Database = app.DatabaseConfig{Path: "./data/test.sqlite"}
	dbCfg = convertDatabaseConfig(cfg)
	require.Equal(t, "sqlite", dbCfg.Driver)
	require.Equal(t, "./data/test.sqlite", dbCfg.Path)
	require.Empty(t, dbCfg.Host)

	cfg.Database = app.DatabaseConfig{Driver: "oracle"}
	require.Equal(t, "oracle", convertDatabaseConfig(cfg).Driver)
}

func TestBootstrapRuntime(t *testing.T) {
	cfg := &app.Config{
		Database: app.DatabaseConfig{
			Driver: "sqlite",
			Path:   filepath.Join(t.TempDir(), "innut.sqlite"),
		},
		Auth: app.AuthConfig{JWT: app.JWTSettings{Secret: "bootstrap-secret", TTL: time.Hour}},
		Notifications: app.NotificationsConfig{
			Enabled:         true,
			RetentionDays:   90,
			CleanupSchedule: "@daily",
		},
		RateLimit: app.RateLimitConfig{
			Enabled:           true,
			Backend:           app.RateLimitBackendStore,
			RequestsPerWindow: 10,
			Window:            time.Minute,
		},
	}

	stack, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { stack.Shutdown(context.Background(), zap.NewNop()) })

	require.NotNil(t, stack.DB)
	require.Nil(t, stack.Redis)
	require.IsType(t, &ratelimit.StoreLimiter{}, stack.Limiter)

	w := httptest.NewRecorder()
	stack.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestBootstrapRuntimeRejectsUnknownDriver(t *testing.T) {
	cfg := &app.Config{Database: app.DatabaseConfig{Driver: "oracle"}}
	_, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
}

func TestLoadApplicationConfigMissingPath(t *testing.T) {
	_, err := loadApplicationConfig(filepath.Join(t.TempDir(), "missing"))
	require.ErrorContains(t, err, "does not exist")
}
