package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/innut/innut/internal/api"
	"github.com/innut/innut/internal/app"
	iauth "github.com/innut/innut/internal/auth"
	"github.com/innut/innut/internal/cache"
	sharedtestutil "github.com/innut/innut/internal/database/testutil"
	"github.com/innut/innut/internal/ratelimit"
	"github.com/innut/innut/pkg/response"
)

// Env encapsulates a fully-wired API instance backed by an in-memory database for handler tests.
type Env struct {
	T      *testing.T
	DB     *gorm.DB
	Router *gin.Engine
	JWT    *iauth.JWTService
	Config *app.Config
}

// Option adjusts the environment before the router is built.
type Option func(*envOptions)

type envOptions struct {
	cfg      *app.Config
	limiter  ratelimit.Limiter
	counters cache.Store
}

// WithLimiter installs a rate limiter on mutating routes.
func WithLimiter(limiter ratelimit.Limiter) Option {
	return func(o *envOptions) {
		o.limiter = limiter
	}
}

// WithCounters sets the shared counter store probed by /health/ready.
func WithCounters(store cache.Store) Option {
	return func(o *envOptions) {
		o.counters = store
	}
}

// WithConfig mutates the default test configuration.
func WithConfig(mutate func(cfg *app.Config)) Option {
	return func(o *envOptions) {
		if mutate != nil {
			mutate(o.cfg)
		}
	}
}

// NewEnv provisions a fresh handler test environment with migrations applied.
func NewEnv(t *testing.T, opts ...Option) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithAutoMigrate())

	jwtSecret := "test-suite-super-secret-key-32-bytes!!"
	options := &envOptions{cfg: defaultConfig(jwtSecret)}
	for _, opt := range opts {
		opt(options)
	}

	jwtSvc, err := iauth.NewJWTService(options.cfg.Auth.JWTServiceConfig())
	require.NoError(t, err)

	router, err := api.NewRouter(db, jwtSvc, options.cfg, options.limiter, options.counters)
	require.NoError(t, err)

	return &Env{
		T:      t,
		DB:     db,
		Router: router,
		JWT:    jwtSvc,
		Config: options.cfg,
	}
}

func defaultConfig(secret string) *app.Config {
	return &app.Config{
		Auth: app.AuthConfig{
			JWT: app.JWTSettings{
				Secret: secret,
				Issuer: "test-suite",
				TTL:    time.Hour,
			},
		},
		Notifications: app.NotificationsConfig{
			Enabled:         true,
			DefaultPageSize: 25,
			MaxPageSize:     100,
		},
		Realtime: app.RealtimeConfig{SendBuffer: 16},
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
		},
	}
}

// Token issues an access token for the given identity.
func (e *Env) Token(userID, organizationID, role string) string {
	e.T.Helper()
	token, err := e.JWT.GenerateAccessToken(iauth.AccessTokenInput{
		UserID:         userID,
		OrganizationID: organizationID,
		Role:           role,
	})
	require.NoError(e.T, err)
	return token
}

// APIResponse represents the canonical API envelope returned by handlers.
type APIResponse struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
	Meta    *response.Meta      `json:"meta"`
}

// DecodeResponse parses the standard API response object from a recorder.
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// DecodeInto unmarshals the data payload into the provided destination.
func DecodeInto[T any](t *testing.T, raw json.RawMessage, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}
	require.NoError(t, json.Unmarshal(raw, dest))
}

// Request executes an HTTP request against the test router, applying JSON encoding and auth headers automatically.
func (e *Env) Request(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.T.Helper()

	buf := bytes.NewBuffer(nil)
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.T, err)
		buf = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, path, buf)
	require.NoError(e.T, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}
