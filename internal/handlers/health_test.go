package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type staticPresence struct{ channels, users int }

func (s staticPresence) Stats() (int, int) { return s.channels, s.users }

func serveHealth(t *testing.T, handler gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", handler)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	return w
}

func TestHealthReportsPresence(t *testing.T) {
	ok := func(context.Context) error { return nil }
	w := serveHealth(t, Health(ok, staticPresence{channels: 3, users: 2}))
	assertStatus(t, w, http.StatusOK)

	var payload struct {
		Status   string         `json:"status"`
		Database string         `json:"database"`
		Realtime map[string]int `json:"realtime"`
	}
	decode(t, w, &payload)
	require.Equal(t, "ok", payload.Status)
	require.Equal(t, "ok", payload.Database)
	require.Equal(t, 3, payload.Realtime["channels"])
	require.Equal(t, 2, payload.Realtime["users"])
}

func TestHealthDegradedWhenDatabaseDown(t *testing.T) {
	down := func(context.Context) error { return errors.New("connection refused") }
	w := serveHealth(t, Health(down, nil))
	assertStatus(t, w, http.StatusServiceUnavailable)

	var payload map[string]any
	decode(t, w, &payload)
	require.Equal(t, "degraded", payload["status"])
	require.NotContains(t, payload, "realtime")
}
