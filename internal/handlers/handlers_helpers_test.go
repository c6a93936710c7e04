package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	iauth "github.com/innut/innut/internal/auth"
	"github.com/innut/innut/internal/database/testutil"
	"github.com/innut/innut/internal/middleware"
	"github.com/innut/innut/internal/realtime"
	"github.com/innut/innut/internal/services"
	"github.com/innut/innut/pkg/response"
)

type handlerEnv struct {
	t             *testing.T
	db            *gorm.DB
	router        *gin.Engine
	jwt           *iauth.JWTService
	registry      *realtime.Registry
	notifications *services.NotificationService
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "handler-secret", AccessTokenTTL: time.Hour})
	require.NoError(t, err)

	registry := realtime.NewRegistry()
	broadcaster := realtime.NewBroadcaster(registry)

	store, err := services.NewNotificationStore(db)
	require.NoError(t, err)
	notificationSvc, err := services.NewNotificationService(store, broadcaster, services.NotificationServiceConfig{})
	require.NoError(t, err)
	taskSvc, err := services.NewTaskService(db, notificationSvc)
	require.NoError(t, err)

	notificationHandler := NewNotificationHandler(notificationSvc)
	taskHandler := NewTaskHandler(taskSvc)

	r := gin.New()
	api := r.Group("/api", middleware.Auth(jwtSvc))
	api.GET("/notifications", notificationHandler.List)
	api.GET("/notifications/unread-count", notificationHandler.UnreadCount)
	api.POST("/notifications", notificationHandler.Create)
	api.POST("/notifications/read-all", notificationHandler.MarkAllRead)
	api.POST("/notifications/:id/read", notificationHandler.MarkRead)
	api.GET("/notifications/:id/qr", notificationHandler.QRCode)
	api.GET("/projects", taskHandler.ListProjects)
	api.POST("/projects", taskHandler.CreateProject)
	api.POST("/projects/:id/tasks", taskHandler.CreateTask)
	api.PATCH("/tasks/:id/status", taskHandler.UpdateStatus)
	api.POST("/tasks/:id/comments", taskHandler.AddComment)

	return &handlerEnv{
		t:             t,
		db:            db,
		router:        r,
		jwt:           jwtSvc,
		registry:      registry,
		notifications: notificationSvc,
	}
}

func (e *handlerEnv) token(userID, orgID, role string) string {
	e.t.Helper()
	token, err := e.jwt.GenerateAccessToken(iauth.AccessTokenInput{
		UserID:         userID,
		OrganizationID: orgID,
		Role:           role,
	})
	require.NoError(e.t, err)
	return token
}

func (e *handlerEnv) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
	Meta    *response.Meta      `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dest any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if dest != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, dest))
	}
	return env
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	env := decode(t, w, nil)
	require.False(t, env.Success)
	require.NotNil(t, env.Error)
	return env.Error.Code
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
}

