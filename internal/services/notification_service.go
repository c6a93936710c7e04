package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/innut/innut/internal/models"
	"github.com/innut/innut/internal/realtime"
	apperrors "github.com/innut/innut/pkg/errors"
	"github.com/innut/innut/pkg/logger"
	"github.com/innut/innut/pkg/metrics"
)

const (
	DefaultPageSize = 25
	MaxPageSize     = 100
)

// NotificationDTO represents the API-friendly notification payload.
type NotificationDTO struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Severity  string         `json:"severity"`
	ActionURL string         `json:"action_url,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	IsRead    bool           `json:"is_read"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	ReadAt    *time.Time     `json:"read_at,omitempty"`
}

// CreateNotificationInput defines attributes required to persist a notification.
type CreateNotificationInput struct {
	UserID    string
	Type      string
	Title     string
	Message   string
	Severity  string
	ActionURL string
	Metadata  map[string]any
}

// ListNotificationsInput defines filters for querying user notifications.
type ListNotificationsInput struct {
	UserID     string
	Limit      int
	Offset     int
	UnreadOnly bool
}

// NotificationPage is one page of a user's notifications.
type NotificationPage struct {
	Items  []NotificationDTO
	Limit  int
	Offset int
	Total  int64
	Unread int64
}

// ReadEventPayload is pushed after a single notification is marked read.
type ReadEventPayload struct {
	NotificationID string `json:"notification_id"`
}

// ReadAllEventPayload is pushed after mark-all-read.
type ReadAllEventPayload struct {
	Count int64 `json:"count"`
}

// Pusher delivers realtime events to a user's channels.
type Pusher interface {
	NotifyUser(userID string, msg realtime.Message) int
}

// NotificationServiceConfig tunes pagination.
type NotificationServiceConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

// NotificationService manages user in-app notifications and keeps connected
// clients in step with the persisted read state. The store is authoritative;
// pushes are best effort.
type NotificationService struct {
	store  *NotificationStore
	pusher Pusher
	cfg    NotificationServiceConfig
	log    *zap.Logger
}

// NewNotificationService constructs a NotificationService. pusher may be nil.
func NewNotificationService(store *NotificationStore, pusher Pusher, cfg NotificationServiceConfig) (*NotificationService, error) {
	if store == nil {
		return nil, errors.New("notification service: store is required")
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = MaxPageSize
	}
	if cfg.DefaultPageSize <= 0 || cfg.DefaultPageSize > cfg.MaxPageSize {
		cfg.DefaultPageSize = min(DefaultPageSize, cfg.MaxPageSize)
	}
	return &NotificationService{
		store:  store,
		pusher: pusher,
		cfg:    cfg,
		log:    logger.WithModule("notifications"),
	}, nil
}

// Notify persists a notification for its target user and pushes it to the
// user's open channels. It is the entry point for server-side domain events.
func (s *NotificationService) Notify(ctx context.Context, input CreateNotificationInput) (*NotificationDTO, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	notification, err := s.store.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	metrics.NotificationsCreated.WithLabelValues(notification.Type).Inc()

	dto := mapNotification(*notification)
	s.push(notification.UserID, realtime.Message{Event: realtime.EventNotification, Data: dto})
	return &dto, nil
}

// Create is the API variant of Notify. Only a super admin may target another user.
func (s *NotificationService) Create(ctx context.Context, actor Actor, input CreateNotificationInput) (*NotificationDTO, error) {
	if actor.UserID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	if !actor.CanActFor(strings.TrimSpace(input.UserID)) {
		return nil, apperrors.ErrForbidden
	}
	return s.Notify(ctx, input)
}

// Get returns a single notification visible to the actor.
func (s *NotificationService) Get(ctx context.Context, actor Actor, id string) (*NotificationDTO, error) {
	notification, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanActFor(notification.UserID) {
		return nil, apperrors.ErrForbidden
	}
	dto := mapNotification(*notification)
	return &dto, nil
}

// List returns a page of the target user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, actor Actor, input ListNotificationsInput) (*NotificationPage, error) {
	userID := defaultIfEmpty(strings.TrimSpace(input.UserID), actor.UserID)
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	if !actor.CanActFor(userID) {
		return nil, apperrors.ErrForbidden
	}

	limit := input.Limit
	if limit <= 0 {
		limit = s.cfg.DefaultPageSize
	}
	if limit > s.cfg.MaxPageSize {
		limit = s.cfg.MaxPageSize
	}
	offset := max(0, input.Offset)

	rows, err := s.store.ListForUser(ctx, userID, ListOptions{Limit: limit, Offset: offset, UnreadOnly: input.UnreadOnly})
	if err != nil {
		return nil, err
	}
	total, err := s.store.Count(ctx, userID, input.UnreadOnly)
	if err != nil {
		return nil, err
	}
	unread, err := s.store.Count(ctx, userID, true)
	if err != nil {
		return nil, err
	}

	return &NotificationPage{
		Items:  mapNotificationRows(rows),
		Limit:  limit,
		Offset: offset,
		Total:  total,
		Unread: unread,
	}, nil
}

// UnreadCount returns the number of unread notifications for userID.
func (s *NotificationService) UnreadCount(ctx context.Context, actor Actor, userID string) (int64, error) {
	userID = defaultIfEmpty(strings.TrimSpace(userID), actor.UserID)
	if userID == "" {
		return 0, apperrors.ErrUnauthorized
	}
	if !actor.CanActFor(userID) {
		return 0, apperrors.ErrForbidden
	}
	return s.store.Count(ctx, userID, true)
}

// MarkRead marks one notification read after checking the actor may touch it.
// Repeating the call is a no-op and pushes nothing.
func (s *NotificationService) MarkRead(ctx context.Context, actor Actor, notificationID string) (*NotificationDTO, error) {
	notificationID = strings.TrimSpace(notificationID)
	if notificationID == "" {
		return nil, apperrors.NewBadRequest("notification id is required")
	}

	notification, err := s.store.Get(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if !actor.CanActFor(notification.UserID) {
		return nil, apperrors.ErrForbidden
	}

	changed, err := s.store.MarkRead(ctx, notificationID)
	if err != nil {
		return nil, err
	}

	if changed {
		if notification, err = s.store.Get(ctx, notificationID); err != nil {
			return nil, err
		}
		s.push(notification.UserID, realtime.Message{
			Event: realtime.EventNotificationRead,
			Data:  ReadEventPayload{NotificationID: notificationID},
		})
	}

	dto := mapNotification(*notification)
	return &dto, nil
}

// MarkAllRead marks every unread notification of targetUserID read. An empty
// target means the actor's own notifications.
func (s *NotificationService) MarkAllRead(ctx context.Context, actor Actor, targetUserID string) (int64, error) {
	targetUserID = defaultIfEmpty(strings.TrimSpace(targetUserID), actor.UserID)
	if targetUserID == "" {
		return 0, apperrors.ErrUnauthorized
	}
	if !actor.CanActFor(targetUserID) {
		return 0, apperrors.ErrForbidden
	}

	count, err := s.store.MarkAllRead(ctx, targetUserID)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.push(targetUserID, realtime.Message{
			Event: realtime.EventNotificationReadAll,
			Data:  ReadAllEventPayload{Count: count},
		})
	}
	return count, nil
}

func (s *NotificationService) push(userID string, msg realtime.Message) {
	if s.pusher == nil {
		return
	}
	delivered := s.pusher.NotifyUser(userID, msg)
	s.log.Debug("pushed event",
		zap.String("user_id", userID),
		zap.String("event", msg.Event),
		zap.Int("channels", delivered),
	)
}

var allowedSeverities = map[string]struct{}{
	models.SeverityInfo:    {},
	models.SeveritySuccess: {},
	models.SeverityWarning: {},
	models.SeverityError:   {},
}

func validateCreateInput(input CreateNotificationInput) error {
	if strings.TrimSpace(input.UserID) == "" {
		return apperrors.NewBadRequest("user id is required")
	}
	if strings.TrimSpace(input.Type) == "" {
		return apperrors.NewBadRequest("type is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return apperrors.NewBadRequest("title is required")
	}
	if severity := strings.TrimSpace(input.Severity); severity != "" {
		if _, ok := allowedSeverities[severity]; !ok {
			return apperrors.NewBadRequest("unknown severity")
		}
	}
	return nil
}

func mapNotificationRows(rows []models.Notification) []NotificationDTO {
	items := make([]NotificationDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapNotification(row))
	}
	return items
}

func mapNotification(row models.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        row.ID,
		UserID:    row.UserID,
		Type:      row.Type,
		Title:     row.Title,
		Message:   row.Message,
		Severity:  defaultIfEmpty(row.Severity, models.SeverityInfo),
		ActionURL: row.ActionURL,
		Metadata:  decodeJSON(row.Metadata),
		IsRead:    row.IsRead,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
		ReadAt:    row.ReadAt,
	}
}

func decodeJSON(data datatypes.JSON) map[string]any {
	if len(data) == 0 {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}
