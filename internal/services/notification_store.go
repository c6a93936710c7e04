package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/innut/innut/internal/models"
	apperrors "github.com/innut/innut/pkg/errors"
)

// ListOptions narrows a notification listing.
type ListOptions struct {
	Limit      int
	Offset     int
	UnreadOnly bool
}

// NotificationStore persists notifications. It performs no authorization.
type NotificationStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewNotificationStore constructs a NotificationStore.
func NewNotificationStore(db *gorm.DB) (*NotificationStore, error) {
	if db == nil {
		return nil, errors.New("notification store: db is required")
	}
	return &NotificationStore{db: db, now: time.Now}, nil
}

// Create persists a new unread notification.
func (s *NotificationStore) Create(ctx context.Context, input CreateNotificationInput) (*models.Notification, error) {
	ctx = ensureContext(ctx)

	notification := models.Notification{
		UserID:    strings.TrimSpace(input.UserID),
		Type:      strings.TrimSpace(input.Type),
		Title:     strings.TrimSpace(input.Title),
		Message:   strings.TrimSpace(input.Message),
		Severity:  strings.TrimSpace(defaultIfEmpty(input.Severity, models.SeverityInfo)),
		ActionURL: strings.TrimSpace(input.ActionURL),
	}
	notification.CreatedAt = s.now().UTC()
	notification.UpdatedAt = notification.CreatedAt

	if len(input.Metadata) > 0 {
		data, err := json.Marshal(input.Metadata)
		if err != nil {
			return nil, apperrors.NewBadRequest("metadata must be a JSON object").WithInternal(err)
		}
		notification.Metadata = datatypes.JSON(data)
	}

	if err := s.db.WithContext(ctx).Create(&notification).Error; err != nil {
		return nil, persistenceError("notification store: create", err)
	}
	return &notification, nil
}

// Get loads one notification by id.
func (s *NotificationStore) Get(ctx context.Context, id string) (*models.Notification, error) {
	ctx = ensureContext(ctx)
	var notification models.Notification
	err := s.db.WithContext(ctx).Take(&notification, "id = ?", strings.TrimSpace(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, persistenceError("notification store: get", err)
	}
	return &notification, nil
}

// ListForUser returns notifications newest first. An unknown user yields an
// empty slice.
func (s *NotificationStore) ListForUser(ctx context.Context, userID string, opts ListOptions) ([]models.Notification, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC")
	if opts.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	rows := make([]models.Notification, 0)
	if err := query.Find(&rows).Error; err != nil {
		return nil, persistenceError("notification store: list", err)
	}
	return rows, nil
}

// Count returns the number of notifications owned by userID.
func (s *NotificationStore) Count(ctx context.Context, userID string, unreadOnly bool) (int64, error) {
	ctx = ensureContext(ctx)
	query := s.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, persistenceError("notification store: count", err)
	}
	return total, nil
}

// MarkRead flips a notification to read. It reports whether the row changed;
// marking an already read notification is a no-op.
func (s *NotificationStore) MarkRead(ctx context.Context, id string) (bool, error) {
	ctx = ensureContext(ctx)
	now := s.now().UTC()

	result := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND is_read = ?", id, false).
		Updates(map[string]any{
			"is_read":    true,
			"read_at":    now,
			"updated_at": now,
		})
	if result.Error != nil {
		return false, persistenceError("notification store: mark read", result.Error)
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Notification{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, persistenceError("notification store: mark read", err)
	}
	if count == 0 {
		return false, apperrors.ErrNotFound
	}
	return false, nil
}

// MarkAllRead flips every unread notification owned by userID and returns how
// many changed.
func (s *NotificationStore) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	ctx = ensureContext(ctx)
	now := s.now().UTC()

	result := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]any{
			"is_read":    true,
			"read_at":    now,
			"updated_at": now,
		})
	if result.Error != nil {
		return 0, persistenceError("notification store: mark all read", result.Error)
	}
	return result.RowsAffected, nil
}

// PurgeReadBefore deletes read notifications created before cutoff. Unread
// notifications are kept regardless of age.
func (s *NotificationStore) PurgeReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx = ensureContext(ctx)
	result := s.db.WithContext(ctx).
		Where("is_read = ? AND created_at < ?", true, cutoff.UTC()).
		Delete(&models.Notification{})
	if result.Error != nil {
		return 0, fmt.Errorf("notification store: purge: %w", result.Error)
	}
	return result.RowsAffected, nil
}
