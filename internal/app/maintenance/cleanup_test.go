package maintenance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/innut/innut/internal/cache"
	testutil "github.com/innut/innut/internal/database/testutil"
	"github.com/innut/innut/internal/models"
	"github.com/innut/innut/internal/services"
)

func seedNotification(t *testing.T, db *gorm.DB, store *services.NotificationStore, createdAt time.Time, read bool) string {
	t.Helper()
	row, err := store.Create(context.Background(), services.CreateNotificationInput{
		UserID: "u1",
		Type:   "task.assigned",
		Title:  "Pour slab",
	})
	require.NoError(t, err)
	if read {
		_, err = store.MarkRead(context.Background(), row.ID)
		require.NoError(t, err)
	}
	require.NoError(t, db.Model(&models.Notification{}).Where("id = ?", row.ID).Update("created_at", createdAt).Error)
	return row.ID
}

func TestCleanerRunOnce(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	store, err := services.NewNotificationStore(db)
	require.NoError(t, err)

	now := time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)
	oldRead := seedNotification(t, db, store, now.AddDate(0, 0, -40), true)
	oldUnread := seedNotification(t, db, store, now.AddDate(0, 0, -40), false)
	recentRead := seedNotification(t, db, store, now.AddDate(0, 0, -5), true)

	require.NoError(t, db.Create(&models.CacheEntry{Key: "ratelimit:expired", Value: 3, ExpiresAt: time.Now().Add(-time.Hour)}).Error)
	require.NoError(t, db.Create(&models.CacheEntry{Key: "ratelimit:live", Value: 1, ExpiresAt: time.Now().Add(time.Hour)}).Error)

	c := NewCleaner(store, cache.NewDatabaseStore(db),
		WithNow(func() time.Time { return now }),
		WithRetentionDays(30),
		WithCron(cron.New(cron.WithLogger(cron.DiscardLogger))),
	)
	require.NoError(t, c.RunOnce(context.Background()))

	var ids []string
	require.NoError(t, db.Model(&models.Notification{}).Order("id").Pluck("id", &ids).Error)
	require.ElementsMatch(t, []string{oldUnread, recentRead}, ids)
	require.NotContains(t, ids, oldRead)

	var keys []string
	require.NoError(t, db.Model(&models.CacheEntry{}).Pluck("key", &keys).Error)
	require.Equal(t, []string{"ratelimit:live"}, keys)
}

func TestCleanerRetentionDisabled(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	store, err := services.NewNotificationStore(db)
	require.NoError(t, err)

	now := time.Now().UTC()
	seedNotification(t, db, store, now.AddDate(-1, 0, 0), true)

	c := NewCleaner(store, nil, WithRetentionDays(0))
	removed, err := c.PurgeNotifications(context.Background())
	require.NoError(t, err)
	require.Zero(t, removed)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

type failingPurger struct{ err error }

func (f failingPurger) PurgeReadBefore(context.Context, time.Time) (int64, error) { return 0, f.err }

func (f failingPurger) PurgeExpired(context.Context) (int64, error) { return 0, f.err }

func TestCleanerRunOnceCollectsErrors(t *testing.T) {
	notifErr := errors.New("notifications down")
	cacheErr := errors.New("cache down")

	c := NewCleaner(failingPurger{err: notifErr}, failingPurger{err: cacheErr})
	err := c.RunOnce(context.Background())
	require.ErrorIs(t, err, notifErr)
	require.ErrorIs(t, err, cacheErr)
}

func TestCleanerStartRejectsBadSchedule(t *testing.T) {
	c := NewCleaner(failingPurger{}, nil, WithNotificationSchedule("not a schedule"))
	require.Error(t, c.Start())
}

func TestCleanerStartStop(t *testing.T) {
	c := NewCleaner(failingPurger{}, failingPurger{})
	require.NoError(t, c.Start())

	select {
	case <-c.Stop().Done():
	case <-time.After(time.Second):
		t.Fatal("cron did not stop")
	}
}
