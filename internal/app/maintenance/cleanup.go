package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/innut/innut/pkg/logger"
	"github.com/innut/innut/pkg/metrics"
)

const (
	defaultRetentionDays     = 90
	defaultNotificationSpec  = "@daily"
	defaultCacheSpec         = "@hourly"
	jobNotificationRetention = "notification_retention"
	jobCacheExpiry           = "cache_expiry"
)

// NotificationPurger deletes read notifications created before a cutoff.
type NotificationPurger interface {
	PurgeReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// CachePurger drops expired shared counters.
type CachePurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Cleaner coordinates background maintenance: enforcing notification
// retention and pruning expired database cache entries.
type Cleaner struct {
	notifications NotificationPurger
	cache         CachePurger
	cron          *cron.Cron
	now           func() time.Time
	log           *zap.Logger
	retention     int

	notificationSchedule string
	cacheSchedule        string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for retention cutoffs.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithRetentionDays sets how long read notifications are kept. Zero or a
// negative value disables the purge.
func WithRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		cleaner.retention = days
	}
}

// WithNotificationSchedule overrides the cron specification for notification retention.
func WithNotificationSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.notificationSchedule = spec
		}
	}
}

// WithCacheSchedule overrides the cron specification for cache expiry.
func WithCacheSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.cacheSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. A nil dependency
// skips the corresponding job.
func NewCleaner(notifications NotificationPurger, cachePurger CachePurger, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		notifications:        notifications,
		cache:                cachePurger,
		now:                  time.Now,
		retention:            defaultRetentionDays,
		notificationSchedule: defaultNotificationSpec,
		cacheSchedule:        defaultCacheSpec,
		log:                  logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

func (c *Cleaner) retentionEnabled() bool {
	return c.notifications != nil && c.retention > 0
}

// Start registers cleanup jobs with the cron scheduler and launches it if at least one job is enabled.
func (c *Cleaner) Start() error {
	scheduled := false

	if c.retentionEnabled() {
		if _, err := c.cron.AddFunc(c.notificationSchedule, func() {
			if _, err := c.PurgeNotifications(context.Background()); err != nil {
				c.log.Warn("notification retention failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
		scheduled = true
	}

	if c.cache != nil {
		if _, err := c.cron.AddFunc(c.cacheSchedule, func() {
			if _, err := c.PurgeCache(context.Background()); err != nil {
				c.log.Warn("cache cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
		scheduled = true
	}

	if scheduled {
		c.cron.Start()
	}
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// PurgeNotifications deletes read notifications older than the retention window.
func (c *Cleaner) PurgeNotifications(ctx context.Context) (int64, error) {
	if !c.retentionEnabled() {
		return 0, nil
	}
	cutoff := c.now().UTC().AddDate(0, 0, -c.retention)
	removed, err := c.notifications.PurgeReadBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	metrics.MaintenancePurged.WithLabelValues(jobNotificationRetention).Add(float64(removed))
	if removed > 0 {
		c.log.Info("purged read notifications", zap.Int64("count", removed), zap.Time("cutoff", cutoff))
	}
	return removed, nil
}

// PurgeCache removes expired database cache entries.
func (c *Cleaner) PurgeCache(ctx context.Context) (int64, error) {
	if c.cache == nil {
		return 0, nil
	}
	removed, err := c.cache.PurgeExpired(ctx)
	if err != nil {
		return 0, err
	}
	metrics.MaintenancePurged.WithLabelValues(jobCacheExpiry).Add(float64(removed))
	return removed, nil
}

// RunOnce executes all configured cleanup routines sequentially. Primarily used in tests
// and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error
	if _, err := c.PurgeNotifications(ctx); err != nil {
		errs = multierr.Append(errs, err)
	}
	if _, err := c.PurgeCache(ctx); err != nil {
		errs = multierr.Append(errs, err)
	}
	return errs
}
