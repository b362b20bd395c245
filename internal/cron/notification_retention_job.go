package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/ovenlight/bakeshop-backend/pkg/logger"
	"github.com/ovenlight/bakeshop-backend/pkg/metrics"
)

const (
	defaultNotificationTTL = 90 * 24 * time.Hour

	// Unread rows survive the normal TTL but are still purged once they
	// are this many multiples of the TTL old.
	hardPurgeFactor = 4
)

// NotificationRetentionJobParams configure the retention job.
type NotificationRetentionJobParams struct {
	Logger     *logger.Logger
	Repository notificationRetentionRepo
	Metrics    *metrics.JobMetrics
	TTL        time.Duration
}

type notificationRetentionRepo interface {
	DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewNotificationRetentionJob builds the job that prunes read notifications
// past their retention window. Unread notifications only go once they pass
// the hard purge cutoff.
func NewNotificationRetentionJob(params NotificationRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = defaultNotificationTTL
	}
	return &notificationRetentionJob{
		logg:    params.Logger,
		repo:    params.Repository,
		metrics: params.Metrics,
		ttl:     ttl,
		now:     time.Now,
	}, nil
}

type notificationRetentionJob struct {
	logg    *logger.Logger
	repo    notificationRetentionRepo
	metrics *metrics.JobMetrics
	ttl     time.Duration
	now     func() time.Time
}

func (j *notificationRetentionJob) Name() string { return "notification-retention" }

func (j *notificationRetentionJob) Run(ctx context.Context) error {
	var errs []error
	if err := j.pruneRead(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := j.hardPurge(ctx); err != nil {
		errs = append(errs, err)
	}
	return multierr.Combine(errs...)
}

func (j *notificationRetentionJob) pruneRead(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.ttl)
	deleted, err := j.repo.DeleteReadOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("prune read notifications: %w", err)
	}
	j.metrics.AddRowsDeleted(j.Name(), deleted)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"ttl_hours":    j.ttl.Hours(),
		"rows_deleted": deleted,
	})
	j.logg.Info(logCtx, "read notifications pruned")
	return nil
}

func (j *notificationRetentionJob) hardPurge(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-hardPurgeFactor * j.ttl)
	deleted, err := j.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("hard purge notifications: %w", err)
	}
	j.metrics.AddRowsDeleted(j.Name(), deleted)
	if deleted > 0 {
		logCtx := j.logg.WithFields(ctx, map[string]any{
			"cutoff":       cutoff,
			"rows_deleted": deleted,
		})
		j.logg.Info(logCtx, "stale notifications purged")
	}
	return nil
}
