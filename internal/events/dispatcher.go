package events

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"pos-backoffice-service/internal/models"
	"pos-backoffice-service/internal/repository"
)

// NotificationSink is the delivery target for drained outbox rows
type NotificationSink interface {
	PublishNotification(ctx context.Context, notification *models.NotificationOutbox) error
}

// OutboxDispatcher drains the notification outbox in the background. Mutations
// only enqueue rows; delivery happens here, so a broker outage never fails an
// inventory write.
type OutboxDispatcher struct {
	repo      repository.Store
	sink      NotificationSink
	interval  time.Duration
	batchSize int
	logger    *logrus.Entry
}

// NewOutboxDispatcher creates a new OutboxDispatcher
func NewOutboxDispatcher(repo repository.Store, sink NotificationSink, interval time.Duration, batchSize int, logger *logrus.Logger) *OutboxDispatcher {
	log := logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	return &OutboxDispatcher{
		repo:      repo,
		sink:      sink,
		interval:  interval,
		batchSize: batchSize,
		logger:    log.WithField("component", "outbox-dispatcher"),
	}
}

// Run drains the outbox until the context is cancelled
func (d *OutboxDispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.logger.WithField("interval", d.interval).Info("Outbox dispatcher started")
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Outbox dispatcher stopped")
			return
		case <-ticker.C:
			d.drain(ctx)
		}
	}
}

func (d *OutboxDispatcher) drain(ctx context.Context) {
	pending, err := d.repo.PendingNotifications(ctx, d.batchSize)
	if err != nil {
		d.logger.WithError(err).Error("Failed to load pending notifications")
		return
	}

	for i := range pending {
		notification := &pending[i]
		if err := d.sink.PublishNotification(ctx, notification); err != nil {
			if err := d.repo.BumpNotificationAttempts(ctx, notification.ID); err != nil {
				d.logger.WithError(err).WithField("notificationId", notification.ID).
					Error("Failed to record delivery attempt")
			}
			continue
		}
		if err := d.repo.MarkNotificationPublished(ctx, notification.ID); err != nil {
			d.logger.WithError(err).WithField("notificationId", notification.ID).
				Error("Failed to mark notification published")
		}
	}
}
