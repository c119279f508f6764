package messaging

import (
	"context"

	"go.uber.org/zap"
	domainRepos "splitdine-admin.backend/internal/domain/repositories"
	"splitdine-admin.backend/pkg/logger"
)

// LogPublisher writes lifecycle events to the structured log. Used when no
// broker is configured.
type LogPublisher struct{}

var _ domainRepos.EventPublisher = LogPublisher{}

// NewLogPublisher creates a log publisher
func NewLogPublisher() LogPublisher {
	return LogPublisher{}
}

// Publish logs the event
func (LogPublisher) Publish(ctx context.Context, event domainRepos.LifecycleEvent) error {
	logger.Info(ctx, "Lifecycle event",
		zap.String("subject", event.Subject),
		zap.Int("restaurant_id", event.RestaurantID),
		zap.String("name", event.Name),
		zap.Int("staff_count", event.StaffCount),
		zap.Time("occurred_at", event.OccurredAt),
	)
	return nil
}

// Close is a no-op
func (LogPublisher) Close() error {
	return nil
}
