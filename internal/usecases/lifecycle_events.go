package usecases

import (
	"context"
	"time"

	"go.uber.org/zap"
	"splitdine-admin.backend/internal/domain/entities"
	"splitdine-admin.backend/internal/domain/repositories"
	"splitdine-admin.backend/pkg/logger"
	"splitdine-admin.backend/pkg/metrics"
)

// publishLifecycle emits a lifecycle event after its transition committed.
// Delivery failures are logged and counted; they never fail the transition.
func publishLifecycle(ctx context.Context, pub repositories.EventPublisher, m *metrics.Metrics, subject string, r *entities.Restaurant, staffCount int) {
	if pub == nil || r == nil {
		return
	}
	event := repositories.LifecycleEvent{
		RestaurantID: r.ID,
		Name:         r.Name,
		Subject:      subject,
		OccurredAt:   time.Now().UTC(),
		StaffCount:   staffCount,
	}
	if err := pub.Publish(ctx, event); err != nil {
		m.PublishFailure()
		logger.Warn(ctx, "Failed to publish lifecycle event",
			zap.String("subject", subject),
			zap.Int("restaurant_id", r.ID),
			zap.Error(err),
		)
	}
}
