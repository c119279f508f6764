package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"splitdine-admin.backend/internal/domain/entities"
	domainerrors "splitdine-admin.backend/internal/domain/errors"
	"splitdine-admin.backend/pkg/logger"
)

// DefaultPOSPollInterval is used when no interval is configured
const DefaultPOSPollInterval = 10 * time.Second

type restaurantLister interface {
	List(ctx context.Context) ([]*entities.Restaurant, error)
}

type onboardingReader interface {
	Get(ctx context.Context, restaurantID int) (*entities.OnboardingRecord, error)
}

// POSStatusPoller re-reads the onboarding record of every restaurant still
// onboarding on a fixed interval and caches its POS connection status.
// Results may be up to one interval stale.
type POSStatusPoller struct {
	restaurants restaurantLister
	onboarding  onboardingReader
	interval    time.Duration
	stop        chan struct{}
	stopOnce    sync.Once

	mu       sync.RWMutex
	statuses map[int]entities.POSStatus
}

// NewPOSStatusPoller creates a poller
func NewPOSStatusPoller(restaurants restaurantLister, onboarding onboardingReader, interval time.Duration) *POSStatusPoller {
	if interval <= 0 {
		interval = DefaultPOSPollInterval
	}
	return &POSStatusPoller{
		restaurants: restaurants,
		onboarding:  onboarding,
		interval:    interval,
		stop:        make(chan struct{}),
		statuses:    make(map[int]entities.POSStatus),
	}
}

// Start polls until ctx is cancelled or Stop is called
func (j *POSStatusPoller) Start(ctx context.Context) {
	logger.Info(ctx, "Starting POS status poller", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "POS status poller stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "POS status poller stopped")
			return
		case <-ticker.C:
			j.poll(ctx)
		}
	}
}

// Stop ends the polling loop
func (j *POSStatusPoller) Stop() {
	j.stopOnce.Do(func() { close(j.stop) })
}

// Status returns the last polled status of a restaurant
func (j *POSStatusPoller) Status(restaurantID int) (entities.POSStatus, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	s, ok := j.statuses[restaurantID]
	return s, ok
}

func (j *POSStatusPoller) poll(ctx context.Context) {
	restaurants, err := j.restaurants.List(ctx)
	if err != nil {
		logger.Error(ctx, "Error listing restaurants for POS poll", zap.Error(err))
		return
	}

	now := time.Now()
	next := make(map[int]entities.POSStatus)
	for _, r := range restaurants {
		if r.IsOnboarded || r.IsArchived() {
			continue
		}

		record, err := j.onboarding.Get(ctx, r.ID)
		if errors.Is(err, domainerrors.ErrNotFound) {
			continue
		}
		if err != nil {
			logger.Warn(logger.WithRestaurant(ctx, r.ID), "Error reading onboarding record for POS poll", zap.Error(err))
			continue
		}

		next[r.ID] = entities.POSStatus{
			RestaurantID: r.ID,
			Configured:   record.POSData.Configured(),
			Active:       record.POSData.IsActive,
			POSType:      record.POSData.POSType,
			Environment:  record.POSData.Environment,
			CheckedAt:    now,
		}
	}

	j.mu.Lock()
	j.statuses = next
	j.mu.Unlock()
}
