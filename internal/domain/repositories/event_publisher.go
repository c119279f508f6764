package repositories

import (
	"context"
	"time"
)

// Lifecycle event subjects
const (
	SubjectRestaurantCreated   = "restaurant.created"
	SubjectRestaurantArchived  = "restaurant.archived"
	SubjectRestaurantPurged    = "restaurant.purged"
	SubjectRestaurantDeleted   = "restaurant.deleted_permanently"
	SubjectRestaurantRestored  = "restaurant.restored"
	SubjectRestaurantOnboarded = "restaurant.onboarded"
)

// LifecycleEvent is published on every registry transition
type LifecycleEvent struct {
	RestaurantID int       `json:"restaurantId"`
	Name         string    `json:"name"`
	Subject      string    `json:"subject"`
	OccurredAt   time.Time `json:"occurredAt"`
	StaffCount   int       `json:"staffCount,omitempty"`
}

// EventPublisher publishes lifecycle events
type EventPublisher interface {
	Publish(ctx context.Context, event LifecycleEvent) error
	Close() error
}
