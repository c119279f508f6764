package entities

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// RestaurantStatus is the legacy status flag carried on restaurant rows
type RestaurantStatus string

const (
	RestaurantStatusPending RestaurantStatus = "pending"
	RestaurantStatusActive  RestaurantStatus = "active"
	RestaurantStatusDeleted RestaurantStatus = "deleted"
)

// Restaurant represents a partner restaurant
type Restaurant struct {
	ID       int              `json:"id"`
	Name     string           `json:"name"`
	Email    string           `json:"email"`
	Phone    string           `json:"phone"`
	Location string           `json:"location"`
	Cuisine  string           `json:"cuisine"`
	Status   RestaurantStatus `json:"status"`

	Revenue      float64 `json:"revenue"`
	Tables       int     `json:"tables"`
	TotalOrders  int     `json:"totalOrders"`
	ActiveTables int     `json:"activeTables"`
	TodayRevenue float64 `json:"todayRevenue"`

	IsOnboarded      bool         `json:"isOnboarded"`
	OnboardingStep   int          `json:"onboardingStep"`
	GoogleReviewLink string       `json:"googleReviewLink,omitempty"`
	QRStandConfig    *QRStandData `json:"qrStandConfig,omitempty"`

	Deleted   bool      `json:"deleted"`
	DeletedAt null.Time `json:"deletedAt"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsActive reports whether the restaurant is live for customers.
func (r *Restaurant) IsActive() bool {
	return r.IsOnboarded && !r.Deleted
}

// IsArchived reports whether the restaurant was soft-deleted.
func (r *Restaurant) IsArchived() bool {
	return r.Deleted
}

// Listed reports whether the restaurant belongs in the active listing.
func (r *Restaurant) Listed() bool {
	return !r.Deleted && r.Status != RestaurantStatusDeleted
}

// CreateRestaurantInput represents input for registering a restaurant
type CreateRestaurantInput struct {
	Name     string  `json:"name" binding:"required,min=2,max=255"`
	Email    string  `json:"email" binding:"omitempty,email"`
	Phone    string  `json:"phone"`
	Location string  `json:"location"`
	Cuisine  string  `json:"cuisine"`
	Revenue  float64 `json:"revenue"`
	Tables   int     `json:"tables" binding:"gte=0"`
}

// RestaurantPatch is a shallow partial update; nil fields are left untouched.
type RestaurantPatch struct {
	Name             *string           `json:"name,omitempty"`
	Email            *string           `json:"email,omitempty"`
	Phone            *string           `json:"phone,omitempty"`
	Location         *string           `json:"location,omitempty"`
	Cuisine          *string           `json:"cuisine,omitempty"`
	Status           *RestaurantStatus `json:"status,omitempty"`
	Revenue          *float64          `json:"revenue,omitempty"`
	Tables           *int              `json:"tables,omitempty"`
	IsOnboarded      *bool             `json:"isOnboarded,omitempty"`
	OnboardingStep   *int              `json:"onboardingStep,omitempty"`
	GoogleReviewLink *string           `json:"googleReviewLink,omitempty"`
	QRStandConfig    *QRStandData      `json:"qrStandConfig,omitempty"`
}

// Apply merges the patch into the restaurant.
func (p RestaurantPatch) Apply(r *Restaurant) {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Email != nil {
		r.Email = *p.Email
	}
	if p.Phone != nil {
		r.Phone = *p.Phone
	}
	if p.Location != nil {
		r.Location = *p.Location
	}
	if p.Cuisine != nil {
		r.Cuisine = *p.Cuisine
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.Revenue != nil {
		r.Revenue = *p.Revenue
	}
	if p.Tables != nil {
		r.Tables = *p.Tables
	}
	if p.IsOnboarded != nil {
		r.IsOnboarded = *p.IsOnboarded
	}
	if p.OnboardingStep != nil {
		r.OnboardingStep = *p.OnboardingStep
	}
	if p.GoogleReviewLink != nil {
		r.GoogleReviewLink = *p.GoogleReviewLink
	}
	if p.QRStandConfig != nil {
		cfg := *p.QRStandConfig
		r.QRStandConfig = &cfg
	}
}

// DeleteOutcome describes which branch a delete request took
type DeleteOutcome string

const (
	DeleteOutcomeNone     DeleteOutcome = "none"
	DeleteOutcomePurged   DeleteOutcome = "purged"
	DeleteOutcomeArchived DeleteOutcome = "archived"
)

// PermanentDeleteInput is the operator confirmation for irreversible deletion
type PermanentDeleteInput struct {
	ConfirmName string `json:"confirmName" binding:"required"`
	Password    string `json:"password" binding:"required"`
}
