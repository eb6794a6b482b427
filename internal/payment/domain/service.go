package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/platefee/internal/period"
)

type Service interface {
	// GetStatus returns the record for the period, or a synthetic
	// AWAITING_PAYMENT record when none exists yet.
	GetStatus(ctx context.Context, restaurantID snowflake.ID, key period.Key) (PaymentRecord, error)

	// ListByRestaurant returns all persisted records for a restaurant.
	ListByRestaurant(ctx context.Context, restaurantID snowflake.ID) ([]PaymentRecord, error)

	// MarkPaid transitions the period to PAID. Idempotent: marking an
	// already-paid period reports transitioned=false and leaves PaidAt
	// untouched. Concurrent calls collapse into one effective transition.
	MarkPaid(ctx context.Context, restaurantID snowflake.ID, key period.Key) (record PaymentRecord, transitioned bool, err error)
}

var (
	ErrInvalidRestaurant = errors.New("invalid_restaurant")
	ErrInvalidPeriod     = errors.New("invalid_period")

	// ErrStoreUnavailable wraps transient store failures on the money
	// mutation path; callers should retry.
	ErrStoreUnavailable = errors.New("store_unavailable")
)
