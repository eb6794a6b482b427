package domain

import (
	"context"
	"errors"
)

type RecordOrderRequest struct {
	RestaurantID   string `json:"restaurant_id"`
	OriginalTotal  int64  `json:"original_total"`
	CouponDiscount int64  `json:"coupon_discount"`
	CouponCode     string `json:"coupon_code"`
	PlacedAt       string `json:"placed_at"` // RFC3339; empty means now
}

type Service interface {
	Record(ctx context.Context, req RecordOrderRequest) (Order, error)
	ListByRestaurant(ctx context.Context, restaurantID string) ([]Order, error)
}

var (
	ErrInvalidRestaurant = errors.New("invalid_restaurant")
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrInvalidPlacedAt   = errors.New("invalid_placed_at")
)
