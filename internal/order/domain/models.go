// Package domain contains persistence models for customer orders.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// OrderStatus represents order lifecycle states. Transitions beyond
// creation are managed by the ordering subsystem, not here.
type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "PLACED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Order is an immutable completed purchase. Amounts are minor units.
// Invariant: Total = max(0, OriginalTotal - CouponDiscount).
type Order struct {
	ID             snowflake.ID      `gorm:"primaryKey" json:"id"`
	RestaurantID   snowflake.ID      `gorm:"not null;index" json:"restaurant_id"`
	Status         OrderStatus       `gorm:"type:text;not null;default:'PLACED'" json:"status"`
	Total          int64             `gorm:"not null" json:"total"`
	OriginalTotal  int64             `gorm:"not null" json:"original_total"`
	CouponDiscount int64             `gorm:"not null;default:0" json:"coupon_discount"`
	CouponCode     string            `gorm:"type:text" json:"coupon_code,omitempty"`
	PlacedAt       time.Time         `gorm:"index" json:"placed_at"`
	Metadata       datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Order) TableName() string { return "orders" }
