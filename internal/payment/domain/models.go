// Package domain contains the persisted payment state per restaurant
// and billing period. This is the only mutable state in the accounting
// engine; everything else is derived.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// PaymentStatus is the settlement state of one billing period.
// There is no reverse transition: settlement reversal would be a
// separate reconciliation flow, deliberately not modeled here.
type PaymentStatus string

const (
	PaymentStatusAwaiting PaymentStatus = "AWAITING_PAYMENT"
	PaymentStatusPaid     PaymentStatus = "PAID"
)

// PaymentRecord tracks settlement for one restaurant x period.
// Records materialize lazily: a period with no orders never creates one.
type PaymentRecord struct {
	ID           snowflake.ID  `gorm:"primaryKey" json:"id"`
	RestaurantID snowflake.ID  `gorm:"not null;index;uniqueIndex:ux_payment_record_period,priority:1" json:"restaurant_id"`
	PeriodKey    string        `gorm:"type:text;not null;uniqueIndex:ux_payment_record_period,priority:2" json:"period"`
	Status       PaymentStatus `gorm:"type:text;not null;default:'AWAITING_PAYMENT'" json:"status"`
	PaidAt       *time.Time    `gorm:"" json:"paid_at,omitempty"`
	CreatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (PaymentRecord) TableName() string { return "payment_records" }
