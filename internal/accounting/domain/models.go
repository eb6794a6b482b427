// Package domain defines the presentation-ready accounting projections
// consumed by the admin and restaurant back-office surfaces.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	penaltydomain "github.com/smallbiznis/platefee/internal/penalty/domain"
	"github.com/smallbiznis/platefee/internal/period"
)

// InvoiceStatus is the tri-state presentation label for an invoice row.
type InvoiceStatus string

const (
	InvoiceStatusPaid     InvoiceStatus = "PAID"
	InvoiceStatusAwaiting InvoiceStatus = "AWAITING_PAYMENT"
	InvoiceStatusOverdue  InvoiceStatus = "OVERDUE"
)

// Invoice joins period, ledger and payment state into one self-contained
// row; consumers never need a further lookup. Derived, never stored.
type Invoice struct {
	ID            string        `json:"id"`
	RestaurantID  snowflake.ID  `json:"restaurant_id"`
	Period        period.Key    `json:"period"`
	PeriodStart   time.Time     `json:"period_start"`
	PeriodEnd     time.Time     `json:"period_end"`
	OrderCount    int           `json:"order_count"`
	GrossRevenue  int64         `json:"gross_revenue"`
	CouponsUsed   int64         `json:"coupons_used"`
	NetCommission int64         `json:"net_commission"`
	Status        InvoiceStatus `json:"status"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`
}

// AccountingStatus is the per-restaurant enforcement view, recomputed on
// every query.
type AccountingStatus struct {
	RestaurantID  snowflake.ID                  `json:"restaurant_id"`
	UnpaidPeriods []penaltydomain.UnpaidPeriod  `json:"unpaid_periods"`
	TotalPending  int64                         `json:"total_pending"`
	PenaltyLevel  penaltydomain.Level           `json:"penalty_level"`
	LevelName     string                        `json:"penalty_level_name"`
	LockedOut     bool                          `json:"locked_out"`
	EvaluatedAt   time.Time                     `json:"evaluated_at"`
}
