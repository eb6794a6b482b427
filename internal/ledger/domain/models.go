// Package domain defines the per-period commission ledger. Ledgers are
// recomputed on demand from the order set and never independently
// mutated; the figures here are the platform's source of truth for what
// a restaurant owes.
package domain

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/platefee/internal/period"
)

// PeriodLedger aggregates one restaurant x one billing period.
// Amounts are minor units.
type PeriodLedger struct {
	RestaurantID snowflake.ID `json:"restaurant_id"`
	Period       period.Key   `json:"period"`
	OrderCount   int          `json:"order_count"`

	// GrossRevenue is the sum of pre-discount order totals.
	GrossRevenue int64 `json:"gross_revenue"`
	// CouponsUsed is the sum of coupon discounts.
	CouponsUsed int64 `json:"coupons_used"`
	// NetCommission is the platform take on revenue net of coupons,
	// rounded half-up to whole minor units once per ledger. Never
	// negative: coupon-funded orders do not inflate the platform take,
	// and corrupt discounts do not turn it into a payout.
	NetCommission int64 `json:"net_commission"`

	// ExcludedOrders counts orders dropped for data-quality reasons
	// (missing or malformed timestamps).
	ExcludedOrders int `json:"excluded_orders,omitempty"`
}

// CommissionSummary sums a restaurant's unpaid periods. This is the
// "what you currently owe" figure, distinct from lifetime totals.
type CommissionSummary struct {
	RestaurantID      snowflake.ID `json:"restaurant_id"`
	GrossRevenue      int64        `json:"gross_revenue"`
	CouponsUsed       int64        `json:"coupons_used"`
	PendingCommission int64        `json:"pending_commission"`
	UnpaidPeriods     []period.Key `json:"unpaid_periods"`
}
