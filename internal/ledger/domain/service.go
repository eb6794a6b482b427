package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	orderdomain "github.com/smallbiznis/platefee/internal/order/domain"
	"github.com/smallbiznis/platefee/internal/period"
)

type Service interface {
	// ComputeLedger folds the orders belonging to the restaurant and
	// period into a PeriodLedger. Orders outside the period or owned by
	// other restaurants are ignored, so callers may pass unfiltered sets.
	ComputeLedger(ctx context.Context, restaurantID snowflake.ID, key period.Key, orders []orderdomain.Order) PeriodLedger

	// ComputeAggregate sums gross revenue, coupons and commission across
	// the given unpaid periods only.
	ComputeAggregate(ctx context.Context, restaurantID snowflake.ID, orders []orderdomain.Order, unpaid []period.Key) CommissionSummary
}
