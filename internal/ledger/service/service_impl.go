package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/platefee/internal/config"
	ledgerdomain "github.com/smallbiznis/platefee/internal/ledger/domain"
	orderdomain "github.com/smallbiznis/platefee/internal/order/domain"
	"github.com/smallbiznis/platefee/internal/period"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log    *zap.Logger
	Policy *config.EnforcementConfigHolder
}

type Service struct {
	log    *zap.Logger
	policy *config.EnforcementConfigHolder
}

func NewService(p Params) ledgerdomain.Service {
	return &Service{
		log:    p.Log.Named("ledger.service"),
		policy: p.Policy,
	}
}

func (s *Service) ComputeLedger(ctx context.Context, restaurantID snowflake.ID, key period.Key, orders []orderdomain.Order) ledgerdomain.PeriodLedger {
	_ = ctx

	out := ledgerdomain.PeriodLedger{
		RestaurantID: restaurantID,
		Period:       key,
	}

	for _, order := range orders {
		if order.RestaurantID != restaurantID {
			continue
		}
		if order.PlacedAt.IsZero() {
			// Data-quality error: excluded rather than zero-dated so one
			// bad record cannot blank out the whole ledger.
			out.ExcludedOrders++
			s.log.Warn("order excluded from ledger: missing timestamp",
				zap.String("order_id", order.ID.String()),
				zap.String("restaurant_id", restaurantID.String()),
			)
			continue
		}
		if period.Of(order.PlacedAt) != key {
			continue
		}

		out.OrderCount++
		out.GrossRevenue += grossOf(order)
		out.CouponsUsed += couponOf(order)
	}

	out.NetCommission = s.commission(out.GrossRevenue, out.CouponsUsed, restaurantID, key)
	return out
}

func (s *Service) ComputeAggregate(ctx context.Context, restaurantID snowflake.ID, orders []orderdomain.Order, unpaid []period.Key) ledgerdomain.CommissionSummary {
	summary := ledgerdomain.CommissionSummary{
		RestaurantID:  restaurantID,
		UnpaidPeriods: make([]period.Key, 0, len(unpaid)),
	}

	for _, key := range unpaid {
		ledger := s.ComputeLedger(ctx, restaurantID, key, orders)
		if ledger.OrderCount == 0 {
			continue
		}
		summary.GrossRevenue += ledger.GrossRevenue
		summary.CouponsUsed += ledger.CouponsUsed
		summary.PendingCommission += ledger.NetCommission
		summary.UnpaidPeriods = append(summary.UnpaidPeriods, key)
	}

	return summary
}

// commission applies the platform rate to revenue net of coupons,
// clamped to zero, rounding half-up exactly once to avoid per-order
// drift.
func (s *Service) commission(gross, coupons int64, restaurantID snowflake.ID, key period.Key) int64 {
	base := gross - coupons
	if base < 0 {
		s.log.Warn("coupon total exceeds gross revenue, commission clamped to zero",
			zap.String("restaurant_id", restaurantID.String()),
			zap.String("period", string(key)),
			zap.Int64("gross_revenue", gross),
			zap.Int64("coupons_used", coupons),
		)
		base = 0
	}

	rate := decimal.NewFromFloat(s.policy.Get().CommissionRate)
	return decimal.NewFromInt(base).Mul(rate).Round(0).IntPart()
}

// grossOf prefers the pre-discount amount; legacy rows without it are
// reconstructed from the charged total plus the discount.
func grossOf(order orderdomain.Order) int64 {
	if order.OriginalTotal > 0 {
		return order.OriginalTotal
	}
	return order.Total + order.CouponDiscount
}

func couponOf(order orderdomain.Order) int64 {
	if order.CouponDiscount < 0 {
		return 0
	}
	return order.CouponDiscount
}
