package service

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	accountingdomain "github.com/smallbiznis/platefee/internal/accounting/domain"
	auditdomain "github.com/smallbiznis/platefee/internal/audit/domain"
	"github.com/smallbiznis/platefee/internal/cache"
	"github.com/smallbiznis/platefee/internal/clock"
	"github.com/smallbiznis/platefee/internal/config"
	ledgerdomain "github.com/smallbiznis/platefee/internal/ledger/domain"
	orderdomain "github.com/smallbiznis/platefee/internal/order/domain"
	paymentdomain "github.com/smallbiznis/platefee/internal/payment/domain"
	penaltydomain "github.com/smallbiznis/platefee/internal/penalty/domain"
	"github.com/smallbiznis/platefee/internal/period"
	"github.com/smallbiznis/platefee/internal/platformmetrics"
	"github.com/smallbiznis/platefee/internal/providers/pdf"
	restaurantdomain "github.com/smallbiznis/platefee/internal/restaurant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log    *zap.Logger
	Clock  clock.Clock
	Policy *config.EnforcementConfigHolder

	Restaurants restaurantdomain.Service
	Orders      orderdomain.Service
	Payments    paymentdomain.Service
	Ledger      ledgerdomain.Service
	Penalty     penaltydomain.Service
	Audit       auditdomain.Service

	Cache   *cache.StatusCache
	Metrics *platformmetrics.Metrics `optional:"true"`
	PDF     pdf.Provider
}

type Service struct {
	log    *zap.Logger
	clock  clock.Clock
	policy *config.EnforcementConfigHolder

	restaurants restaurantdomain.Service
	orders      orderdomain.Service
	payments    paymentdomain.Service
	ledger      ledgerdomain.Service
	penalty     penaltydomain.Service
	audit       auditdomain.Service

	cache   *cache.StatusCache
	metrics *platformmetrics.Metrics
	pdf     pdf.Provider
}

func NewService(p Params) accountingdomain.Service {
	return &Service{
		log:         p.Log.Named("accounting.service"),
		clock:       p.Clock,
		policy:      p.Policy,
		restaurants: p.Restaurants,
		orders:      p.Orders,
		payments:    p.Payments,
		ledger:      p.Ledger,
		penalty:     p.Penalty,
		audit:       p.Audit,
		cache:       p.Cache,
		metrics:     p.Metrics,
		pdf:         p.PDF,
	}
}

func (s *Service) GetRestaurantCommission(ctx context.Context, restaurantID string) (ledgerdomain.CommissionSummary, error) {
	id, orders, err := s.loadOrders(ctx, restaurantID)
	if err != nil {
		return ledgerdomain.CommissionSummary{}, err
	}

	unpaid, _, err := s.unpaidPeriods(ctx, id, orders)
	if err != nil {
		return ledgerdomain.CommissionSummary{}, err
	}

	return s.ledger.ComputeAggregate(ctx, id, orders, unpaid), nil
}

func (s *Service) GetInvoiceHistory(ctx context.Context, restaurantID string) ([]accountingdomain.Invoice, error) {
	id, orders, err := s.loadOrders(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	invoices, err := s.buildInvoices(ctx, id, orders)
	if err != nil {
		return nil, err
	}

	// Newest first.
	sort.Slice(invoices, func(i, j int) bool {
		return invoices[i].Period > invoices[j].Period
	})
	return invoices, nil
}

func (s *Service) MarkInvoicePaid(ctx context.Context, restaurantID string, key period.Key) error {
	if !key.Valid() {
		return accountingdomain.ErrInvalidPeriod
	}

	id, orders, err := s.loadOrders(ctx, restaurantID)
	if err != nil {
		return err
	}
	if !hasPeriod(orders, key) {
		// Nothing was billed that week, so there is nothing to settle.
		s.recordMarkPaid("noop")
		s.log.Info("mark paid skipped for orderless period",
			zap.String("restaurant_id", id.String()),
			zap.String("period", string(key)),
		)
		return nil
	}

	_, transitioned, err := s.payments.MarkPaid(ctx, id, key)
	if err != nil {
		s.recordMarkPaid("error")
		return err
	}
	if transitioned {
		s.recordMarkPaid("transitioned")
	} else {
		s.recordMarkPaid("noop")
	}

	s.writeAudit(ctx, id, "invoice.mark_paid", "invoice", invoiceID(id, key), map[string]any{
		"period":       string(key),
		"transitioned": transitioned,
	})
	return nil
}

func (s *Service) MarkRestaurantCommissionsPaid(ctx context.Context, restaurantID string) (int, error) {
	id, orders, err := s.loadOrders(ctx, restaurantID)
	if err != nil {
		return 0, err
	}

	unpaid, _, err := s.unpaidPeriods(ctx, id, orders)
	if err != nil {
		return 0, err
	}

	settled := 0
	for _, key := range unpaid {
		_, transitioned, err := s.payments.MarkPaid(ctx, id, key)
		if err != nil {
			s.recordMarkPaid("error")
			return settled, err
		}
		if transitioned {
			settled++
			s.recordMarkPaid("transitioned")
		} else {
			s.recordMarkPaid("noop")
		}
	}

	s.writeAudit(ctx, id, "commissions.mark_all_paid", "restaurant", id.String(), map[string]any{
		"periods_settled": settled,
		"periods_total":   len(unpaid),
	})
	return settled, nil
}

func (s *Service) GetRestaurantAccountingStatus(ctx context.Context, restaurantID string) (accountingdomain.AccountingStatus, error) {
	id, orders, err := s.loadOrders(ctx, restaurantID)
	if err != nil {
		return accountingdomain.AccountingStatus{}, err
	}

	unpaid, records, err := s.unpaidPeriods(ctx, id, orders)
	if err != nil {
		return accountingdomain.AccountingStatus{}, err
	}

	version := stateVersion(orders, records)
	if cached, ok := s.cache.Get(ctx, id, version); ok {
		s.recordCacheLookup("hit")
		return *cached, nil
	}
	s.recordCacheLookup("miss")

	pending := make([]penaltydomain.PendingPeriod, 0, len(unpaid))
	for _, key := range unpaid {
		ledger := s.ledger.ComputeLedger(ctx, id, key, orders)
		if ledger.OrderCount == 0 {
			continue
		}
		pending = append(pending, penaltydomain.PendingPeriod{
			Period:        key,
			NetCommission: ledger.NetCommission,
		})
	}

	now := s.clock.Now()
	eval := s.penalty.Evaluate(now, pending)
	s.metrics.RecordPenaltyEvaluation(eval.LevelName)

	status := accountingdomain.AccountingStatus{
		RestaurantID:  id,
		UnpaidPeriods: eval.UnpaidPeriods,
		TotalPending:  eval.TotalPending,
		PenaltyLevel:  eval.Level,
		LevelName:     eval.LevelName,
		LockedOut:     eval.LockedOut,
		EvaluatedAt:   now,
	}
	s.cache.Set(ctx, id, version, status)
	return status, nil
}

func (s *Service) RenderStatement(ctx context.Context, restaurantID string, key period.Key) ([]byte, error) {
	if !key.Valid() {
		return nil, accountingdomain.ErrInvalidPeriod
	}

	restaurant, err := s.restaurants.GetByID(ctx, restaurantID)
	if err != nil {
		return nil, mapRestaurantErr(err)
	}

	id, orders, err := s.loadOrders(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	invoice, err := s.buildInvoice(ctx, id, key, orders)
	if err != nil {
		return nil, err
	}

	rate := s.policy.Get().CommissionRate
	data := pdf.StatementData{
		PlatformName:    "Platefee",
		PlatformEmail:   "billing@platefee.io",
		RestaurantName:  restaurant.Name,
		RestaurantEmail: restaurant.Email,
		StatementNumber: invoice.ID,
		IssueDate:       s.clock.Now().Format("2006-01-02"),
		PeriodStart:     invoice.PeriodStart.Format("2006-01-02"),
		PeriodEnd:       invoice.PeriodEnd.AddDate(0, 0, -1).Format("2006-01-02"),
		Status:          string(invoice.Status),
		OrderCount:      invoice.OrderCount,
		GrossRevenue:    formatMinorUnits(invoice.GrossRevenue),
		CouponsUsed:     formatMinorUnits(invoice.CouponsUsed),
		CommissionRate:  fmt.Sprintf("%.2f%%", rate*100),
		NetCommission:   formatMinorUnits(invoice.NetCommission),
	}

	reader, err := s.pdf.GenerateStatement(ctx, data)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(reader)
}

// loadOrders resolves the restaurant and fetches its full order set.
func (s *Service) loadOrders(ctx context.Context, restaurantID string) (snowflake.ID, []orderdomain.Order, error) {
	restaurant, err := s.restaurants.GetByID(ctx, restaurantID)
	if err != nil {
		return 0, nil, mapRestaurantErr(err)
	}

	orders, err := s.orders.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		return 0, nil, err
	}
	return restaurant.ID, orders, nil
}

// unpaidPeriods returns the touched periods still awaiting payment,
// oldest first, plus every payment record fetched along the way.
func (s *Service) unpaidPeriods(ctx context.Context, id snowflake.ID, orders []orderdomain.Order) ([]period.Key, []paymentdomain.PaymentRecord, error) {
	touched := touchedPeriods(orders)

	unpaid := make([]period.Key, 0, len(touched))
	records := make([]paymentdomain.PaymentRecord, 0, len(touched))
	for _, key := range touched {
		record, err := s.payments.GetStatus(ctx, id, key)
		if err != nil {
			return nil, nil, err
		}
		records = append(records, record)
		if record.Status != paymentdomain.PaymentStatusPaid {
			unpaid = append(unpaid, key)
		}
	}
	return unpaid, records, nil
}

func (s *Service) buildInvoices(ctx context.Context, id snowflake.ID, orders []orderdomain.Order) ([]accountingdomain.Invoice, error) {
	touched := touchedPeriods(orders)

	invoices := make([]accountingdomain.Invoice, 0, len(touched))
	for _, key := range touched {
		invoice, err := s.buildInvoice(ctx, id, key, orders)
		if err != nil {
			if errors.Is(err, accountingdomain.ErrInvoiceNotFound) {
				continue
			}
			return nil, err
		}
		invoices = append(invoices, invoice)
	}
	return invoices, nil
}

func (s *Service) buildInvoice(ctx context.Context, id snowflake.ID, key period.Key, orders []orderdomain.Order) (accountingdomain.Invoice, error) {
	ledger := s.ledger.ComputeLedger(ctx, id, key, orders)
	if ledger.OrderCount == 0 {
		return accountingdomain.Invoice{}, accountingdomain.ErrInvoiceNotFound
	}

	record, err := s.payments.GetStatus(ctx, id, key)
	if err != nil {
		return accountingdomain.Invoice{}, err
	}

	status := accountingdomain.InvoiceStatusAwaiting
	var paidAt *time.Time
	if record.Status == paymentdomain.PaymentStatusPaid {
		status = accountingdomain.InvoiceStatusPaid
		paidAt = record.PaidAt
	} else if key.DaysSinceEnd(s.clock.Now()) > s.policy.Get().GraceDays {
		status = accountingdomain.InvoiceStatusOverdue
	}

	return accountingdomain.Invoice{
		ID:            invoiceID(id, key),
		RestaurantID:  id,
		Period:        key,
		PeriodStart:   key.Start(),
		PeriodEnd:     key.End(),
		OrderCount:    ledger.OrderCount,
		GrossRevenue:  ledger.GrossRevenue,
		CouponsUsed:   ledger.CouponsUsed,
		NetCommission: ledger.NetCommission,
		Status:        status,
		PaidAt:        paidAt,
	}, nil
}

func (s *Service) writeAudit(ctx context.Context, id snowflake.ID, action, targetType, targetID string, metadata map[string]any) {
	if err := s.audit.Record(ctx, id, "operator", actorFrom(ctx), action, targetType, targetID, metadata); err != nil {
		s.log.Warn("audit write failed", zap.String("action", action), zap.Error(err))
	}
}

func (s *Service) recordMarkPaid(outcome string) {
	s.metrics.RecordMarkPaid(outcome)
}

func (s *Service) recordCacheLookup(result string) {
	s.metrics.RecordCacheLookup(result)
}

type actorKey struct{}

// WithActor tags the context with the acting operator for audit trails.
func WithActor(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorKey{}, actorID)
}

func actorFrom(ctx context.Context) string {
	if v, ok := ctx.Value(actorKey{}).(string); ok {
		return v
	}
	return ""
}

func invoiceID(id snowflake.ID, key period.Key) string {
	return fmt.Sprintf("inv_%s_%s", id.String(), key)
}

func touchedPeriods(orders []orderdomain.Order) []period.Key {
	times := make([]time.Time, 0, len(orders))
	for _, o := range orders {
		times = append(times, o.PlacedAt)
	}
	return period.Touched(times)
}

func hasPeriod(orders []orderdomain.Order, key period.Key) bool {
	for _, k := range touchedPeriods(orders) {
		if k == key {
			return true
		}
	}
	return false
}

// stateVersion hashes the inputs the status projection depends on. Any
// new order or payment transition yields a new version, so a cached
// entry can never outlive the data it was computed from.
func stateVersion(orders []orderdomain.Order, records []paymentdomain.PaymentRecord) uint64 {
	h := fnv.New64a()
	for _, o := range orders {
		fmt.Fprintf(h, "o|%d|%d|%d|%d\n", o.ID, o.OriginalTotal, o.CouponDiscount, o.PlacedAt.UnixNano())
	}
	for _, r := range records {
		fmt.Fprintf(h, "p|%s|%s|%d\n", r.PeriodKey, r.Status, r.UpdatedAt.UnixNano())
	}
	return h.Sum64()
}

func formatMinorUnits(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s$%d.%02d", sign, v/100, v%100)
}

func mapRestaurantErr(err error) error {
	switch err {
	case restaurantdomain.ErrInvalidID:
		return accountingdomain.ErrInvalidRestaurant
	case restaurantdomain.ErrNotFound:
		return accountingdomain.ErrInvalidRestaurant
	default:
		return err
	}
}
