package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	accountingdomain "github.com/smallbiznis/platefee/internal/accounting/domain"
	auditdomain "github.com/smallbiznis/platefee/internal/audit/domain"
	auditservice "github.com/smallbiznis/platefee/internal/audit/service"
	"github.com/smallbiznis/platefee/internal/cache"
	"github.com/smallbiznis/platefee/internal/clock"
	"github.com/smallbiznis/platefee/internal/config"
	ledgerservice "github.com/smallbiznis/platefee/internal/ledger/service"
	orderdomain "github.com/smallbiznis/platefee/internal/order/domain"
	orderservice "github.com/smallbiznis/platefee/internal/order/service"
	paymentdomain "github.com/smallbiznis/platefee/internal/payment/domain"
	paymentservice "github.com/smallbiznis/platefee/internal/payment/service"
	penaltydomain "github.com/smallbiznis/platefee/internal/penalty/domain"
	penaltyservice "github.com/smallbiznis/platefee/internal/penalty/service"
	"github.com/smallbiznis/platefee/internal/period"
	"github.com/smallbiznis/platefee/internal/platformmetrics"
	"github.com/smallbiznis/platefee/internal/providers/pdf"
	restaurantdomain "github.com/smallbiznis/platefee/internal/restaurant/domain"
	restaurantservice "github.com/smallbiznis/platefee/internal/restaurant/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc   *Service
	db    *gorm.DB
	fake  *clock.FakeClock
	rest  restaurantdomain.Service
	order orderdomain.Service
}

func setupAccounting(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&restaurantdomain.Restaurant{},
		&orderdomain.Order{},
		&paymentdomain.PaymentRecord{},
		&auditdomain.AuditLog{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	log := zap.NewNop()
	fake := clock.NewFakeClock(time.Date(2025, 6, 20, 10, 0, 0, 0, time.UTC))
	policy := config.NewStaticEnforcementConfigHolder(config.DefaultEnforcementConfig())

	restSvc := restaurantservice.NewService(restaurantservice.Params{DB: db, Log: log, GenID: node})
	orderSvc := orderservice.NewService(orderservice.Params{DB: db, Log: log, GenID: node})
	paymentSvc := paymentservice.NewService(paymentservice.Params{DB: db, Log: log, GenID: node, Clock: fake})
	ledgerSvc := ledgerservice.NewService(ledgerservice.Params{Log: log, Policy: policy})
	penaltySvc := penaltyservice.NewService(penaltyservice.Params{Log: log, Policy: policy})
	auditSvc := auditservice.NewService(auditservice.Params{DB: db, Log: log})

	svc := NewService(Params{
		Log:         log,
		Clock:       fake,
		Policy:      policy,
		Restaurants: restSvc,
		Orders:      orderSvc,
		Payments:    paymentSvc,
		Ledger:      ledgerSvc,
		Penalty:     penaltySvc,
		Audit:       auditSvc,
		Cache:       cache.NewStatusCache(config.Config{}, log),
		Metrics:     platformmetrics.New(prometheus.NewRegistry()),
		PDF:         pdf.New(),
	}).(*Service)

	return &fixture{svc: svc, db: db, fake: fake, rest: restSvc, order: orderSvc}
}

func (f *fixture) seedRestaurant(t *testing.T, name string) string {
	t.Helper()
	row, err := f.rest.Create(context.Background(), restaurantdomain.CreateRestaurantRequest{
		Name:  name,
		Email: "owner@example.com",
	})
	if err != nil {
		t.Fatalf("create restaurant: %v", err)
	}
	return row.ID.String()
}

func (f *fixture) seedOrder(t *testing.T, restaurantID string, original, coupon int64, placedAt string) {
	t.Helper()
	_, err := f.order.Record(context.Background(), orderdomain.RecordOrderRequest{
		RestaurantID:   restaurantID,
		OriginalTotal:  original,
		CouponDiscount: coupon,
		PlacedAt:       placedAt,
	})
	if err != nil {
		t.Fatalf("record order: %v", err)
	}
}

func TestCommissionSummaryAcrossUnpaidPeriods(t *testing.T) {
	f := setupAccounting(t)
	ctx := context.Background()
	rid := f.seedRestaurant(t, "Nasi Campur Bali")

	// Week of 2025-06-02: two orders, one coupon.
	f.seedOrder(t, rid, 20000, 0, "2025-06-03T12:00:00Z")
	f.seedOrder(t, rid, 30000, 5000, "2025-06-07T19:30:00Z")
	// Week of 2025-06-09: one order.
	f.seedOrder(t, rid, 10000, 0, "2025-06-10T12:00:00Z")

	summary, err := f.svc.GetRestaurantCommission(ctx, rid)
	if err != nil {
		t.Fatalf("get commission: %v", err)
	}
	if summary.GrossRevenue != 60000 {
		t.Fatalf("expected gross 60000, got %d", summary.GrossRevenue)
	}
	if summary.CouponsUsed != 5000 {
		t.Fatalf("expected coupons 5000, got %d", summary.CouponsUsed)
	}
	// 5% of 45000 plus 5% of 10000.
	if summary.PendingCommission != 2250+500 {
		t.Fatalf("expected pending 2750, got %d", summary.PendingCommission)
	}
	if len(summary.UnpaidPeriods) != 2 {
		t.Fatalf("expected 2 unpaid periods, got %v", summary.UnpaidPeriods)
	}

	if err := f.svc.MarkInvoicePaid(ctx, rid, period.Key("2025-06-02")); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	summary, err = f.svc.GetRestaurantCommission(ctx, rid)
	if err != nil {
		t.Fatalf("get commission after payment: %v", err)
	}
	if summary.PendingCommission != 500 {
		t.Fatalf("expected pending 500 after settling first week, got %d", summary.PendingCommission)
	}
	if len(summary.UnpaidPeriods) != 1 || summary.UnpaidPeriods[0] != "2025-06-09" {
		t.Fatalf("expected only 2025-06-09 unpaid, got %v", summary.UnpaidPeriods)
	}
}

func TestInvoiceHistoryStatusesAndOrdering(t *testing.T) {
	f := setupAccounting(t)
	ctx := context.Background()
	rid := f.seedRestaurant(t, "Trattoria Nonna")

	f.seedOrder(t, rid, 50000, 5000, "2025-06-04T12:00:00Z") // week 2025-06-02
	f.seedOrder(t, rid, 10000, 0, "2025-06-10T12:00:00Z")    // week 2025-06-09

	// At 2025-06-20 the first week is 11 days past its end, beyond the
	// 5-day grace; the second is 4 days past, still inside it.
	invoices, err := f.svc.GetInvoiceHistory(ctx, rid)
	if err != nil {
		t.Fatalf("invoice history: %v", err)
	}
	if len(invoices) != 2 {
		t.Fatalf("expected 2 invoices, got %d", len(invoices))
	}
	if invoices[0].Period != "2025-06-09" || invoices[1].Period != "2025-06-02" {
		t.Fatalf("expected newest first, got %s then %s", invoices[0].Period, invoices[1].Period)
	}
	if invoices[0].Status != accountingdomain.InvoiceStatusAwaiting {
		t.Fatalf("expected awaiting for current week, got %s", invoices[0].Status)
	}
	if invoices[1].Status != accountingdomain.InvoiceStatusOverdue {
		t.Fatalf("expected overdue past grace, got %s", invoices[1].Status)
	}
	if invoices[1].NetCommission != 2250 {
		t.Fatalf("expected commission 2250, got %d", invoices[1].NetCommission)
	}

	if err := f.svc.MarkInvoicePaid(ctx, rid, period.Key("2025-06-02")); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	invoices, err = f.svc.GetInvoiceHistory(ctx, rid)
	if err != nil {
		t.Fatalf("invoice history after payment: %v", err)
	}
	if invoices[1].Status != accountingdomain.InvoiceStatusPaid || invoices[1].PaidAt == nil {
		t.Fatalf("expected paid invoice with paid_at, got %+v", invoices[1])
	}
}

func TestMarkInvoicePaidOrderlessWeekIsNoop(t *testing.T) {
	f := setupAccounting(t)
	ctx := context.Background()
	rid := f.seedRestaurant(t, "Ghost Kitchen")
	f.seedOrder(t, rid, 10000, 0, "2025-06-10T12:00:00Z")

	// Valid Monday, but no orders that week: nothing to pay, not an error.
	if err := f.svc.MarkInvoicePaid(ctx, rid, period.Key("2025-05-26")); err != nil {
		t.Fatalf("expected no-op success for orderless week, got %v", err)
	}

	// The no-op must not materialize a payment record.
	var recordCount int64
	f.db.Model(&paymentdomain.PaymentRecord{}).Count(&recordCount)
	if recordCount != 0 {
		t.Fatalf("expected no payment records, got %d", recordCount)
	}

	// The billed week is untouched and still owed.
	status, err := f.svc.GetRestaurantAccountingStatus(ctx, rid)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if len(status.UnpaidPeriods) != 1 || status.UnpaidPeriods[0].Period != period.Key("2025-06-09") {
		t.Fatalf("expected week 2025-06-09 still unpaid, got %+v", status.UnpaidPeriods)
	}
}

func TestMarkAllCommissionsPaid(t *testing.T) {
	f := setupAccounting(t)
	ctx := context.Background()
	rid := f.seedRestaurant(t, "Burger Barn")

	f.seedOrder(t, rid, 10000, 0, "2025-05-27T12:00:00Z") // week 2025-05-26
	f.seedOrder(t, rid, 10000, 0, "2025-06-03T12:00:00Z") // week 2025-06-02
	f.seedOrder(t, rid, 10000, 0, "2025-06-10T12:00:00Z") // week 2025-06-09

	settled, err := f.svc.MarkRestaurantCommissionsPaid(ctx, rid)
	if err != nil {
		t.Fatalf("mark all paid: %v", err)
	}
	if settled != 3 {
		t.Fatalf("expected 3 periods settled, got %d", settled)
	}

	settled, err = f.svc.MarkRestaurantCommissionsPaid(ctx, rid)
	if err != nil {
		t.Fatalf("second mark all paid: %v", err)
	}
	if settled != 0 {
		t.Fatalf("expected idempotent second run, got %d", settled)
	}

	var auditCount int64
	f.db.Model(&auditdomain.AuditLog{}).Count(&auditCount)
	if auditCount < 2 {
		t.Fatalf("expected audit entries for both runs, got %d", auditCount)
	}
}

func TestAccountingStatusEscalation(t *testing.T) {
	f := setupAccounting(t)
	ctx := context.Background()
	rid := f.seedRestaurant(t, "Pho Real")

	f.seedOrder(t, rid, 50000, 5000, "2025-06-04T12:00:00Z") // week 2025-06-02

	status, err := f.svc.GetRestaurantAccountingStatus(ctx, rid)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.PenaltyLevel != penaltydomain.LevelWarning {
		t.Fatalf("expected WARNING at 11 days overdue, got %s", status.LevelName)
	}
	if status.TotalPending != 2250 {
		t.Fatalf("expected pending 2250, got %d", status.TotalPending)
	}
	if status.LockedOut {
		t.Fatalf("lockout must not trigger inside the second window")
	}

	// Push past the lockout window (period ended 2025-06-09).
	f.fake.Advance(5 * 24 * time.Hour)

	status, err = f.svc.GetRestaurantAccountingStatus(ctx, rid)
	if err != nil {
		t.Fatalf("status after advance: %v", err)
	}
	if status.PenaltyLevel != penaltydomain.LevelLockout || !status.LockedOut {
		t.Fatalf("expected LOCKOUT past second window, got %s", status.LevelName)
	}

	// Settling the debt clears the level entirely.
	if _, err := f.svc.MarkRestaurantCommissionsPaid(ctx, rid); err != nil {
		t.Fatalf("settle: %v", err)
	}
	status, err = f.svc.GetRestaurantAccountingStatus(ctx, rid)
	if err != nil {
		t.Fatalf("status after settlement: %v", err)
	}
	if status.PenaltyLevel != penaltydomain.LevelClear || len(status.UnpaidPeriods) != 0 {
		t.Fatalf("expected CLEAR after settlement, got %+v", status)
	}
}

func TestRenderStatementProducesPDF(t *testing.T) {
	f := setupAccounting(t)
	rid := f.seedRestaurant(t, "Sushi Go")
	f.seedOrder(t, rid, 50000, 5000, "2025-06-04T12:00:00Z")

	out, err := f.svc.RenderStatement(context.Background(), rid, period.Key("2025-06-02"))
	if err != nil {
		t.Fatalf("render statement: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("expected a PDF document, got %d bytes", len(out))
	}
}

func TestUnknownRestaurantRejected(t *testing.T) {
	f := setupAccounting(t)

	_, err := f.svc.GetRestaurantCommission(context.Background(), "999999999")
	if !errors.Is(err, accountingdomain.ErrInvalidRestaurant) {
		t.Fatalf("expected ErrInvalidRestaurant, got %v", err)
	}
	_, err = f.svc.GetRestaurantAccountingStatus(context.Background(), "not-a-number")
	if !errors.Is(err, accountingdomain.ErrInvalidRestaurant) {
		t.Fatalf("expected ErrInvalidRestaurant for garbage id, got %v", err)
	}
}
