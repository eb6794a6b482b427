package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	accountingservice "github.com/smallbiznis/platefee/internal/accounting/service"
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
	penaltyservice "github.com/smallbiznis/platefee/internal/penalty/service"
	"github.com/smallbiznis/platefee/internal/platformmetrics"
	"github.com/smallbiznis/platefee/internal/providers/pdf"
	restaurantdomain "github.com/smallbiznis/platefee/internal/restaurant/domain"
	restaurantservice "github.com/smallbiznis/platefee/internal/restaurant/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type schedFixture struct {
	sched    *Scheduler
	fake     *clock.FakeClock
	rest     restaurantdomain.Service
	order    orderdomain.Service
	acct     accountingSvc
	registry *prometheus.Registry
}

type accountingSvc interface {
	MarkRestaurantCommissionsPaid(ctx context.Context, restaurantID string) (int, error)
}

func setupScheduler(t *testing.T) *schedFixture {
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

	acctSvc := accountingservice.NewService(accountingservice.Params{
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
		PDF:         pdf.New(),
	})

	registry := prometheus.NewRegistry()
	sched, err := New(Params{
		Log:           log,
		Clock:         fake,
		RestaurantSvc: restSvc,
		AccountingSvc: acctSvc,
		Metrics:       platformmetrics.New(registry),
	})
	if err != nil {
		t.Fatalf("scheduler: %v", err)
	}

	return &schedFixture{sched: sched, fake: fake, rest: restSvc, order: orderSvc, acct: acctSvc, registry: registry}
}

func TestSweepCountsOverdueRestaurants(t *testing.T) {
	f := setupScheduler(t)
	ctx := context.Background()

	overdue, err := f.rest.Create(ctx, restaurantdomain.CreateRestaurantRequest{Name: "Late Larry", Email: "larry@example.com"})
	if err != nil {
		t.Fatalf("create restaurant: %v", err)
	}
	current, err := f.rest.Create(ctx, restaurantdomain.CreateRestaurantRequest{Name: "Prompt Pete", Email: "pete@example.com"})
	if err != nil {
		t.Fatalf("create restaurant: %v", err)
	}

	// Larry's week ended 2025-06-09: eleven days unpaid, past grace.
	if _, err := f.order.Record(ctx, orderdomain.RecordOrderRequest{
		RestaurantID: overdue.ID.String(), OriginalTotal: 50000, PlacedAt: "2025-06-04T12:00:00Z",
	}); err != nil {
		t.Fatalf("record order: %v", err)
	}
	// Pete's week is still inside the grace window.
	if _, err := f.order.Record(ctx, orderdomain.RecordOrderRequest{
		RestaurantID: current.ID.String(), OriginalTotal: 30000, PlacedAt: "2025-06-10T12:00:00Z",
	}); err != nil {
		t.Fatalf("record order: %v", err)
	}

	stats, err := f.sched.sweepEnforcement(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if stats.Evaluated != 2 {
		t.Fatalf("expected 2 evaluations, got %d", stats.Evaluated)
	}
	if stats.Overdue != 1 || stats.LockedOut != 0 {
		t.Fatalf("expected 1 overdue and no lockouts, got %+v", stats)
	}

	// Past the second window the same debt becomes a lockout.
	f.fake.Advance(5 * 24 * time.Hour)
	stats, err = f.sched.sweepEnforcement(ctx)
	if err != nil {
		t.Fatalf("sweep after advance: %v", err)
	}
	if stats.LockedOut != 1 {
		t.Fatalf("expected 1 lockout, got %+v", stats)
	}
	// By now Pete has aged past grace too.
	if stats.Overdue != 2 {
		t.Fatalf("expected 2 overdue, got %+v", stats)
	}

	// Settlement clears the sweep on the next pass.
	for _, id := range []string{overdue.ID.String(), current.ID.String()} {
		if _, err := f.acct.MarkRestaurantCommissionsPaid(ctx, id); err != nil {
			t.Fatalf("settle: %v", err)
		}
	}
	stats, err = f.sched.sweepEnforcement(ctx)
	if err != nil {
		t.Fatalf("sweep after settlement: %v", err)
	}
	if stats.Overdue != 0 || stats.LockedOut != 0 {
		t.Fatalf("expected clean sweep after settlement, got %+v", stats)
	}
}

func TestRunOnceMeasuresSweepOnInjectedClock(t *testing.T) {
	f := setupScheduler(t)
	f.fake.Set(time.Date(2025, 6, 23, 0, 0, 0, 0, time.UTC))

	if err := f.sched.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}

	families, err := f.registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, family := range families {
		if family.GetName() != "platefee_enforcement_sweep_duration_seconds" {
			continue
		}
		hist := family.GetMetric()[0].GetHistogram()
		if hist.GetSampleCount() != 1 {
			t.Fatalf("expected 1 sweep observation, got %d", hist.GetSampleCount())
		}
		// The clock does not move during a sweep, so the observed
		// duration must be exactly zero.
		if hist.GetSampleSum() != 0 {
			t.Fatalf("expected zero sweep duration, got %f", hist.GetSampleSum())
		}
		return
	}
	t.Fatalf("sweep duration histogram not registered")
}

func TestRunOnceSucceedsOnEmptyDatabase(t *testing.T) {
	f := setupScheduler(t)
	if err := f.sched.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
}
