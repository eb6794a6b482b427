// Package scheduler runs the periodic enforcement sweep. The sweep is
// purely observational: penalty levels are derived on read, so the job
// exists to surface overdue restaurants in logs and metrics, not to
// flip any state.
package scheduler

import (
	"context"
	"errors"
	"time"

	accountingdomain "github.com/smallbiznis/platefee/internal/accounting/domain"
	"github.com/smallbiznis/platefee/internal/clock"
	penaltydomain "github.com/smallbiznis/platefee/internal/penalty/domain"
	"github.com/smallbiznis/platefee/internal/platformmetrics"
	restaurantdomain "github.com/smallbiznis/platefee/internal/restaurant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("scheduler: missing dependency")

type Params struct {
	fx.In

	Log           *zap.Logger
	Clock         clock.Clock
	RestaurantSvc restaurantdomain.Service
	AccountingSvc accountingdomain.Service
	Metrics       *platformmetrics.Metrics `optional:"true"`
	Config        Config                   `optional:"true"`
}

type Scheduler struct {
	log           *zap.Logger
	cfg           Config
	clock         clock.Clock
	restaurantSvc restaurantdomain.Service
	accountingSvc accountingdomain.Service
	metrics       *platformmetrics.Metrics
}

type sweepStats struct {
	Evaluated int
	Overdue   int
	LockedOut int
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.RestaurantSvc == nil || p.AccountingSvc == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:           p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:           p.Config.withDefaults(),
		clock:         p.Clock,
		restaurantSvc: p.RestaurantSvc,
		accountingSvc: p.AccountingSvc,
		metrics:       p.Metrics,
	}, nil
}

func (s *Scheduler) RunOnce(ctx context.Context) error {
	start := s.clock.Now()

	stats, err := s.sweepEnforcement(ctx)
	if err != nil {
		return err
	}

	s.metrics.RecordSweep(s.clock.Now().Sub(start).Seconds(), stats.Overdue)
	s.log.Info("enforcement sweep completed",
		zap.Int("evaluated", stats.Evaluated),
		zap.Int("overdue", stats.Overdue),
		zap.Int("locked_out", stats.LockedOut),
	)
	return nil
}

func (s *Scheduler) sweepEnforcement(ctx context.Context) (sweepStats, error) {
	var stats sweepStats

	restaurants, err := s.restaurantSvc.List(ctx)
	if err != nil {
		return stats, err
	}

	var errs error
	for _, restaurant := range restaurants {
		if !restaurant.Active {
			continue
		}
		if ctx.Err() != nil {
			return stats, errors.Join(errs, ctx.Err())
		}

		status, err := s.accountingSvc.GetRestaurantAccountingStatus(ctx, restaurant.ID.String())
		if err != nil {
			s.log.Warn("sweep evaluation failed",
				zap.String("restaurant_id", restaurant.ID.String()),
				zap.Error(err),
			)
			errs = errors.Join(errs, err)
			continue
		}
		stats.Evaluated++

		switch status.PenaltyLevel {
		case penaltydomain.LevelWarning:
			stats.Overdue++
			s.log.Warn("restaurant past grace",
				zap.String("restaurant_id", restaurant.ID.String()),
				zap.Int64("total_pending", status.TotalPending),
				zap.Int("unpaid_periods", len(status.UnpaidPeriods)),
			)
		case penaltydomain.LevelLockout:
			stats.Overdue++
			stats.LockedOut++
			s.log.Warn("restaurant locked out",
				zap.String("restaurant_id", restaurant.ID.String()),
				zap.Int64("total_pending", status.TotalPending),
				zap.Int("unpaid_periods", len(status.UnpaidPeriods)),
			)
		}
	}
	return stats, errs
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
