package service

import (
	"time"

	"github.com/smallbiznis/platefee/internal/config"
	penaltydomain "github.com/smallbiznis/platefee/internal/penalty/domain"
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

func NewService(p Params) penaltydomain.Service {
	return &Service{
		log:    p.Log.Named("penalty.service"),
		policy: p.Policy,
	}
}

func (s *Service) Evaluate(now time.Time, pending []penaltydomain.PendingPeriod) penaltydomain.Evaluation {
	policy := s.policy.Get()

	eval := penaltydomain.Evaluation{
		Level:         penaltydomain.LevelClear,
		UnpaidPeriods: make([]penaltydomain.UnpaidPeriod, 0, len(pending)),
	}

	expiredCount := 0
	lockout := false

	for _, p := range pending {
		age := p.Period.DaysSinceEnd(now)
		expired := age > policy.GraceDays

		eval.UnpaidPeriods = append(eval.UnpaidPeriods, penaltydomain.UnpaidPeriod{
			Period:        p.Period,
			NetCommission: p.NetCommission,
			GraceExpired:  expired,
			OverdueDays:   max(age, 0),
		})
		eval.TotalPending += p.NetCommission

		if expired {
			expiredCount++
		}
		if age > policy.LockoutGraceDays {
			lockout = true
		}
	}

	if expiredCount >= policy.LockoutOverduePeriods {
		lockout = true
	}

	switch {
	case lockout:
		eval.Level = penaltydomain.LevelLockout
		eval.LockedOut = true
	case expiredCount > 0:
		eval.Level = penaltydomain.LevelWarning
	case len(pending) > 0:
		eval.Level = penaltydomain.LevelGrace
	}

	eval.LevelName = eval.Level.String()
	return eval
}
