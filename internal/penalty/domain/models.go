// Package domain defines enforcement levels for unpaid commission.
// Levels are derived from unpaid-period ages on every read; nothing is
// stored, so penalties can never go stale.
package domain

import (
	"github.com/smallbiznis/platefee/internal/period"
)

// Level is the discrete enforcement stage for a restaurant.
type Level int

const (
	// LevelClear: nothing unpaid, or everything within grace.
	LevelClear Level = iota
	// LevelGrace: unpaid periods exist, none past the grace window.
	LevelGrace
	// LevelWarning: at least one period past grace; intake stays open,
	// the back office shows a persistent banner.
	LevelWarning
	// LevelLockout: the panel is reduced to a debt-settlement notice.
	// Settlement happens out-of-band and is reflected via mark-paid only.
	LevelLockout
)

func (l Level) String() string {
	switch l {
	case LevelClear:
		return "CLEAR"
	case LevelGrace:
		return "GRACE"
	case LevelWarning:
		return "WARNING"
	case LevelLockout:
		return "LOCKOUT"
	default:
		return "UNKNOWN"
	}
}

// PendingPeriod is an unpaid period as seen by the ledger.
type PendingPeriod struct {
	Period        period.Key
	NetCommission int64
}

// UnpaidPeriod is a pending period annotated with its aging state.
type UnpaidPeriod struct {
	Period        period.Key `json:"period"`
	NetCommission int64      `json:"net_commission"`
	GraceExpired  bool       `json:"grace_expired"`
	OverdueDays   int        `json:"overdue_days"`
}

// Evaluation is the full enforcement decision for one restaurant.
type Evaluation struct {
	Level         Level          `json:"penalty_level"`
	LevelName     string         `json:"penalty_level_name"`
	UnpaidPeriods []UnpaidPeriod `json:"unpaid_periods"`
	TotalPending  int64          `json:"total_pending"`
	LockedOut     bool           `json:"locked_out"`
}
