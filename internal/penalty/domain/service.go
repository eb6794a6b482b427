package domain

import "time"

type Service interface {
	// Evaluate derives the enforcement level from current time and the
	// restaurant's pending periods. Pure: same inputs, same decision.
	Evaluate(now time.Time, pending []PendingPeriod) Evaluation
}
