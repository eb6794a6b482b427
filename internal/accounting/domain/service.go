package domain

import (
	"context"
	"errors"

	ledgerdomain "github.com/smallbiznis/platefee/internal/ledger/domain"
	"github.com/smallbiznis/platefee/internal/period"
)

type Service interface {
	// GetRestaurantCommission returns what the restaurant currently owes,
	// summed across unpaid periods only.
	GetRestaurantCommission(ctx context.Context, restaurantID string) (ledgerdomain.CommissionSummary, error)

	// GetInvoiceHistory returns one invoice per period with at least one
	// order, newest first.
	GetInvoiceHistory(ctx context.Context, restaurantID string) ([]Invoice, error)

	// MarkInvoicePaid settles one period. Idempotent.
	MarkInvoicePaid(ctx context.Context, restaurantID string, key period.Key) error

	// MarkRestaurantCommissionsPaid settles every currently-unpaid period
	// in one batch, applying the same per-period idempotent transition.
	// Returns the number of periods actually transitioned.
	MarkRestaurantCommissionsPaid(ctx context.Context, restaurantID string) (int, error)

	// GetRestaurantAccountingStatus derives the enforcement view.
	GetRestaurantAccountingStatus(ctx context.Context, restaurantID string) (AccountingStatus, error)

	// RenderStatement produces the PDF commission statement for a period.
	RenderStatement(ctx context.Context, restaurantID string, key period.Key) ([]byte, error)
}

var (
	ErrInvalidRestaurant = errors.New("invalid_restaurant")
	ErrInvalidPeriod     = errors.New("invalid_period")
	ErrInvoiceNotFound   = errors.New("invoice_not_found")
)
