package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/platefee/internal/clock"
	paymentdomain "github.com/smallbiznis/platefee/internal/payment/domain"
	"github.com/smallbiznis/platefee/internal/period"
	"github.com/smallbiznis/platefee/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
}

func NewService(p Params) paymentdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("payment.service"),
		genID: p.GenID,
		clock: p.Clock,
	}
}

func (s *Service) GetStatus(ctx context.Context, restaurantID snowflake.ID, key period.Key) (paymentdomain.PaymentRecord, error) {
	if restaurantID == 0 {
		return paymentdomain.PaymentRecord{}, paymentdomain.ErrInvalidRestaurant
	}
	if !key.Valid() {
		return paymentdomain.PaymentRecord{}, paymentdomain.ErrInvalidPeriod
	}

	var record paymentdomain.PaymentRecord
	err := s.db.WithContext(ctx).
		Where("restaurant_id = ? AND period_key = ?", restaurantID, string(key)).
		First(&record).Error
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return paymentdomain.PaymentRecord{}, s.wrapStoreErr(err)
	}

	// Lazy materialization: an unobserved period is simply awaiting.
	return paymentdomain.PaymentRecord{
		RestaurantID: restaurantID,
		PeriodKey:    string(key),
		Status:       paymentdomain.PaymentStatusAwaiting,
	}, nil
}

func (s *Service) ListByRestaurant(ctx context.Context, restaurantID snowflake.ID) ([]paymentdomain.PaymentRecord, error) {
	if restaurantID == 0 {
		return nil, paymentdomain.ErrInvalidRestaurant
	}

	var records []paymentdomain.PaymentRecord
	err := s.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("period_key ASC").
		Find(&records).Error
	if err != nil {
		return nil, s.wrapStoreErr(err)
	}
	return records, nil
}

func (s *Service) MarkPaid(ctx context.Context, restaurantID snowflake.ID, key period.Key) (paymentdomain.PaymentRecord, bool, error) {
	if restaurantID == 0 {
		return paymentdomain.PaymentRecord{}, false, paymentdomain.ErrInvalidRestaurant
	}
	if !key.Valid() {
		return paymentdomain.PaymentRecord{}, false, paymentdomain.ErrInvalidPeriod
	}

	now := s.clock.Now().UTC()
	var record paymentdomain.PaymentRecord
	transitioned := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Materialize the row if this is the first observation. The
		// unique index makes concurrent first observers collapse.
		insert := paymentdomain.PaymentRecord{
			ID:           s.genID.Generate(),
			RestaurantID: restaurantID,
			PeriodKey:    string(key),
			Status:       paymentdomain.PaymentStatusAwaiting,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "restaurant_id"}, {Name: "period_key"}},
			DoNothing: true,
		}).Create(&insert).Error; err != nil {
			return err
		}

		// Compare-and-set on status: only the first transition wins and
		// sets paid_at. A second call matches zero rows and is a no-op.
		result := tx.Exec(
			`UPDATE payment_records
			 SET status = ?, paid_at = ?, updated_at = ?
			 WHERE restaurant_id = ? AND period_key = ? AND status = ?`,
			paymentdomain.PaymentStatusPaid,
			now,
			now,
			restaurantID,
			string(key),
			paymentdomain.PaymentStatusAwaiting,
		)
		if result.Error != nil {
			return result.Error
		}
		transitioned = result.RowsAffected > 0

		return tx.
			Where("restaurant_id = ? AND period_key = ?", restaurantID, string(key)).
			First(&record).Error
	})
	if err != nil {
		s.log.Error("mark paid failed",
			zap.String("restaurant_id", restaurantID.String()),
			zap.String("period", string(key)),
			zap.Error(err),
		)
		return paymentdomain.PaymentRecord{}, false, s.wrapStoreErr(err)
	}

	if transitioned {
		s.log.Info("period marked paid",
			zap.String("restaurant_id", restaurantID.String()),
			zap.String("period", string(key)),
		)
	}
	return record, transitioned, nil
}

// wrapStoreErr tags transient failures as retryable; money mutations
// must never swallow them.
func (s *Service) wrapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	if db.IsRetryableErr(err) {
		return fmt.Errorf("%w: %v", paymentdomain.ErrStoreUnavailable, err)
	}
	return err
}
