package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	orderdomain "github.com/smallbiznis/platefee/internal/order/domain"
	"github.com/smallbiznis/platefee/pkg/db/option"
	"github.com/smallbiznis/platefee/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node

	orderrepo repository.Repository[orderdomain.Order]
}

func NewService(p Params) orderdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("order.service"),
		genID: p.GenID,

		orderrepo: repository.ProvideStore[orderdomain.Order](p.DB),
	}
}

func (s *Service) Record(ctx context.Context, req orderdomain.RecordOrderRequest) (orderdomain.Order, error) {
	restaurantID, err := snowflake.ParseString(strings.TrimSpace(req.RestaurantID))
	if err != nil || restaurantID == 0 {
		return orderdomain.Order{}, orderdomain.ErrInvalidRestaurant
	}

	if req.OriginalTotal < 0 || req.CouponDiscount < 0 {
		return orderdomain.Order{}, orderdomain.ErrInvalidAmount
	}

	placedAt := time.Now().UTC()
	if strings.TrimSpace(req.PlacedAt) != "" {
		parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(req.PlacedAt))
		if err != nil {
			return orderdomain.Order{}, orderdomain.ErrInvalidPlacedAt
		}
		placedAt = parsed.UTC()
	}

	total := req.OriginalTotal - req.CouponDiscount
	if total < 0 {
		total = 0
	}

	row := orderdomain.Order{
		ID:             s.genID.Generate(),
		RestaurantID:   restaurantID,
		Status:         orderdomain.OrderStatusPlaced,
		Total:          total,
		OriginalTotal:  req.OriginalTotal,
		CouponDiscount: req.CouponDiscount,
		CouponCode:     strings.TrimSpace(req.CouponCode),
		PlacedAt:       placedAt,
	}

	if err := s.orderrepo.Create(ctx, &row); err != nil {
		s.log.Error("failed to record order",
			zap.String("restaurant_id", restaurantID.String()),
			zap.Error(err),
		)
		return orderdomain.Order{}, err
	}

	return row, nil
}

func (s *Service) ListByRestaurant(ctx context.Context, restaurantID string) ([]orderdomain.Order, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(restaurantID))
	if err != nil || id == 0 {
		return nil, orderdomain.ErrInvalidRestaurant
	}

	rows, err := s.orderrepo.Find(ctx,
		&orderdomain.Order{RestaurantID: id},
		option.WithOrder("placed_at DESC"),
	)
	if err != nil {
		return nil, err
	}

	out := make([]orderdomain.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	return out, nil
}
