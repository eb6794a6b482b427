package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	restaurantdomain "github.com/smallbiznis/platefee/internal/restaurant/domain"
	"github.com/smallbiznis/platefee/pkg/db"
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

	restaurantrepo repository.Repository[restaurantdomain.Restaurant]
}

func NewService(p Params) restaurantdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("restaurant.service"),
		genID: p.GenID,

		restaurantrepo: repository.ProvideStore[restaurantdomain.Restaurant](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req restaurantdomain.CreateRestaurantRequest) (restaurantdomain.Restaurant, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return restaurantdomain.Restaurant{}, restaurantdomain.ErrInvalidName
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return restaurantdomain.Restaurant{}, restaurantdomain.ErrInvalidEmail
	}

	now := time.Now().UTC()
	row := restaurantdomain.Restaurant{
		ID:        s.genID.Generate(),
		Name:      name,
		Slug:      slug.Make(name),
		Email:     email,
		Cuisines:  req.Cuisines,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.restaurantrepo.Create(ctx, &row); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return restaurantdomain.Restaurant{}, restaurantdomain.ErrSlugTaken
		}
		s.log.Error("failed to create restaurant", zap.String("slug", row.Slug), zap.Error(err))
		return restaurantdomain.Restaurant{}, err
	}

	return row, nil
}

func (s *Service) List(ctx context.Context) ([]restaurantdomain.Restaurant, error) {
	rows, err := s.restaurantrepo.Find(ctx,
		&restaurantdomain.Restaurant{},
		option.WithOrder("created_at ASC"),
	)
	if err != nil {
		return nil, err
	}

	out := make([]restaurantdomain.Restaurant, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (restaurantdomain.Restaurant, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return restaurantdomain.Restaurant{}, restaurantdomain.ErrInvalidID
	}

	row, err := s.restaurantrepo.FindOne(ctx, &restaurantdomain.Restaurant{ID: parsed})
	if err != nil {
		return restaurantdomain.Restaurant{}, err
	}
	if row == nil {
		return restaurantdomain.Restaurant{}, restaurantdomain.ErrNotFound
	}
	return *row, nil
}
