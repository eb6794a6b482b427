// Package seed populates demo data so a fresh install has something to
// look at. Seeding is idempotent and only runs when explicitly enabled.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	orderdomain "github.com/smallbiznis/platefee/internal/order/domain"
	restaurantdomain "github.com/smallbiznis/platefee/internal/restaurant/domain"
	"gorm.io/gorm"
)

type demoRestaurant struct {
	Name     string
	Email    string
	Cuisines []string
	Orders   []demoOrder
}

type demoOrder struct {
	OriginalTotal  int64
	CouponDiscount int64
	CouponCode     string
	DaysAgo        int
}

var demoRestaurants = []demoRestaurant{
	{
		Name:     "Warung Makan Sederhana",
		Email:    "warung@example.com",
		Cuisines: []string{"indonesian"},
		Orders: []demoOrder{
			{OriginalTotal: 185000, DaysAgo: 20},
			{OriginalTotal: 92000, CouponDiscount: 10000, CouponCode: "HEMAT10", DaysAgo: 19},
			{OriginalTotal: 143000, DaysAgo: 12},
			{OriginalTotal: 67000, DaysAgo: 4},
		},
	},
	{
		Name:     "Golden Dragon Express",
		Email:    "dragon@example.com",
		Cuisines: []string{"chinese", "noodles"},
		Orders: []demoOrder{
			{OriginalTotal: 250000, CouponDiscount: 25000, CouponCode: "WELCOME", DaysAgo: 11},
			{OriginalTotal: 120000, DaysAgo: 3},
		},
	},
}

// EnsureDemoData seeds demo restaurants and a spread of orders across
// recent billing weeks. Safe to call on every boot.
func EnsureDemoData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(2)
	if err != nil {
		return err
	}

	ctx := context.Background()
	now := time.Now().UTC()

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, demo := range demoRestaurants {
			restaurant, created, err := ensureRestaurantTx(ctx, tx, node, demo)
			if err != nil {
				return err
			}
			if !created {
				continue
			}

			for _, order := range demo.Orders {
				total := order.OriginalTotal - order.CouponDiscount
				if total < 0 {
					total = 0
				}
				row := orderdomain.Order{
					ID:             node.Generate(),
					RestaurantID:   restaurant.ID,
					Status:         orderdomain.OrderStatusDelivered,
					Total:          total,
					OriginalTotal:  order.OriginalTotal,
					CouponDiscount: order.CouponDiscount,
					CouponCode:     order.CouponCode,
					PlacedAt:       now.AddDate(0, 0, -order.DaysAgo),
					CreatedAt:      now,
				}
				if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func ensureRestaurantTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, demo demoRestaurant) (restaurantdomain.Restaurant, bool, error) {
	var existing restaurantdomain.Restaurant
	err := tx.WithContext(ctx).
		Where("slug = ?", slug.Make(demo.Name)).
		First(&existing).Error
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return restaurantdomain.Restaurant{}, false, err
	}

	now := time.Now().UTC()
	row := restaurantdomain.Restaurant{
		ID:        node.Generate(),
		Name:      demo.Name,
		Slug:      slug.Make(demo.Name),
		Email:     demo.Email,
		Cuisines:  demo.Cuisines,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
		return restaurantdomain.Restaurant{}, false, err
	}
	return row, true, nil
}
