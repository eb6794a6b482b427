package migration

import (
	auditdomain "github.com/smallbiznis/platefee/internal/audit/domain"
	"github.com/smallbiznis/platefee/internal/config"
	orderdomain "github.com/smallbiznis/platefee/internal/order/domain"
	paymentdomain "github.com/smallbiznis/platefee/internal/payment/domain"
	restaurantdomain "github.com/smallbiznis/platefee/internal/restaurant/domain"
	"github.com/smallbiznis/platefee/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// Versioned migrations are postgres-only; other dialects (sqlite
		// for local hacking, mysql) fall back to schema auto-migration.
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			if err := conn.AutoMigrate(
				&restaurantdomain.Restaurant{},
				&orderdomain.Order{},
				&paymentdomain.PaymentRecord{},
				&auditdomain.AuditLog{},
			); err != nil {
				return err
			}
		}

		if cfg.SeedDemoData {
			return seed.EnsureDemoData(conn)
		}
		return nil
	}),
)
