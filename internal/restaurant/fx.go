package restaurant

import (
	"github.com/smallbiznis/platefee/internal/restaurant/service"
	"go.uber.org/fx"
)

var Module = fx.Module("restaurant.service",
	fx.Provide(service.NewService),
)
