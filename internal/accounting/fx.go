package accounting

import (
	"github.com/smallbiznis/platefee/internal/accounting/service"
	"go.uber.org/fx"
)

var Module = fx.Module("accounting.service",
	fx.Provide(service.NewService),
)
