package config

import "go.uber.org/fx"

// Module wires application and enforcement policy configuration.
var Module = fx.Module("config",
	fx.Provide(
		Load,
		NewEnforcementConfigHolder,
	),
)
