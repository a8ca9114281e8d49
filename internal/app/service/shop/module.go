package shop

import "go.uber.org/fx"

// Module exposes the shop lifecycle service via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
