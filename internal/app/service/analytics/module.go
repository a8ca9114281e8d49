package analytics

import "go.uber.org/fx"

// Module exposes the analytics service via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
