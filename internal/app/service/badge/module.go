package badge

import "go.uber.org/fx"

// Module exposes the badge service via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
