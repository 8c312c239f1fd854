package notification

import "go.uber.org/fx"

// Module exposes the notification gate via Fx.
var Module = fx.Options(
	fx.Provide(NewGormStore),
	fx.Provide(NewGate),
)
