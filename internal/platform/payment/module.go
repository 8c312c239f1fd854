package payment

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/washplan/pkg/config"
)

// NewProvider selects the Stripe provider when an API key is configured and
// falls back to the in-process mock otherwise, so dev environments run
// without Stripe credentials.
func NewProvider(cfg *config.Config, log *zap.SugaredLogger) Provider {
	if cfg.Stripe.APIKey == "" {
		log.Warnw("no stripe api key configured, using mock payment provider")
		return NewMockProvider()
	}
	return NewStripeProvider(cfg.Stripe.APIKey)
}

var Module = fx.Options(
	fx.Provide(NewProvider),
)
