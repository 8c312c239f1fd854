package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/fatflowers/washplan/internal/app/api/server"
	"github.com/fatflowers/washplan/internal/app/service/notification"
	"github.com/fatflowers/washplan/internal/app/service/subscription"
	"github.com/fatflowers/washplan/internal/platform/db"
	"github.com/fatflowers/washplan/internal/platform/mail"
	"github.com/fatflowers/washplan/internal/platform/payment"
	"github.com/fatflowers/washplan/pkg/cache"
	"github.com/fatflowers/washplan/pkg/config"
	"github.com/fatflowers/washplan/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

func newCache(cfg *config.Config) cache.Cache {
	ttl := cfg.Subscription.CacheTTL
	if ttl <= 0 {
		return cache.Noop()
	}
	return cache.New(ttl, ttl)
}

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	payment.Module,
	notification.Module,
	subscription.Module,
	server.Module,
	fx.Provide(
		newCache,
		func(cfg *config.Config) notification.Sender { return mail.NewMailer(cfg) },
		func(g *notification.Gate) subscription.Notifier { return g },
	),
)
