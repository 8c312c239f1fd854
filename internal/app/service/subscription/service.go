package subscription

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/fatflowers/washplan/internal/models"
	"github.com/fatflowers/washplan/internal/platform/payment"
	"github.com/fatflowers/washplan/pkg/cache"
	"github.com/fatflowers/washplan/pkg/config"
	"github.com/fatflowers/washplan/pkg/logctx"
	"github.com/fatflowers/washplan/pkg/tool"
	"github.com/fatflowers/washplan/pkg/types"
)

// Notifier delivers lifecycle emails. Implementations apply preference and
// dedup checks themselves and never return delivery failures.
type Notifier interface {
	Dispatch(ctx context.Context, userID string, event types.NotificationEvent, data map[string]any)
}

// Service owns the subscription lifecycle. All writes re-fetch the row before
// applying a transition guard; the cache is consulted on reads only and
// invalidated after every mutation.
type Service struct {
	cfg      *config.Config
	store    Store
	cache    cache.Cache
	notifier Notifier
	payments payment.Provider
	log      *zap.SugaredLogger
	now      func() time.Time
}

func NewService(
	cfg *config.Config,
	store Store,
	c cache.Cache,
	notifier Notifier,
	payments payment.Provider,
	log *zap.SugaredLogger,
) *Service {
	return &Service{
		cfg:      cfg,
		store:    store,
		cache:    c,
		notifier: notifier,
		payments: payments,
		log:      log,
		now:      time.Now,
	}
}

func cacheKey(userID string) string {
	return "subscription:" + userID
}

// logChange writes the audit row asynchronously; errors are logged but not
// returned to the caller.
func (s *Service) logChange(ctx context.Context, before, after *models.Subscription, reason types.SubscriptionChangeReason, operatorID string) {
	go func() {
		entry := &models.SubscriptionLog{
			ID:         tool.GenerateUUIDV7(),
			UserID:     after.UserID,
			Reason:     reason,
			OperatorID: operatorID,
			Before:     datatypes.NewJSONType(before),
			After:      datatypes.NewJSONType(after),
			Extra:      datatypes.JSONMap{},
		}
		if err := s.store.SaveLog(context.WithoutCancel(ctx), entry); err != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to save subscription log: %v", err)
		}
	}()
}

// notify dispatches after the authoritative write commits. The caller's
// response path never waits for delivery.
func (s *Service) notify(ctx context.Context, userID string, event types.NotificationEvent, data map[string]any) {
	if s.notifier == nil {
		return
	}
	go s.notifier.Dispatch(context.WithoutCancel(ctx), userID, event, data)
}
