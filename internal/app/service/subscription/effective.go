package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatflowers/washplan/internal/models"
	"github.com/fatflowers/washplan/pkg/logctx"
	"github.com/fatflowers/washplan/pkg/types"
)

// EffectiveSubscription is the record plus the flags derived at read time.
type EffectiveSubscription struct {
	Record              *models.Subscription `json:"record"`
	IsExpired           bool                 `json:"is_expired"`
	IsPendingRenewalDue bool                 `json:"is_pending_renewal_due"`
}

// GetEffectiveSubscription returns the tenant's record with derived expiry and
// renewal-due flags. An absent record returns (nil, nil). Stored rows can
// carry impossible state; an active row without a valid billing period is
// treated as not active instead of trusted.
func (s *Service) GetEffectiveSubscription(ctx context.Context, userID string) (*EffectiveSubscription, error) {
	rec, err := s.fetch(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get effective subscription: %w", err)
	}

	now := s.now()
	return &EffectiveSubscription{
		Record:              rec,
		IsExpired:           isExpired(rec, now),
		IsPendingRenewalDue: s.isPendingRenewalDue(rec, now),
	}, nil
}

// fetch is the cache-assisted read. The cache is advisory: a miss or a
// disabled cache just falls through to the store.
func (s *Service) fetch(ctx context.Context, userID string) (*models.Subscription, error) {
	if v, ok := s.cache.Get(cacheKey(userID)); ok {
		if rec, ok := v.(*models.Subscription); ok {
			return rec, nil
		}
	}

	rec, err := s.store.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(cacheKey(userID), rec, s.cfg.Subscription.CacheTTL)
	return rec, nil
}

func isExpired(rec *models.Subscription, now time.Time) bool {
	switch rec.Status {
	case types.SubscriptionStatusActive:
		return !rec.HasValidBillingPeriod() || !rec.CurrentPeriodEnd.After(now)
	case types.SubscriptionStatusTrial:
		return rec.TrialEndsAt == nil || !rec.TrialEndsAt.After(now)
	default:
		return false
	}
}

func (s *Service) isPendingRenewalDue(rec *models.Subscription, now time.Time) bool {
	if rec.Status != types.SubscriptionStatusActive || rec.PendingRenewal || !rec.HasValidBillingPeriod() {
		return false
	}
	end := *rec.CurrentPeriodEnd
	return end.After(now) && !end.After(now.Add(s.cfg.Subscription.RenewalLookahead))
}

// MarkRenewalDue flags the subscription as awaiting a renewal decision once
// the active period enters the lookahead window, and sends the renewal-due
// notice. ErrInvalidState when the record is not in the window or already
// flagged, so repeated polling never double-notifies.
func (s *Service) MarkRenewalDue(ctx context.Context, userID string) (*models.Subscription, error) {
	rec, err := s.store.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !s.isPendingRenewalDue(rec, now) {
		return nil, ErrInvalidState
	}

	before := cloneRecord(rec)
	rec.PendingRenewal = true
	rec.RenewalNotificationSentAt = &now
	if err := s.store.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to mark renewal due: %w", err)
	}
	s.cache.Delete(cacheKey(userID))

	logctx.FromCtx(ctx, s.log).Infof("renewal due, user_id=%s, period_end=%s", userID, rec.CurrentPeriodEnd)
	s.logChange(ctx, before, rec, types.SubscriptionChangeReasonRenewalDue, "")
	s.notify(ctx, userID, types.NotificationEventRenewalDue, map[string]any{
		"current_period_end": rec.CurrentPeriodEnd,
		"plan_type":          rec.PlanType,
	})
	return rec, nil
}
