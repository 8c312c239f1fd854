package subscription

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatflowers/washplan/internal/models"
	"github.com/fatflowers/washplan/pkg/logctx"
	"github.com/fatflowers/washplan/pkg/tool"
	"github.com/fatflowers/washplan/pkg/types"
)

// CreateTrial creates the tenant's first subscription row. The trial duration
// comes from config; the state machine never reads the environment itself.
func (s *Service) CreateTrial(ctx context.Context, userID string) (*models.Subscription, error) {
	_, err := s.store.GetByUserID(ctx, userID)
	if err == nil {
		return nil, ErrAlreadyExists
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to create trial: %w", err)
	}

	now := s.now()
	trialEnd := now.Add(s.cfg.Subscription.TrialDuration)
	rec := &models.Subscription{
		ID:          tool.GenerateUUIDV7(),
		UserID:      userID,
		PlanType:    types.PlanTypeTrial,
		Status:      types.SubscriptionStatusTrial,
		TrialEndsAt: &trialEnd,
	}
	if err := s.store.Create(ctx, rec); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to create trial: %w", err)
	}
	s.cache.Delete(cacheKey(userID))

	logctx.FromCtx(ctx, s.log).Infof("trial started, user_id=%s, trial_ends_at=%s", userID, trialEnd)
	s.logChange(ctx, nil, rec, types.SubscriptionChangeReasonTrialStarted, "")
	return rec, nil
}

// Checkout provisions the remote billing objects for a paid plan and records
// the purchase as pending super-admin sign-off.
func (s *Service) Checkout(ctx context.Context, userID, email string, plan types.PlanType) (*models.Subscription, error) {
	if !isPaidPlan(plan) {
		return nil, ErrInvalidState
	}

	var customerID string
	rec, err := s.store.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to checkout: %w", err)
	}
	if rec != nil {
		// Fail before touching the payment authority when the row cannot
		// accept a purchase anyway.
		switch rec.Status {
		case types.SubscriptionStatusActive:
			return nil, ErrInvalidState
		case types.SubscriptionStatusPending:
			return nil, ErrAlreadyExists
		}
		if rec.StripeCustomerID != nil {
			customerID = *rec.StripeCustomerID
		}
	}

	if customerID == "" {
		customerID, err = s.payments.CreateCustomer(ctx, userID, email)
		if err != nil {
			return nil, fmt.Errorf("failed to create billing customer: %w", err)
		}
	}

	priceID, ok := s.cfg.Stripe.PriceIDs[string(plan)]
	if !ok {
		// The mock provider accepts any price id; real deployments configure
		// stripe.price_ids per plan.
		priceID = string(plan)
	}
	subscriptionID, err := s.payments.CreateSubscription(ctx, customerID, priceID)
	if err != nil {
		return nil, fmt.Errorf("failed to create billing subscription: %w", err)
	}

	return s.ActivatePurchase(ctx, userID, plan, customerID, subscriptionID, priceID)
}

// ActivatePurchase records a paid-plan checkout result as status=pending
// awaiting super-admin sign-off. One row per tenant: an existing trial or
// canceled row is rewritten in place as a fresh logical cycle.
func (s *Service) ActivatePurchase(ctx context.Context, userID string, plan types.PlanType, customerID, subscriptionID, priceID string) (*models.Subscription, error) {
	if !isPaidPlan(plan) {
		return nil, ErrInvalidState
	}

	rec, err := s.store.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to activate purchase: %w", err)
	}

	now := s.now()
	var before *models.Subscription
	if rec == nil {
		rec = &models.Subscription{
			ID:     tool.GenerateUUIDV7(),
			UserID: userID,
		}
	} else {
		switch rec.Status {
		case types.SubscriptionStatusActive:
			return nil, ErrInvalidState
		case types.SubscriptionStatusPending:
			return nil, ErrAlreadyExists
		}
		before = cloneRecord(rec)
	}

	rec.PlanType = plan
	rec.Status = types.SubscriptionStatusPending
	rec.TrialEndsAt = nil
	rec.CurrentPeriodStart = nil
	rec.CurrentPeriodEnd = nil
	rec.CanceledAt = nil
	rec.CancellationRequested = false
	rec.CancellationRequestedAt = nil
	rec.CancellationApproved = false
	rec.CancellationApprovedAt = nil
	rec.CancellationApprovedBy = nil
	rec.PendingRenewal = false
	rec.RenewalNotificationSentAt = nil
	rec.RenewalApprovedAt = nil
	rec.RenewalApprovedBy = nil
	rec.StripeCustomerID = &customerID
	rec.StripeSubscriptionID = &subscriptionID
	rec.StripePriceID = &priceID

	if before == nil {
		err = s.store.Create(ctx, rec)
	} else {
		err = s.store.Save(ctx, rec)
	}
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to activate purchase: %w", err)
	}
	s.cache.Delete(cacheKey(userID))

	logctx.FromCtx(ctx, s.log).Infof("purchase submitted, user_id=%s, plan=%s, at=%s", userID, plan, now)
	s.logChange(ctx, before, rec, types.SubscriptionChangeReasonPurchaseSubmitted, "")
	return rec, nil
}

// RequestCancellation opens a cancellation request on an active subscription.
// Status does not change and no email is sent; the tenant keeps access until
// a super-admin resolves the request.
func (s *Service) RequestCancellation(ctx context.Context, userID, requestedBy string) (*models.Subscription, error) {
	rec, err := s.store.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rec.Status != types.SubscriptionStatusActive {
		return nil, ErrInvalidState
	}
	if rec.CancellationRequested {
		return nil, ErrAlreadyRequested
	}

	now := s.now()
	before := cloneRecord(rec)
	rec.CancellationRequested = true
	rec.CancellationRequestedAt = &now
	if err := s.store.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to request cancellation: %w", err)
	}
	s.cache.Delete(cacheKey(userID))

	logctx.FromCtx(ctx, s.log).Infof("cancellation requested, user_id=%s, requested_by=%s", userID, requestedBy)
	s.logChange(ctx, before, rec, types.SubscriptionChangeReasonCancellationRequested, requestedBy)
	return rec, nil
}

// ResolveCancellation closes an open cancellation request. Approval reverts
// the tenant to a fresh trial and releases the remote billing subscription;
// the customer reference is retained for re-subscription. Rejection only
// clears the request flags.
func (s *Service) ResolveCancellation(ctx context.Context, userID, approverID string, approve bool) (*models.Subscription, error) {
	rec, err := s.store.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !rec.CancellationRequested {
		return nil, ErrNoPendingRequest
	}

	now := s.now()
	before := cloneRecord(rec)
	var reason types.SubscriptionChangeReason
	var remoteSubscriptionID string

	if approve {
		if rec.StripeSubscriptionID != nil {
			remoteSubscriptionID = *rec.StripeSubscriptionID
		}
		trialEnd := now.Add(s.cfg.Subscription.TrialDuration)
		rec.Status = types.SubscriptionStatusTrial
		rec.PlanType = types.PlanTypeTrial
		rec.TrialEndsAt = &trialEnd
		rec.CurrentPeriodStart = nil
		rec.CurrentPeriodEnd = nil
		rec.StripeSubscriptionID = nil
		rec.StripePriceID = nil
		rec.CancellationRequested = false
		rec.CancellationRequestedAt = nil
		rec.CancellationApproved = true
		rec.CancellationApprovedAt = &now
		rec.CancellationApprovedBy = &approverID
		rec.PendingRenewal = false
		rec.RenewalNotificationSentAt = nil
		reason = types.SubscriptionChangeReasonCancellationApproved
	} else {
		rec.CancellationRequested = false
		rec.CancellationRequestedAt = nil
		rec.CancellationApproved = false
		rec.CancellationApprovedAt = nil
		rec.CancellationApprovedBy = nil
		reason = types.SubscriptionChangeReasonCancellationRejected
	}

	if err := s.store.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to resolve cancellation: %w", err)
	}
	s.cache.Delete(cacheKey(userID))

	if remoteSubscriptionID != "" && s.payments != nil {
		go func() {
			if err := s.payments.CancelSubscription(context.WithoutCancel(ctx), remoteSubscriptionID); err != nil {
				logctx.FromCtx(ctx, s.log).Errorf("failed to cancel remote subscription %s: %v", remoteSubscriptionID, err)
			}
		}()
	}

	logctx.FromCtx(ctx, s.log).Infof("cancellation resolved, user_id=%s, approver=%s, approve=%t", userID, approverID, approve)
	s.logChange(ctx, before, rec, reason, approverID)
	s.notify(ctx, userID, types.NotificationEventCancellationOutcome, map[string]any{
		"approved": approve,
		"status":   rec.Status,
	})
	return rec, nil
}

// ApproveRenewal extends the billing period by one month measured from the
// previous period end, not from the call time, so a delayed approval never
// shortens the cycle. The pendingRenewal guard makes a repeat call fail with
// ErrNotPendingRenewal instead of double-extending.
func (s *Service) ApproveRenewal(ctx context.Context, userID, approverID string) (*models.Subscription, error) {
	rec, err := s.store.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !rec.PendingRenewal {
		return nil, ErrNotPendingRenewal
	}
	if rec.CurrentPeriodEnd == nil {
		return nil, ErrInvalidState
	}

	now := s.now()
	before := cloneRecord(rec)
	newEnd := rec.CurrentPeriodEnd.AddDate(0, 1, 0)
	rec.CurrentPeriodEnd = &newEnd
	rec.Status = types.SubscriptionStatusActive
	rec.PendingRenewal = false
	rec.RenewalNotificationSentAt = nil
	rec.RenewalApprovedAt = &now
	rec.RenewalApprovedBy = &approverID

	if err := s.store.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to approve renewal: %w", err)
	}
	s.cache.Delete(cacheKey(userID))

	logctx.FromCtx(ctx, s.log).Infof("renewal approved, user_id=%s, approver=%s, new_period_end=%s", userID, approverID, newEnd)
	s.logChange(ctx, before, rec, types.SubscriptionChangeReasonRenewalApproved, approverID)
	return rec, nil
}

// ApprovePendingSubscription resolves an initial paid-plan purchase awaiting
// super-admin sign-off, addressed by subscription id.
func (s *Service) ApprovePendingSubscription(ctx context.Context, subscriptionID, approverID string, approve bool) (*models.Subscription, error) {
	rec, err := s.store.GetByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if rec.Status != types.SubscriptionStatusPending {
		return nil, ErrInvalidState
	}

	now := s.now()
	before := cloneRecord(rec)
	var reason types.SubscriptionChangeReason

	if approve {
		start := now
		end := now.AddDate(0, 1, 0)
		rec.Status = types.SubscriptionStatusActive
		rec.CurrentPeriodStart = &start
		rec.CurrentPeriodEnd = &end
		rec.TrialEndsAt = nil
		reason = types.SubscriptionChangeReasonPurchaseApproved
	} else {
		rec.Status = types.SubscriptionStatusCanceled
		rec.CanceledAt = &now
		reason = types.SubscriptionChangeReasonPurchaseRejected
	}

	if err := s.store.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to approve pending subscription: %w", err)
	}
	s.cache.Delete(cacheKey(rec.UserID))

	logctx.FromCtx(ctx, s.log).Infof("pending subscription resolved, id=%s, user_id=%s, approver=%s, approve=%t", subscriptionID, rec.UserID, approverID, approve)
	s.logChange(ctx, before, rec, reason, approverID)
	s.notify(ctx, rec.UserID, types.NotificationEventStatusChange, map[string]any{
		"approved": approve,
		"status":   rec.Status,
	})
	return rec, nil
}

// ListSubscriptions is the super-admin list page query.
func (s *Service) ListSubscriptions(ctx context.Context, req *ScanRequest) (*ScanResponse, error) {
	resp, err := s.store.Scan(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return resp, nil
}

func isPaidPlan(plan types.PlanType) bool {
	switch plan {
	case types.PlanTypeStarter, types.PlanTypeProfessional, types.PlanTypeEnterprise:
		return true
	default:
		return false
	}
}
