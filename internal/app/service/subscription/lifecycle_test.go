package subscription

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/washplan/internal/models"
	"github.com/fatflowers/washplan/internal/platform/payment"
	"github.com/fatflowers/washplan/pkg/cache"
	"github.com/fatflowers/washplan/pkg/config"
	"github.com/fatflowers/washplan/pkg/tool"
	"github.com/fatflowers/washplan/pkg/types"
)

type fakeNotifier struct {
	mu     sync.Mutex
	events []types.NotificationEvent
}

func (f *fakeNotifier) Dispatch(_ context.Context, _ string, event types.NotificationEvent, _ map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeNotifier) Events() []types.NotificationEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]types.NotificationEvent, len(f.events))
	copy(out, f.events)
	return out
}

func testConfig() *config.Config {
	return &config.Config{
		Subscription: config.SubscriptionConfig{
			TrialDuration:           48 * time.Hour,
			RenewalLookahead:        24 * time.Hour,
			CacheTTL:                time.Minute,
			NotificationDedupWindow: 24 * time.Hour,
		},
	}
}

func newTestService(store Store, c cache.Cache) (*Service, *fakeNotifier, *payment.MockProvider) {
	notifier := &fakeNotifier{}
	payments := payment.NewMockProvider()
	svc := NewService(testConfig(), store, c, notifier, payments, zap.NewNop().Sugar())
	return svc, notifier, payments
}

func seedActive(t *testing.T, store *MemoryStore, userID string, periodEnd time.Time) *models.Subscription {
	t.Helper()
	start := periodEnd.AddDate(0, -1, 0)
	customerID := "cus_test_1"
	subscriptionID := "sub_test_1"
	priceID := "price_test_1"
	rec := &models.Subscription{
		ID:                   tool.GenerateUUIDV7(),
		UserID:               userID,
		PlanType:             types.PlanTypeStarter,
		Status:               types.SubscriptionStatusActive,
		CurrentPeriodStart:   &start,
		CurrentPeriodEnd:     &periodEnd,
		StripeCustomerID:     &customerID,
		StripeSubscriptionID: &subscriptionID,
		StripePriceID:        &priceID,
	}
	require.NoError(t, store.Create(context.Background(), rec))
	return rec
}

func TestCreateTrial(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc, _, _ := newTestService(store, cache.Noop())
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	rec, err := svc.CreateTrial(ctx, "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, types.SubscriptionStatusTrial, rec.Status)
	assert.Equal(t, types.PlanTypeTrial, rec.PlanType)
	require.NotNil(t, rec.TrialEndsAt)
	assert.Equal(t, now.Add(48*time.Hour), *rec.TrialEndsAt)
	assert.Nil(t, rec.CurrentPeriodStart)
	assert.Nil(t, rec.CurrentPeriodEnd)

	_, err = svc.CreateTrial(ctx, "tenant-1")
	assert.ErrorIs(t, err, ErrAlreadyExists)

	assert.Eventually(t, func() bool {
		logs := store.Logs()
		return len(logs) == 1 && logs[0].Reason == types.SubscriptionChangeReasonTrialStarted
	}, time.Second, 10*time.Millisecond)
}

func TestRequestCancellation(t *testing.T) {
	ctx := context.Background()

	t.Run("missing record", func(t *testing.T) {
		svc, _, _ := newTestService(NewMemoryStore(), cache.Noop())
		_, err := svc.RequestCancellation(ctx, "tenant-1", "tenant-1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("trial is not active", func(t *testing.T) {
		store := NewMemoryStore()
		svc, _, _ := newTestService(store, cache.Noop())
		_, err := svc.CreateTrial(ctx, "tenant-1")
		require.NoError(t, err)

		_, err = svc.RequestCancellation(ctx, "tenant-1", "tenant-1")
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("active then repeat", func(t *testing.T) {
		store := NewMemoryStore()
		svc, _, _ := newTestService(store, cache.Noop())
		seedActive(t, store, "tenant-1", time.Now().AddDate(0, 0, 10))

		rec, err := svc.RequestCancellation(ctx, "tenant-1", "tenant-1")
		require.NoError(t, err)
		assert.True(t, rec.CancellationRequested)
		assert.NotNil(t, rec.CancellationRequestedAt)
		assert.Equal(t, types.SubscriptionStatusActive, rec.Status)

		_, err = svc.RequestCancellation(ctx, "tenant-1", "tenant-1")
		assert.ErrorIs(t, err, ErrAlreadyRequested)
	})
}

func TestResolveCancellationApprove(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc, notifier, payments := newTestService(store, cache.Noop())
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	seedActive(t, store, "tenant-1", now.AddDate(0, 0, 10))
	_, err := svc.RequestCancellation(ctx, "tenant-1", "tenant-1")
	require.NoError(t, err)

	rec, err := svc.ResolveCancellation(ctx, "tenant-1", "admin-1", true)
	require.NoError(t, err)

	assert.Equal(t, types.SubscriptionStatusTrial, rec.Status)
	assert.Equal(t, types.PlanTypeTrial, rec.PlanType)
	require.NotNil(t, rec.TrialEndsAt)
	assert.Equal(t, now.Add(48*time.Hour), *rec.TrialEndsAt)
	assert.Nil(t, rec.CurrentPeriodStart)
	assert.Nil(t, rec.CurrentPeriodEnd)
	assert.Nil(t, rec.StripeSubscriptionID)
	assert.Nil(t, rec.StripePriceID)
	require.NotNil(t, rec.StripeCustomerID)
	assert.Equal(t, "cus_test_1", *rec.StripeCustomerID)
	assert.False(t, rec.CancellationRequested)
	assert.Nil(t, rec.CancellationRequestedAt)
	assert.True(t, rec.CancellationApproved)
	require.NotNil(t, rec.CancellationApprovedBy)
	assert.Equal(t, "admin-1", *rec.CancellationApprovedBy)

	assert.Eventually(t, func() bool {
		canceled := payments.CanceledIDs()
		return len(canceled) == 1 && canceled[0] == "sub_test_1"
	}, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		events := notifier.Events()
		return len(events) == 1 && events[0] == types.NotificationEventCancellationOutcome
	}, time.Second, 10*time.Millisecond)
}

func TestResolveCancellationReject(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc, _, _ := newTestService(store, cache.Noop())

	seedActive(t, store, "tenant-1", time.Now().AddDate(0, 0, 10))
	_, err := svc.RequestCancellation(ctx, "tenant-1", "tenant-1")
	require.NoError(t, err)

	rec, err := svc.ResolveCancellation(ctx, "tenant-1", "admin-1", false)
	require.NoError(t, err)

	assert.Equal(t, types.SubscriptionStatusActive, rec.Status)
	assert.NotNil(t, rec.CurrentPeriodEnd)
	assert.NotNil(t, rec.StripeSubscriptionID)
	assert.False(t, rec.CancellationRequested)
	assert.False(t, rec.CancellationApproved)
	assert.Nil(t, rec.CancellationApprovedAt)
	assert.Nil(t, rec.CancellationApprovedBy)
}

func TestResolveCancellationGuards(t *testing.T) {
	ctx := context.Background()

	t.Run("missing record", func(t *testing.T) {
		svc, _, _ := newTestService(NewMemoryStore(), cache.Noop())
		_, err := svc.ResolveCancellation(ctx, "tenant-1", "admin-1", true)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("no open request", func(t *testing.T) {
		store := NewMemoryStore()
		svc, _, _ := newTestService(store, cache.Noop())
		seedActive(t, store, "tenant-1", time.Now().AddDate(0, 0, 10))

		_, err := svc.ResolveCancellation(ctx, "tenant-1", "admin-1", true)
		assert.ErrorIs(t, err, ErrNoPendingRequest)
	})
}

func TestApproveRenewal(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc, _, _ := newTestService(store, cache.Noop())
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	// Period end in the past simulates a delayed approval: the new end is
	// still measured from the old end, not from now.
	oldEnd := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rec := seedActive(t, store, "tenant-1", oldEnd)
	rec.PendingRenewal = true
	require.NoError(t, store.Save(ctx, rec))

	got, err := svc.ApproveRenewal(ctx, "tenant-1", "admin-1")
	require.NoError(t, err)
	require.NotNil(t, got.CurrentPeriodEnd)
	assert.Equal(t, oldEnd.AddDate(0, 1, 0), *got.CurrentPeriodEnd)
	assert.Equal(t, types.SubscriptionStatusActive, got.Status)
	assert.False(t, got.PendingRenewal)
	require.NotNil(t, got.RenewalApprovedBy)
	assert.Equal(t, "admin-1", *got.RenewalApprovedBy)

	// Second approval finds the flag cleared; no double extension.
	_, err = svc.ApproveRenewal(ctx, "tenant-1", "admin-1")
	assert.ErrorIs(t, err, ErrNotPendingRenewal)

	again, err := store.GetByUserID(ctx, "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, oldEnd.AddDate(0, 1, 0), *again.CurrentPeriodEnd)
}

func TestApprovePendingSubscription(t *testing.T) {
	ctx := context.Background()

	t.Run("missing record", func(t *testing.T) {
		svc, _, _ := newTestService(NewMemoryStore(), cache.Noop())
		_, err := svc.ApprovePendingSubscription(ctx, "no-such-id", "admin-1", true)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("not pending", func(t *testing.T) {
		store := NewMemoryStore()
		svc, _, _ := newTestService(store, cache.Noop())
		rec := seedActive(t, store, "tenant-1", time.Now().AddDate(0, 0, 10))

		_, err := svc.ApprovePendingSubscription(ctx, rec.ID, "admin-1", true)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("approve activates with fresh period", func(t *testing.T) {
		store := NewMemoryStore()
		svc, notifier, _ := newTestService(store, cache.Noop())
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		svc.now = func() time.Time { return now }

		rec, err := svc.ActivatePurchase(ctx, "tenant-1", types.PlanTypeProfessional, "cus_1", "sub_1", "price_1")
		require.NoError(t, err)
		require.Equal(t, types.SubscriptionStatusPending, rec.Status)

		got, err := svc.ApprovePendingSubscription(ctx, rec.ID, "admin-1", true)
		require.NoError(t, err)
		assert.Equal(t, types.SubscriptionStatusActive, got.Status)
		require.NotNil(t, got.CurrentPeriodStart)
		require.NotNil(t, got.CurrentPeriodEnd)
		assert.Equal(t, now, *got.CurrentPeriodStart)
		assert.Equal(t, now.AddDate(0, 1, 0), *got.CurrentPeriodEnd)
		assert.Nil(t, got.TrialEndsAt)

		assert.Eventually(t, func() bool {
			events := notifier.Events()
			return len(events) == 1 && events[0] == types.NotificationEventStatusChange
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("reject cancels without touching periods", func(t *testing.T) {
		store := NewMemoryStore()
		svc, _, _ := newTestService(store, cache.Noop())
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		svc.now = func() time.Time { return now }

		rec, err := svc.ActivatePurchase(ctx, "tenant-1", types.PlanTypeStarter, "cus_1", "sub_1", "price_1")
		require.NoError(t, err)

		got, err := svc.ApprovePendingSubscription(ctx, rec.ID, "admin-1", false)
		require.NoError(t, err)
		assert.Equal(t, types.SubscriptionStatusCanceled, got.Status)
		require.NotNil(t, got.CanceledAt)
		assert.Equal(t, now, *got.CanceledAt)
		assert.Nil(t, got.CurrentPeriodStart)
		assert.Nil(t, got.CurrentPeriodEnd)
	})
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("trial plan rejected", func(t *testing.T) {
		svc, _, _ := newTestService(NewMemoryStore(), cache.Noop())
		_, err := svc.Checkout(ctx, "tenant-1", "owner@example.com", types.PlanTypeTrial)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("fresh tenant goes pending", func(t *testing.T) {
		store := NewMemoryStore()
		svc, _, payments := newTestService(store, cache.Noop())

		rec, err := svc.Checkout(ctx, "tenant-1", "owner@example.com", types.PlanTypeStarter)
		require.NoError(t, err)
		assert.Equal(t, types.SubscriptionStatusPending, rec.Status)
		assert.Equal(t, types.PlanTypeStarter, rec.PlanType)
		require.NotNil(t, rec.StripeCustomerID)
		require.NotNil(t, rec.StripeSubscriptionID)
		assert.Equal(t, payments.Customers["tenant-1"], *rec.StripeCustomerID)
	})

	t.Run("trial tenant replaced in place", func(t *testing.T) {
		store := NewMemoryStore()
		svc, _, _ := newTestService(store, cache.Noop())
		trial, err := svc.CreateTrial(ctx, "tenant-1")
		require.NoError(t, err)

		rec, err := svc.Checkout(ctx, "tenant-1", "owner@example.com", types.PlanTypeProfessional)
		require.NoError(t, err)
		assert.Equal(t, trial.ID, rec.ID)
		assert.Equal(t, types.SubscriptionStatusPending, rec.Status)
		assert.Nil(t, rec.TrialEndsAt)
	})

	t.Run("active tenant rejected", func(t *testing.T) {
		store := NewMemoryStore()
		svc, _, _ := newTestService(store, cache.Noop())
		seedActive(t, store, "tenant-1", time.Now().AddDate(0, 0, 10))

		_, err := svc.Checkout(ctx, "tenant-1", "owner@example.com", types.PlanTypeStarter)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("pending tenant rejected", func(t *testing.T) {
		store := NewMemoryStore()
		svc, _, _ := newTestService(store, cache.Noop())
		_, err := svc.Checkout(ctx, "tenant-1", "owner@example.com", types.PlanTypeStarter)
		require.NoError(t, err)

		_, err = svc.Checkout(ctx, "tenant-1", "owner@example.com", types.PlanTypeStarter)
		assert.ErrorIs(t, err, ErrAlreadyExists)
	})
}

func TestStoreFailuresAreNotNotFound(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.GetErr = storeErr("get subscription by user", assert.AnError)
	svc, _, _ := newTestService(store, cache.Noop())

	_, err := svc.RequestCancellation(ctx, "tenant-1", "tenant-1")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.NotErrorIs(t, err, ErrNotFound)

	_, err = svc.CreateTrial(ctx, "tenant-1")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}
