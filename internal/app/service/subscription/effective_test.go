package subscription

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatflowers/washplan/internal/models"
	"github.com/fatflowers/washplan/pkg/cache"
	"github.com/fatflowers/washplan/pkg/tool"
	"github.com/fatflowers/washplan/pkg/types"
)

func TestGetEffectiveSubscriptionAbsent(t *testing.T) {
	svc, _, _ := newTestService(NewMemoryStore(), cache.Noop())

	eff, err := svc.GetEffectiveSubscription(context.Background(), "tenant-1")
	require.NoError(t, err)
	assert.Nil(t, eff)
}

func TestGetEffectiveSubscriptionDerivedFlags(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	past := now.Add(-time.Hour)
	soon := now.Add(12 * time.Hour)
	later := now.AddDate(0, 0, 10)
	start := now.AddDate(0, -1, 0)

	tests := []struct {
		name        string
		rec         *models.Subscription
		wantExpired bool
		wantDue     bool
	}{
		{
			name: "trial still running",
			rec: &models.Subscription{
				Status: types.SubscriptionStatusTrial, PlanType: types.PlanTypeTrial, TrialEndsAt: &later,
			},
		},
		{
			name: "trial ended",
			rec: &models.Subscription{
				Status: types.SubscriptionStatusTrial, PlanType: types.PlanTypeTrial, TrialEndsAt: &past,
			},
			wantExpired: true,
		},
		{
			name: "trial without end date",
			rec: &models.Subscription{
				Status: types.SubscriptionStatusTrial, PlanType: types.PlanTypeTrial,
			},
			wantExpired: true,
		},
		{
			name: "active with period ahead of lookahead",
			rec: &models.Subscription{
				Status: types.SubscriptionStatusActive, PlanType: types.PlanTypeStarter,
				CurrentPeriodStart: &start, CurrentPeriodEnd: &later,
			},
		},
		{
			name: "active inside renewal window",
			rec: &models.Subscription{
				Status: types.SubscriptionStatusActive, PlanType: types.PlanTypeStarter,
				CurrentPeriodStart: &start, CurrentPeriodEnd: &soon,
			},
			wantDue: true,
		},
		{
			name: "active already flagged",
			rec: &models.Subscription{
				Status: types.SubscriptionStatusActive, PlanType: types.PlanTypeStarter,
				CurrentPeriodStart: &start, CurrentPeriodEnd: &soon, PendingRenewal: true,
			},
		},
		{
			name: "active past period end",
			rec: &models.Subscription{
				Status: types.SubscriptionStatusActive, PlanType: types.PlanTypeStarter,
				CurrentPeriodStart: &start, CurrentPeriodEnd: &past,
			},
			wantExpired: true,
		},
		{
			// Impossible stored state must not be trusted as active.
			name: "active without period dates",
			rec: &models.Subscription{
				Status: types.SubscriptionStatusActive, PlanType: types.PlanTypeStarter,
			},
			wantExpired: true,
		},
		{
			name: "canceled is neither expired nor due",
			rec: &models.Subscription{
				Status: types.SubscriptionStatusCanceled, PlanType: types.PlanTypeStarter, CanceledAt: &past,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore()
			svc, _, _ := newTestService(store, cache.Noop())
			svc.now = func() time.Time { return now }

			tt.rec.ID = tool.GenerateUUIDV7()
			tt.rec.UserID = "tenant-1"
			require.NoError(t, store.Create(context.Background(), tt.rec))

			eff, err := svc.GetEffectiveSubscription(ctx, "tenant-1")
			require.NoError(t, err)
			require.NotNil(t, eff)
			assert.Equal(t, tt.wantExpired, eff.IsExpired)
			assert.Equal(t, tt.wantDue, eff.IsPendingRenewalDue)
		})
	}
}

func TestGetEffectiveSubscriptionCacheInvalidation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc, _, _ := newTestService(store, cache.New(time.Minute, time.Minute))

	seedActive(t, store, "tenant-1", time.Now().AddDate(0, 0, 10))

	// Prime the cache.
	eff, err := svc.GetEffectiveSubscription(ctx, "tenant-1")
	require.NoError(t, err)
	require.NotNil(t, eff)
	assert.False(t, eff.Record.CancellationRequested)

	// A mutation must evict the cached copy: the next read sees post-write
	// state even though the TTL has not elapsed.
	_, err = svc.RequestCancellation(ctx, "tenant-1", "tenant-1")
	require.NoError(t, err)

	eff, err = svc.GetEffectiveSubscription(ctx, "tenant-1")
	require.NoError(t, err)
	require.NotNil(t, eff)
	assert.True(t, eff.Record.CancellationRequested)
}

func TestGetEffectiveSubscriptionServesCacheWithinTTL(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := cache.New(time.Minute, time.Minute)
	svc, _, _ := newTestService(store, c)

	seedActive(t, store, "tenant-1", time.Now().AddDate(0, 0, 10))
	_, err := svc.GetEffectiveSubscription(ctx, "tenant-1")
	require.NoError(t, err)

	// The cache is advisory: once primed, a store outage does not break reads.
	store.GetErr = storeErr("get subscription by user", assert.AnError)
	eff, err := svc.GetEffectiveSubscription(ctx, "tenant-1")
	require.NoError(t, err)
	require.NotNil(t, eff)

	// After explicit invalidation the outage surfaces.
	c.Delete(cacheKey("tenant-1"))
	_, err = svc.GetEffectiveSubscription(ctx, "tenant-1")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestMarkRenewalDue(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("inside window", func(t *testing.T) {
		store := NewMemoryStore()
		svc, notifier, _ := newTestService(store, cache.Noop())
		svc.now = func() time.Time { return now }
		seedActive(t, store, "tenant-1", now.Add(12*time.Hour))

		rec, err := svc.MarkRenewalDue(ctx, "tenant-1")
		require.NoError(t, err)
		assert.True(t, rec.PendingRenewal)
		require.NotNil(t, rec.RenewalNotificationSentAt)
		assert.Equal(t, now, *rec.RenewalNotificationSentAt)

		assert.Eventually(t, func() bool {
			events := notifier.Events()
			return len(events) == 1 && events[0] == types.NotificationEventRenewalDue
		}, time.Second, 10*time.Millisecond)

		// Repeated polling finds the flag already set.
		_, err = svc.MarkRenewalDue(ctx, "tenant-1")
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("outside window", func(t *testing.T) {
		store := NewMemoryStore()
		svc, _, _ := newTestService(store, cache.Noop())
		svc.now = func() time.Time { return now }
		seedActive(t, store, "tenant-1", now.AddDate(0, 0, 10))

		_, err := svc.MarkRenewalDue(ctx, "tenant-1")
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("trial never due", func(t *testing.T) {
		store := NewMemoryStore()
		svc, _, _ := newTestService(store, cache.Noop())
		_, err := svc.CreateTrial(ctx, "tenant-1")
		require.NoError(t, err)

		_, err = svc.MarkRenewalDue(ctx, "tenant-1")
		assert.ErrorIs(t, err, ErrInvalidState)
	})
}
