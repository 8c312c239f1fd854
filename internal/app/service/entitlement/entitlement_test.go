package entitlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatflowers/washplan/pkg/types"
)

func TestIsWithinLimit(t *testing.T) {
	tests := []struct {
		name  string
		plan  types.PlanType
		kind  types.ResourceKind
		count int64
		want  bool
	}{
		{name: "trial under customer cap", plan: types.PlanTypeTrial, kind: types.ResourceKindCustomers, count: 24, want: true},
		{name: "trial at customer cap", plan: types.PlanTypeTrial, kind: types.ResourceKindCustomers, count: 25, want: false},
		{name: "trial over customer cap", plan: types.PlanTypeTrial, kind: types.ResourceKindCustomers, count: 26, want: false},
		{name: "starter under worker cap", plan: types.PlanTypeStarter, kind: types.ResourceKindWorkers, count: 9, want: true},
		{name: "starter at worker cap", plan: types.PlanTypeStarter, kind: types.ResourceKindWorkers, count: 10, want: false},
		{name: "professional under product cap", plan: types.PlanTypeProfessional, kind: types.ResourceKindProducts, count: 499, want: true},
		{name: "enterprise unlimited customers", plan: types.PlanTypeEnterprise, kind: types.ResourceKindCustomers, count: 1_000_000, want: true},
		{name: "enterprise unlimited workers", plan: types.PlanTypeEnterprise, kind: types.ResourceKindWorkers, count: 1_000_000, want: true},
		{name: "zero count always fits finite limit", plan: types.PlanTypeTrial, kind: types.ResourceKindProducts, count: 0, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsWithinLimit(tt.plan, tt.kind, tt.count))
		})
	}
}

// Once the count reaches a finite limit the check stays false for every
// larger count.
func TestIsWithinLimitMonotonic(t *testing.T) {
	for _, plan := range []types.PlanType{types.PlanTypeTrial, types.PlanTypeStarter, types.PlanTypeProfessional} {
		for _, kind := range []types.ResourceKind{types.ResourceKindCustomers, types.ResourceKindWorkers, types.ResourceKindProducts} {
			max := types.LimitsFor(plan).LimitFor(kind)
			require.NotNil(t, max)
			denied := false
			for n := int64(0); n <= *max+2; n++ {
				ok := IsWithinLimit(plan, kind, n)
				if denied {
					assert.False(t, ok, "plan=%s kind=%s count=%d", plan, kind, n)
				}
				if !ok {
					denied = true
				}
			}
			assert.True(t, denied)
		}
	}
}

func TestIsWithinLimitUnknownPlanFallsBackToTrial(t *testing.T) {
	assert.True(t, IsWithinLimit(types.PlanType("bogus"), types.ResourceKindCustomers, 24))
	assert.False(t, IsWithinLimit(types.PlanType("bogus"), types.ResourceKindCustomers, 25))
}

func TestHasFeature(t *testing.T) {
	assert.False(t, HasFeature(types.PlanTypeTrial, types.FeaturePaymentProcessing))
	assert.True(t, HasFeature(types.PlanTypeStarter, types.FeaturePaymentProcessing))
	assert.False(t, HasFeature(types.PlanTypeStarter, types.FeatureMonitoring))
	assert.True(t, HasFeature(types.PlanTypeProfessional, types.FeatureAPIAccess))
	assert.True(t, HasFeature(types.PlanTypeEnterprise, types.FeatureMultiLocationSupport))

	// Unknown plan defaults to the trial flag set.
	assert.False(t, HasFeature(types.PlanType("bogus"), types.FeatureAPIAccess))
}

func TestHasFeaturePanicsOnUnknownFlag(t *testing.T) {
	assert.Panics(t, func() {
		HasFeature(types.PlanTypeTrial, types.FeatureFlag("bogus"))
	})
}

func TestLimitForPanicsOnUnknownKind(t *testing.T) {
	assert.Panics(t, func() {
		types.LimitsFor(types.PlanTypeTrial).LimitFor(types.ResourceKind("bogus"))
	})
}
