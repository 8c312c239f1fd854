package entitlement

import "github.com/fatflowers/washplan/pkg/types"

// Pure plan-limit checks. No I/O; callers supply the current count.

// IsWithinLimit reports whether the plan still has room for one more resource
// of the given kind. A nil catalog limit means unlimited.
func IsWithinLimit(plan types.PlanType, kind types.ResourceKind, currentCount int64) bool {
	max := types.LimitsFor(plan).LimitFor(kind)
	if max == nil {
		return true
	}
	return currentCount < *max
}

// HasFeature reports whether the plan carries the feature flag. Unknown plan
// types fall back to the trial catalog entry; unknown flags panic.
func HasFeature(plan types.PlanType, flag types.FeatureFlag) bool {
	return types.LimitsFor(plan).HasFeature(flag)
}
