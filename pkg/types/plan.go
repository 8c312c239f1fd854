package types

import "fmt"

type ResourceKind string

const (
	ResourceKindCustomers ResourceKind = "customers"
	ResourceKindWorkers   ResourceKind = "workers"
	ResourceKindProducts  ResourceKind = "products"
)

type FeatureFlag string

const (
	FeatureAdvancedQueueSystem  FeatureFlag = "advanced_queue_system"
	FeaturePaymentProcessing    FeatureFlag = "payment_processing"
	FeatureMonitoring           FeatureFlag = "monitoring"
	FeatureMultiLocationSupport FeatureFlag = "multi_location_support"
	FeatureAPIAccess            FeatureFlag = "api_access"
)

// PlanLimits describes the resource caps and feature flags of a plan.
// A nil limit means unlimited. Loaded once at startup, never mutated.
type PlanLimits struct {
	Plan         PlanType             `json:"plan"`
	MaxCustomers *int64               `json:"max_customers"`
	MaxWorkers   *int64               `json:"max_workers"`
	MaxProducts  *int64               `json:"max_products"`
	Features     map[FeatureFlag]bool `json:"features"`
}

func limit(n int64) *int64 { return &n }

var planCatalog = map[PlanType]*PlanLimits{
	PlanTypeTrial: {
		Plan:         PlanTypeTrial,
		MaxCustomers: limit(25),
		MaxWorkers:   limit(3),
		MaxProducts:  limit(10),
		Features: map[FeatureFlag]bool{
			FeatureAdvancedQueueSystem:  false,
			FeaturePaymentProcessing:    false,
			FeatureMonitoring:           false,
			FeatureMultiLocationSupport: false,
			FeatureAPIAccess:            false,
		},
	},
	PlanTypeStarter: {
		Plan:         PlanTypeStarter,
		MaxCustomers: limit(200),
		MaxWorkers:   limit(10),
		MaxProducts:  limit(50),
		Features: map[FeatureFlag]bool{
			FeatureAdvancedQueueSystem:  true,
			FeaturePaymentProcessing:    true,
			FeatureMonitoring:           false,
			FeatureMultiLocationSupport: false,
			FeatureAPIAccess:            false,
		},
	},
	PlanTypeProfessional: {
		Plan:         PlanTypeProfessional,
		MaxCustomers: limit(2000),
		MaxWorkers:   limit(50),
		MaxProducts:  limit(500),
		Features: map[FeatureFlag]bool{
			FeatureAdvancedQueueSystem:  true,
			FeaturePaymentProcessing:    true,
			FeatureMonitoring:           true,
			FeatureMultiLocationSupport: false,
			FeatureAPIAccess:            true,
		},
	},
	PlanTypeEnterprise: {
		Plan:         PlanTypeEnterprise,
		MaxCustomers: nil,
		MaxWorkers:   nil,
		MaxProducts:  nil,
		Features: map[FeatureFlag]bool{
			FeatureAdvancedQueueSystem:  true,
			FeaturePaymentProcessing:    true,
			FeatureMonitoring:           true,
			FeatureMultiLocationSupport: true,
			FeatureAPIAccess:            true,
		},
	},
}

// LimitsFor returns the catalog entry for plan. An unknown plan falls back to
// the trial limits, the most restrictive tier.
func LimitsFor(plan PlanType) *PlanLimits {
	if l, ok := planCatalog[plan]; ok {
		return l
	}
	return planCatalog[PlanTypeTrial]
}

// LimitFor returns the cap for one resource kind. Nil means unlimited.
func (l *PlanLimits) LimitFor(kind ResourceKind) *int64 {
	switch kind {
	case ResourceKindCustomers:
		return l.MaxCustomers
	case ResourceKindWorkers:
		return l.MaxWorkers
	case ResourceKindProducts:
		return l.MaxProducts
	default:
		panic(fmt.Sprintf("unknown resource kind: %s", kind))
	}
}

// HasFeature reports whether the plan carries the feature flag. An unknown
// flag is a programming error and panics rather than silently returning false.
func (l *PlanLimits) HasFeature(flag FeatureFlag) bool {
	v, ok := l.Features[flag]
	if !ok {
		panic(fmt.Sprintf("unknown feature flag: %s", flag))
	}
	return v
}
