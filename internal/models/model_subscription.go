package models

import (
	"time"

	"github.com/fatflowers/washplan/pkg/types"
	"gorm.io/datatypes"
)

// Subscription stores one tenant's subscription state. At most one row exists
// per user; the unique index on user_id backs the create-if-absent contract.
type Subscription struct {
	ID       string                   `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID   string                   `gorm:"column:user_id;type:varchar(64);not null;uniqueIndex" json:"user_id"`
	PlanType types.PlanType           `gorm:"column:plan_type;type:varchar(32);not null" json:"plan_type"`
	Status   types.SubscriptionStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`

	// CurrentPeriodStart/End are both set while status is active and both nil
	// otherwise. TrialEndsAt is set only while status is trial.
	CurrentPeriodStart *time.Time `gorm:"column:current_period_start;default:null" json:"current_period_start"`
	CurrentPeriodEnd   *time.Time `gorm:"column:current_period_end;default:null" json:"current_period_end"`
	TrialEndsAt        *time.Time `gorm:"column:trial_ends_at;default:null" json:"trial_ends_at"`
	CanceledAt         *time.Time `gorm:"column:canceled_at;default:null" json:"canceled_at"`

	// Cancellation request flags are set together and cleared together.
	CancellationRequested   bool       `gorm:"column:cancellation_requested;not null;default:false" json:"cancellation_requested"`
	CancellationRequestedAt *time.Time `gorm:"column:cancellation_requested_at;default:null" json:"cancellation_requested_at"`
	CancellationApproved    bool       `gorm:"column:cancellation_approved;not null;default:false" json:"cancellation_approved"`
	CancellationApprovedAt  *time.Time `gorm:"column:cancellation_approved_at;default:null" json:"cancellation_approved_at"`
	CancellationApprovedBy  *string    `gorm:"column:cancellation_approved_by;type:varchar(64);default:null" json:"cancellation_approved_by"`

	PendingRenewal            bool       `gorm:"column:pending_renewal;not null;default:false" json:"pending_renewal"`
	RenewalNotificationSentAt *time.Time `gorm:"column:renewal_notification_sent_at;default:null" json:"renewal_notification_sent_at"`
	RenewalApprovedAt         *time.Time `gorm:"column:renewal_approved_at;default:null" json:"renewal_approved_at"`
	RenewalApprovedBy         *string    `gorm:"column:renewal_approved_by;type:varchar(64);default:null" json:"renewal_approved_by"`

	// Opaque references owned by the payment authority. Stored and forwarded,
	// never interpreted.
	StripeCustomerID     *string `gorm:"column:stripe_customer_id;type:varchar(128);default:null" json:"stripe_customer_id"`
	StripeSubscriptionID *string `gorm:"column:stripe_subscription_id;type:varchar(128);default:null" json:"stripe_subscription_id"`
	StripePriceID        *string `gorm:"column:stripe_price_id;type:varchar(128);default:null" json:"stripe_price_id"`

	// Extra stores additional JSON data (for example checkout metadata).
	Extra     datatypes.JSON `gorm:"column:extra;type:jsonb;default:'{}'" json:"extra"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscription"
}

// HasValidBillingPeriod reports whether both period dates are present and
// ordered. Stored rows can carry impossible state; an active row failing this
// check must be treated as not active rather than trusted.
func (s *Subscription) HasValidBillingPeriod() bool {
	return s != nil &&
		s.CurrentPeriodStart != nil &&
		s.CurrentPeriodEnd != nil &&
		s.CurrentPeriodEnd.After(*s.CurrentPeriodStart)
}

// ActiveAt reports whether the row grants access at the given instant.
func (s *Subscription) ActiveAt(at time.Time) bool {
	if s == nil {
		return false
	}
	switch s.Status {
	case types.SubscriptionStatusActive:
		return s.HasValidBillingPeriod() && s.CurrentPeriodEnd.After(at)
	case types.SubscriptionStatusTrial:
		return s.TrialEndsAt != nil && s.TrialEndsAt.After(at)
	default:
		return false
	}
}
