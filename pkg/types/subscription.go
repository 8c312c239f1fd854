package types

type PlanType string

const (
	PlanTypeTrial        PlanType = "trial"
	PlanTypeStarter      PlanType = "starter"
	PlanTypeProfessional PlanType = "professional"
	PlanTypeEnterprise   PlanType = "enterprise"
)

type SubscriptionStatus string

const (
	SubscriptionStatusTrial    SubscriptionStatus = "trial"
	SubscriptionStatusPending  SubscriptionStatus = "pending"
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
	SubscriptionStatusExpired  SubscriptionStatus = "expired"
)

type SubscriptionChangeReason string

const (
	SubscriptionChangeReasonTrialStarted          SubscriptionChangeReason = "trialStarted"
	SubscriptionChangeReasonPurchaseSubmitted     SubscriptionChangeReason = "purchaseSubmitted"
	SubscriptionChangeReasonPurchaseApproved      SubscriptionChangeReason = "purchaseApproved"
	SubscriptionChangeReasonPurchaseRejected      SubscriptionChangeReason = "purchaseRejected"
	SubscriptionChangeReasonCancellationRequested SubscriptionChangeReason = "cancellationRequested"
	SubscriptionChangeReasonCancellationApproved  SubscriptionChangeReason = "cancellationApproved"
	SubscriptionChangeReasonCancellationRejected  SubscriptionChangeReason = "cancellationRejected"
	SubscriptionChangeReasonRenewalDue            SubscriptionChangeReason = "renewalDue"
	SubscriptionChangeReasonRenewalApproved       SubscriptionChangeReason = "renewalApproved"
)

type NotificationEvent string

const (
	NotificationEventStatusChange        NotificationEvent = "status_change"
	NotificationEventRenewalDue          NotificationEvent = "renewal_due"
	NotificationEventCancellationOutcome NotificationEvent = "cancellation_outcome"
)
