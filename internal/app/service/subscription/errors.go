package subscription

import "errors"

// Guard failures are surfaced as distinct sentinels so the HTTP layer can map
// them 1:1 to response codes instead of a generic bad-request.
var (
	// ErrNotFound means no subscription row exists for the tenant or id.
	ErrNotFound = errors.New("subscription not found")
	// ErrAlreadyExists means the tenant already has a subscription row.
	ErrAlreadyExists = errors.New("subscription already exists")
	// ErrInvalidState means the row's status does not permit the transition.
	ErrInvalidState = errors.New("invalid subscription state for operation")
	// ErrAlreadyRequested means a cancellation request is already open.
	ErrAlreadyRequested = errors.New("cancellation already requested")
	// ErrNoPendingRequest means there is no open cancellation request.
	ErrNoPendingRequest = errors.New("no pending cancellation request")
	// ErrNotPendingRenewal means no renewal decision is awaited.
	ErrNotPendingRenewal = errors.New("subscription is not pending renewal")
	// ErrStoreUnavailable wraps record-store failures. Never conflated with
	// ErrNotFound; callers translate it to a generic retry message.
	ErrStoreUnavailable = errors.New("subscription store unavailable")
)
