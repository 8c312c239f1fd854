package response

// New generic response spec
type APIResponseCode int

const (
	APIResponseCodeOK         APIResponseCode = 0
	APIResponseCodeBadRequest APIResponseCode = 40000
	APIResponseCodeForbidden  APIResponseCode = 40300
	APIResponseCodeNotFound   APIResponseCode = 40400

	// Guard failures from the subscription state machine, surfaced
	// distinctly so clients can show precise messages.
	APIResponseCodeInvalidState      APIResponseCode = 40900
	APIResponseCodeAlreadyExists     APIResponseCode = 40901
	APIResponseCodeAlreadyRequested  APIResponseCode = 40902
	APIResponseCodeNoPendingRequest  APIResponseCode = 40903
	APIResponseCodeNotPendingRenewal APIResponseCode = 40904

	APIResponseCodeError APIResponseCode = 50000
)

var codeToMsg = map[APIResponseCode]string{
	APIResponseCodeOK:                "ok",
	APIResponseCodeBadRequest:        "unexpected error",
	APIResponseCodeForbidden:         "forbidden",
	APIResponseCodeNotFound:          "not found",
	APIResponseCodeInvalidState:      "operation not allowed in current subscription state",
	APIResponseCodeAlreadyExists:     "subscription already exists",
	APIResponseCodeAlreadyRequested:  "cancellation already requested",
	APIResponseCodeNoPendingRequest:  "no pending cancellation request",
	APIResponseCodeNotPendingRenewal: "subscription is not pending renewal",
	APIResponseCodeError:             "the system failed to process your request, please retry later",
}

// APIResponse is the generic response envelope used by HTTP APIs.
// Use OKT / ErrorT helpers to construct instances.
type APIResponse[T any] struct {
	Code    APIResponseCode `json:"code"`
	Message string          `json:"message"`
	Data    T               `json:"data"`
}

// OKT returns a successful response with data.
func OKT[T any](data T) *APIResponse[T] {
	return &APIResponse[T]{Code: APIResponseCodeOK, Message: codeToMsg[APIResponseCodeOK], Data: data}
}

// ErrorT returns an error response with message and optional data.
func ErrorT[T any](code APIResponseCode, data T) *APIResponse[T] {
	return &APIResponse[T]{Code: code, Message: codeToMsg[code], Data: data}
}
