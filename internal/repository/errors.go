// Package repository defines the data access layer and the sentinel error
// values shared across it. The sentinels mirror the abort reasons of the
// original on-chain registries: an operation either commits in full or
// fails with exactly one of these, and handlers translate them into HTTP
// responses. Error messages that were part of the original revert-reason
// contract (e.g. "Event is no longer valid") are preserved verbatim.
package repository

import "errors"

var (
	// ErrNotFound is returned when a referenced event, ticket or account
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned when the caller is not permitted to act
	// on the resource (wrong organizer, wrong owner, wrong invitee, or a
	// non-admin calling an administrative operation).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidState is returned when acting on an event that is no
	// longer active, such as updating or re-cancelling a cancelled event.
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidInput is returned for bad parameters: zero capacity,
	// zero price, empty required strings, unknown event types.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientPayment is returned when the payment attached to an
	// operation does not cover the required fee or listing price.
	ErrInsufficientPayment = errors.New("Insufficient payment")

	// ErrInsufficientBalance is returned when the caller's account cannot
	// cover the attached payment. On chain the wallet made this case
	// impossible; as a service it needs its own abort reason.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrAlreadyListed is returned when listing a token that already has
	// an active listing.
	ErrAlreadyListed = errors.New("Ticket already listed")

	// ErrNotListed is returned when buying or cancelling a token with no
	// active listing.
	ErrNotListed = errors.New("Ticket not listed")

	// ErrNotApproved is returned when the marketplace holds no transfer
	// approval for the token being listed.
	ErrNotApproved = errors.New("Marketplace not approved")

	// ErrInvalidBatchSize is returned when a batch mint or batch list is
	// empty or exceeds the maximum batch size.
	ErrInvalidBatchSize = errors.New("Invalid batch size")

	// ErrInvalidEvent is returned by the ticket registry when minting
	// against a missing or inactive event.
	ErrInvalidEvent = errors.New("Invalid or inactive event")

	// ErrEventNoLongerValid is returned by the marketplace when the listed
	// ticket's event has been cancelled.
	ErrEventNoLongerValid = errors.New("Event is no longer valid")

	// ErrEmailExists is returned when registering with a taken email.
	ErrEmailExists = errors.New("email already exists")
)

// ErrorCodes maps sentinel errors to the stable string codes carried in API
// error responses. Codes are part of the wire contract; do not rename.
var ErrorCodes = map[error]string{
	ErrNotFound:            "NOT_FOUND",
	ErrUnauthorized:        "UNAUTHORIZED",
	ErrInvalidState:        "INVALID_STATE",
	ErrInvalidInput:        "INVALID_INPUT",
	ErrInsufficientPayment: "INSUFFICIENT_PAYMENT",
	ErrInsufficientBalance: "INSUFFICIENT_BALANCE",
	ErrAlreadyListed:       "ALREADY_LISTED",
	ErrNotListed:           "NOT_LISTED",
	ErrNotApproved:         "NOT_APPROVED",
	ErrInvalidBatchSize:    "INVALID_BATCH_SIZE",
	ErrInvalidEvent:        "INVALID_EVENT",
	ErrEventNoLongerValid:  "EVENT_INVALID",
	ErrEmailExists:         "EMAIL_EXISTS",
}

// Code returns the stable code for err, or INTERNAL when err is not one of
// the sentinels above.
func Code(err error) string {
	for sentinel, code := range ErrorCodes {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return "INTERNAL"
}
