package leads

import "errors"

var (
	// ErrInvalidName is returned when the name is missing or out of bounds
	ErrInvalidName = errors.New("invalid_name")

	// ErrInvalidEmail is returned when the email fails the address pattern
	ErrInvalidEmail = errors.New("invalid_email")

	// ErrInvalidMessage is returned when the message is missing or out of bounds
	ErrInvalidMessage = errors.New("invalid_message")

	// ErrNoInsertedID is returned when a store reports success without an id
	ErrNoInsertedID = errors.New("leads: insert returned no id")

	// ErrLeadNotFound is returned when a lead is not found
	ErrLeadNotFound = errors.New("lead not found")
)

// API error kinds surfaced in response bodies.
const (
	KindInvalidBody      = "invalid_body"
	KindMethodNotAllowed = "method_not_allowed"
	KindTooManyRequests  = "too_many_requests"
	KindServerMisconfig  = "server_misconfigured"
	KindDBInsertFailed   = "db_insert_failed"
	KindInternalError    = "internal_error"
)
