package domain

import "errors"

// Sentinel errors used throughout the application.
// Handlers translate these to HTTP status codes via a single mapError function.
var (
	ErrNotFound        = errors.New("not found")
	ErrUnknownKind     = errors.New("unknown notification kind")
	ErrInvalidBatchKey = errors.New("batch_key must not be empty")
	ErrInvalidPayload  = errors.New("payload does not match the event kind")
	ErrNoRecipients    = errors.New("preference resolves to zero valid recipients")
)
