package services

import "errors"

// Token lifecycle
var (
	ErrTokenRequired      = errors.New("token is required")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenAlreadyUsed   = errors.New("token already used")
	ErrTokenExpired       = errors.New("token expired")
	ErrStoreNotConfigured = errors.New("token store not configured")
	ErrNoDeleteSelector   = errors.New(
		"specify token, deleteAll, deleteUsed, or deleteExpired",
	)
)

// Admin surface
var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrAuditDisabled = errors.New("audit logging is disabled")
)

// Lead capture
var (
	ErrLeadInvalid            = errors.New("invalid lead")
	ErrLeadDuplicate          = errors.New("lead already submitted")
	ErrFormBackendUnavailable = errors.New("form backend not configured")
	ErrFormBackendRejected    = errors.New("form backend rejected submission")
)

// IsValidationFailure reports whether err is one of the three token
// validation outcomes that share a single user-facing message.
func IsValidationFailure(err error) bool {
	return errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrTokenAlreadyUsed) ||
		errors.Is(err, ErrTokenExpired)
}
