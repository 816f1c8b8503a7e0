package auth

import "errors"

var (
	// ErrInvalidSecret indicates the supplied admin secret did not match
	ErrInvalidSecret = errors.New("invalid admin secret")

	// ErrSecretNotConfigured indicates no admin secret is set, so every
	// admin call is refused
	ErrSecretNotConfigured = errors.New("admin secret not configured")
)
