package core

import "context"

// SecretVerifier checks the shared admin secret supplied with a request.
type SecretVerifier interface {
	Verify(ctx context.Context, secret string) error
	Configured() bool
}
