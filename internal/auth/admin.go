package auth

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tolutally/matchbox-web/internal/config"
	"github.com/tolutally/matchbox-web/internal/core"
	"github.com/tolutally/matchbox-web/internal/util"

	"golang.org/x/crypto/bcrypt"
)

var _ core.SecretVerifier = (*AdminAuthenticator)(nil)

// AdminAuthenticator checks the shared admin secret. A bcrypt hash takes
// precedence over a plain secret when both are configured.
type AdminAuthenticator struct {
	plain string
	hash  []byte
}

// NewAdminAuthenticator reads the admin secret settings from cfg.
func NewAdminAuthenticator(cfg *config.Config) *AdminAuthenticator {
	a := &AdminAuthenticator{plain: cfg.AdminPassword}
	if h := strings.TrimSpace(cfg.AdminPasswordHash); h != "" {
		if _, err := bcrypt.Cost([]byte(h)); err != nil {
			slog.Warn("Ignoring malformed ADMIN_PASSWORD_HASH", "error", err)
		} else {
			a.hash = []byte(h)
		}
	}
	return a
}

// Configured reports whether any admin secret is set.
func (a *AdminAuthenticator) Configured() bool {
	return a.plain != "" || len(a.hash) > 0
}

// Verify compares secret against the configured value.
func (a *AdminAuthenticator) Verify(_ context.Context, secret string) error {
	if !a.Configured() {
		return ErrSecretNotConfigured
	}
	if secret == "" {
		return ErrInvalidSecret
	}

	if len(a.hash) > 0 {
		if err := bcrypt.CompareHashAndPassword(a.hash, []byte(secret)); err != nil {
			return ErrInvalidSecret
		}
		return nil
	}

	if !util.ConstantTimeEqual(secret, a.plain) {
		return ErrInvalidSecret
	}
	return nil
}

// HashSecret produces a value suitable for ADMIN_PASSWORD_HASH.
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
