package models

import (
	"time"
)

// TokenStatus is derived from a token's flags and the current time; it is never stored.
type TokenStatus string

const (
	TokenStatusActive  TokenStatus = "active"
	TokenStatusUsed    TokenStatus = "used"
	TokenStatusExpired TokenStatus = "expired"
)

// DemoToken is a one-time demo access token.
type DemoToken struct {
	ID        string
	Used      bool
	CreatedAt time.Time
	ExpiresAt time.Time
	UsedAt    *time.Time // set iff Used
	Note      string
}

// IsExpired reports whether now is strictly after the expiry instant.
func (t *DemoToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Status returns used, then expired, then active.
func (t *DemoToken) Status(now time.Time) TokenStatus {
	switch {
	case t.Used:
		return TokenStatusUsed
	case t.IsExpired(now):
		return TokenStatusExpired
	default:
		return TokenStatusActive
	}
}

// TTL returns the remaining lifetime relative to now, never negative.
func (t *DemoToken) TTL(now time.Time) time.Duration {
	if d := t.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// MarkUsed flips the token to used at the given instant.
func (t *DemoToken) MarkUsed(at time.Time) {
	t.Used = true
	t.UsedAt = &at
}
