package core

import (
	"context"
	"time"

	"github.com/tolutally/matchbox-web/internal/models"
)

// TokenStore is the persistence boundary for demo tokens. Implementations
// keep a store-level TTL mirroring each record's expiry.
type TokenStore interface {
	// Create persists a new record. Returns an error wrapping ErrTokenExists
	// when the id is already taken.
	Create(ctx context.Context, t *models.DemoToken, ttl time.Duration) error

	// Get loads one record by normalized id.
	Get(ctx context.Context, id string) (*models.DemoToken, error)

	// Consume atomically checks and marks a record used. At most one caller
	// succeeds per id; the others observe already-used.
	Consume(ctx context.Context, id string, now time.Time) (*models.DemoToken, error)

	// List returns every live record in no particular order.
	List(ctx context.Context) ([]*models.DemoToken, error)

	// Delete removes the given ids and returns how many existed.
	Delete(ctx context.Context, ids ...string) (int, error)

	Health(ctx context.Context) error
	Close() error
	Name() string
}
