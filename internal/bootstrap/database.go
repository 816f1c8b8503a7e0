package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tolutally/matchbox-web/internal/config"
	"github.com/tolutally/matchbox-web/internal/store"
)

// initializeDatabase opens the audit log database. Returns nil when audit
// logging is off.
func initializeDatabase(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	if !cfg.EnableAuditLogging {
		slog.Info("Audit logging disabled, skipping database")
		return nil, nil //nolint:nilnil // database not needed in this configuration
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.DBInitTimeout)
	defer cancel()

	db, err := store.New(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	slog.Info("Audit database initialized", "driver", cfg.DatabaseDriver)
	return db, nil
}
