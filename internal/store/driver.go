package store

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// drivers lists the accepted DATABASE_DRIVER values.
var drivers = []string{"sqlite", "postgres"}

const sqliteBusyTimeout = "_busy_timeout=5000"

// dialector maps a driver name and DSN to a gorm dialector. SQLite DSNs get
// a busy timeout unless one is already set.
func dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "sqlite":
		if !strings.Contains(dsn, "busy_timeout") {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn += sep + sqliteBusyTimeout
		}
		return sqlite.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q (want one of %s)",
			driver, strings.Join(drivers, ", "))
	}
}
