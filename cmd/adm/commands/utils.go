package commands

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"sync"

	"osvillage/internal/config"
	"osvillage/internal/database"
	"osvillage/internal/observability"
	contextutils "osvillage/internal/utils"
)

// Runtime holds what every subcommand shares. The database is opened on first
// use so commands like version work without one.
type Runtime struct {
	Config *config.Config
	Logger *observability.Logger

	once  sync.Once
	db    *sql.DB
	dbErr error
}

// DB opens the pool on first call without applying migrations
func (r *Runtime) DB(ctx context.Context) (*sql.DB, error) {
	r.once.Do(func() {
		r.db, r.dbErr = database.NewManager(r.Logger).Open(ctx, r.Config.Database)
	})
	if r.dbErr != nil {
		return nil, contextutils.WrapErrorf(r.dbErr, "cannot connect to %s", maskDatabaseURL(r.Config.Database.URL))
	}
	return r.db, nil
}

// Close releases the pool if it was opened
func (r *Runtime) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// maskDatabaseURL hides the password in the database URL for display
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}

// getDatabaseInfo returns database connection information
func getDatabaseInfo(ctx context.Context, db *sql.DB) string {
	if db == nil {
		return "Not connected"
	}

	var dbName string
	if err := db.QueryRowContext(ctx, "SELECT current_database()").Scan(&dbName); err != nil {
		return "Connected (unknown database)"
	}

	var host sql.NullString
	if err := db.QueryRowContext(ctx, "SELECT inet_server_addr()::text").Scan(&host); err != nil || !host.Valid {
		return fmt.Sprintf("Connected to %s", dbName)
	}

	return fmt.Sprintf("Connected to %s on %s", dbName, host.String)
}
