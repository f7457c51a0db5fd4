package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

const (
	pingAttempts = 5
	pingBackoff  = 500 * time.Millisecond
)

// NewDB creates a new MySQL database connection pool with the given DSN.
// The database is pinged with exponential backoff before the pool is returned.
func NewDB(ctx context.Context, dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, oops.Code("DB_INVALID_DSN").Wrap(err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").Wrap(err)
	}
	db := sql.OpenDB(connector)

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := PingWithRetry(ctx, db.PingContext, DefaultPingBackoff()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// DefaultPingBackoff is the startup backoff used when waiting for a database.
func DefaultPingBackoff() retry.Backoff {
	return retry.WithMaxRetries(pingAttempts-1, retry.NewExponential(pingBackoff))
}

// PingWithRetry calls ping until it succeeds or backoff gives up.
func PingWithRetry(ctx context.Context, ping func(context.Context) error, backoff retry.Backoff) error {
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := ping(ctx); err != nil {
			slog.WarnContext(ctx, "database ping failed", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return oops.Code("DB_PING_FAILED").With("attempts", attempt).Wrap(err)
	}
	return nil
}
