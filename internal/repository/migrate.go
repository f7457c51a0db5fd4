package repository

import (
	"embed"
	"errors"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// Register database drivers for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/samber/oops"
)

//go:embed migrations/mysql/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// migrateIface abstracts golang-migrate so Migrator can be tested without a database.
type migrateIface interface {
	Up() error
	Steps(n int) error
	Version() (version uint, dirty bool, err error)
	Close() (source error, database error)
}

// Migrator applies the embedded schema migrations for one database driver.
type Migrator struct {
	m migrateIface
}

// NewMigrator creates a Migrator for driver ("mysql" or "postgres") and dsn.
// MySQL DSNs use the go-sql-driver format, Postgres DSNs must be URLs.
func NewMigrator(driver, dsn string) (*Migrator, error) {
	databaseURL, err := migrationURL(driver, dsn)
	if err != nil {
		return nil, err
	}

	source, err := iofs.New(migrationsFS, "migrations/"+driver)
	if err != nil {
		return nil, oops.Code("MIGRATION_SOURCE_FAILED").With("driver", driver).Wrap(err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		_ = source.Close()
		return nil, oops.Code("MIGRATION_INIT_FAILED").With("driver", driver).Wrap(err)
	}

	return &Migrator{m: m}, nil
}

// migrationURL converts a connection string into the URL golang-migrate expects.
func migrationURL(driver, dsn string) (string, error) {
	switch driver {
	case "mysql":
		return "mysql://" + strings.TrimPrefix(dsn, "mysql://"), nil
	case "postgres":
		if rest, found := strings.CutPrefix(dsn, "postgres://"); found {
			return "pgx5://" + rest, nil
		}
		if rest, found := strings.CutPrefix(dsn, "postgresql://"); found {
			return "pgx5://" + rest, nil
		}
		if strings.HasPrefix(dsn, "pgx5://") {
			return dsn, nil
		}
		return "", oops.Code("MIGRATION_INVALID_DSN").With("driver", driver).
			Errorf("postgres migrations require a postgres:// URL")
	default:
		return "", oops.Code("MIGRATION_UNKNOWN_DRIVER").With("driver", driver).
			Errorf("unsupported database driver %q", driver)
	}
}

// Up applies all pending migrations.
func (m *Migrator) Up() error {
	if err := m.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return oops.Code("MIGRATION_UP_FAILED").Wrap(err)
	}
	return nil
}

// Down rolls back the most recent migration.
func (m *Migrator) Down() error {
	if err := m.m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return oops.Code("MIGRATION_DOWN_FAILED").Wrap(err)
	}
	return nil
}

// Version returns the current migration version and dirty state.
// Version 0 means no migration has been applied.
func (m *Migrator) Version() (version uint, dirty bool, err error) {
	version, dirty, err = m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, oops.Code("MIGRATION_VERSION_FAILED").Wrap(err)
	}
	return version, dirty, nil
}

// Close releases the migration source and database handles.
func (m *Migrator) Close() error {
	srcErr, dbErr := m.m.Close()
	if err := errors.Join(srcErr, dbErr); err != nil {
		return oops.Code("MIGRATION_CLOSE_FAILED").Wrap(err)
	}
	return nil
}
