package sqldb

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"eventregistration/internal/repository/sqldb/migrations"
)

// Migrate applies any pending embedded migrations. The database handle stays open;
// migrate's own Close is never called because it would close s.DB.
func (s *Store) Migrate() error {
	var (
		driver database.Driver
		err    error
	)
	switch s.Dialect {
	case DialectPostgres:
		driver, err = postgres.WithInstance(s.DB, &postgres.Config{})
	case DialectSQLite:
		driver, err = sqlite.WithInstance(s.DB, &sqlite.Config{})
	default:
		return fmt.Errorf("unsupported sql dialect %q", s.Dialect)
	}
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}

	instance, err := migrate.NewWithInstance("iofs", source, string(s.Dialect), driver)
	if err != nil {
		return fmt.Errorf("migration instance: %w", err)
	}
	if err := instance.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
