package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	pkgdb "github.com/atadzan/calc-operation-api/pkg/database"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrate applies the embedded migrations for db's driver. db stays open and
// no pooled connection is held once it returns.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	switch db.DriverName() {
	case pkgdb.DriverSQLite:
		driver, err := sqlite3.WithInstance(db.DB, &sqlite3.Config{})
		if err != nil {
			return fmt.Errorf("can't prepare migration driver. Err: %w", err)
		}
		return up(db.DriverName(), driver)
	case pkgdb.DriverPostgres:
		return withConn(ctx, db, func(conn *sql.Conn) error {
			driver, err := postgres.WithConnection(ctx, conn, &postgres.Config{})
			if err != nil {
				return fmt.Errorf("can't prepare migration driver. Err: %w", err)
			}
			return up(db.DriverName(), driver)
		})
	default:
		return fmt.Errorf("unsupported database driver %q", db.DriverName())
	}
}

// up runs the migrations without closing driver: a driver Close would also
// close the shared *sql.DB.
func up(name string, driver database.Driver) error {
	source, err := iofs.New(migrationsFS, "migrations/"+name)
	if err != nil {
		return fmt.Errorf("can't open embedded migrations. Err: %w", err)
	}
	defer source.Close()

	m, err := migrate.NewWithInstance("iofs", source, name, driver)
	if err != nil {
		return fmt.Errorf("can't create migrator. Err: %w", err)
	}

	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("occurred error while applying db migration. Err: %w", err)
	}
	return nil
}

// withConn runs fn on a dedicated connection and hands it back to the pool afterwards.
func withConn(ctx context.Context, db *sqlx.DB, fn func(conn *sql.Conn) error) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("can't acquire migration connection. Err: %w", err)
	}
	defer conn.Close()

	return fn(conn)
}
