package database

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// NewDBConn opens and pings a connection for driver ("sqlite3" or "postgres").
func NewDBConn(driver, dsn string) (*sqlx.DB, error) {
	if driver == DriverSQLite && !strings.Contains(dsn, "?") {
		dsn += "?_foreign_keys=on&_journal_mode=WAL"
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("can't establish connection to DB. Driver: %s, err: %w", driver, err)
	}

	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("can't ping DB. Driver: %s, err: %w", driver, err)
	}

	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}

	return db, nil
}

// GetTestingDBConn returns a private in-memory SQLite database.
func GetTestingDBConn() (*sqlx.DB, error) {
	db, err := sqlx.Open(DriverSQLite, "file::memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("can't establish connection to test DB. Err: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("can't ping DB. Err: %v", err)
	}

	return db, nil
}
