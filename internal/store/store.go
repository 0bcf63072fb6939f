// Package store provides durable storage for discovered bills. It speaks to
// either PostgreSQL or an embedded SQLite database through database/sql; the
// same statements run on both drivers, so tests exercise the real queries
// against a throwaway SQLite file.
package store

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema_postgres.sql
var schemaPostgres string

//go:embed schema_sqlite.sql
var schemaSQLite string

// Open connects to the bill database and ensures the schema exists.
// driver must be "postgres" or "sqlite3". The function is idempotent; the
// schema uses IF NOT EXISTS throughout.
func Open(driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", driver, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: connect %s: %w", driver, err)
	}

	var schema string
	switch driver {
	case "postgres":
		schema = schemaPostgres
	case "sqlite3":
		schema = schemaSQLite
		// SQLite allows one writer at a time; a single pooled connection
		// avoids SQLITE_BUSY under the bot's serial workload.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if err := applyPragmas(db); err != nil {
			db.Close()
			return nil, err
		}
	default:
		db.Close()
		return nil, fmt.Errorf("store: unsupported driver %q", driver)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}

	return db, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("store: execute %q: %w", pragma, err)
		}
	}

	return nil
}
