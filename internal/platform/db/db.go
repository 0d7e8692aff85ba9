package db

import (
	"database/sql"
	"fmt"
	"time"
)

// Open connects to the freight database. driver is "pgx" for postgres or
// "sqlite" for the embedded local mode; the matching driver package must
// be imported by the caller.
func Open(driver, dsn string) (*sql.DB, error) {
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("openDB: open %s database: %w", driver, err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(10)
	conn.SetConnMaxLifetime(30 * time.Minute)

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("openDB: verify %s connection: %w", driver, err)
	}

	return conn, nil
}
