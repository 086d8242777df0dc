// Package dbtest opens a migrated Postgres database for repository integration tests.
package dbtest

import (
	"database/sql"
	"os"
	"testing"

	"password-recovery/internal/db"
	"password-recovery/internal/db/migrate"
)

// Open migrates the database at DATABASE_URL to the latest version and returns a pool
// that is closed when the test ends. The test is skipped when DATABASE_URL is empty.
func Open(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}
	if err := migrate.Run(dsn, migrate.Up); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	conn, err := db.Open(dsn)
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// Exec runs query and fails the test on error. Used for fixtures and cleanup.
func Exec(t *testing.T, conn *sql.DB, query string, args ...any) {
	t.Helper()
	if _, err := conn.Exec(query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}
