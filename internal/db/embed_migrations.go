package db

import "embed"

// MigrationFS holds the schema for users, identities, audit_logs and password_policies.
// Applied by internal/db/migrate from cmd/migrate.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
