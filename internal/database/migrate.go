package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
)

//go:embed schema.sql
var schema string

// Statements splits an SQL script on semicolons, dropping empty parts.
// Scripts must not contain semicolons inside literals.
func Statements(script string) []string {
	parts := strings.Split(script, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Migrate applies the embedded schema.  Every statement is idempotent so
// running it on an initialised database is a no-op.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range Statements(schema) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
