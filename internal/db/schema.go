package db

import (
	"context"
	_ "embed"
)

//go:embed schema.sql
var Schema string

// EnsureSchema creates the history table if it does not exist yet.
func EnsureSchema(ctx context.Context, db DBTX) error {
	_, err := db.ExecContext(ctx, Schema)
	return err
}
