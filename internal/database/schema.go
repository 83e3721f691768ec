package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// schema holds the full DDL for the quote archive. The service owns a single
// table, so schema management is a plain idempotent apply.
const schema = `
CREATE TABLE IF NOT EXISTS quote_archive (
    id           UUID PRIMARY KEY,
    tenant       TEXT NOT NULL,
    source       TEXT NOT NULL,
    quantity     INTEGER NOT NULL,
    client_total NUMERIC(12, 2) NOT NULL,
    cost_total   NUMERIC(12, 2) NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_quote_archive_tenant_created
    ON quote_archive (tenant, created_at DESC);
`

// EnsureSchema creates the quote archive table if it does not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	db.logger.Info("database schema ensured", zap.String("table", "quote_archive"))
	return nil
}
