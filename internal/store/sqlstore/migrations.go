package sqlstore

import (
	"context"
	"database/sql"
)

// runMigrations creates the items table shared by every collection
func runMigrations(ctx context.Context, db *sql.DB) error {
	// One row per document. collection_id is the full collection path, so a
	// status's leads and a board's statuses live side by side.
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS items (
			collection_id TEXT NOT NULL,
			id TEXT NOT NULL,
			position BIGINT NOT NULL,
			data TEXT NOT NULL DEFAULT '',
			version BIGINT NOT NULL DEFAULT 1,
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL,
			PRIMARY KEY (collection_id, id)
		)
	`)
	if err != nil {
		return err
	}

	// Sorted listing and "last position" lookups
	_, err = db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_items_position
		ON items(collection_id, position, id)
	`)
	if err != nil {
		return err
	}

	return nil
}
