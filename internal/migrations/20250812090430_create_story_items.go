package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateStoryItems, downCreateStoryItems)
}

func upCreateStoryItems(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE story_items (
		id UUID PRIMARY KEY,
		story_id UUID NOT NULL REFERENCES stories (id) ON DELETE CASCADE,
		order_index INT NOT NULL,
		media_url VARCHAR,
		duration_ms BIGINT,
		caption VARCHAR,
		mime_type VARCHAR,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL,
		UNIQUE (story_id, order_index)
	);
	`)
	if err != nil {
		return err
	}
	return nil
}

func downCreateStoryItems(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.Exec(`
	DROP TABLE story_items;
	`)
	if err != nil {
		return err
	}
	return nil
}
