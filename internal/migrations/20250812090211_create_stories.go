package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateStories, downCreateStories)
}

func upCreateStories(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE stories (
		id UUID PRIMARY KEY,
		org_id UUID NOT NULL,
		class_id UUID,
		author_id UUID,
		title VARCHAR,
		caption VARCHAR,
		public BOOLEAN NOT NULL DEFAULT FALSE,
		expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL,
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL
	);
	CREATE INDEX idx_stories_org_expires ON stories (org_id, expires_at);
	`)
	if err != nil {
		return err
	}
	return nil
}

func downCreateStories(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.Exec(`
	DROP TABLE stories;
	`)
	if err != nil {
		return err
	}
	return nil
}
