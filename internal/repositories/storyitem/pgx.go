package storyitem

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samvera-app/samvera-stories/internal/domain"
	"github.com/samvera-app/samvera-stories/internal/repository"
	"github.com/samvera-app/samvera-stories/pkg/logger"
)

type PgxRepository struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

func NewPgxRepository(pool *pgxpool.Pool, logger logger.Logger) *PgxRepository {
	return &PgxRepository{
		pool:   pool,
		logger: logger,
	}
}

var _ Repository = (*PgxRepository)(nil)

func (r *PgxRepository) ListByStory(ctx context.Context, storyID string) ([]domain.StoryItem, error) {
	query, args, err := repository.SqBuilder.
		Select("id", "story_id", "order_index", "media_url", "duration_ms", "caption", "mime_type", "created_at").
		From("story_items").
		Where(sq.Eq{"story_id": storyID}).
		OrderBy("order_index ASC").
		ToSql()
	if err != nil {
		return nil, repository.ErrBadQuery
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query story items: %w", err)
	}
	defer rows.Close()

	var items []domain.StoryItem
	for rows.Next() {
		var it domain.StoryItem
		err := rows.Scan(
			&it.ID,
			&it.StoryID,
			&it.OrderIndex,
			&it.MediaURL,
			&it.DurationMs,
			&it.Caption,
			&it.MimeType,
			&it.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan story item row: %w", err)
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating story item rows: %w", err)
	}

	return items, nil
}

func (r *PgxRepository) CreateBatch(ctx context.Context, items []domain.StoryItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	builder := repository.SqBuilder.
		Insert("story_items").
		Columns("id", "story_id", "order_index", "media_url", "duration_ms", "caption", "mime_type", "created_at")
	for _, it := range items {
		builder = builder.Values(
			it.ID,
			it.StoryID,
			it.OrderIndex,
			it.MediaURL,
			it.DurationMs,
			it.Caption,
			it.MimeType,
			it.CreatedAt,
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return repository.ErrBadQuery
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return errors.Join(err, ErrCannotCreate)
	}

	return tx.Commit(ctx)
}

func (r *PgxRepository) DeleteByStory(ctx context.Context, storyID string) error {
	query, args, err := repository.SqBuilder.
		Delete("story_items").
		Where(sq.Eq{"story_id": storyID}).
		ToSql()
	if err != nil {
		return repository.ErrBadQuery
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete items for story %s: %w", storyID, err)
	}

	return nil
}
