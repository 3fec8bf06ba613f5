package story

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
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

const storyColumns = "id, org_id, class_id, author_id, title, caption, public, expires_at, created_at, updated_at"

func scanStory(row pgx.Row) (*domain.Story, error) {
	var s domain.Story
	err := row.Scan(
		&s.ID,
		&s.OrgID,
		&s.ClassID,
		&s.AuthorID,
		&s.Title,
		&s.Caption,
		&s.Public,
		&s.ExpiresAt,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PgxRepository) GetByID(ctx context.Context, id string) (*domain.Story, error) {
	query, args, err := repository.SqBuilder.
		Select(storyColumns).
		From("stories").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, repository.ErrBadQuery
	}

	s, err := scanStory(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get story by id: %w", err)
	}

	return s, nil
}

func (r *PgxRepository) ListByOrg(ctx context.Context, orgID string, now time.Time) ([]domain.Story, error) {
	query, args, err := repository.SqBuilder.
		Select(storyColumns).
		From("stories").
		Where(sq.Eq{"org_id": orgID}).
		Where(sq.Gt{"expires_at": now}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, repository.ErrBadQuery
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query stories by org: %w", err)
	}
	defer rows.Close()

	var stories []domain.Story
	for rows.Next() {
		s, err := scanStory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan story row: %w", err)
		}
		stories = append(stories, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating story rows: %w", err)
	}

	return stories, nil
}

func (r *PgxRepository) Create(ctx context.Context, story domain.Story) error {
	query, args, err := repository.SqBuilder.
		Insert("stories").
		Columns(
			"id",
			"org_id",
			"class_id",
			"author_id",
			"title",
			"caption",
			"public",
			"expires_at",
			"created_at",
			"updated_at",
		).Values(
		story.ID,
		story.OrgID,
		story.ClassID,
		story.AuthorID,
		story.Title,
		story.Caption,
		story.Public,
		story.ExpiresAt,
		story.CreatedAt,
		story.UpdatedAt,
	).ToSql()
	if err != nil {
		return repository.ErrBadQuery
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return errors.Join(err, ErrCannotCreate)
	}

	return nil
}

func (r *PgxRepository) Delete(ctx context.Context, id string) error {
	query, args, err := repository.SqBuilder.
		Delete("stories").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return repository.ErrBadQuery
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete story %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *PgxRepository) CleanupExpired(ctx context.Context, now time.Time) (int64, error) {
	query, args, err := repository.SqBuilder.
		Delete("stories").
		Where(sq.LtOrEq{"expires_at": now}).
		ToSql()
	if err != nil {
		return 0, repository.ErrBadQuery
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up expired stories: %w", err)
	}

	return tag.RowsAffected(), nil
}
