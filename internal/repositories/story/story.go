package story

import (
	"context"
	"errors"
	"time"

	"github.com/samvera-app/samvera-stories/internal/domain"
)

var ErrNotFound = errors.New("story not found")
var ErrCannotCreate = errors.New("error create story")

//go:generate go run go.uber.org/mock/mockgen -source=story.go -destination=mocks/mock.go

// Repository reads and writes stories. Listing never returns stories past
// their expiration; expired rows are reaped separately by CleanupExpired.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Story, error)
	ListByOrg(ctx context.Context, orgID string, now time.Time) ([]domain.Story, error)
	Create(ctx context.Context, story domain.Story) error
	Delete(ctx context.Context, id string) error
	CleanupExpired(ctx context.Context, now time.Time) (int64, error)
}
