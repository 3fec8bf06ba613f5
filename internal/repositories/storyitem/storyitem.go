package storyitem

import (
	"context"
	"errors"

	"github.com/samvera-app/samvera-stories/internal/domain"
)

var ErrNotFound = errors.New("story item not found")
var ErrCannotCreate = errors.New("error create story item")

//go:generate go run go.uber.org/mock/mockgen -source=storyitem.go -destination=mocks/mock.go

// Repository reads and writes the slides of a story. ListByStory returns
// items sorted by their order index, which is the playback order.
type Repository interface {
	ListByStory(ctx context.Context, storyID string) ([]domain.StoryItem, error)
	CreateBatch(ctx context.Context, items []domain.StoryItem) error
	DeleteByStory(ctx context.Context, storyID string) error
}
