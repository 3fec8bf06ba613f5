package feed

import (
	"context"
	"time"

	"github.com/samvera-app/samvera-stories/internal/domain"
	"github.com/samvera-app/samvera-stories/internal/playback"
)

//go:generate go run go.uber.org/mock/mockgen -source=feed.go -destination=mocks/mock.go

// Service is the story data layer the viewer and the HTTP API sit on. It
// owns the story-list cache; deleting a story also evicts it from the cache.
type Service interface {
	ListStories(ctx context.Context, orgID string) ([]domain.Story, error)
	ListStoryItems(ctx context.Context, storyID string) ([]domain.StoryItem, error)
	CreateStory(ctx context.Context, input CreateStoryInput) (*domain.Story, error)
	DeleteStory(ctx context.Context, id string) error
	ScheduleExpiredCleanup(ctx context.Context) error
}

// The service doubles as the playback engine's item source.
var _ playback.ItemSource = (Service)(nil)

// CreateStoryInput carries everything needed to post a story with its slides.
// A nil ExpiresAt falls back to the configured default lifetime.
type CreateStoryInput struct {
	OrgID     string
	ClassID   *string
	AuthorID  *string
	Title     *string
	Caption   *string
	Public    bool
	ExpiresAt *time.Time
	Items     []CreateItemInput
}

// CreateItemInput is one slide of a new story, in posting order.
type CreateItemInput struct {
	MediaURL   *string
	DurationMs *int64
	Caption    *string
	MimeType   *string
}

// Cache is the key-value cache behind the story feed. Implementations treat
// every failure as a miss; the feed never fails because the cache did.
type Cache interface {
	GetStories(ctx context.Context, orgID string) ([]domain.Story, bool)
	SetStories(ctx context.Context, orgID string, stories []domain.Story, ttl time.Duration)
	EvictStories(ctx context.Context, orgID string)
	GetItems(ctx context.Context, storyID string) ([]domain.StoryItem, bool)
	SetItems(ctx context.Context, storyID string, items []domain.StoryItem, ttl time.Duration)
	EvictItems(ctx context.Context, storyID string)
}
