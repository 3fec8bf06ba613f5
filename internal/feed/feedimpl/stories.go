package feedimpl

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samvera-app/samvera-stories/internal/domain"
	"github.com/samvera-app/samvera-stories/internal/feed"
	apperrors "github.com/samvera-app/samvera-stories/pkg/errors"
	"github.com/samvera-app/samvera-stories/pkg/retry"
)

// ListStories returns the organization's unexpired stories, newest first.
// Cache-aside: a hit serves straight from the cache, a miss reads the
// database with retries and repopulates it, then warms the per-story item
// caches in the background.
func (f *FeedImpl) ListStories(ctx context.Context, orgID string) ([]domain.Story, error) {
	if orgID == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "org id is required")
	}

	if stories, ok := f.Cache.GetStories(ctx, orgID); ok {
		return stories, nil
	}

	var stories []domain.Story
	err := retry.Do(ctx, f.Logger, "list stories", func() error {
		var err error
		stories, err = f.StoryRepo.ListByOrg(ctx, orgID, time.Now())
		return err
	}, retry.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to list stories for org %s: %w", orgID, err)
	}

	f.Cache.SetStories(ctx, orgID, stories, f.Config.Stories.FeedCacheTTL)
	f.warmItemCaches(ctx, stories)

	return stories, nil
}

// ListStoryItems returns a story's slides in playback order. This is the
// fetch the viewer runs when a story opens, so it is served from the cache
// whenever the warmer got there first.
func (f *FeedImpl) ListStoryItems(ctx context.Context, storyID string) ([]domain.StoryItem, error) {
	if items, ok := f.Cache.GetItems(ctx, storyID); ok {
		return items, nil
	}

	items, err := f.ItemRepo.ListByStory(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items for story %s: %w", storyID, err)
	}

	f.Cache.SetItems(ctx, storyID, items, f.Config.Stories.FeedCacheTTL)

	return items, nil
}

func (f *FeedImpl) CreateStory(ctx context.Context, input feed.CreateStoryInput) (*domain.Story, error) {
	if input.OrgID == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "org id is required")
	}

	now := time.Now()
	expiresAt := now.Add(f.Config.Stories.DefaultLifetime)
	if input.ExpiresAt != nil {
		if !input.ExpiresAt.After(now) {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "expiration must be in the future")
		}
		expiresAt = *input.ExpiresAt
	}

	s := domain.Story{
		ID:        uuid.NewString(),
		OrgID:     input.OrgID,
		ClassID:   input.ClassID,
		AuthorID:  input.AuthorID,
		Title:     input.Title,
		Caption:   input.Caption,
		Public:    input.Public,
		ExpiresAt: expiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}

	items := make([]domain.StoryItem, 0, len(input.Items))
	for i, in := range input.Items {
		items = append(items, domain.StoryItem{
			ID:         uuid.NewString(),
			StoryID:    s.ID,
			OrderIndex: i,
			MediaURL:   in.MediaURL,
			DurationMs: in.DurationMs,
			Caption:    in.Caption,
			MimeType:   in.MimeType,
			CreatedAt:  now,
		})
	}

	if err := f.StoryRepo.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to create story: %w", err)
	}
	if err := f.ItemRepo.CreateBatch(ctx, items); err != nil {
		// Leave no headless story behind if the slides could not be saved.
		if delErr := f.StoryRepo.Delete(ctx, s.ID); delErr != nil {
			f.Logger.Error("Failed to roll back story after item insert failure", "story_id", s.ID, "error", delErr)
		}
		return nil, fmt.Errorf("failed to create story items: %w", err)
	}

	f.Cache.EvictStories(ctx, s.OrgID)
	f.Logger.Info("Story created", "story_id", s.ID, "org_id", s.OrgID, "items", len(items))

	return &s, nil
}

// DeleteStory removes a story and its items and evicts it from both the
// story-list cache and the item cache.
func (f *FeedImpl) DeleteStory(ctx context.Context, id string) error {
	s, err := f.StoryRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := f.ItemRepo.DeleteByStory(ctx, id); err != nil {
		return err
	}
	if err := f.StoryRepo.Delete(ctx, id); err != nil {
		return err
	}

	f.Cache.EvictItems(ctx, id)
	f.Cache.EvictStories(ctx, s.OrgID)
	f.Logger.Info("Story deleted", "story_id", id, "org_id", s.OrgID)

	return nil
}
