package feedimpl

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/samvera-app/samvera-stories/internal/domain"
	"github.com/samvera-app/samvera-stories/internal/feed"
	"github.com/samvera-app/samvera-stories/internal/repositories/story"
	"github.com/samvera-app/samvera-stories/pkg/config"
	apperrors "github.com/samvera-app/samvera-stories/pkg/errors"
	"github.com/samvera-app/samvera-stories/pkg/logger"
)

type fakeStoryRepo struct {
	mu         sync.Mutex
	stories    map[string]domain.Story
	failCreate bool
}

func newFakeStoryRepo() *fakeStoryRepo {
	return &fakeStoryRepo{stories: make(map[string]domain.Story)}
}

func (r *fakeStoryRepo) GetByID(_ context.Context, id string) (*domain.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stories[id]
	if !ok {
		return nil, story.ErrNotFound
	}
	return &s, nil
}

func (r *fakeStoryRepo) ListByOrg(_ context.Context, orgID string, now time.Time) ([]domain.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Story
	for _, s := range r.stories {
		if s.OrgID == orgID && s.ExpiresAt.After(now) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeStoryRepo) Create(_ context.Context, s domain.Story) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return story.ErrCannotCreate
	}
	r.stories[s.ID] = s
	return nil
}

func (r *fakeStoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stories[id]; !ok {
		return story.ErrNotFound
	}
	delete(r.stories, id)
	return nil
}

func (r *fakeStoryRepo) CleanupExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, s := range r.stories {
		if !s.ExpiresAt.After(now) {
			delete(r.stories, id)
			n++
		}
	}
	return n, nil
}

type fakeItemRepo struct {
	mu         sync.Mutex
	items      map[string][]domain.StoryItem
	failCreate bool
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: make(map[string][]domain.StoryItem)}
}

func (r *fakeItemRepo) ListByStory(_ context.Context, storyID string) ([]domain.StoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.StoryItem(nil), r.items[storyID]...), nil
}

func (r *fakeItemRepo) CreateBatch(_ context.Context, items []domain.StoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return story.ErrCannotCreate
	}
	for _, it := range items {
		r.items[it.StoryID] = append(r.items[it.StoryID], it)
	}
	return nil
}

func (r *fakeItemRepo) DeleteByStory(_ context.Context, storyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, storyID)
	return nil
}

type fakeCache struct {
	mu      sync.Mutex
	stories map[string][]domain.Story
	items   map[string][]domain.StoryItem
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		stories: make(map[string][]domain.Story),
		items:   make(map[string][]domain.StoryItem),
	}
}

func (c *fakeCache) GetStories(_ context.Context, orgID string) ([]domain.Story, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.stories[orgID]
	return s, ok
}

func (c *fakeCache) SetStories(_ context.Context, orgID string, stories []domain.Story, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stories[orgID] = stories
}

func (c *fakeCache) EvictStories(_ context.Context, orgID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.stories, orgID)
}

func (c *fakeCache) GetItems(_ context.Context, storyID string) ([]domain.StoryItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it, ok := c.items[storyID]
	return it, ok
}

func (c *fakeCache) SetItems(_ context.Context, storyID string, items []domain.StoryItem, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[storyID] = items
}

func (c *fakeCache) EvictItems(_ context.Context, storyID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, storyID)
}

var _ feed.Cache = (*fakeCache)(nil)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Stories.FeedCacheTTL = time.Minute
	cfg.Stories.WarmPoolSize = 2
	cfg.Stories.DefaultLifetime = 24 * time.Hour
	cfg.Stories.CleanupHour = 3
	return cfg
}

func newTestFeed() (*FeedImpl, *fakeStoryRepo, *fakeItemRepo, *fakeCache) {
	storyRepo := newFakeStoryRepo()
	itemRepo := newFakeItemRepo()
	cache := newFakeCache()
	f := &FeedImpl{
		StoryRepo: storyRepo,
		ItemRepo:  itemRepo,
		Cache:     cache,
		Logger:    logger.Nop(),
		Config:    testConfig(),
	}
	return f, storyRepo, itemRepo, cache
}

func strPtr(s string) *string { return &s }

func TestListStoriesPopulatesAndServesFromCache(t *testing.T) {
	f, storyRepo, _, cache := newTestFeed()
	ctx := context.Background()

	storyRepo.stories["s1"] = domain.Story{
		ID:        "s1",
		OrgID:     "org-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	stories, err := f.ListStories(ctx, "org-1")
	if err != nil {
		t.Fatalf("ListStories: %v", err)
	}
	if len(stories) != 1 || stories[0].ID != "s1" {
		t.Fatalf("stories = %v, want [s1]", stories)
	}
	if _, ok := cache.GetStories(ctx, "org-1"); !ok {
		t.Fatal("feed should be cached after a miss")
	}

	// Dropping the backing row proves the second read comes from the cache.
	storyRepo.mu.Lock()
	delete(storyRepo.stories, "s1")
	storyRepo.mu.Unlock()

	stories, err = f.ListStories(ctx, "org-1")
	if err != nil {
		t.Fatalf("ListStories (cached): %v", err)
	}
	if len(stories) != 1 {
		t.Fatal("expected the cached feed")
	}
}

func TestListStoriesExcludesExpired(t *testing.T) {
	f, storyRepo, _, _ := newTestFeed()

	storyRepo.stories["live"] = domain.Story{ID: "live", OrgID: "org-1", ExpiresAt: time.Now().Add(time.Hour)}
	storyRepo.stories["dead"] = domain.Story{ID: "dead", OrgID: "org-1", ExpiresAt: time.Now().Add(-time.Hour)}

	stories, err := f.ListStories(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("ListStories: %v", err)
	}
	if len(stories) != 1 || stories[0].ID != "live" {
		t.Fatalf("stories = %v, want only the unexpired one", stories)
	}
}

func TestListStoriesRequiresOrg(t *testing.T) {
	f, _, _, _ := newTestFeed()
	if _, err := f.ListStories(context.Background(), ""); !apperrors.IsInvalidInput(err) {
		t.Fatalf("err = %v, want invalid input", err)
	}
}

func TestListStoryItemsCachesResult(t *testing.T) {
	f, _, itemRepo, cache := newTestFeed()
	ctx := context.Background()

	itemRepo.items["s1"] = []domain.StoryItem{{ID: "i1", StoryID: "s1", OrderIndex: 0}}

	items, err := f.ListStoryItems(ctx, "s1")
	if err != nil {
		t.Fatalf("ListStoryItems: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %v, want one item", items)
	}
	if _, ok := cache.GetItems(ctx, "s1"); !ok {
		t.Fatal("items should be cached after a miss")
	}
}

func TestCreateStoryAssignsOrderAndDefaults(t *testing.T) {
	f, storyRepo, itemRepo, cache := newTestFeed()
	ctx := context.Background()

	// A stale cached feed must be evicted by the create.
	cache.SetStories(ctx, "org-1", []domain.Story{}, time.Minute)

	before := time.Now()
	created, err := f.CreateStory(ctx, feed.CreateStoryInput{
		OrgID: "org-1",
		Title: strPtr("Sports day"),
		Items: []feed.CreateItemInput{
			{Caption: strPtr("first")},
			{Caption: strPtr("second")},
		},
	})
	if err != nil {
		t.Fatalf("CreateStory: %v", err)
	}

	if created.ID == "" {
		t.Fatal("story should get an id")
	}
	wantExpiry := before.Add(24 * time.Hour)
	if created.ExpiresAt.Before(wantExpiry.Add(-time.Minute)) || created.ExpiresAt.After(wantExpiry.Add(time.Minute)) {
		t.Fatalf("expiry = %v, want about %v", created.ExpiresAt, wantExpiry)
	}

	if _, ok := storyRepo.stories[created.ID]; !ok {
		t.Fatal("story should be persisted")
	}
	items := itemRepo.items[created.ID]
	if len(items) != 2 || items[0].OrderIndex != 0 || items[1].OrderIndex != 1 {
		t.Fatalf("items = %v, want sequential order indexes", items)
	}
	if _, ok := cache.GetStories(ctx, "org-1"); ok {
		t.Fatal("feed cache should be evicted after create")
	}
}

func TestCreateStoryRejectsPastExpiry(t *testing.T) {
	f, _, _, _ := newTestFeed()
	past := time.Now().Add(-time.Hour)
	_, err := f.CreateStory(context.Background(), feed.CreateStoryInput{
		OrgID:     "org-1",
		ExpiresAt: &past,
	})
	if !apperrors.IsInvalidInput(err) {
		t.Fatalf("err = %v, want invalid input", err)
	}
}

func TestCreateStoryRollsBackOnItemFailure(t *testing.T) {
	f, storyRepo, itemRepo, _ := newTestFeed()
	itemRepo.failCreate = true

	_, err := f.CreateStory(context.Background(), feed.CreateStoryInput{
		OrgID: "org-1",
		Items: []feed.CreateItemInput{{}},
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if len(storyRepo.stories) != 0 {
		t.Fatal("story should be rolled back when items cannot be saved")
	}
}

func TestDeleteStoryEvictsCaches(t *testing.T) {
	f, storyRepo, itemRepo, cache := newTestFeed()
	ctx := context.Background()

	storyRepo.stories["s1"] = domain.Story{ID: "s1", OrgID: "org-1", ExpiresAt: time.Now().Add(time.Hour)}
	itemRepo.items["s1"] = []domain.StoryItem{{ID: "i1", StoryID: "s1"}}
	cache.SetStories(ctx, "org-1", []domain.Story{{ID: "s1"}}, time.Minute)
	cache.SetItems(ctx, "s1", itemRepo.items["s1"], time.Minute)

	if err := f.DeleteStory(ctx, "s1"); err != nil {
		t.Fatalf("DeleteStory: %v", err)
	}

	if _, ok := cache.GetStories(ctx, "org-1"); ok {
		t.Fatal("feed cache should be evicted")
	}
	if _, ok := cache.GetItems(ctx, "s1"); ok {
		t.Fatal("item cache should be evicted")
	}
	if len(storyRepo.stories) != 0 || len(itemRepo.items["s1"]) != 0 {
		t.Fatal("story and items should be gone")
	}
}

func TestDeleteStoryMissing(t *testing.T) {
	f, _, _, _ := newTestFeed()
	if err := f.DeleteStory(context.Background(), "nope"); !apperrors.Is(err, story.ErrNotFound) {
		t.Fatalf("err = %v, want %v", err, story.ErrNotFound)
	}
}
