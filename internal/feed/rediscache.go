package feed

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samvera-app/samvera-stories/internal/domain"
	"github.com/samvera-app/samvera-stories/pkg/logger"
)

const (
	storiesKeyPrefix = "stories:feed:"
	itemsKeyPrefix   = "stories:items:"
)

// RedisCache stores the story feed and per-story item lists as JSON blobs.
type RedisCache struct {
	client *redis.Client
	logger logger.Logger
}

func NewRedisCache(client *redis.Client, logger logger.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		logger: logger,
	}
}

var _ Cache = (*RedisCache)(nil)

func (c *RedisCache) GetStories(ctx context.Context, orgID string) ([]domain.Story, bool) {
	var stories []domain.Story
	if !c.get(ctx, storiesKeyPrefix+orgID, &stories) {
		return nil, false
	}
	return stories, true
}

func (c *RedisCache) SetStories(ctx context.Context, orgID string, stories []domain.Story, ttl time.Duration) {
	c.set(ctx, storiesKeyPrefix+orgID, stories, ttl)
}

func (c *RedisCache) EvictStories(ctx context.Context, orgID string) {
	c.evict(ctx, storiesKeyPrefix+orgID)
}

func (c *RedisCache) GetItems(ctx context.Context, storyID string) ([]domain.StoryItem, bool) {
	var items []domain.StoryItem
	if !c.get(ctx, itemsKeyPrefix+storyID, &items) {
		return nil, false
	}
	return items, true
}

func (c *RedisCache) SetItems(ctx context.Context, storyID string, items []domain.StoryItem, ttl time.Duration) {
	c.set(ctx, itemsKeyPrefix+storyID, items, ttl)
}

func (c *RedisCache) EvictItems(ctx context.Context, storyID string) {
	c.evict(ctx, itemsKeyPrefix+storyID)
}

func (c *RedisCache) get(ctx context.Context, key string, dest any) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Warn("Cache entry is corrupt, dropping it", "key", key, "error", err)
		c.evict(ctx, key)
		return false
	}
	return true
}

func (c *RedisCache) set(ctx context.Context, key string, value any, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("Cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		c.logger.Warn("Cache write failed", "key", key, "error", err)
	}
}

func (c *RedisCache) evict(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("Cache evict failed", "key", key, "error", err)
	}
}
