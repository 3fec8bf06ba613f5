package feedimpl

import (
	"context"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/samvera-app/samvera-stories/internal/domain"
)

// warmItemCaches prefetches each listed story's items into the cache with a
// bounded worker pool, so the viewer's "instant open" fetch is usually a
// cache hit. Failures only cost the prefetch.
func (f *FeedImpl) warmItemCaches(ctx context.Context, stories []domain.Story) {
	if len(stories) == 0 {
		return
	}

	size := f.Config.Stories.WarmPoolSize
	if size < 1 {
		size = 1
	}

	// The warm run outlives the request that triggered it.
	ctx = context.WithoutCancel(ctx)

	go func() {
		var wg sync.WaitGroup
		pool, err := ants.NewPool(size, ants.WithPreAlloc(true))
		if err != nil {
			f.Logger.Warn("Failed to create warm pool", "error", err)
			return
		}
		defer pool.Release()

		for _, s := range stories {
			storyID := s.ID
			wg.Add(1)
			err := pool.Submit(func() {
				defer wg.Done()
				if _, err := f.ListStoryItems(ctx, storyID); err != nil {
					f.Logger.Warn("Failed to warm item cache", "story_id", storyID, "error", err)
				}
			})
			if err != nil {
				wg.Done()
				f.Logger.Warn("Failed to submit warm job", "story_id", storyID, "error", err)
			}
		}

		wg.Wait()
	}()
}
