package feedimpl

import (
	"github.com/samvera-app/samvera-stories/internal/feed"
	"github.com/samvera-app/samvera-stories/internal/repositories/story"
	"github.com/samvera-app/samvera-stories/internal/repositories/storyitem"
	"github.com/samvera-app/samvera-stories/pkg/config"
	"github.com/samvera-app/samvera-stories/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	StoryRepo story.Repository
	ItemRepo  storyitem.Repository
	Cache     feed.Cache
	Logger    logger.Logger
	Config    *config.Config
}

type FeedImpl struct {
	StoryRepo story.Repository
	ItemRepo  storyitem.Repository
	Cache     feed.Cache
	Logger    logger.Logger
	Config    *config.Config
}

func New(opts Opts) *FeedImpl {
	return &FeedImpl{
		StoryRepo: opts.StoryRepo,
		ItemRepo:  opts.ItemRepo,
		Cache:     opts.Cache,
		Logger:    opts.Logger,
		Config:    opts.Config,
	}
}

var _ feed.Service = (*FeedImpl)(nil)
