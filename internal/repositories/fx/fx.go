package fx

import (
	"github.com/samvera-app/samvera-stories/internal/repositories/story"
	"github.com/samvera-app/samvera-stories/internal/repositories/storyitem"
	"go.uber.org/fx"
)

var Module = fx.Options(
	story.Module,
	storyitem.Module,
)
