// Package playback sequences the timed items of a story: automatic advance
// on a per-item duration, pause/resume, manual seek, auto-chaining to the
// next story and a progress indicator synchronized to wall-clock time. The
// engine is framework-agnostic; a hosting UI renders its snapshots.
package playback

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/samvera-app/samvera-stories/internal/domain"
	"github.com/samvera-app/samvera-stories/pkg/errors"
	"github.com/samvera-app/samvera-stories/pkg/logger"
)

// State is the playback lifecycle phase of the viewer.
type State int

const (
	// StateIdle means no story is open.
	StateIdle State = iota
	// StateLoading means a story is open but its items are still loading.
	StateLoading
	// StatePlaying means items are present and the countdown is running.
	StatePlaying
	// StatePaused means the countdown is frozen.
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Direction is a manual seek direction.
type Direction int

const (
	Next Direction = iota
	Previous
)

// ItemSource supplies the ordered slides of a story when it opens.
type ItemSource interface {
	ListStoryItems(ctx context.Context, storyID string) ([]domain.StoryItem, error)
}

// Snapshot is the observable state a hosting UI renders from.
type Snapshot struct {
	State       State
	ActiveStory *domain.Story
	Items       []domain.StoryItem
	ActiveIndex int
	Progress    float64
	Paused      bool
}

// FrameInterval is the nominal render tick, roughly 60 Hz. Frames exist for
// rendering smoothness only; advancement is driven by the countdown.
const FrameInterval = 16 * time.Millisecond

// Opts configures an Engine.
type Opts struct {
	// Source is required; it backs the item fetch on open.
	Source ItemSource
	// Clock defaults to the real clock. Tests inject a fake one.
	Clock clockwork.Clock
	// OnChange, if set, is called after every state transition.
	OnChange func(Snapshot)
	// OnFrame, if set, is called on each render tick while playing.
	OnFrame func(Snapshot)
	// FrameInterval overrides the render tick period.
	FrameInterval time.Duration
	Logger        logger.Logger
}

// Engine owns one viewer session. All timer handles and timestamps live on
// the instance; Close releases everything and is idempotent.
type Engine struct {
	mu            sync.Mutex
	clock         clockwork.Clock
	source        ItemSource
	log           logger.Logger
	onChange      func(Snapshot)
	onFrame       func(Snapshot)
	frameInterval time.Duration

	stories   []domain.Story
	state     State
	story     *domain.Story
	items     []domain.StoryItem
	index     int
	countdown *Countdown
	session   uint64
	ctx       context.Context
	frameStop chan struct{}
}

func New(opts Opts) (*Engine, error) {
	if opts.Source == nil {
		return nil, errors.New("playback: item source is required")
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = FrameInterval
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}

	e := &Engine{
		clock:         opts.Clock,
		source:        opts.Source,
		log:           opts.Logger,
		onChange:      opts.OnChange,
		onFrame:       opts.OnFrame,
		frameInterval: opts.FrameInterval,
		state:         StateIdle,
		ctx:           context.Background(),
	}
	e.countdown = NewCountdown(e.clock, e.handleComplete)
	return e, nil
}

// SetStories installs the session's ordered story list, used to resolve the
// next story when the last item of the active one completes.
func (e *Engine) SetStories(stories []domain.Story) {
	e.mu.Lock()
	e.stories = append([]domain.Story(nil), stories...)
	e.mu.Unlock()
}

// Open makes the given story active. The viewer becomes visible immediately,
// showing the story title while items load in the background; any previously
// open story is fully torn down first.
func (e *Engine) Open(ctx context.Context, story domain.Story) {
	e.mu.Lock()
	e.ctx = ctx
	e.openLocked(story)
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
}

// Advance seeks manually within the active story. Previous at the first item
// and Next at the last item are no-ops; only automatic completion crosses
// story boundaries.
func (e *Engine) Advance(dir Direction) {
	e.mu.Lock()
	if (e.state != StatePlaying && e.state != StatePaused) || len(e.items) == 0 {
		e.mu.Unlock()
		return
	}

	moved := false
	switch dir {
	case Next:
		if e.index < len(e.items)-1 {
			e.index++
			moved = true
		}
	case Previous:
		if e.index > 0 {
			e.index--
			moved = true
		}
	}
	if !moved {
		e.mu.Unlock()
		return
	}

	// Restarting the countdown invalidates any in-flight completion for
	// the previous item and clears a pause.
	e.countdown.Start(EffectiveDuration(e.items[e.index].DurationMs))
	e.state = StatePlaying
	e.startFramesLocked()
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
}

// TogglePause freezes or resumes the countdown. With no items loaded there
// is nothing to pause and the call is a no-op.
func (e *Engine) TogglePause() {
	e.mu.Lock()
	var snap Snapshot
	switch {
	case e.state == StatePlaying && len(e.items) > 0:
		e.countdown.Pause()
		e.stopFramesLocked()
		e.state = StatePaused
		snap = e.snapshotLocked()
	case e.state == StatePaused:
		e.countdown.Resume()
		e.state = StatePlaying
		e.startFramesLocked()
		snap = e.snapshotLocked()
	default:
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()
	e.notify(snap)
}

// Close tears the viewer down: all playback fields are cleared and every
// pending timer and tick is cancelled. Safe to call repeatedly.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.state == StateIdle {
		e.mu.Unlock()
		return
	}
	e.closeLocked()
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
}

// Snapshot returns the current observable state. Progress is computed from
// the wall clock at call time, so successive snapshots while playing are
// monotonically non-decreasing within one item.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) openLocked(story domain.Story) {
	e.session++
	session := e.session
	e.countdown.Stop()
	e.stopFramesLocked()

	s := story
	e.story = &s
	e.items = nil
	e.index = 0
	e.state = StateLoading

	ctx := e.ctx
	go func() {
		items, err := e.source.ListStoryItems(ctx, s.ID)
		e.applyItems(session, items, err)
	}()
}

func (e *Engine) applyItems(session uint64, items []domain.StoryItem, err error) {
	e.mu.Lock()
	if session != e.session || e.state != StateLoading {
		e.mu.Unlock()
		return
	}

	if err != nil {
		e.log.Warn("Failed to load story items, closing viewer", "story_id", e.story.ID, "error", err)
		e.closeLocked()
		snap := e.snapshotLocked()
		e.mu.Unlock()
		e.notify(snap)
		return
	}

	e.items = append([]domain.StoryItem(nil), items...)
	sort.SliceStable(e.items, func(i, j int) bool {
		return e.items[i].OrderIndex < e.items[j].OrderIndex
	})
	e.index = 0
	e.state = StatePlaying
	if len(e.items) > 0 {
		e.countdown.Start(EffectiveDuration(e.items[0].DurationMs))
		e.startFramesLocked()
	}
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
}

// handleComplete is the countdown's completion callback: advance within the
// story, then chain to the next story in the list, then close.
func (e *Engine) handleComplete(gen uint64) {
	e.mu.Lock()
	if !e.countdown.Valid(gen) || e.state != StatePlaying {
		e.mu.Unlock()
		return
	}

	if e.index < len(e.items)-1 {
		e.index++
		e.countdown.Start(EffectiveDuration(e.items[e.index].DurationMs))
		snap := e.snapshotLocked()
		e.mu.Unlock()
		e.notify(snap)
		return
	}

	if next, ok := e.nextStoryLocked(); ok {
		e.openLocked(next)
	} else {
		e.closeLocked()
	}
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
}

func (e *Engine) nextStoryLocked() (domain.Story, bool) {
	if e.story == nil {
		return domain.Story{}, false
	}
	for i, s := range e.stories {
		if s.ID == e.story.ID && i+1 < len(e.stories) {
			return e.stories[i+1], true
		}
	}
	return domain.Story{}, false
}

func (e *Engine) closeLocked() {
	e.session++
	e.countdown.Stop()
	e.stopFramesLocked()
	e.state = StateIdle
	e.story = nil
	e.items = nil
	e.index = 0
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{
		State:       e.state,
		ActiveStory: e.story,
		Items:       e.items,
		ActiveIndex: e.index,
		Progress:    e.countdown.Progress(),
		Paused:      e.state == StatePaused,
	}
}

func (e *Engine) notify(snap Snapshot) {
	if e.onChange != nil {
		e.onChange(snap)
	}
}

// startFramesLocked (re)starts the render ticker. At most one ticker exists
// at a time; it only runs when a frame observer is installed.
func (e *Engine) startFramesLocked() {
	e.stopFramesLocked()
	if e.onFrame == nil {
		return
	}
	stop := make(chan struct{})
	e.frameStop = stop
	t := e.clock.NewTicker(e.frameInterval)

	go func() {
		defer t.Stop()
		for {
			select {
			case <-t.Chan():
				e.emitFrame()
			case <-stop:
				return
			}
		}
	}()
}

func (e *Engine) stopFramesLocked() {
	if e.frameStop != nil {
		close(e.frameStop)
		e.frameStop = nil
	}
}

func (e *Engine) emitFrame() {
	e.mu.Lock()
	if e.state != StatePlaying {
		e.mu.Unlock()
		return
	}
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.onFrame(snap)
}
