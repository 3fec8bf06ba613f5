package playback

import (
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	// DefaultDuration is used when an item carries no display duration.
	DefaultDuration = 30 * time.Second
	// MinDuration is the floor applied to every item duration so a
	// malformed value can never produce a zero or negative countdown.
	MinDuration = time.Second
)

// EffectiveDuration normalizes an item's requested display time. A missing or
// zero duration falls back to DefaultDuration, everything else is floored at
// MinDuration.
func EffectiveDuration(ms *int64) time.Duration {
	if ms == nil || *ms == 0 {
		return DefaultDuration
	}
	d := time.Duration(*ms) * time.Millisecond
	if d < MinDuration {
		return MinDuration
	}
	return d
}

// Countdown tracks the remaining display time of a single item. It supports
// pausing without losing already-elapsed time: Pause checkpoints the wall
// clock and Resume rebases the start so exactly the remaining time is left.
//
// Countdown is not safe for concurrent use on its own; the Engine serializes
// every call under its own mutex. The fire callback receives a generation
// token, and completions whose generation is no longer current must be
// discarded via Valid.
type Countdown struct {
	clock    clockwork.Clock
	fire     func(gen uint64)
	duration time.Duration

	startedAt time.Time
	pausedAt  time.Time
	timer     clockwork.Timer
	cancel    chan struct{}
	gen       uint64
	active    bool
}

func NewCountdown(clock clockwork.Clock, fire func(gen uint64)) *Countdown {
	return &Countdown{
		clock: clock,
		fire:  fire,
	}
}

// Start begins a fresh countdown for the given duration, cancelling any
// countdown that was running before.
func (c *Countdown) Start(d time.Duration) {
	c.unschedule()
	c.duration = d
	c.startedAt = c.clock.Now()
	c.pausedAt = time.Time{}
	c.active = true
	c.schedule(d)
}

// Pause freezes the countdown and unschedules the completion callback so a
// late fire can never roll the state forward.
func (c *Countdown) Pause() {
	if !c.active || !c.pausedAt.IsZero() {
		return
	}
	c.pausedAt = c.clock.Now()
	c.unschedule()
}

// Resume continues a paused countdown with exactly the time that was left.
func (c *Countdown) Resume() {
	if !c.active || c.pausedAt.IsZero() {
		return
	}
	elapsed := c.pausedAt.Sub(c.startedAt)
	c.startedAt = c.clock.Now().Add(-elapsed)
	c.pausedAt = time.Time{}
	c.schedule(c.duration - elapsed)
}

// Stop cancels the countdown entirely.
func (c *Countdown) Stop() {
	c.active = false
	c.pausedAt = time.Time{}
	c.unschedule()
}

// Valid reports whether a completion carrying the given generation is still
// the current one. Stale completions are no-ops.
func (c *Countdown) Valid(gen uint64) bool {
	return c.active && c.pausedAt.IsZero() && gen == c.gen
}

// Paused reports whether the countdown is currently frozen.
func (c *Countdown) Paused() bool {
	return c.active && !c.pausedAt.IsZero()
}

// Elapsed returns how much of the duration has passed, capped at the
// duration itself. While paused it stays at the pause checkpoint.
func (c *Countdown) Elapsed() time.Duration {
	if !c.active {
		return 0
	}
	var e time.Duration
	if !c.pausedAt.IsZero() {
		e = c.pausedAt.Sub(c.startedAt)
	} else {
		e = c.clock.Since(c.startedAt)
	}
	if e > c.duration {
		e = c.duration
	}
	if e < 0 {
		e = 0
	}
	return e
}

// Progress returns the fill percentage in [0,100] for the running item.
func (c *Countdown) Progress() float64 {
	if !c.active || c.duration <= 0 {
		return 0
	}
	p := float64(c.Elapsed()) / float64(c.duration) * 100
	if p > 100 {
		p = 100
	}
	return p
}

func (c *Countdown) schedule(remaining time.Duration) {
	if remaining <= 0 {
		remaining = time.Millisecond
	}
	c.gen++
	gen := c.gen
	cancel := make(chan struct{})
	c.cancel = cancel
	t := c.clock.NewTimer(remaining)
	c.timer = t

	go func() {
		select {
		case <-t.Chan():
			c.fire(gen)
		case <-cancel:
		}
	}()
}

func (c *Countdown) unschedule() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.cancel != nil {
		close(c.cancel)
		c.cancel = nil
	}
	c.gen++
}
