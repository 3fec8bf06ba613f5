package playback

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func int64Ptr(v int64) *int64 { return &v }

func TestEffectiveDuration(t *testing.T) {
	tests := []struct {
		name string
		in   *int64
		want time.Duration
	}{
		{"missing defaults to 30s", nil, 30 * time.Second},
		{"zero defaults to 30s", int64Ptr(0), 30 * time.Second},
		{"below floor is clamped", int64Ptr(500), time.Second},
		{"negative is clamped", int64Ptr(-5), time.Second},
		{"normal passes through", int64Ptr(5000), 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EffectiveDuration(tt.in); got != tt.want {
				t.Errorf("EffectiveDuration(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCountdownFiresAfterDuration(t *testing.T) {
	fc := clockwork.NewFakeClock()
	fired := make(chan uint64, 1)
	c := NewCountdown(fc, func(gen uint64) { fired <- gen })

	c.Start(10 * time.Second)

	fc.Advance(9 * time.Second)
	select {
	case <-fired:
		t.Fatal("countdown fired before the duration elapsed")
	case <-time.After(50 * time.Millisecond):
	}

	fc.Advance(time.Second)
	select {
	case gen := <-fired:
		if !c.Valid(gen) {
			t.Errorf("completion generation %d should still be valid", gen)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("countdown did not fire after the full duration")
	}
}

func TestCountdownPauseFreezesProgress(t *testing.T) {
	fc := clockwork.NewFakeClock()
	c := NewCountdown(fc, func(uint64) {})

	c.Start(10 * time.Second)
	fc.Advance(4 * time.Second)

	if got := c.Progress(); got != 40 {
		t.Fatalf("Progress = %v, want 40", got)
	}

	c.Pause()
	fc.Advance(time.Hour)

	if got := c.Progress(); got != 40 {
		t.Errorf("Progress after pause = %v, want 40", got)
	}
	if !c.Paused() {
		t.Error("Paused() = false, want true")
	}
}

func TestCountdownResumePreservesRemainingTime(t *testing.T) {
	fc := clockwork.NewFakeClock()
	fired := make(chan uint64, 1)
	c := NewCountdown(fc, func(gen uint64) { fired <- gen })

	c.Start(10 * time.Second)
	fc.Advance(4 * time.Second)
	c.Pause()
	fc.Advance(42 * time.Minute)
	c.Resume()

	// Exactly 6s must remain after resume.
	fc.Advance(5999 * time.Millisecond)
	select {
	case <-fired:
		t.Fatal("countdown fired before the remaining time elapsed")
	case <-time.After(50 * time.Millisecond):
	}

	if got := c.Progress(); got >= 100 {
		t.Errorf("Progress just before completion = %v, want < 100", got)
	}

	fc.Advance(time.Millisecond)
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("countdown did not fire after the remaining time")
	}
}

func TestCountdownStopInvalidatesCompletion(t *testing.T) {
	fc := clockwork.NewFakeClock()
	fired := make(chan uint64, 1)
	c := NewCountdown(fc, func(gen uint64) { fired <- gen })

	c.Start(time.Second)
	c.Stop()

	fc.Advance(time.Minute)
	select {
	case gen := <-fired:
		if c.Valid(gen) {
			t.Error("stale completion generation should not be valid after Stop")
		}
	case <-time.After(50 * time.Millisecond):
	}

	if got := c.Progress(); got != 0 {
		t.Errorf("Progress after Stop = %v, want 0", got)
	}
}

func TestCountdownRestartInvalidatesPreviousTimer(t *testing.T) {
	fc := clockwork.NewFakeClock()
	fired := make(chan uint64, 4)
	c := NewCountdown(fc, func(gen uint64) { fired <- gen })

	c.Start(time.Second)
	fc.Advance(999 * time.Millisecond)
	c.Start(30 * time.Second)

	// The first item's timer would have fired at 1s; the restart must have
	// cancelled it.
	fc.Advance(time.Millisecond)
	select {
	case gen := <-fired:
		if c.Valid(gen) {
			t.Error("completion from the replaced timer should be stale")
		}
	case <-time.After(50 * time.Millisecond):
	}

	if got := c.Progress(); got > 1 {
		t.Errorf("Progress after restart = %v, want near 0", got)
	}
}

func TestCountdownElapsedIsCapped(t *testing.T) {
	fc := clockwork.NewFakeClock()
	c := NewCountdown(fc, func(uint64) {})

	c.Start(time.Second)
	fc.Advance(time.Minute)

	if got := c.Elapsed(); got != time.Second {
		t.Errorf("Elapsed = %v, want %v", got, time.Second)
	}
	if got := c.Progress(); got != 100 {
		t.Errorf("Progress = %v, want 100", got)
	}
}
