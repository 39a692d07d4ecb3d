package game

import (
	"time"

	"github.com/coder/quartz"
)

const (
	// pollInterval bounds how long the dealer sleeps between countdown
	// refreshes when no claim arrives.
	pollInterval = time.Second
	// warningPollInterval is the refresh rate inside the warning window.
	warningPollInterval = 10 * time.Millisecond
)

// Timer tracks the round deadline. It is owned by the dealer goroutine.
type Timer struct {
	clock    quartz.Clock
	mode     TimerMode
	duration time.Duration
	warning  time.Duration
	reset    time.Time
}

// NewTimer creates a timer and starts the first round.
func NewTimer(clock quartz.Clock, mode TimerMode, duration, warning time.Duration) *Timer {
	t := &Timer{
		clock:    clock,
		mode:     mode,
		duration: duration,
		warning:  warning,
	}
	t.Reset()
	return t
}

// Mode returns the timer mode.
func (t *Timer) Mode() TimerMode {
	return t.mode
}

// Reset starts a new round now.
func (t *Timer) Reset() {
	t.reset = t.clock.Now("timer", "reset")
}

// Deadline returns the absolute end of the round. Only meaningful in
// countdown mode.
func (t *Timer) Deadline() time.Time {
	return t.reset.Add(t.duration)
}

// Remaining returns the time left in the round, never negative. Outside
// countdown mode it is always zero.
func (t *Timer) Remaining() time.Duration {
	if t.mode != TimerCountdown {
		return 0
	}
	return max(t.Deadline().Sub(t.clock.Now("timer", "remaining")), 0)
}

// Elapsed returns the time since the last reset.
func (t *Timer) Elapsed() time.Duration {
	return t.clock.Since(t.reset, "timer", "elapsed")
}

// Expired reports whether the countdown has run out. Other modes never expire.
func (t *Timer) Expired() bool {
	return t.mode == TimerCountdown && t.Remaining() <= 0
}

// Warning reports whether the countdown is inside the warning window.
func (t *Timer) Warning() bool {
	return t.mode == TimerCountdown && t.Remaining() <= t.warning
}

// NextWake returns how long the dealer may block before the display needs a
// refresh or the countdown expires.
func (t *Timer) NextWake() time.Duration {
	if t.mode != TimerCountdown {
		return pollInterval
	}
	remaining := t.Remaining()
	if remaining <= t.warning {
		return max(min(remaining, warningPollInterval), time.Millisecond)
	}
	// Wake on whole-second boundaries of the remaining time so the display
	// ticks evenly.
	wait := remaining % time.Second
	if wait == 0 {
		wait = time.Second
	}
	return min(wait, pollInterval)
}

// Publish pushes the current clock state to the display.
func (t *Timer) Publish(d Display) {
	switch t.mode {
	case TimerCountdown:
		d.SetCountdown(t.Remaining(), t.Warning())
	case TimerElapsed:
		d.SetElapsed(t.Elapsed())
	}
}
