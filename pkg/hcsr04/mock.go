package hcsr04

import "time"

// MockClock is a manually advanced Clock for tests. Sleep advances it by the
// slept duration, and MockLine advances it by one poll tick per Get, so a
// scripted echo schedule plays out deterministically with no real waiting.
type MockClock struct {
	now time.Time
}

// NewMockClock returns a MockClock starting at an arbitrary fixed epoch.
func NewMockClock() *MockClock {
	return &MockClock{now: time.Unix(0, 0)}
}

func (c *MockClock) Now() time.Time { return c.now }

func (c *MockClock) Sleep(d time.Duration) { c.now = c.now.Add(d) }

// Advance moves the clock forward without sleeping.
func (c *MockClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// MockLine is a scripted GPIO line. As a trigger it records every Set call;
// as an echo it reports the level computed by LevelFunc at the current mock
// time. Each Get advances the clock by PollTick, modelling the cost of one
// busy-poll iteration.
type MockLine struct {
	// LevelFunc computes the line level at a point in mock time.
	// When nil the line reads back whatever was last Set.
	LevelFunc func(t time.Time) bool
	// SetErr, when non-nil, is returned by every Set call.
	SetErr error
	// Sets records every Set call in order.
	Sets []bool
	// PollTick is how far each Get advances the clock.
	PollTick time.Duration

	clock *MockClock
	level bool
}

// NewMockLine returns a MockLine bound to the given clock, advancing it by
// 1 µs per Get.
func NewMockLine(clock *MockClock) *MockLine {
	return &MockLine{
		clock:    clock,
		PollTick: time.Microsecond,
	}
}

func (l *MockLine) Set(high bool) error {
	if l.SetErr != nil {
		return l.SetErr
	}
	l.Sets = append(l.Sets, high)
	l.level = high
	return nil
}

func (l *MockLine) Get() bool {
	level := l.level
	if l.LevelFunc != nil {
		level = l.LevelFunc(l.clock.Now())
	}
	if l.PollTick > 0 {
		l.clock.Advance(l.PollTick)
	}
	return level
}
