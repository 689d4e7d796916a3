package hcsr04

import (
	"errors"
	"math"
	"testing"
	"time"
)

// scriptedSensor builds a sensor on mock hardware whose echo pulse starts
// echoDelay after the trigger pulse ends and lasts echoWidth. A negative
// echoWidth scripts a stuck line that never falls, a negative echoDelay an
// echo that never rises.
func scriptedSensor(echoDelay, echoWidth time.Duration) (*Sensor, *MockLine) {
	clock := NewMockClock()
	trigger := NewMockLine(clock)
	echo := NewMockLine(clock)

	epoch := clock.Now()
	rise := triggerSettle + triggerWidth + echoDelay
	echo.LevelFunc = func(t time.Time) bool {
		if echoDelay < 0 {
			return false
		}
		e := t.Sub(epoch)
		if e < rise {
			return false
		}
		return echoWidth < 0 || e < rise+echoWidth
	}

	return NewWithOptions(trigger, echo, Options{Clock: clock}), trigger
}

func TestMeasure(t *testing.T) {
	tests := []struct {
		name      string
		echoDelay time.Duration
		echoWidth time.Duration
		want      float64
		wantErr   error
	}{
		{
			name:      "10 cm",
			echoDelay: 200 * time.Microsecond,
			echoWidth: 580 * time.Microsecond,
			want:      10.0,
		},
		{
			name:      "lower bound accepted",
			echoDelay: 100 * time.Microsecond,
			echoWidth: 58 * time.Microsecond,
			want:      1.0,
		},
		{
			name:      "upper bound accepted",
			echoDelay: 500 * time.Microsecond,
			echoWidth: 23200 * time.Microsecond,
			want:      400.0,
		},
		{
			name:      "mid range",
			echoDelay: 300 * time.Microsecond,
			echoWidth: 11600 * time.Microsecond,
			want:      200.0,
		},
		{
			name:      "just past maximum rejected",
			echoDelay: 500 * time.Microsecond,
			echoWidth: 23260 * time.Microsecond,
			wantErr:   ErrOutOfRange,
		},
		{
			name:      "too close rejected",
			echoDelay: 50 * time.Microsecond,
			echoWidth: 40 * time.Microsecond,
			wantErr:   ErrOutOfRange,
		},
		{
			name:      "echo never rises",
			echoDelay: -1,
			wantErr:   ErrTimeout,
		},
		{
			name:      "echo rises after timeout window",
			echoDelay: 39000 * time.Microsecond,
			echoWidth: 580 * time.Microsecond,
			wantErr:   ErrTimeout,
		},
		{
			name:      "echo stuck high",
			echoDelay: 200 * time.Microsecond,
			echoWidth: -1,
			wantErr:   ErrTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, trigger := scriptedSensor(tt.echoDelay, tt.echoWidth)

			got, err := s.Measure()

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Measure() error = %v, want %v", err, tt.wantErr)
				}
			} else {
				if err != nil {
					t.Fatalf("Measure() unexpected error: %v", err)
				}
				if math.Abs(got-tt.want) > 1e-9 {
					t.Errorf("Measure() = %v, want %v", got, tt.want)
				}
			}

			// The trigger line sequence is always low, high, low, no
			// matter how the measurement ends.
			wantSets := []bool{false, true, false}
			if len(trigger.Sets) != len(wantSets) {
				t.Fatalf("trigger sequence = %v, want %v", trigger.Sets, wantSets)
			}
			for i := range wantSets {
				if trigger.Sets[i] != wantSets[i] {
					t.Fatalf("trigger sequence = %v, want %v", trigger.Sets, wantSets)
				}
			}
		})
	}
}

func TestMeasureIdempotent(t *testing.T) {
	const delay = 150 * time.Microsecond
	const width = 1160 * time.Microsecond

	s1, _ := scriptedSensor(delay, width)
	first, err := s1.Measure()
	if err != nil {
		t.Fatalf("Measure() unexpected error: %v", err)
	}

	for i := 0; i < 5; i++ {
		s, _ := scriptedSensor(delay, width)
		got, err := s.Measure()
		if err != nil {
			t.Fatalf("run %d: Measure() unexpected error: %v", i, err)
		}
		if got != first {
			t.Errorf("run %d: Measure() = %v, want %v", i, got, first)
		}
	}
}

func TestMeasureTriggerSetError(t *testing.T) {
	clock := NewMockClock()
	trigger := NewMockLine(clock)
	echo := NewMockLine(clock)
	trigger.SetErr = errors.New("pin gone")

	s := NewWithOptions(trigger, echo, Options{Clock: clock})
	if _, err := s.Measure(); err == nil {
		t.Fatal("Measure() expected error when trigger line fails")
	}
}

func TestNewWithOptionsDefaults(t *testing.T) {
	clock := NewMockClock()
	s := NewWithOptions(NewMockLine(clock), NewMockLine(clock), Options{Clock: clock})

	if s.timeout != DefaultEchoTimeout {
		t.Errorf("timeout = %v, want %v", s.timeout, DefaultEchoTimeout)
	}
	if s.minCm != DefaultMinDistanceCm {
		t.Errorf("minCm = %v, want %v", s.minCm, DefaultMinDistanceCm)
	}
	if s.maxCm != DefaultMaxDistanceCm {
		t.Errorf("maxCm = %v, want %v", s.maxCm, DefaultMaxDistanceCm)
	}
}
