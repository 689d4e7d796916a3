// Package hcsr04 drives an HC-SR04 ultrasonic ranging module over two GPIO
// lines: a trigger output and an echo input. A measurement is a single
// synchronous trigger-pulse/echo-pulse exchange; the width of the echo pulse
// is proportional to the round-trip acoustic travel time.
//
// Datasheet: https://cdn.sparkfun.com/datasheets/Sensors/Proximity/HCSR04.pdf
package hcsr04

import (
	"time"

	pkgerrors "github.com/pkg/errors"
)

// Line is a single GPIO line. The trigger line only needs Set, the echo line
// only needs Get; both capabilities live on one interface so any pin
// implementation can serve either role.
type Line interface {
	// Set drives the line high or low.
	Set(high bool) error
	// Get reads the current level of the line.
	Get() bool
}

// Clock is the monotonic time source used for pulse timing. The real sensor
// uses SystemClock; tests substitute a simulated clock.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// SystemClock is the stdlib monotonic clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time        { return time.Now() }
func (SystemClock) Sleep(d time.Duration) { time.Sleep(d) }

const (
	// triggerSettle holds the trigger low before pulsing for a clean edge.
	triggerSettle = 2 * time.Microsecond
	// triggerWidth is the sensor-specified minimum trigger pulse width.
	triggerWidth = 10 * time.Microsecond

	// usPerCm is the round-trip time of sound per centimeter,
	// derived from ~343 m/s at room temperature.
	usPerCm = 58.0

	// DefaultEchoTimeout bounds each echo polling phase. At 58 µs/cm the
	// round trip for the sensor's ~4 m maximum range cannot exceed it.
	DefaultEchoTimeout = 38000 * time.Microsecond

	// DefaultMinDistanceCm and DefaultMaxDistanceCm bound the sensor's
	// credible envelope. Readings outside it are noise or reflection
	// anomalies, not real objects.
	DefaultMinDistanceCm = 1.0
	DefaultMaxDistanceCm = 400.0
)

// Options tunes a Sensor. Zero values fall back to the defaults above.
type Options struct {
	// EchoTimeout bounds each of the two echo polling phases separately.
	EchoTimeout time.Duration
	// MinDistanceCm and MaxDistanceCm are the accepted reading bounds,
	// inclusive on both ends.
	MinDistanceCm float64
	MaxDistanceCm float64
	// Clock overrides the monotonic time source.
	Clock Clock
}

// Sensor owns the two GPIO lines of one HC-SR04 module. It is not safe for
// concurrent use; a measurement is a strictly serial pulse exchange.
type Sensor struct {
	trigger Line
	echo    Line
	timeout time.Duration
	minCm   float64
	maxCm   float64
	clock   Clock
}

// New returns a Sensor with default timing and range bounds. The trigger line
// must already be configured as an output (idle low) and the echo line as an
// input.
func New(trigger, echo Line) *Sensor {
	return NewWithOptions(trigger, echo, Options{})
}

// NewWithOptions returns a Sensor with the given overrides.
func NewWithOptions(trigger, echo Line, opts Options) *Sensor {
	s := &Sensor{
		trigger: trigger,
		echo:    echo,
		timeout: opts.EchoTimeout,
		minCm:   opts.MinDistanceCm,
		maxCm:   opts.MaxDistanceCm,
		clock:   opts.Clock,
	}
	if s.timeout <= 0 {
		s.timeout = DefaultEchoTimeout
	}
	if s.minCm <= 0 {
		s.minCm = DefaultMinDistanceCm
	}
	if s.maxCm <= 0 {
		s.maxCm = DefaultMaxDistanceCm
	}
	if s.clock == nil {
		s.clock = SystemClock{}
	}
	return s
}

// Measure performs one measurement cycle and returns the distance in
// centimeters. It emits a trigger pulse, busy-polls the echo line for the
// rising then the falling edge (each bounded by the echo timeout), and
// converts the pulse width to a distance.
//
// It returns ErrTimeout when no echo starts or ends within the timeout window
// (object absent, out of range, or a stuck line) and ErrOutOfRange when a
// pulse was measured but converts outside the accepted bounds. Both are
// recoverable; the caller retries on its next cycle. The trigger line is back
// low once the pulse has been emitted, regardless of outcome.
//
// Measure blocks for up to two timeout windows (~76 ms worst case).
func (s *Sensor) Measure() (float64, error) {
	if err := s.pulse(); err != nil {
		return 0, err
	}

	// Wait for the echo pulse to start.
	start, err := s.waitLevel(true)
	if err != nil {
		return 0, pkgerrors.WithMessage(err, "no echo received")
	}

	// Wait for it to end. The timeout window restarts here.
	end, err := s.waitLevel(false)
	if err != nil {
		return 0, pkgerrors.WithMessage(err, "echo pulse did not terminate")
	}

	// Signed 64-bit µs so wraparound arithmetic on the underlying clock
	// cannot produce a huge unsigned value.
	durationUS := end.Sub(start).Microseconds()
	distance := float64(durationUS) / usPerCm

	if distance < s.minCm || distance > s.maxCm {
		return 0, pkgerrors.Wrapf(ErrOutOfRange,
			"%.2f cm outside [%.2f, %.2f]", distance, s.minCm, s.maxCm)
	}

	return distance, nil
}

// pulse emits the trigger pulse: low for a settle period, high for the
// sensor-specified width, then low again. The line always ends low.
func (s *Sensor) pulse() error {
	if err := s.trigger.Set(false); err != nil {
		return pkgerrors.Wrap(err, "failed to settle trigger line")
	}
	s.clock.Sleep(triggerSettle)

	if err := s.trigger.Set(true); err != nil {
		return pkgerrors.Wrap(err, "failed to raise trigger line")
	}
	s.clock.Sleep(triggerWidth)

	if err := s.trigger.Set(false); err != nil {
		return pkgerrors.Wrap(err, "failed to end trigger pulse")
	}
	return nil
}

// waitLevel busy-polls the echo line until it reads the wanted level and
// returns the time the transition was observed. Elapsed time is tracked
// against the echo timeout from the start of this wait.
func (s *Sensor) waitLevel(high bool) (time.Time, error) {
	start := s.clock.Now()
	for s.echo.Get() != high {
		if s.clock.Now().Sub(start) > s.timeout {
			return time.Time{}, pkgerrors.Wrapf(ErrTimeout,
				"echo line not %s within %s", levelName(high), s.timeout)
		}
	}
	return s.clock.Now(), nil
}

func levelName(high bool) string {
	if high {
		return "high"
	}
	return "low"
}
