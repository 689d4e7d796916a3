// Package gpio wraps periph.io GPIO pins behind the two-capability line
// interface the sensor needs: drive a level, read a level.
package gpio

import (
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Init loads the periph host drivers. It is safe to call more than once;
// subsequent calls are no-ops.
func Init() error {
	state, err := host.Init()
	if err != nil {
		return pkgerrors.Wrap(err, "failed to initialize host GPIO drivers")
	}

	logrus.WithFields(logrus.Fields{
		"loaded":  len(state.Loaded),
		"skipped": len(state.Skipped),
		"failed":  len(state.Failed),
	}).Debug("host GPIO drivers initialized")

	return nil
}

// Pin is a single GPIO line addressed by a periph name, e.g. "GPIO17" on a
// Raspberry Pi (BCM numbering).
//
// Set and Get deliberately do not log: the echo line is busy-polled at
// microsecond scale and a formatted log call per poll would distort the
// pulse-width measurement.
type Pin struct {
	pin pgpio.PinIO
}

// OutputPin opens the named pin and configures it as an output, driven low.
func OutputPin(name string) (*Pin, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, pkgerrors.Errorf("no GPIO pin named %q", name)
	}
	if err := p.Out(pgpio.Low); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to configure %s as output", name)
	}

	logrus.WithField("pin", name).Debug("configured output pin")
	return &Pin{pin: p}, nil
}

// InputPin opens the named pin and configures it as a pulled-down input.
func InputPin(name string) (*Pin, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, pkgerrors.Errorf("no GPIO pin named %q", name)
	}
	if err := p.In(pgpio.PullDown, pgpio.NoEdge); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to configure %s as input", name)
	}

	logrus.WithField("pin", name).Debug("configured input pin")
	return &Pin{pin: p}, nil
}

// Set drives the line high or low.
func (p *Pin) Set(high bool) error {
	return p.pin.Out(pgpio.Level(high))
}

// Get reads the current level of the line.
func (p *Pin) Get() bool {
	return p.pin.Read() == pgpio.High
}

// Name returns the pin's name in the host registry.
func (p *Pin) Name() string {
	return p.pin.Name()
}

// Halt releases the pin's resources.
func (p *Pin) Halt() error {
	return pkgerrors.Wrapf(p.pin.Halt(), "failed to halt pin %s", p.pin.Name())
}
