package config

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Config holds the sensor wiring and timing settings. It replaces the pin
// constants a hard-wired build would use, so one binary can serve any wiring.
type Config interface {
	TriggerPin() string
	EchoPin() string
	PollInterval() time.Duration
	EchoTimeout() time.Duration
	MinDistanceCm() float64
	MaxDistanceCm() float64

	SetTriggerPin(string)
	SetEchoPin(string)
	SetPollInterval(time.Duration)

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error

	LogrusFields() logrus.Fields
}
