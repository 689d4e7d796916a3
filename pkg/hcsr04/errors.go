package hcsr04

import pkgerrors "github.com/pkg/errors"

var (
	// ErrTimeout means the echo pulse never started or never ended within
	// the timeout window. Typically there is no object in range.
	ErrTimeout = pkgerrors.New("timed out waiting for echo")

	// ErrOutOfRange means a pulse was measured but its width converts to a
	// distance outside the sensor's credible envelope. Typically sensor
	// noise or a reflection anomaly.
	ErrOutOfRange = pkgerrors.New("measured distance out of range")
)
