package config

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/sonarpi/sonar/pkg/utils/ptr"
)

var defaultFileConfig = &RawFileConfig{
	// Default wiring: BCM 17 drives the sensor's TRIG pin,
	// BCM 16 reads ECHO.
	TriggerPin: ptr.To("GPIO17"),
	EchoPin:    ptr.To("GPIO16"),

	PollIntervalMs: ptr.To(1000),
	// 38 ms per polling phase. At 58 µs/cm the round trip for the
	// sensor's ~4 m maximum range cannot exceed it.
	EchoTimeoutUs: ptr.To(38000),

	MinDistanceCm: ptr.To(1.0),
	MaxDistanceCm: ptr.To(400.0),
}

var _ Config = &File{}

// File is a JSON-file-backed Config. Fields absent from the file fall back
// to defaults, so an empty or missing file is a valid configuration.
type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

// NewFile reads the config file at configPath. A missing file yields the
// default configuration.
func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

// NewFileFromConfig wraps an already-parsed RawFileConfig.
func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = defaultFileConfig
	}

	return &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}
}

// RawFileConfig is the on-disk shape. Pointer fields distinguish "absent"
// from zero values.
type RawFileConfig struct {
	TriggerPin     *string  `json:"triggerPin,omitempty"`
	EchoPin        *string  `json:"echoPin,omitempty"`
	PollIntervalMs *int     `json:"pollIntervalMs,omitempty"`
	EchoTimeoutUs  *int     `json:"echoTimeoutUs,omitempty"`
	MinDistanceCm  *float64 `json:"minDistanceCm,omitempty"`
	MaxDistanceCm  *float64 `json:"maxDistanceCm,omitempty"`
}

func (f *File) TriggerPin() string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.TriggerPin != nil {
		return *f.c.TriggerPin
	}
	return *defaultFileConfig.TriggerPin
}

func (f *File) EchoPin() string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.EchoPin != nil {
		return *f.c.EchoPin
	}
	return *defaultFileConfig.EchoPin
}

func (f *File) PollInterval() time.Duration {
	f.mu.RLock()
	defer f.mu.RUnlock()

	ms := *defaultFileConfig.PollIntervalMs
	if f.c.PollIntervalMs != nil {
		ms = *f.c.PollIntervalMs
	}
	return time.Duration(ms) * time.Millisecond
}

func (f *File) EchoTimeout() time.Duration {
	f.mu.RLock()
	defer f.mu.RUnlock()

	us := *defaultFileConfig.EchoTimeoutUs
	if f.c.EchoTimeoutUs != nil {
		us = *f.c.EchoTimeoutUs
	}
	return time.Duration(us) * time.Microsecond
}

func (f *File) MinDistanceCm() float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.MinDistanceCm != nil {
		return *f.c.MinDistanceCm
	}
	return *defaultFileConfig.MinDistanceCm
}

func (f *File) MaxDistanceCm() float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.MaxDistanceCm != nil {
		return *f.c.MaxDistanceCm
	}
	return *defaultFileConfig.MaxDistanceCm
}

func (f *File) SetTriggerPin(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.TriggerPin = &name
}

func (f *File) SetEchoPin(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.EchoPin = &name
}

func (f *File) SetPollInterval(d time.Duration) {
	if d <= 0 {
		panic("poll interval must be positive")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	ms := int(d / time.Millisecond)
	f.c.PollIntervalMs = &ms
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// If the file does not exist, return the empty config.
			// Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		// An empty file is also the empty config.
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	err = json.Unmarshal(b, &conf)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	f.c = &conf

	return nil
}

func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}

	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	enc := json.NewEncoder(fp)
	enc.SetIndent("", "  ")
	err = enc.Encode(f.c)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode config to file %s", f.filepath)
	}

	return nil
}

func (f *File) LogrusFields() logrus.Fields {
	return logrus.Fields{
		"triggerPin":    f.TriggerPin(),
		"echoPin":       f.EchoPin(),
		"pollInterval":  f.PollInterval(),
		"echoTimeout":   f.EchoTimeout(),
		"minDistanceCm": f.MinDistanceCm(),
		"maxDistanceCm": f.MaxDistanceCm(),
	}
}
