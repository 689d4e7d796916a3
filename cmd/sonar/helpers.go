package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/sonarpi/sonar/pkg/config"
)

// addPinFlags registers the wiring flags shared by commands that talk to the
// sensor.
func addPinFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("trigger-pin", "", "GPIO pin wired to the sensor's TRIG (overrides config).")
	f.String("echo-pin", "", "GPIO pin wired to the sensor's ECHO (overrides config).")
}

// loadConfig reads the config file and applies any flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	conf, err := config.NewFile(configPath)
	if err != nil {
		return nil, err
	}

	if v, err := cmd.Flags().GetString("trigger-pin"); err == nil && v != "" {
		conf.SetTriggerPin(v)
	}
	if v, err := cmd.Flags().GetString("echo-pin"); err == nil && v != "" {
		conf.SetEchoPin(v)
	}
	if v, err := cmd.Flags().GetDuration("interval"); err == nil && v > 0 {
		conf.SetPollInterval(v)
	}

	return conf, nil
}

// sensorSettle is how long to wait between configuring the pins and the
// first trigger pulse.
const sensorSettle = 200 * time.Millisecond
