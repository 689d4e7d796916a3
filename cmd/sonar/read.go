package main

import (
	"errors"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sonarpi/sonar/pkg/gpio"
	"github.com/sonarpi/sonar/pkg/hcsr04"
)

func NewReadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read",
		Short: "Take a single measurement",
		Long: `Take a single measurement and print it.

Unlike the daemon's console output, failures are reported distinctly here
instead of collapsing to the -1.00 sentinel.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if err := gpio.Init(); err != nil {
				return err
			}

			trigger, err := gpio.OutputPin(conf.TriggerPin())
			if err != nil {
				return err
			}
			echo, err := gpio.InputPin(conf.EchoPin())
			if err != nil {
				return err
			}

			sensor := hcsr04.NewWithOptions(trigger, echo, hcsr04.Options{
				EchoTimeout:   conf.EchoTimeout(),
				MinDistanceCm: conf.MinDistanceCm(),
				MaxDistanceCm: conf.MaxDistanceCm(),
			})

			time.Sleep(sensorSettle)

			distance, err := sensor.Measure()
			switch {
			case errors.Is(err, hcsr04.ErrTimeout):
				cmd.Println(color.YellowString("No echo: nothing in range, or the sensor is not wired to %s/%s.",
					conf.TriggerPin(), conf.EchoPin()))
				return err
			case errors.Is(err, hcsr04.ErrOutOfRange):
				cmd.Println(color.RedString("Implausible reading, likely sensor noise."))
				return err
			case err != nil:
				return err
			}

			cmd.Printf("Distance: %s\n", bold("%.2f cm", distance))

			return nil
		},
	}

	addPinFlags(cmd)

	return cmd
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}
