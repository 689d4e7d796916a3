// Package daemon runs the measurement loop: poll the rangefinder once per
// interval, print the reading, forever.
package daemon

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/sonarpi/sonar/pkg/config"
	"github.com/sonarpi/sonar/pkg/gpio"
	"github.com/sonarpi/sonar/pkg/hcsr04"
)

const banner = "Ultrasonic Sensor HC-SR04"

// settleDelay gives the sensor time to settle after the pins are configured
// and before the first trigger pulse.
const settleDelay = 200 * time.Millisecond

var (
	sensor *hcsr04.Sensor
	conf   config.Config
)

// Run brings up the GPIO lines, starts the measure loop and blocks until the
// process receives SIGINT or SIGTERM. The loop itself never returns; every
// measurement failure is recoverable and the next cycle retries.
func Run(c config.Config) error {
	conf = c
	logrus.WithFields(conf.LogrusFields()).Info("config loaded")

	if err := gpio.Init(); err != nil {
		return err
	}

	trigger, err := gpio.OutputPin(conf.TriggerPin())
	if err != nil {
		return pkgerrors.WithMessage(err, "failed to open trigger pin")
	}
	echo, err := gpio.InputPin(conf.EchoPin())
	if err != nil {
		return pkgerrors.WithMessage(err, "failed to open echo pin")
	}

	sensor = hcsr04.NewWithOptions(trigger, echo, hcsr04.Options{
		EchoTimeout:   conf.EchoTimeout(),
		MinDistanceCm: conf.MinDistanceCm(),
		MaxDistanceCm: conf.MaxDistanceCm(),
	})

	loopInterval = conf.PollInterval()
	continuousCycleThreshold = 10*loopInterval + 2*time.Second
	loopRecorder = NewCycleRecorder(60, loopInterval)

	time.Sleep(settleDelay)

	fmt.Fprintln(out, banner)

	go func() {
		logrus.Debugln("measure loop starts")

		infiniteLoop()

		logrus.Errorf("measure loop exited unexpectedly")
	}()

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigc
	logrus.Infof("caught signal \"%s\": shutting down.", sig)

	// Leave the sensor idle: trigger parked low, pins released.
	if err := trigger.Set(false); err != nil {
		logrus.Errorf("failed to park trigger line low: %v", err)
	}
	if err := trigger.Halt(); err != nil {
		logrus.Errorf("failed to halt trigger pin: %v", err)
	}
	if err := echo.Halt(); err != nil {
		logrus.Errorf("failed to halt echo pin: %v", err)
	}

	logrus.Info("exiting")
	return nil
}
