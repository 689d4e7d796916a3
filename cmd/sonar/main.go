package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	logLevel   = "info"
	configPath = "/etc/sonar.json"
)

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}

	return nil
}

func main() {
	// sonar spends its life busy-polling two GPIO lines.
	// It does not need many CPUs.
	if os.Getenv("GOMAXPROCS") == "" {
		runtime.GOMAXPROCS(2)
	}

	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sonar",
		Short: "sonar reads distances from an HC-SR04 ultrasonic rangefinder",
		Long: `sonar reads distances from an HC-SR04 ultrasonic rangefinder wired to two
GPIO lines, e.g. on a Raspberry Pi.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setupLogger()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&logLevel, "log-level", "l", logLevel,
		"Log level (trace, debug, info, warn, error).")
	flags.StringVar(&configPath, "config", configPath,
		"Config file path.")

	cmd.AddCommand(
		NewDaemonCommand(),
		NewReadCommand(),
		NewVersionCommand(),
	)

	return cmd
}
