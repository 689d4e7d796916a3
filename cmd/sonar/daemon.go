package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sonarpi/sonar/pkg/daemon"
	"github.com/sonarpi/sonar/pkg/version"
)

// NewDaemonCommand .
func NewDaemonCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the measure loop in the foreground",
		Long: `Run the measure loop in the foreground.

Prints one reading per cycle, forever, until the process is terminated.
Failed measurements print the -1.00 sentinel and the loop carries on.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logrus.WithFields(logrus.Fields{
				"version": version.Version,
				"commit":  version.GitCommit,
			}).Info("sonar daemon starting")

			conf, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			return daemon.Run(conf)
		},
	}

	addPinFlags(cmd)
	cmd.Flags().Duration("interval", 0,
		"Pause between readings (overrides config).")

	return cmd
}
