package cmd

// Adapted from https://github.com/rancher/wrangler-cli. The original bridges
// this flag into klog and controller-runtime's zap options for Kubernetes
// controller logging; this CLI has no controller-runtime dependency, so
// debug only toggles logrus's own level and caller reporting.

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type DebugConfig struct {
	Debug      bool `usage:"Turn on debug logging"`
	DebugLevel int  `usage:"If debugging is enabled, report the calling function in log entries when above 0"`
}

func (c *DebugConfig) SetupDebug() error {
	if c.Debug {
		logrus.SetLevel(logrus.DebugLevel)
		logrus.SetReportCaller(c.DebugLevel > 0)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
	return nil
}

func (c *DebugConfig) MustSetupDebug() {
	if err := c.SetupDebug(); err != nil {
		panic("failed to setup debug logging: " + err.Error())
	}
}

func AddDebug(cmd *cobra.Command, config *DebugConfig) *cobra.Command {
	cmd.PersistentFlags().BoolVar(&config.Debug, "debug", false, "Turn on debug logging")
	cmd.PersistentFlags().IntVar(&config.DebugLevel, "debug-level", 0, "If debugging is enabled, report the calling function in log entries when above 0")
	return cmd
}
