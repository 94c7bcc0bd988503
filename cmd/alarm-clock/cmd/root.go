package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/service/appliance"
	"github.com/oshokin/alarm-clock/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// backend overrides the configured hardware backend.
	backend string
	// logLevel overrides the configured log level.
	logLevel string

	// rootCmd represents the base command running the alarm clock.
	rootCmd = &cobra.Command{
		Use:   "alarm-clock",
		Short: "Keypad-driven alarm clock with an RTC and a character display.",
		Long: `Alarm clock appliance with three daily alarms.

Shows the time kept by a DS1307 real-time clock on a 16x2 character display.
Keys 12, 13 and 14 edit alarm slots 1 to 3, key 15 sets the clock chip.
Digits fill the time, key 10 steps back and key 15 confirms the entry.
When the time matches an alarm the output line pulses once.

The periph backend drives the real board over I2C and GPIO. The simulator
backend reads whitespace separated key codes from stdin and draws the
display on stdout. Alarms live in memory only and reset on restart.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Display frames own stdout in the simulator.
			logger.SetLogger(logger.NewWithWriter(os.Stderr, nil))

			applianceOptions := &appliance.Options{
				ConfigPath: configPath,
				Backend:    backend,
				LogLevel:   logLevel,
				Input:      os.Stdin,
				Screen:     os.Stdout,
			}

			err := appliance.Run(ctx, applianceOptions)
			if err != nil {
				logger.ErrorKV(ctx, "Alarm clock stopped", "error", err)
			}

			return err
		},
		SilenceUsage: true,
	}
)

// Execute runs the alarm-clock CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to configuration file (defaults when empty)")
	rootCmd.Flags().StringVarP(&backend, "backend", "b", "", "hardware backend: periph or simulator")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "log level: debug, info, warn, error")
}
