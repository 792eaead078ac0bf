package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/kovidgoyal/trivector"
	"github.com/kovidgoyal/trivector/internal/config"
	"github.com/kovidgoyal/trivector/internal/logging"
)

var _ = fmt.Print

// global flags
var (
	env_files []string
	log_level string
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "trivector",
		Short:   "Calibrate a display and run trivector colour vision tests",
		Version: trivector.Version.String(),
		Long: `Calibrate a display and run trivector colour vision tests.

Settings are read from TRIVECTOR_* environment variables, optionally loaded
from a .env file, and can be overridden with flags.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringSliceVar(&env_files, "env", nil, "Environment files to load (default: ./.env if present)")
	rootCmd.PersistentFlags().StringVar(&log_level, "log-level", "", "Log level: ERROR, WARN, INFO, DEBUG or TRACE (overrides LOG_LEVEL)")

	rootCmd.AddCommand(
		newCalibrateCmd(),
		newSimulateCmd(),
		newRunCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// load_config reads the environment and sets up the default logger.
func load_config() (*config.Config, *logging.Logger, error) {
	cfg, err := config.Load(env_files...)
	if err != nil {
		return nil, nil, err
	}
	if log_level != "" {
		level, ok := logging.ParseLevel(log_level)
		if !ok {
			return nil, nil, fmt.Errorf("unknown log level: %s", log_level)
		}
		cfg.LogLevel = level
	}
	log := logging.New(os.Stderr, cfg.LogLevel)
	log.Debug("configuration: %s", cfg)
	return cfg, log, nil
}
