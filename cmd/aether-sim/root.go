package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"aether-sim/internal/config"
	"aether-sim/internal/logging"
)

var (
	configPath string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:          "aether-sim",
	Short:        "Adaptive routing decision engine for clustered sensor networks",
	Long:         "aether-sim decides per-round intra-cluster transmission modes, gateways and backbone relays for clustered wireless sensor networks.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := logLevel
		if !cmd.Flags().Changed("log-level") {
			if v := os.Getenv("LOG_LEVEL"); v != "" {
				level = v
			}
		}
		format := logFormat
		if !cmd.Flags().Changed("log-format") {
			if v := os.Getenv("LOG_FORMAT"); v != "" {
				format = v
			}
		}
		logger, err := logging.NewWithOptions(os.Stderr, level, format)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		cmd.SetContext(logging.NewContext(cmd.Context(), logger))
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig returns the defaults when no config file was given.
func loadConfig() (*config.Config, error) {
	if configPath == "" {
		cfg := config.Default()
		if env := os.Getenv("AETHER_PROFILE"); env != "" {
			cfg.Profile = env
		}
		return cfg, cfg.Validate()
	}
	return config.Load(configPath)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to decision engine configuration YAML")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text or json)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(energyCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(dashboardCmd)
}
