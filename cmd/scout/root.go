package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/FranksOps/scout/internal/config"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

var (
	cfgFile string
	debug   bool

	rootCmd = &cobra.Command{
		Use:   "scout",
		Short: "Discover and rank sales leads from Reddit discussions",
		Long: `Scout turns a business profile into search queries, runs them
concurrently against Reddit, filters and scores the results, and emits a
ranked list of lead opportunities.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./scout.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("scout version %s\n", version)
		},
	})

	rootCmd.AddCommand(newDiscoverCmd())
	rootCmd.AddCommand(newLeadsCmd())
}

// loadConfig reads config honoring the global --config and --debug flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if debug {
		cfg.App.Debug = true
		cfg.App.LogLevel = "debug"
	}
	return cfg, nil
}

// newLogger builds the process logger from config.
func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.App.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
