package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/livinlefevreloca/netprep/internal/config"
	"github.com/livinlefevreloca/netprep/internal/session"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	logLevel   string
	logFormat  string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "netprep",
	Short: "Signal-integrity preparation for board designs",
	Long: `netprep prepares a board design for signal-integrity analysis: it
classifies the nets shared between driver and receiver components,
synthesizes port terminals, commits the prepared design, and orchestrates
scan and transient runs against the exported network model.

Examples:
  netprep info --design boards/dimm.netdb
  netprep classify --design boards/dimm.netdb --drivers U1 --receivers U9
  netprep apply --design boards/dimm.netdb --drivers U1 --receivers U9 --reference GND --all
  netprep scan --network channel.s4p --metadata boards/dimm_applied_ports.json`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"path to configuration file (TOML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"log format (json, text)")
}

// setup loads the configuration and installs the process logger before
// any subcommand runs. Flags override the file settings.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if logLevel != "" {
		loaded.Logging.Level = logLevel
	}
	if logFormat != "" {
		loaded.Logging.Format = logFormat
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cfg = loaded

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Logging.Level)}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// designPath resolves the design database path from a command flag,
// falling back to the configuration.
func designPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if cfg.Design.Path != "" {
		return cfg.Design.Path, nil
	}
	return "", fmt.Errorf("no design database: pass --design or set design.path in the config")
}

// openSession opens the design at path in a fresh session stamped with
// the configured backend version.
func openSession(path string) (*session.Session, error) {
	job, err := cfg.Analysis()
	if err != nil {
		return nil, err
	}
	s := session.New(session.DefaultOpener, job.Version, slog.Default().With("component", "session"))
	if err := s.Open(path); err != nil {
		return nil, err
	}
	return s, nil
}
