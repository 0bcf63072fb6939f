package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mbeaver502/CyberLawBot/internal/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "cyberlawbot",
	Short: "Track cybersecurity legislation and publish it to a status feed",
	Long: `CyberLawBot watches the GPO bulk-data listings for newly published
congressional bills, keeps the ones that touch cybersecurity, shortens their
congress.gov links, and posts one bill per cycle to a status feed.

All tuning (database, feed credentials, keywords, cycle limits) lives in a
YAML configuration file; see config.example.yaml.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "Path to the configuration file")
}

// loadConfig reads the configuration file and builds the process logger
// at the configured level.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	return cfg, logger, nil
}

func logLevel(name string) slog.Level {
	switch name {
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
