package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"classifieds/internal/config"
	"classifieds/internal/db"
	"classifieds/internal/logger"
)

var (
	// Global flags
	envFile string
	devMode bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Classifieds board backend",
	Long: `Classifieds board backend: users, advertisements, categories, comments
and reports behind a JSON API with cookie sessions.

Configuration is read from the environment, optionally preloaded from a dotenv
file (--env-file, default .env-non-dev).`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load before reading the environment")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "development mode: default secret, debug logging")
}

// loadConfig resolves configuration according to the global flags and initializes logging.
func loadConfig() (*config.Config, error) {
	if envFile != "" {
		if err := os.Setenv("ENV_FILE", envFile); err != nil {
			return nil, err
		}
	}
	var (
		cfg *config.Config
		err error
	)
	if devMode {
		cfg, err = config.LoadWithDefaults()
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	level := logger.ParseLevel(cfg.Log.Level)
	if devMode {
		level = logger.ParseLevel("debug")
	}
	logger.InitLogger(level)
	logger.Infof("Configuration loaded: %v", cfg)
	return cfg, nil
}

// openDB connects to the configured database, applying pending migrations when migrate is set.
func openDB(cfg *config.Config, migrate bool) (*db.Handle, error) {
	open := db.Connect
	if migrate {
		open = db.Open
	}
	h, err := open(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return h, nil
}
