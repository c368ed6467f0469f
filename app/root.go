// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/atlas-ops/atlas/internal/config"
	"github.com/atlas-ops/atlas/internal/logger"
)

var (
	configPath string // directory holding main.toml
	cfg        config.Config
)

var rootCmd = &cobra.Command{
	Use:   "atlas",
	Short: "Atlas is a role-based workforce operations console",
	Long: `Atlas is a role-based workforce operations console that manages
locations, positions and permissions, launches checklist projects from
templates and tracks training courses and certifications.`,
	Args:          cobra.OnlyValidArgs,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "directory of main.toml (default ./etc/)")
}

// loadConfig reads the configuration and sets up logging.
func loadConfig() error {
	var err error
	if cfg, err = config.ReadConfig(configPath); err != nil {
		return err
	}

	return logger.Init(cfg.Log)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
