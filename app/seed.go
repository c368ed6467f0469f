package app

import (
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/atlas-ops/atlas/internal/daemon"
)

func init() { //nolint: gochecknoinits
	seedCmd.Flags().StringVar(&seedFile, "file", "", "fixture file (default: seed.file of main.toml)")

	rootCmd.AddCommand(seedCmd)
}

var errNoSeedFile = errors.New("no seed file given")

var (
	seedFile string

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Load the demo fixtures into an empty database",
		PreRunE: func(_ *cobra.Command, _ []string) error {
			if err := loadConfig(); err != nil {
				return err
			}

			if seedFile != "" {
				cfg.Seed.File = seedFile
			}

			if cfg.Seed.File == "" {
				return errNoSeedFile
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := daemon.Open(cmd.Context(), &cfg)
			if err != nil {
				return err
			}
			defer b.Close()

			log.Info().Str("file", cfg.Seed.File).Int("users", len(b.Service.Users())).Msg("seed done")

			return nil
		},
	}
)
