package app

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/atlas-ops/atlas/internal/daemon"
)

func init() { //nolint: gochecknoinits
	checkCmd.Flags().IntVar(&windowDays, "window", 0, "days ahead to look for expiring certifications (default: university.warningWindowDays)")

	certificationsCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(certificationsCmd)
}

var (
	windowDays int

	certificationsCmd = &cobra.Command{
		Use:   "certifications",
		Short: "Certification maintenance",
	}

	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Re-enroll users whose certification expires soon",
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return loadConfig()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			window := cfg.University.WarningWindow()
			if windowDays > 0 {
				window = time.Duration(windowDays) * 24 * time.Hour //nolint:mnd
			}

			b, err := daemon.Open(cmd.Context(), &cfg)
			if err != nil {
				return err
			}
			defer b.Close()

			plan, err := b.Service.CheckCertificationExpirations(cmd.Context(), window)
			if err != nil {
				return err
			}

			log.Info().Int("reenrolled", len(plan)).Dur("window", window).Msg("certification check done")

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")

			return enc.Encode(plan)
		},
	}
)
