package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JayantA-10/AI-Stress-System/internal/simulate"
)

func newSimulateCommand() *cobra.Command {
	cfg := simulate.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Register subjects and post generated check-ins against a running service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := simulate.Run(cmd.Context(), cfg, commandLogger(cmd))
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if len(report.Problems) > 0 {
				return fmt.Errorf("roster verification failed with %d problems", len(report.Problems))
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.BaseURL, "url", cfg.BaseURL, "Base URL of the service")
	flags.IntVar(&cfg.Subjects, "subjects", cfg.Subjects, "Number of subjects to register")
	flags.IntVar(&cfg.CheckIns, "checkins", cfg.CheckIns, "Check-ins per subject")
	flags.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "Concurrent submitters")
	flags.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "HTTP request timeout")
	flags.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "Generator seed")
	flags.IntVar(&cfg.DuplicateEvery, "duplicate-every", cfg.DuplicateEvery, "Replay every Nth submission id (0 disables)")
	return cmd
}
