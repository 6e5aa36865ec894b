package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JayantA-10/AI-Stress-System/internal/adapters/repository"
	service "github.com/JayantA-10/AI-Stress-System/internal/app"
	"github.com/JayantA-10/AI-Stress-System/internal/config"
)

func newRosterCommand() *cobra.Command {
	var driver, dsn string

	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Print the counselor triage roster from a SQL store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if driver != "" {
				cfg.StoreDriver = driver
			}
			if dsn != "" {
				cfg.StoreDSN = dsn
			}
			if cfg.StoreDriver != config.StoreSQLite && cfg.StoreDriver != config.StorePostgres {
				return fmt.Errorf("roster needs a sqlite or postgres store, got %q", cfg.StoreDriver)
			}
			if cfg.StoreDSN == "" {
				return fmt.Errorf("roster needs --dsn")
			}

			l := commandLogger(cmd)
			// The roster only reads; an unmigrated database is an error, not
			// something to initialize.
			store, err := service.OpenStore(cmd.Context(), cfg, l, repository.WithoutMigrate())
			if err != nil {
				return err
			}
			defer func() { _ = store.(interface{ Close() error }).Close() }()

			svc := service.New(service.WithStore(store), service.WithLogger(l))
			roster, err := svc.Roster(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), roster)
		},
	}

	cmd.Flags().StringVar(&driver, "driver", "", "Store driver: sqlite or postgres (overrides store_driver)")
	cmd.Flags().StringVar(&dsn, "dsn", "", "Store DSN (overrides store_dsn)")
	return cmd
}
