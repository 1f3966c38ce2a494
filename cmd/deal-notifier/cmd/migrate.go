package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/deal-notifier/internal/config"
	"github.com/donaldgifford/deal-notifier/internal/state"
	domain "github.com/donaldgifford/deal-notifier/pkg/types"
)

const migrateTimeout = 60 * time.Second

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply state database migrations",
		Long: "Applies pending schema migrations to the PostgreSQL state store. Only\n" +
			"meaningful when state.backend is postgres; run and serve also migrate\n" +
			"on startup.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			if cfg.State.Backend != config.StateBackendPostgres {
				return domain.NewError(domain.KindConfiguration, "running migrations",
					fmt.Errorf("state.backend is %q, migrations only apply to postgres", cfg.State.Backend))
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), migrateTimeout)
			defer cancel()

			pg, err := state.NewPostgresStore(ctx, cfg.State.DSN)
			if err != nil {
				return domain.NewError(domain.KindStorage, "connecting to state database", err)
			}
			defer pg.Close()

			log.Info("running migrations")

			if err := pg.Migrate(ctx); err != nil {
				return domain.NewError(domain.KindStorage, "running migrations", err)
			}

			log.Info("migrations complete")
			return nil
		},
	}
}
