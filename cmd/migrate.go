package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"portfolio-contact/api/pkg/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the contact messages table in the configured SQL store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, closer, err := setup()
		if err != nil {
			return err
		}
		defer closer.Close()

		if cfg.Store.Driver == config.StoreMemory {
			return fmt.Errorf("nothing to migrate: store driver is %q", cfg.Store.Driver)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		store, release, err := openStore(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer release()

		if err := migrate(ctx, store); err != nil {
			return err
		}
		slog.Info("migration complete", "driver", cfg.Store.Driver)
		return nil
	},
}
