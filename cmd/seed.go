package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"alumnilink/internal/app/db"
	"alumnilink/internal/app/directory"
	"alumnilink/internal/app/store"
	"alumnilink/internal/pkg/logx"
)

var resetStore bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write the directory fixtures into the entity store",
	Long: `Seed writes the alumni, student and event fixtures into every empty collection.
With --reset all collections, messages and RSVPs are removed first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return runSeed(ctx, resetStore)
	},
}

func init() {
	seedCmd.Flags().BoolVar(&resetStore, "reset", false, "remove stored data before seeding")
}

func runSeed(ctx context.Context, reset bool) error {
	backend, err := db.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	defer backend.Close()

	st := store.New(backend)

	if reset {
		for _, key := range store.AllKeys {
			if err := st.Reset(ctx, key); err != nil {
				return fmt.Errorf("reset %s: %w", key, err)
			}
		}
		logx.Info("Entity store reset", "keys", len(store.AllKeys))
	}

	directory.NewService(st).Seed(ctx)
	logx.Info("Directory fixtures seeded", "driver", cfg.StoreDriver)
	return nil
}
