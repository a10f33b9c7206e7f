package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/adforge/adforge/internal/config"
	"github.com/adforge/adforge/internal/core/store"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the creative store",
}

var storeInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the database, run migrations, and seed built-in dimensions",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		dimensions, err := db.ListDimensions(ctx)
		if err != nil {
			return err
		}
		options := 0
		for _, dim := range dimensions {
			options += len(dim.Options)
		}

		fmt.Printf("Store ready (%s): %d dimensions, %d options\n",
			db.Driver(), len(dimensions), options)
		return nil
	},
}

var storePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the resolved store location",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		location := store.Location(cfg.Store)
		if location == "" {
			location = config.DefaultStorePath()
		}
		fmt.Println(location)
		return nil
	},
}

func init() {
	storeCmd.AddCommand(storeInitCmd)
	storeCmd.AddCommand(storePathCmd)
	rootCmd.AddCommand(storeCmd)
}

func openStore(ctx context.Context) (*store.Store, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	db, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := db.SeedBuiltInDimensions(ctx, time.Now().UTC()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
