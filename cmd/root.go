package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fairdistricts/mapmetrics/internal/config"
	"github.com/fairdistricts/mapmetrics/internal/seed"
	"github.com/fairdistricts/mapmetrics/internal/store"
	"github.com/fairdistricts/mapmetrics/internal/summary"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "mapmetrics",
	Short: "Fairness and compactness metrics for electoral district maps",
	Long:  "Computes population deviation, expected seats, and Polsby-Popper compactness per state from district datasets, and serves the results over HTTP.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// openStore builds the configured store adapter. The returned closer is
// always safe to call.
func openStore(ctx context.Context) (store.Store, func(), error) {
	switch cfg.Data.Driver {
	case "", "file":
		return store.NewFile(cfg.Data.Dir), func() {}, nil
	case "sqlite":
		st, err := store.NewSQLite(cfg.Data.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			_ = st.Close()
			return nil, nil, err
		}
		return st, func() { _ = st.Close() }, nil
	case "postgres":
		st, err := store.NewPostgres(ctx, cfg.Data.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return nil, nil, err
		}
		return st, st.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown data driver %q", cfg.Data.Driver)
	}
}

// seedProvider resolves the configured seed table.
func seedProvider() (seed.Provider, error) {
	if cfg.Seed.Path == "" {
		return seed.Static(), nil
	}
	return seed.FromYAML(cfg.Seed.Path)
}

// newAssembler wires a summary assembler from the configured store and seeds.
func newAssembler(ctx context.Context) (*summary.Assembler, func(), error) {
	st, closer, err := openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	seeds, err := seedProvider()
	if err != nil {
		closer()
		return nil, nil, err
	}
	return summary.New(st, seeds), closer, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
