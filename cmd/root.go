package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/permit-cli/internal/config"
	"github.com/sells-group/permit-cli/internal/db"
	"github.com/sells-group/permit-cli/internal/pipeline"
	"github.com/sells-group/permit-cli/internal/reference"
	"github.com/sells-group/permit-cli/internal/scorer"
	"github.com/sells-group/permit-cli/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "permits",
	Short: "Building-permit classification and trade lead scoring",
	Long:  "Classifies building permits into project types and scope tags, maps them to trades and product groups, scores leads, and propagates scope across related permits.",
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

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initStore opens the configured backend after validating the settings mode needs.
func initStore(ctx context.Context, mode string) (store.Store, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}
	switch cfg.Store.Driver {
	case "sqlite":
		return store.NewSQLite(cfg.Store.SQLitePath)
	case "postgres":
		pool, err := db.Open(ctx, cfg.Store.DatabaseURL, cfg.Store.MaxConns)
		if err != nil {
			return nil, err
		}
		return store.NewPostgres(pool), nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initEngine loads the reference tables and lead-score constants.
func initEngine() (*reference.Tables, *scorer.Scorer, error) {
	tables, err := reference.Load(cfg.Reference.OverridesPath)
	if err != nil {
		return nil, nil, eris.Wrap(err, "load reference tables")
	}
	sc, err := scorer.New(cfg.Scorer)
	if err != nil {
		return nil, nil, eris.Wrap(err, "init scorer")
	}
	return tables, sc, nil
}

// initRunner builds a pipeline runner over st.
func initRunner(st store.Store) (*pipeline.Runner, error) {
	tables, sc, err := initEngine()
	if err != nil {
		return nil, err
	}
	return pipeline.New(st, tables, sc, cfg.Pipeline), nil
}
