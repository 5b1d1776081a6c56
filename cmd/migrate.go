package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/permit-cli/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply schema migrations and seed the trade catalog",
	Long:  "Applies pending schema migrations, then upserts the trade and product-group catalog from the reference tables.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx, config.ModeMigrate)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate")
		}

		tables, _, err := initEngine()
		if err != nil {
			return err
		}
		if err := st.SeedCatalog(ctx, tables.Trades(), tables.Products()); err != nil {
			return eris.Wrap(err, "seed catalog")
		}

		zap.L().Info("migrations applied, catalog seeded",
			zap.Int("trades", len(tables.Trades())),
			zap.Int("product_groups", len(tables.Products())),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
