package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/permit-cli/internal/config"
	"github.com/sells-group/permit-cli/internal/feed"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load a CSV, TSV, or XLSX permit extract into the store",
	Long:  "Reads a permit extract with a header row and upserts each permit by (permit number, revision number). Rows that fail to parse are logged and skipped.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx, config.ModeImport)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		opts := feed.Options{BatchSize: cfg.Pipeline.PageSize}
		opts.Sheet, _ = cmd.Flags().GetString("sheet")

		stats, err := feed.LoadFile(ctx, args[0], opts, st.UpsertPermits)
		if err != nil {
			return eris.Wrap(err, "import")
		}

		zap.L().Info("import complete",
			zap.String("file", args[0]),
			zap.Int("rows", stats.Rows),
			zap.Int("loaded", stats.Loaded),
			zap.Int("skipped", stats.Skipped),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().String("sheet", "", "XLSX worksheet name (default first sheet)")
	rootCmd.AddCommand(importCmd)
}
