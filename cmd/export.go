package main

import (
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/permit-cli/internal/config"
	"github.com/sells-group/permit-cli/internal/export"
	"github.com/sells-group/permit-cli/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export trade leads to CSV or XLSX",
	Long:  "Writes stored trade matches, best first, filtered by score, trade, and active phase.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		f := cmd.Flags()

		if f.Changed("format") {
			cfg.Export.Format, _ = f.GetString("format")
		}
		if f.Changed("min-score") {
			cfg.Export.MinScore, _ = f.GetInt("min-score")
		}
		if f.Changed("limit") {
			cfg.Export.Limit, _ = f.GetInt("limit")
		}
		output, _ := f.GetString("output")
		if cfg.Export.Format == string(export.FormatXLSX) && output == "" {
			return eris.New("xlsx export requires --output")
		}

		st, err := initStore(ctx, config.ModeExport)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		filter := store.LeadFilter{
			MinScore: cfg.Export.MinScore,
			Limit:    cfg.Export.Limit,
		}
		filter.TradeSlug, _ = f.GetString("trade")
		filter.ActiveOnly, _ = f.GetBool("active-only")

		leads, err := st.ListLeads(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "export: list leads")
		}

		var w io.Writer = os.Stdout
		if output != "" {
			out, err := os.Create(output)
			if err != nil {
				return eris.Wrapf(err, "export: create %s", output)
			}
			defer out.Close() //nolint:errcheck
			w = out
		}

		if err := export.Write(w, export.Format(cfg.Export.Format), leads); err != nil {
			return err
		}

		zap.L().Info("export complete",
			zap.Int("leads", len(leads)),
			zap.String("format", cfg.Export.Format),
			zap.String("output", output),
		)
		return nil
	},
}

func init() {
	f := exportCmd.Flags()
	f.String("format", "csv", "output format: csv or xlsx")
	f.String("output", "", "output file (default stdout; required for xlsx)")
	f.Int("min-score", 0, "minimum lead score")
	f.Int("limit", 0, "maximum leads (overrides export.limit)")
	f.String("trade", "", "only this trade slug")
	f.Bool("active-only", false, "only trades active in the permit's current phase")
	rootCmd.AddCommand(exportCmd)
}
