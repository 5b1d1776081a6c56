package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/permit-cli/internal/config"
	"github.com/sells-group/permit-cli/internal/pipeline"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify every permit in the store",
	Long:  "Pages through all permits, derives project type, scope tags, trades, products, and lead scores, and writes them back page by page.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runPass(cmd, config.ModeClassify, (*pipeline.Runner).Classify)
	},
}

var propagateCmd = &cobra.Command{
	Use:   "propagate",
	Short: "Copy building-permit scope onto companion permits",
	Long:  "Groups permits by base number and copies the scope of each group's building permit onto its other permits.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runPass(cmd, config.ModePropagate, (*pipeline.Runner).Propagate)
	},
}

func runPass(cmd *cobra.Command, mode string, pass func(*pipeline.Runner, context.Context) (*pipeline.Stats, error)) error {
	ctx := cmd.Context()

	if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
		cfg.Pipeline.Workers = workers
	}
	if pageSize, _ := cmd.Flags().GetInt("page-size"); pageSize > 0 {
		cfg.Pipeline.PageSize = pageSize
	}

	st, err := initStore(ctx, mode)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	runner, err := initRunner(st)
	if err != nil {
		return err
	}

	stats, err := pass(runner, ctx)
	if stats != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(stats)
	}
	if err != nil {
		return eris.Wrap(err, mode)
	}
	return nil
}

func init() {
	for _, c := range []*cobra.Command{classifyCmd, propagateCmd} {
		c.Flags().Int("workers", 0, "concurrent page workers (overrides pipeline.workers)")
		c.Flags().Int("page-size", 0, "permits per page (overrides pipeline.page_size)")
		rootCmd.AddCommand(c)
	}
}
