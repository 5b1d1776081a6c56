package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/permit-cli/internal/config"
	"github.com/sells-group/permit-cli/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect classification run history",
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one classify or propagate run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx, config.ModeRuns)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(run)
		}
		formatRun(os.Stdout, run)
		return nil
	},
}

// formatRun writes a run as aligned key/value lines.
func formatRun(out io.Writer, r *store.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "ID\t%s\n", r.ID)
	_, _ = fmt.Fprintf(w, "KIND\t%s\n", r.Kind)
	_, _ = fmt.Fprintf(w, "STATUS\t%s\n", r.Status)
	_, _ = fmt.Fprintf(w, "CONFIG\t%s\n", r.ConfigHash)
	_, _ = fmt.Fprintf(w, "STARTED\t%s\n", r.StartedAt.Format("2006-01-02 15:04:05"))
	if r.CompletedAt != nil {
		_, _ = fmt.Fprintf(w, "COMPLETED\t%s\n", r.CompletedAt.Format("2006-01-02 15:04:05"))
		_, _ = fmt.Fprintf(w, "DURATION\t%s\n", r.CompletedAt.Sub(r.StartedAt).Round(time.Second))
	}
	_, _ = fmt.Fprintf(w, "PERMITS\t%d\n", r.PermitsSeen)
	_, _ = fmt.Fprintf(w, "PAGES_FAILED\t%d\n", r.PagesFailed)
	if r.Error != "" {
		_, _ = fmt.Fprintf(w, "ERROR\t%s\n", r.Error)
	}
	_ = w.Flush()
}

func init() {
	runsShowCmd.Flags().Bool("json", false, "print the run as JSON")
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}
