package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/permit-cli/internal/classify"
	"github.com/sells-group/permit-cli/internal/config"
	"github.com/sells-group/permit-cli/internal/model"
	"github.com/sells-group/permit-cli/internal/phase"
	"github.com/sells-group/permit-cli/internal/reference"
	"github.com/sells-group/permit-cli/internal/scorer"
	"github.com/sells-group/permit-cli/internal/trades"
)

// explanation is the full derivation for one permit.
type explanation struct {
	Permit          model.Permit         `json:"permit"`
	ProjectType     model.ProjectType    `json:"project_type"`
	ProjectTypeRule string               `json:"project_type_rule"`
	Branch          classify.Branch      `json:"branch"`
	ScopeTags       []string             `json:"scope_tags"`
	Phase           model.Phase          `json:"phase"`
	Trades          []tradeExplanation   `json:"trades"`
	Products        []model.ProductMatch `json:"products"`
}

type tradeExplanation struct {
	model.TradeMatch
	Score scorer.Breakdown `json:"score"`
}

var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Show how a single permit is classified and scored",
	Long:  "Classifies a permit described by flags without touching the store and prints each step of the derivation as JSON.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate(config.ModeExplain); err != nil {
			return err
		}
		p, err := permitFromFlags(cmd)
		if err != nil {
			return err
		}
		tables, sc, err := initEngine()
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(explainPermit(p, tables, sc, time.Now()))
	},
}

func explainPermit(p *model.Permit, tables *reference.Tables, sc *scorer.Scorer, now time.Time) explanation {
	clock := func() time.Time { return now }
	scope := classify.New(tables).Classify(p)
	tr := trades.New(tables, sc, trades.WithClock(clock))

	pt, rule := classify.ExplainProjectType(p)
	out := explanation{
		Permit:          *p,
		ProjectType:     pt,
		ProjectTypeRule: rule,
		Branch:          classify.SelectBranch(p),
		ScopeTags:       scope.ScopeTags,
		Phase:           phase.ForPermit(p, now),
		Products:        tr.ClassifyProducts(p, scope.ScopeTags),
	}
	for _, m := range tr.ClassifyTrades(p, scope.ScopeTags) {
		out.Trades = append(out.Trades, tradeExplanation{
			TradeMatch: m,
			Score:      sc.Explain(p, m, now),
		})
	}
	return out
}

func permitFromFlags(cmd *cobra.Command) (*model.Permit, error) {
	f := cmd.Flags()
	p := &model.Permit{}
	p.PermitNum, _ = f.GetString("permit-num")
	p.RevisionNum, _ = f.GetString("revision-num")
	p.Work, _ = f.GetString("work")
	p.PermitType, _ = f.GetString("permit-type")
	p.Description, _ = f.GetString("description")
	p.StructureType, _ = f.GetString("structure-type")
	p.CurrentUse, _ = f.GetString("current-use")
	p.ProposedUse, _ = f.GetString("proposed-use")
	p.Status, _ = f.GetString("status")
	p.Storeys, _ = f.GetInt("storeys")
	p.HousingUnits, _ = f.GetInt("housing-units")

	if f.Changed("cost") {
		cost, _ := f.GetFloat64("cost")
		p.EstConstCost = &cost
	}
	if issued, _ := f.GetString("issued"); issued != "" {
		t, err := time.Parse("2006-01-02", issued)
		if err != nil {
			return nil, eris.Wrapf(err, "parse --issued %q", issued)
		}
		p.IssuedDate = &t
	}
	return p, nil
}

// addPermitFlags registers the permit field flags read by permitFromFlags.
func addPermitFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("permit-num", "", "permit number")
	f.String("revision-num", "00", "revision number")
	f.String("work", "", "work field")
	f.String("permit-type", "", "permit type")
	f.String("description", "", "free-text description")
	f.String("structure-type", "", "structure type")
	f.String("current-use", "", "current use")
	f.String("proposed-use", "", "proposed use")
	f.String("status", "", "permit status")
	f.Int("storeys", 0, "storey count")
	f.Int("housing-units", 0, "housing units created")
	f.Float64("cost", 0, "estimated construction cost")
	f.String("issued", "", "issued date (YYYY-MM-DD)")
}

func init() {
	addPermitFlags(explainCmd)
	rootCmd.AddCommand(explainCmd)
}
