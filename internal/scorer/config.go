// Package scorer ranks trade matches as sales leads.
package scorer

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/permit-cli/internal/config"
)

// Score bounds.
const (
	MinScore = 0
	MaxScore = 100
)

// DefaultScorerConfig returns the lead-score constants. Status scores are
// checked in order and the first match wins.
func DefaultScorerConfig() config.ScorerConfig {
	return config.ScorerConfig{
		StatusScores: []config.StatusScore{
			{Contains: []string{"permit issued", "revision issued"}, Score: 40},
			{Contains: []string{"inspection"}, Score: 50},
			{Contains: []string{"under review", "issuance pending"}, Score: 30},
			{Contains: []string{"application"}, Score: 20},
			{Contains: []string{"not started"}, Score: 15},
			{Contains: []string{"revocation", "cancellation"}, Score: 5},
			{Contains: []string{"abandoned"}, Score: 0},
		},
		DefaultStatusScore: intPtr(25),

		// Estimated construction cost, highest bracket first.
		CostBrackets: []config.Bracket{
			{Threshold: 5_000_000, Points: 15},
			{Threshold: 1_000_000, Points: 12},
			{Threshold: 500_000, Points: 10},
			{Threshold: 100_000, Points: 7},
			{Threshold: 50_000, Points: 4},
		},

		// Days since issuance, freshest first.
		FreshnessBrackets: []config.Bracket{
			{Threshold: 7, Points: 20},
			{Threshold: 30, Points: 15},
			{Threshold: 90, Points: 10},
			{Threshold: 180, Points: 5},
		},

		// Days since issuance, oldest first. Points are subtracted.
		StalenessBrackets: []config.Bracket{
			{Threshold: 730, Points: 20},
			{Threshold: 365, Points: 10},
			{Threshold: 180, Points: 5},
		},

		ActivePhaseBonus:   intPtr(15),
		ConfidenceScale:    floatPtr(10),
		RevocationPenalty:  intPtr(30),
		RevocationKeywords: []string{"revoc", "cancel", "abandon"},
	}
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

// WithDefaults fills every unset field of c from DefaultScorerConfig. Each
// field is filled on its own; scalars set to 0 stay 0.
func WithDefaults(c config.ScorerConfig) config.ScorerConfig {
	d := DefaultScorerConfig()
	if len(c.StatusScores) == 0 {
		c.StatusScores = d.StatusScores
	}
	if c.DefaultStatusScore == nil {
		c.DefaultStatusScore = d.DefaultStatusScore
	}
	if len(c.CostBrackets) == 0 {
		c.CostBrackets = d.CostBrackets
	}
	if len(c.FreshnessBrackets) == 0 {
		c.FreshnessBrackets = d.FreshnessBrackets
	}
	if len(c.StalenessBrackets) == 0 {
		c.StalenessBrackets = d.StalenessBrackets
	}
	if c.ActivePhaseBonus == nil {
		c.ActivePhaseBonus = d.ActivePhaseBonus
	}
	if c.ConfidenceScale == nil {
		c.ConfidenceScale = d.ConfidenceScale
	}
	if c.RevocationPenalty == nil {
		c.RevocationPenalty = d.RevocationPenalty
	}
	if len(c.RevocationKeywords) == 0 {
		c.RevocationKeywords = d.RevocationKeywords
	}
	return c
}

// ValidateConfig checks that a ScorerConfig is internally consistent.
func ValidateConfig(c config.ScorerConfig) error {
	var errs []string

	for i, s := range c.StatusScores {
		if len(s.Contains) == 0 {
			errs = append(errs, fmt.Sprintf("status_scores[%d] has no contains terms", i))
		}
		if s.Score < MinScore || s.Score > MaxScore {
			errs = append(errs, fmt.Sprintf("status_scores[%d].score must be between 0 and 100", i))
		}
	}
	if v := c.DefaultStatusScore; v != nil && (*v < MinScore || *v > MaxScore) {
		errs = append(errs, "default_status_score must be between 0 and 100")
	}

	// Bracket order is load-bearing: the first crossed threshold wins.
	if !sort.SliceIsSorted(c.CostBrackets, func(i, j int) bool {
		return c.CostBrackets[i].Threshold > c.CostBrackets[j].Threshold
	}) {
		errs = append(errs, "cost_brackets must be in descending threshold order")
	}
	if !sort.SliceIsSorted(c.FreshnessBrackets, func(i, j int) bool {
		return c.FreshnessBrackets[i].Threshold < c.FreshnessBrackets[j].Threshold
	}) {
		errs = append(errs, "freshness_brackets must be in ascending threshold order")
	}
	if !sort.SliceIsSorted(c.StalenessBrackets, func(i, j int) bool {
		return c.StalenessBrackets[i].Threshold > c.StalenessBrackets[j].Threshold
	}) {
		errs = append(errs, "staleness_brackets must be in descending threshold order")
	}

	for name, brackets := range map[string][]config.Bracket{
		"cost_brackets":      c.CostBrackets,
		"freshness_brackets": c.FreshnessBrackets,
		"staleness_brackets": c.StalenessBrackets,
	} {
		for i, b := range brackets {
			if b.Points < 0 {
				errs = append(errs, fmt.Sprintf("%s[%d].points must be >= 0", name, i))
			}
		}
	}

	if c.ActivePhaseBonus != nil && *c.ActivePhaseBonus < 0 {
		errs = append(errs, "active_phase_bonus must be >= 0")
	}
	if c.ConfidenceScale != nil && *c.ConfidenceScale < 0 {
		errs = append(errs, "confidence_scale must be >= 0")
	}
	if c.RevocationPenalty != nil && *c.RevocationPenalty < 0 {
		errs = append(errs, "revocation_penalty must be >= 0")
	}

	if len(errs) > 0 {
		sort.Strings(errs)
		return eris.Errorf("scorer: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ConfigHash returns a SHA-256 hash of the scoring config for reproducibility.
func ConfigHash(cfg interface{}) string {
	data, err := json.Marshal(cfg)
	if err != nil {
		return ""
	}
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:16]) // 32 hex chars
}
