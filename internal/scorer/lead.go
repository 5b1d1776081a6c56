package scorer

import (
	"math"
	"strings"
	"time"

	"github.com/sells-group/permit-cli/internal/config"
	"github.com/sells-group/permit-cli/internal/model"
	"github.com/sells-group/permit-cli/internal/phase"
)

// Breakdown itemizes a lead score. Penalties are stored as positive numbers.
type Breakdown struct {
	Status            int `json:"status"`
	Cost              int `json:"cost"`
	Freshness         int `json:"freshness"`
	ActivePhase       int `json:"active_phase"`
	Confidence        int `json:"confidence"`
	Staleness         int `json:"staleness"`
	RevocationPenalty int `json:"revocation_penalty"`
	Total             int `json:"total"`
}

// Scorer computes lead scores. It is safe for concurrent use.
type Scorer struct {
	cfg config.ScorerConfig
}

// New creates a Scorer. Unset config sections take their defaults.
func New(cfg config.ScorerConfig) (*Scorer, error) {
	cfg = WithDefaults(cfg)
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return &Scorer{cfg: cfg}, nil
}

// Default returns a Scorer with DefaultScorerConfig.
func Default() *Scorer {
	return &Scorer{cfg: DefaultScorerConfig()}
}

// Config returns the effective configuration.
func (s *Scorer) Config() config.ScorerConfig { return s.cfg }

// Score returns the lead score of match m for permit p, clamped to [0,100].
func (s *Scorer) Score(p *model.Permit, m model.TradeMatch, now time.Time) int {
	return s.Explain(p, m, now).Total
}

// Explain returns the itemized lead score.
func (s *Scorer) Explain(p *model.Permit, m model.TradeMatch, now time.Time) Breakdown {
	status := strings.ToLower(p.Status)

	b := Breakdown{
		Status:     s.statusScore(status),
		Cost:       s.costBonus(p.EstConstCost),
		Confidence: int(math.Round(m.Confidence * *s.cfg.ConfidenceScale)),
	}
	if m.IsActive {
		b.ActivePhase = *s.cfg.ActivePhaseBonus
	}

	// Freshness and staleness are independent and may overlap.
	if p.IssuedDate != nil {
		days := phase.DaysBetween(*p.IssuedDate, now)
		b.Freshness = freshnessBonus(s.cfg.FreshnessBrackets, days)
		b.Staleness = stalenessPenalty(s.cfg.StalenessBrackets, days)
	}

	if containsAny(status, s.cfg.RevocationKeywords) {
		b.RevocationPenalty = *s.cfg.RevocationPenalty
	}

	total := b.Status + b.Cost + b.Freshness + b.ActivePhase + b.Confidence - b.Staleness - b.RevocationPenalty
	b.Total = max(MinScore, min(total, MaxScore))
	return b
}

func (s *Scorer) statusScore(status string) int {
	for _, rule := range s.cfg.StatusScores {
		if containsAny(status, rule.Contains) {
			return rule.Score
		}
	}
	return *s.cfg.DefaultStatusScore
}

func (s *Scorer) costBonus(cost *float64) int {
	if cost == nil {
		return 0
	}
	for _, b := range s.cfg.CostBrackets {
		if *cost >= b.Threshold {
			return b.Points
		}
	}
	return 0
}

func freshnessBonus(brackets []config.Bracket, days int) int {
	for _, b := range brackets {
		if float64(days) <= b.Threshold {
			return b.Points
		}
	}
	return 0
}

func stalenessPenalty(brackets []config.Bracket, days int) int {
	for _, b := range brackets {
		if float64(days) > b.Threshold {
			return b.Points
		}
	}
	return 0
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if t != "" && strings.Contains(s, strings.ToLower(t)) {
			return true
		}
	}
	return false
}
