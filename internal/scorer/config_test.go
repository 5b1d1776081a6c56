package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/permit-cli/internal/config"
)

func TestDefaultScorerConfig_Valid(t *testing.T) {
	assert.NoError(t, ValidateConfig(DefaultScorerConfig()))
}

func TestValidateConfig_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.ScorerConfig)
		want   string
	}{
		{"empty status terms", func(c *config.ScorerConfig) { c.StatusScores[0].Contains = nil }, "status_scores[0] has no contains terms"},
		{"status out of range", func(c *config.ScorerConfig) { c.StatusScores[1].Score = 120 }, "status_scores[1].score"},
		{"default out of range", func(c *config.ScorerConfig) { c.DefaultStatusScore = intPtr(-1) }, "default_status_score"},
		{"freshness order", func(c *config.ScorerConfig) {
			c.FreshnessBrackets[0], c.FreshnessBrackets[1] = c.FreshnessBrackets[1], c.FreshnessBrackets[0]
		}, "freshness_brackets must be in ascending"},
		{"staleness order", func(c *config.ScorerConfig) {
			c.StalenessBrackets[0], c.StalenessBrackets[2] = c.StalenessBrackets[2], c.StalenessBrackets[0]
		}, "staleness_brackets must be in descending"},
		{"negative points", func(c *config.ScorerConfig) { c.CostBrackets[4].Points = -4 }, "cost_brackets[4].points must be >= 0"},
		{"negative bonus", func(c *config.ScorerConfig) { c.ActivePhaseBonus = intPtr(-1) }, "active_phase_bonus"},
		{"negative penalty", func(c *config.ScorerConfig) { c.RevocationPenalty = intPtr(-30) }, "revocation_penalty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultScorerConfig()
			tt.mutate(&cfg)

			err := ValidateConfig(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestWithDefaults_KeepsOverrides(t *testing.T) {
	cfg := WithDefaults(config.ScorerConfig{ActivePhaseBonus: intPtr(20), RevocationKeywords: []string{"void"}})

	assert.Equal(t, 20, *cfg.ActivePhaseBonus)
	assert.Equal(t, []string{"void"}, cfg.RevocationKeywords)
	assert.Equal(t, DefaultScorerConfig().CostBrackets, cfg.CostBrackets)
	assert.Equal(t, 25, *cfg.DefaultStatusScore)
}

func TestWithDefaults_FillsEachFieldIndependently(t *testing.T) {
	custom := []config.StatusScore{{Contains: []string{"issued"}, Score: 60}}

	tests := []struct {
		name        string
		in          config.ScorerConfig
		wantDefault int
		wantBonus   int
		wantScale   float64
		wantPenalty int
		wantStatus  []config.StatusScore
	}{
		{
			name:        "custom statuses without default score",
			in:          config.ScorerConfig{StatusScores: custom},
			wantDefault: 25,
			wantBonus:   15,
			wantScale:   10,
			wantPenalty: 30,
			wantStatus:  custom,
		},
		{
			name:        "default score without statuses",
			in:          config.ScorerConfig{DefaultStatusScore: intPtr(5)},
			wantDefault: 5,
			wantBonus:   15,
			wantScale:   10,
			wantPenalty: 30,
			wantStatus:  DefaultScorerConfig().StatusScores,
		},
		{
			name: "explicit zeros are kept",
			in: config.ScorerConfig{
				DefaultStatusScore: intPtr(0),
				ActivePhaseBonus:   intPtr(0),
				ConfidenceScale:    floatPtr(0),
				RevocationPenalty:  intPtr(0),
			},
			wantStatus: DefaultScorerConfig().StatusScores,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := WithDefaults(tt.in)
			assert.Equal(t, tt.wantDefault, *cfg.DefaultStatusScore)
			assert.Equal(t, tt.wantBonus, *cfg.ActivePhaseBonus)
			assert.Equal(t, tt.wantScale, *cfg.ConfidenceScale)
			assert.Equal(t, tt.wantPenalty, *cfg.RevocationPenalty)
			assert.Equal(t, tt.wantStatus, cfg.StatusScores)
			assert.NoError(t, ValidateConfig(cfg))
		})
	}
}

func TestConfigHash_Stable(t *testing.T) {
	a := ConfigHash(DefaultScorerConfig())
	b := ConfigHash(DefaultScorerConfig())
	assert.Len(t, a, 32)
	assert.Equal(t, a, b)

	changed := DefaultScorerConfig()
	changed.ActivePhaseBonus = intPtr(16)
	assert.NotEqual(t, a, ConfigHash(changed))
}
