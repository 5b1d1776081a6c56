package reference

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/permit-cli/internal/model"
)

// Overrides is the YAML shape of rule-administration data layered on top
// of the built-in catalog.
//
//	reference:
//	  narrow_scope:
//	    PLB: [plumbing]
//	  work_exclusions:
//	    - key: deck
//	      exclude: [plumbing, hvac]
//	  tier1_rules:
//	    - trade_slug: roofing
//	      match_field: work
//	      match_pattern: shingle
//	      active: true
//	  non_structural_nouns: [vanity]
type Overrides struct {
	NarrowScope        map[string][]string      `yaml:"narrow_scope"`
	WorkExclusions     []WorkExclusion          `yaml:"work_exclusions"`
	Rules              []model.TradeMappingRule `yaml:"tier1_rules"`
	NonStructuralNouns []string                 `yaml:"non_structural_nouns"`
	FallbackConfidence float64                  `yaml:"fallback_confidence"`
}

// Apply merges overrides into a copy of c. Narrow-scope codes are replaced
// per code, a non-empty work-exclusion list replaces the default list (its
// order is significant), tier-1 rules are appended, and non-structural
// nouns are appended without duplicates.
func (o Overrides) Apply(c Catalog) Catalog {
	out := c

	out.NarrowScope = make(map[string][]string, len(c.NarrowScope)+len(o.NarrowScope))
	for code, slugs := range c.NarrowScope {
		out.NarrowScope[code] = slugs
	}
	for code, slugs := range o.NarrowScope {
		out.NarrowScope[strings.ToUpper(code)] = slugs
	}

	if len(o.WorkExclusions) > 0 {
		out.WorkExclusions = append([]WorkExclusion(nil), o.WorkExclusions...)
	}

	out.Rules = append(append([]model.TradeMappingRule(nil), c.Rules...), o.Rules...)
	for i := len(c.Rules); i < len(out.Rules); i++ {
		if out.Rules[i].Tier == 0 {
			out.Rules[i].Tier = model.TierDirect
		}
	}

	out.NonStructuralNouns = append([]string(nil), c.NonStructuralNouns...)
	have := make(map[string]bool, len(out.NonStructuralNouns))
	for _, n := range out.NonStructuralNouns {
		have[n] = true
	}
	for _, n := range o.NonStructuralNouns {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" && !have[n] {
			out.NonStructuralNouns = append(out.NonStructuralNouns, n)
			have[n] = true
		}
	}

	if o.FallbackConfidence > 0 {
		out.FallbackConfidence = o.FallbackConfidence
	}
	return out
}

// Load returns the built-in tables with the overrides file at path applied.
// An empty path yields Default().
func Load(path string) (*Tables, error) {
	if path == "" {
		return New(DefaultCatalog())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "reference: read overrides %s", path)
	}

	var wrapper struct {
		Reference Overrides `yaml:"reference"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "reference: parse overrides")
	}

	t, err := New(wrapper.Reference.Apply(DefaultCatalog()))
	if err != nil {
		return nil, eris.Wrapf(err, "reference: apply overrides %s", path)
	}
	return t, nil
}
