// Package reference holds the static catalogs the classification engine
// reads: trades, product groups, phase membership, the tag matrices, tier-1
// rules, narrow-scope allow-lists, and work-type exclusions.
//
// A Tables value is immutable once built and safe for concurrent use.
package reference

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/permit-cli/internal/model"
)

// TagWeight is one trade contributed by a scope tag.
type TagWeight struct {
	Trade      string  `yaml:"trade"`
	Confidence float64 `yaml:"confidence"`
}

// WorkExclusion drops trades from permits whose work field contains Key.
type WorkExclusion struct {
	Key     string   `yaml:"key"`
	Exclude []string `yaml:"exclude"`
}

// Catalog is the raw, editable form of the reference data. It is turned
// into a Tables by New.
type Catalog struct {
	Trades             []model.Trade            `yaml:"trades"`
	Products           []model.ProductGroup     `yaml:"products"`
	PhaseTrades        map[model.Phase][]string `yaml:"phase_trades"`
	TagTrades          map[string][]TagWeight   `yaml:"tag_trades"`
	TagProducts        map[string][]string      `yaml:"tag_products"`
	Rules              []model.TradeMappingRule `yaml:"tier1_rules"`
	NarrowScope        map[string][]string      `yaml:"narrow_scope"`
	WorkExclusions     []WorkExclusion          `yaml:"work_exclusions"`
	NonStructuralNouns []string                 `yaml:"non_structural_nouns"`
	FallbackTrades     []string                 `yaml:"fallback_trades"`
	FallbackConfidence float64                  `yaml:"fallback_confidence"`
	DirectConfidence   float64                  `yaml:"direct_confidence"`
}

// Rule is a tier-1 rule with its pattern compiled. A pattern that failed to
// compile leaves re nil and the rule never matches.
type Rule struct {
	model.TradeMappingRule
	re *regexp.Regexp
}

// Matches reports whether value satisfies the rule's pattern.
func (r Rule) Matches(value string) bool {
	return r.re != nil && value != "" && r.re.MatchString(value)
}

// Tables is the immutable, validated reference data. Slices and maps
// returned by its accessors are shared and must not be modified.
type Tables struct {
	trades        []model.Trade
	tradeBySlug   map[string]model.Trade
	products      []model.ProductGroup
	productBySlug map[string]model.ProductGroup
	phaseTrades   map[model.Phase][]string
	phaseSet      map[model.Phase]map[string]bool
	tagTrades     map[string][]TagWeight
	tagProducts   map[string][]string
	rules         []Rule
	narrowScope   map[string][]string
	exclusions    []WorkExclusion
	nouns         []string
	fallback      []string
	fallbackConf  float64
	directConf    float64
}

// New builds and validates Tables from a catalog.
func New(c Catalog) (*Tables, error) {
	t := &Tables{
		tradeBySlug:   make(map[string]model.Trade, len(c.Trades)),
		productBySlug: make(map[string]model.ProductGroup, len(c.Products)),
		phaseTrades:   make(map[model.Phase][]string, len(c.PhaseTrades)),
		phaseSet:      make(map[model.Phase]map[string]bool, len(c.PhaseTrades)),
		tagTrades:     make(map[string][]TagWeight, len(c.TagTrades)),
		tagProducts:   make(map[string][]string, len(c.TagProducts)),
		narrowScope:   make(map[string][]string, len(c.NarrowScope)),
		fallbackConf:  c.FallbackConfidence,
		directConf:    c.DirectConfidence,
	}

	t.trades = append([]model.Trade(nil), c.Trades...)
	sort.SliceStable(t.trades, func(i, j int) bool { return t.trades[i].SortOrder < t.trades[j].SortOrder })
	for _, tr := range t.trades {
		t.tradeBySlug[tr.Slug] = tr
	}

	t.products = append([]model.ProductGroup(nil), c.Products...)
	sort.SliceStable(t.products, func(i, j int) bool { return t.products[i].SortOrder < t.products[j].SortOrder })
	for _, pg := range t.products {
		t.productBySlug[pg.Slug] = pg
	}

	for phase, slugs := range c.PhaseTrades {
		t.phaseTrades[phase] = append([]string(nil), slugs...)
		set := make(map[string]bool, len(slugs))
		for _, s := range slugs {
			set[s] = true
		}
		t.phaseSet[phase] = set
	}

	for tag, weights := range c.TagTrades {
		t.tagTrades[strings.ToLower(tag)] = append([]TagWeight(nil), weights...)
	}
	for tag, slugs := range c.TagProducts {
		t.tagProducts[strings.ToLower(tag)] = append([]string(nil), slugs...)
	}

	for _, r := range c.Rules {
		t.rules = append(t.rules, compileRule(r))
	}

	for code, slugs := range c.NarrowScope {
		t.narrowScope[strings.ToUpper(code)] = append([]string(nil), slugs...)
	}
	for _, ex := range c.WorkExclusions {
		t.exclusions = append(t.exclusions, WorkExclusion{
			Key:     strings.ToLower(ex.Key),
			Exclude: append([]string(nil), ex.Exclude...),
		})
	}

	t.nouns = append([]string(nil), c.NonStructuralNouns...)
	t.fallback = append([]string(nil), c.FallbackTrades...)

	if t.directConf <= 0 {
		t.directConf = DefaultDirectConfidence
	}
	if t.fallbackConf <= 0 {
		t.fallbackConf = DefaultFallbackConfidence
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func compileRule(r model.TradeMappingRule) Rule {
	re, err := regexp.Compile("(?i)" + r.MatchPattern)
	if err != nil || r.MatchPattern == "" {
		return Rule{TradeMappingRule: r}
	}
	return Rule{TradeMappingRule: r, re: re}
}

// Validate checks the catalog invariants: unique slugs, no orphan trades,
// and no dangling slug references.
func (t *Tables) Validate() error {
	var errs []string

	seen := make(map[string]bool, len(t.trades))
	for _, tr := range t.trades {
		if tr.Slug == "" {
			errs = append(errs, fmt.Sprintf("trade %d has empty slug", tr.ID))
			continue
		}
		if seen[tr.Slug] {
			errs = append(errs, fmt.Sprintf("duplicate trade slug %q", tr.Slug))
		}
		seen[tr.Slug] = true
	}

	for _, tr := range t.trades {
		if !t.inAnyPhase(tr.Slug) {
			errs = append(errs, fmt.Sprintf("trade %q is not active in any phase", tr.Slug))
		}
	}

	known := func(where, slug string) {
		if _, ok := t.tradeBySlug[slug]; !ok {
			errs = append(errs, fmt.Sprintf("%s references unknown trade %q", where, slug))
		}
	}
	for _, phase := range sortedPhases(t.phaseTrades) {
		for _, s := range t.phaseTrades[phase] {
			known("phase "+string(phase), s)
		}
	}
	for _, tag := range sortedKeys(t.tagTrades) {
		for _, w := range t.tagTrades[tag] {
			known("tag "+tag, w.Trade)
			if w.Confidence < 0 || w.Confidence > 1 {
				errs = append(errs, fmt.Sprintf("tag %s confidence %.2f out of range", tag, w.Confidence))
			}
		}
	}
	for _, tag := range sortedKeys(t.tagProducts) {
		for _, s := range t.tagProducts[tag] {
			if _, ok := t.productBySlug[s]; !ok {
				errs = append(errs, fmt.Sprintf("tag %s references unknown product %q", tag, s))
			}
		}
	}
	for _, r := range t.rules {
		known("tier-1 rule "+r.MatchPattern, r.TradeSlug)
	}
	for _, code := range sortedKeys(t.narrowScope) {
		for _, s := range t.narrowScope[code] {
			known("narrow scope "+code, s)
		}
	}
	for _, ex := range t.exclusions {
		for _, s := range ex.Exclude {
			known("work exclusion "+ex.Key, s)
		}
	}
	if len(t.fallback) == 0 {
		errs = append(errs, "fallback trade set is empty")
	}
	for _, s := range t.fallback {
		known("fallback", s)
	}

	if len(errs) > 0 {
		return eris.Errorf("reference: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (t *Tables) inAnyPhase(slug string) bool {
	for _, set := range t.phaseSet {
		if set[slug] {
			return true
		}
	}
	return false
}

// Trades returns the trade catalog in sort order.
func (t *Tables) Trades() []model.Trade { return t.trades }

// Trade looks up a trade by slug.
func (t *Tables) Trade(slug string) (model.Trade, bool) {
	tr, ok := t.tradeBySlug[slug]
	return tr, ok
}

// Products returns the product-group catalog in sort order.
func (t *Tables) Products() []model.ProductGroup { return t.products }

// Product looks up a product group by slug.
func (t *Tables) Product(slug string) (model.ProductGroup, bool) {
	pg, ok := t.productBySlug[slug]
	return pg, ok
}

// PhaseTrades returns the trade slugs conventionally active during phase.
func (t *Tables) PhaseTrades(phase model.Phase) []string { return t.phaseTrades[phase] }

// IsActive reports whether the trade is active during phase.
func (t *Tables) IsActive(phase model.Phase, slug string) bool {
	return t.phaseSet[phase][slug]
}

// TagTrades returns the trades contributed by a normalized tag key.
func (t *Tables) TagTrades(key string) []TagWeight { return t.tagTrades[key] }

// TagProducts returns the product slugs contributed by a normalized tag key.
func (t *Tables) TagProducts(key string) []string { return t.tagProducts[key] }

// Rules returns every tier-1 rule, active or not.
func (t *Tables) Rules() []Rule { return t.rules }

// NarrowScope returns the trade allow-list for a permit code.
func (t *Tables) NarrowScope(code string) ([]string, bool) {
	if code == "" {
		return nil, false
	}
	slugs, ok := t.narrowScope[strings.ToUpper(code)]
	return slugs, ok
}

// WorkExclusion returns the exclusion list of the first key contained in work.
func (t *Tables) WorkExclusion(work string) (WorkExclusion, bool) {
	lower := strings.ToLower(work)
	if lower == "" {
		return WorkExclusion{}, false
	}
	for _, ex := range t.exclusions {
		if strings.Contains(lower, ex.Key) {
			return ex, true
		}
	}
	return WorkExclusion{}, false
}

// NonStructuralNouns returns the nouns that, following "addition of", mark
// an addition as a feature rather than a structural addition.
func (t *Tables) NonStructuralNouns() []string { return t.nouns }

// Fallback returns the trade slugs used when no strategy matched.
func (t *Tables) Fallback() []string { return t.fallback }

// FallbackConfidence is the confidence assigned to fallback trades.
func (t *Tables) FallbackConfidence() float64 { return t.fallbackConf }

// DirectConfidence is the tier-1 default confidence.
func (t *Tables) DirectConfidence() float64 { return t.directConf }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedPhases(m map[model.Phase][]string) []model.Phase {
	phases := make([]model.Phase, 0, len(m))
	for p := range m {
		phases = append(phases, p)
	}
	sort.Slice(phases, func(i, j int) bool { return phases[i] < phases[j] })
	return phases
}
