package reference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/permit-cli/internal/model"
)

func TestDefault_Valid(t *testing.T) {
	tables := Default()
	require.NoError(t, tables.Validate())
	assert.Len(t, tables.Trades(), 33)
	assert.InDelta(t, 0.95, tables.DirectConfidence(), 0.001)
	assert.InDelta(t, 0.40, tables.FallbackConfidence(), 0.001)
}

func TestDefault_NoOrphanTrades(t *testing.T) {
	tables := Default()
	for _, tr := range tables.Trades() {
		var found bool
		for _, phase := range model.Phases {
			if tables.IsActive(phase, tr.Slug) {
				found = true
				break
			}
		}
		assert.True(t, found, "trade %s not active in any phase", tr.Slug)
	}
}

func TestDefault_UniqueSlugs(t *testing.T) {
	seen := map[string]bool{}
	for _, tr := range Default().Trades() {
		assert.False(t, seen[tr.Slug], "duplicate slug %s", tr.Slug)
		seen[tr.Slug] = true
	}
}

func TestDefault_TradesSorted(t *testing.T) {
	trades := Default().Trades()
	for i := 1; i < len(trades); i++ {
		assert.Less(t, trades[i-1].SortOrder, trades[i].SortOrder)
	}
}

func TestDefault_FallbackSet(t *testing.T) {
	assert.Equal(t,
		[]string{"framing", "plumbing", "electrical", "hvac", "drywall", "painting"},
		Default().Fallback())
}

func TestNew_OrphanTrade(t *testing.T) {
	c := DefaultCatalog()
	c.Trades = append(c.Trades, model.Trade{ID: 99, Slug: "glassblowing", Name: "Glassblowing", SortOrder: 99})

	_, err := New(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `trade "glassblowing" is not active in any phase`)
}

func TestNew_DuplicateSlug(t *testing.T) {
	c := DefaultCatalog()
	c.Trades = append(c.Trades, model.Trade{ID: 99, Slug: "plumbing", Name: "Plumbing 2", SortOrder: 99})

	_, err := New(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate trade slug "plumbing"`)
}

func TestNew_UnknownReferences(t *testing.T) {
	c := DefaultCatalog()
	c.NarrowScope = map[string][]string{"XYZ": {"basket-weaving"}}
	c.TagProducts = map[string][]string{"deck": {"unobtainium"}}

	_, err := New(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `narrow scope XYZ references unknown trade "basket-weaving"`)
	assert.Contains(t, err.Error(), `tag deck references unknown product "unobtainium"`)
}

func TestNew_EmptyFallback(t *testing.T) {
	c := DefaultCatalog()
	c.FallbackTrades = nil

	_, err := New(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fallback trade set is empty")
}

func TestRule_MalformedPatternNeverMatches(t *testing.T) {
	c := DefaultCatalog()
	c.Rules = []model.TradeMappingRule{rule("plumbing", model.FieldWork, `plumb(ing`, 0)}

	tables, err := New(c)
	require.NoError(t, err)
	require.Len(t, tables.Rules(), 1)
	assert.False(t, tables.Rules()[0].Matches("plumbing"))
	assert.False(t, tables.Rules()[0].Matches("plumb(ing"))
}

func TestRule_CaseInsensitive(t *testing.T) {
	r := compileRule(rule("plumbing", model.FieldPermitType, "plumbing", 0))
	assert.True(t, r.Matches("Plumbing(PS)"))
	assert.True(t, r.Matches("PLUMBING"))
	assert.False(t, r.Matches("Mechanical(MS)"))
	assert.False(t, r.Matches(""))
}

func TestNarrowScope(t *testing.T) {
	tables := Default()

	slugs, ok := tables.NarrowScope("PLB")
	require.True(t, ok)
	assert.Equal(t, []string{"plumbing"}, slugs)

	slugs, ok = tables.NarrowScope("plb")
	require.True(t, ok)
	assert.Equal(t, []string{"plumbing"}, slugs)

	_, ok = tables.NarrowScope("BLD")
	assert.False(t, ok)
	_, ok = tables.NarrowScope("")
	assert.False(t, ok)
}

func TestWorkExclusion_FirstKeyWins(t *testing.T) {
	c := DefaultCatalog()
	c.WorkExclusions = []WorkExclusion{
		{Key: "Deck", Exclude: []string{"plumbing"}},
		{Key: "porch", Exclude: []string{"hvac"}},
	}
	tables, err := New(c)
	require.NoError(t, err)

	ex, ok := tables.WorkExclusion("Porch and Deck")
	require.True(t, ok)
	assert.Equal(t, "deck", ex.Key)
	assert.Equal(t, []string{"plumbing"}, ex.Exclude)

	_, ok = tables.WorkExclusion("New Building")
	assert.False(t, ok)
	_, ok = tables.WorkExclusion("")
	assert.False(t, ok)
}

func TestOverrides_Apply(t *testing.T) {
	base := DefaultCatalog()
	o := Overrides{
		NarrowScope:        map[string][]string{"plb": {"plumbing", "drain-plumbing"}, "ELV": {"elevator"}},
		Rules:              []model.TradeMappingRule{{TradeSlug: "roofing", MatchField: "work", MatchPattern: "shingle", Active: true}},
		NonStructuralNouns: []string{"Vanity", "washroom"},
	}

	got := o.Apply(base)

	assert.Equal(t, []string{"plumbing", "drain-plumbing"}, got.NarrowScope["PLB"])
	assert.Equal(t, []string{"elevator"}, got.NarrowScope["ELV"])
	assert.Equal(t, []string{"hvac"}, got.NarrowScope["HVA"])
	assert.Len(t, got.Rules, len(base.Rules)+1)
	assert.Equal(t, model.TierDirect, got.Rules[len(got.Rules)-1].Tier)
	assert.Equal(t, base.WorkExclusions, got.WorkExclusions)
	assert.Contains(t, got.NonStructuralNouns, "vanity")
	assert.Len(t, got.NonStructuralNouns, len(base.NonStructuralNouns)+1)

	// The base catalog is untouched.
	assert.Equal(t, []string{"plumbing"}, base.NarrowScope["PLB"])
}

func TestLoad_EmptyPath(t *testing.T) {
	tables, err := Load("")
	require.NoError(t, err)
	assert.Len(t, tables.Trades(), 33)
}

func TestLoad_FromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reference.yaml")
	yaml := `
reference:
  narrow_scope:
    ELV: [elevator, electrical]
  work_exclusions:
    - key: shed
      exclude: [plumbing]
  non_structural_nouns: [vanity]
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	tables, err := Load(path)
	require.NoError(t, err)

	slugs, ok := tables.NarrowScope("ELV")
	require.True(t, ok)
	assert.Equal(t, []string{"elevator", "electrical"}, slugs)

	ex, ok := tables.WorkExclusion("Garden Shed")
	require.True(t, ok)
	assert.Equal(t, []string{"plumbing"}, ex.Exclude)
	_, ok = tables.WorkExclusion("Deck")
	assert.False(t, ok, "override list replaces the default exclusions")

	assert.Contains(t, tables.NonStructuralNouns(), "vanity")
}

func TestLoad_InvalidOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reference.yaml")
	require.NoError(t, os.WriteFile(path, []byte("reference:\n  narrow_scope:\n    XYZ: [nope]\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown trade")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reference: read overrides")
}
