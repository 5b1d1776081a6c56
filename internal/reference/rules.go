package reference

import "github.com/sells-group/permit-cli/internal/model"

func rule(slug, field, pattern string, confidence float64) model.TradeMappingRule {
	return model.TradeMappingRule{
		TradeSlug:    slug,
		Tier:         model.TierDirect,
		MatchField:   field,
		MatchPattern: pattern,
		Confidence:   confidence,
		Active:       true,
	}
}

func defaultRules() []model.TradeMappingRule {
	rules := []model.TradeMappingRule{
		rule("plumbing", model.FieldPermitType, `plumbing`, 0),
		rule("hvac", model.FieldPermitType, `mechanical`, 0),
		rule("drain-plumbing", model.FieldPermitType, `drain`, 0),
		rule("excavation", model.FieldPermitType, `drain`, 0.80),
		rule("demolition", model.FieldPermitType, `demolition folder`, 0),
		rule("excavation", model.FieldPermitType, `demolition folder`, 0.70),
		rule("fire-protection", model.FieldPermitType, `fire/security`, 0),
		rule("security", model.FieldPermitType, `fire/security`, 0.85),
		rule("electrical", model.FieldPermitType, `electrical`, 0),
		rule("electrical", model.FieldPermitType, `^sign`, 0.60),
		rule("fire-protection", model.FieldWork, `sprinkler`, 0),
		rule("fire-protection", model.FieldWork, `fire alarm`, 0.90),
		rule("electrical", model.FieldWork, `fire alarm`, 0.80),
		rule("shoring", model.FieldWork, `underpinning`, 0.90),
		rule("concrete", model.FieldWork, `underpinning`, 0.90),
		rule("roofing", model.FieldWork, `roofing`, 0),
		rule("elevator", model.FieldWork, `elevat`, 0),
		rule("decking-fences", model.FieldWork, `^deck`, 0),
		rule("decking-fences", model.FieldWork, `fence`, 0.85),
		rule("pool-installation", model.FieldWork, `^pool`, 0),
		rule("solar", model.FieldDescription, `solar (panel|array|pv)`, 0.90),
		rule("elevator", model.FieldDescription, `elevator`, 0.80),
		rule("masonry", model.FieldWork, `masonry|brick`, 0.85),
	}

	asbestos := rule("demolition", model.FieldDescription, `asbestos`, 0.60)
	asbestos.Active = false
	rules = append(rules, asbestos)

	// Phase windows are months after issuance during which the rule's trade
	// is typically on site.
	for i := range rules {
		switch rules[i].TradeSlug {
		case "demolition", "excavation", "shoring", "drain-plumbing":
			rules[i].PhaseStart, rules[i].PhaseEnd = 0, 3
		case "concrete", "roofing", "masonry", "elevator":
			rules[i].PhaseStart, rules[i].PhaseEnd = 2, 12
		case "plumbing", "hvac", "electrical", "fire-protection", "security":
			rules[i].PhaseStart, rules[i].PhaseEnd = 3, 18
		default:
			rules[i].PhaseStart, rules[i].PhaseEnd = 9, 24
		}
	}
	return rules
}

func defaultNarrowScope() map[string][]string {
	return map[string][]string{
		"PLB": {"plumbing"},
		"PSV": {"plumbing", "drain-plumbing"},
		"HVA": {"hvac"},
		"MS":  {"hvac"},
		"DRN": {"drain-plumbing", "excavation", "concrete"},
		"STS": {"drain-plumbing", "excavation", "paving"},
		"FSU": {"fire-protection", "security", "electrical"},
		"DEM": {"demolition", "excavation", "temporary-fencing"},
		"DM":  {"demolition", "excavation", "temporary-fencing"},
		"SHO": {"shoring", "excavation", "concrete"},
	}
}

// defaultWorkExclusions is ordered; only the first key contained in the
// work field is applied.
func defaultWorkExclusions() []WorkExclusion {
	return []WorkExclusion{
		{Key: "interior alterations", Exclude: []string{
			"excavation", "shoring", "roofing", "landscaping", "paving", "pool-installation",
			"eavestrough-siding", "decking-fences", "temporary-fencing", "solar",
		}},
		{Key: "demolition", Exclude: []string{
			"framing", "drywall", "painting", "flooring", "tiling", "trim-work",
			"millwork-cabinetry", "stone-countertops", "insulation", "roofing", "glazing",
		}},
		{Key: "deck", Exclude: []string{
			"plumbing", "hvac", "elevator", "drywall", "tiling", "flooring", "insulation",
			"millwork-cabinetry", "stone-countertops", "fire-protection",
		}},
		{Key: "porch", Exclude: []string{
			"plumbing", "hvac", "elevator", "drywall", "tiling", "flooring",
			"millwork-cabinetry", "stone-countertops", "fire-protection",
		}},
		{Key: "fence", Exclude: []string{
			"plumbing", "hvac", "electrical", "drywall", "insulation", "roofing",
			"elevator", "tiling", "flooring", "framing",
		}},
		{Key: "pool", Exclude: []string{
			"roofing", "drywall", "elevator", "framing", "insulation", "flooring",
			"millwork-cabinetry", "stone-countertops",
		}},
		{Key: "garage", Exclude: []string{
			"elevator", "tiling", "millwork-cabinetry", "stone-countertops",
		}},
	}
}

func defaultNonStructuralNouns() []string {
	return []string{
		"washroom", "bathroom", "laundry", "closet", "window",
		"door", "powder", "shower", "fireplace", "skylight",
	}
}

func defaultFallback() []string {
	return []string{"framing", "plumbing", "electrical", "hvac", "drywall", "painting"}
}

// DefaultCatalog returns the built-in reference data.
func DefaultCatalog() Catalog {
	return Catalog{
		Trades:             defaultTrades(),
		Products:           defaultProducts(),
		PhaseTrades:        defaultPhaseTrades(),
		TagTrades:          defaultTagTrades(),
		TagProducts:        defaultTagProducts(),
		Rules:              defaultRules(),
		NarrowScope:        defaultNarrowScope(),
		WorkExclusions:     defaultWorkExclusions(),
		NonStructuralNouns: defaultNonStructuralNouns(),
		FallbackTrades:     defaultFallback(),
		FallbackConfidence: DefaultFallbackConfidence,
		DirectConfidence:   DefaultDirectConfidence,
	}
}

// Default returns Tables built from DefaultCatalog. It panics if the
// built-in catalog is invalid.
func Default() *Tables {
	t, err := New(DefaultCatalog())
	if err != nil {
		panic(err)
	}
	return t
}
