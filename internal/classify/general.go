package classify

import (
	"regexp"

	"github.com/sells-group/permit-cli/internal/model"
)

type tagPattern struct {
	tag string
	re  *regexp.Regexp
}

func pattern(tag, expr string) tagPattern {
	return tagPattern{tag: tag, re: regexp.MustCompile(expr)}
}

// generalPatterns are independent: every matching pattern adds its tag once.
var generalPatterns = []tagPattern{
	// Structural.
	pattern("foundation", `foundation`),
	pattern("underpinning", `underpin`),
	pattern("structural", `structural|load[\s-]bearing|\bbeams?\b|\bcolumns?\b`),
	pattern("excavation", `excavat`),
	pattern("shoring", `shoring`),
	pattern("retaining-wall", `retaining\s+walls?`),
	pattern("addition", `\badd(?:i)?tions?\b`),
	pattern("demolition", `demoli|tear\s*down`),

	// Exterior.
	pattern("roofing", `\broof`),
	pattern("cladding", `cladding|siding|stucco|fa[cç]ade`),
	pattern("windows", `\bwindows?\b`),
	pattern("doors", `\bdoors?\b`),
	pattern("balcony", `balcon(?:y|ies)`),
	pattern("deck", `\bdecks?\b`),
	pattern("porch", `\bporch(?:es)?\b`),
	pattern("garage", `\bgarages?\b`),
	pattern("canopy", `canop(?:y|ies)`),
	pattern("fence", `\bfenc(?:e|es|ing)\b`),
	pattern("landscaping", `landscap`),
	pattern("parking", `parking`),
	pattern("storefront", `store\s?front`),
	pattern("signage", `\bsigns?\b|signage`),
	pattern("solar", `solar`),
	pattern("pool", `\bpools?\b`),
	pattern("masonry", `masonry|\bbrick`),
	pattern("waterproofing", `waterproof`),

	// Interior.
	pattern("interior-alterations", `interior\s+(?:alter|renov|fit)`),
	pattern("kitchen", `kitchen`),
	pattern("bathroom", `bathrooms?|washrooms?`),
	pattern("basement", `basement`),
	pattern("stairs", `\bstair`),
	pattern("tenant-fitout", `\btenant|fit[\s-]?out|leasehold`),
	pattern("restaurant", `restaurant|eating\s+establishment|\bcaf[eé]\b`),
	pattern("flooring", `flooring`),

	// Building types.
	pattern("condo", `condo`),
	pattern("apartment", `apartment`),
	pattern("townhouse", `town\s?house|row\s?house`),
	pattern("house", `\bsfd\b|single[\s-]family|detached|dwelling`),
	pattern("office", `\boffices?\b`),
	pattern("retail", `\bretail|\bstores?\b|mercantile`),
	pattern("warehouse", `warehouse`),
	pattern("industrial", `industrial|factory|manufactur`),
	pattern("school", `school`),
	pattern("hospital", `hospital|clinic|medical`),
	pattern("hotel", `\bhotel|\bmotel`),
	pattern("institutional", `church|place\s+of\s+worship|community\s+cent`),

	// Systems.
	pattern("hvac", `hvac|mechanical|furnace|air[\s-]condition|ventilat|heat\s+pump|rooftop\s+unit`),
	pattern("plumbing", `plumb`),
	pattern("electrical", `electric`),
	pattern("sprinkler", `sprinkler`),
	pattern("fire-alarm", `fire\s+alarm`),
	pattern("drain", `\bdrain|sewer`),
	pattern("backflow", `backflow`),
	pattern("elevator", `elevator|\blift\b`),
	pattern("generator", `generator`),
	pattern("ev-charging", `\bev\s+charg|electric\s+vehicle`),
}

// Storey-count scale tags.
const (
	TagLowRise  = "low-rise"
	TagMidRise  = "mid-rise"
	TagHighRise = "high-rise"
)

// storeyTag maps a storey count to exactly one scale tag, or "" below two.
func storeyTag(storeys int) string {
	switch {
	case storeys >= 10:
		return TagHighRise
	case storeys >= 5:
		return TagMidRise
	case storeys >= 2:
		return TagLowRise
	default:
		return ""
	}
}

func generalTags(p *model.Permit) []string {
	text := joinFields(p.Description, p.Work, p.StructureType, p.ProposedUse, p.CurrentUse)

	tags := newTagSet()
	for _, pt := range generalPatterns {
		if pt.re.MatchString(text) {
			tags.add(pt.tag)
		}
	}
	if t := storeyTag(p.Storeys); t != "" {
		tags.add(t)
	}
	return tags.list()
}
