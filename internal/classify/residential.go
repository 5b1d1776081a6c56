package classify

import (
	"regexp"
	"strings"

	"github.com/sells-group/permit-cli/internal/model"
)

var additionWordRe = regexp.MustCompile(`\badd(?:i)?tions?\b`)

// featureSuffixRe matches "of [article] <noun>" immediately after the word
// addition, where noun is one of the non-structural nouns.
func featureSuffixRe(nouns []string) *regexp.Regexp {
	if len(nouns) == 0 {
		return nil
	}
	quoted := make([]string, len(nouns))
	for i, n := range nouns {
		quoted[i] = regexp.QuoteMeta(strings.ToLower(n))
	}
	return regexp.MustCompile(`^\s+of\s+(?:(?:a|an|the|one|two|new|second|additional)\s+)*(?:` +
		strings.Join(quoted, "|") + `)`)
}

// HasStructuralAddition reports whether the description names a structural
// addition: some occurrence of "addition" (or the misspelling "addtion") is
// not followed by "of [article] <non-structural noun>".
func (c *Classifier) HasStructuralAddition(description string) bool {
	desc := normalize(description)
	for _, loc := range additionWordRe.FindAllStringIndex(desc, -1) {
		if c.featureSuffix == nil || !c.featureSuffix.MatchString(desc[loc[1]:]) {
			return true
		}
	}
	return false
}

// additionTag sizes a structural addition by storey count.
func additionTag(storeys int) string {
	switch {
	case storeys >= 3:
		return model.PrefixNew + "3-storey-addition"
	case storeys == 2:
		return model.PrefixNew + "2-storey-addition"
	default:
		return model.PrefixNew + "1-storey-addition"
	}
}

// contextualFeatures switch from new: to alter: when the text around the
// keyword describes repair work.
var contextualFeatures = []struct {
	tag string
	re  *regexp.Regexp
}{
	{"deck", regexp.MustCompile(`\bdecks?\b`)},
	{"garage", regexp.MustCompile(`\bgarages?\b`)},
	{"porch", regexp.MustCompile(`\bporch(?:es)?\b`)},
}

// residentialFeatures are independent keyword checks over the description.
var residentialFeatures = []tagPattern{
	pattern(model.PrefixNew+"basement", `\bbasement\b`),
	pattern(model.PrefixNew+"underpinning", `underpin`),
	pattern(model.PrefixNew+"walkout", `walk[\s-]?out`),
	pattern(model.PrefixNew+"balcony", `balcon(?:y|ies)`),
	pattern(model.PrefixNew+"dormer", `dormer`),
	pattern(model.PrefixNew+"second-suite", `second(?:ary)?\s+(?:dwelling\s+)?(?:suite|unit)|2nd\s+(?:dwelling\s+)?(?:suite|unit)|basement\s+apartment|in[\s-]law\s+suite`),
	pattern(model.PrefixNew+"kitchen", `kitchen`),
	pattern(model.PrefixNew+"bathroom", `\b(?:bathrooms?|washrooms?|powder\s+rooms?|ensuites?)\b`),
	pattern(model.PrefixNew+"laundry", `laundry`),
	pattern(model.PrefixNew+"open-concept", `open[\s-]concept|remov\w*\s+(?:of\s+)?(?:an?\s+|the\s+)?(?:interior\s+|load[\s-]bearing\s+)?walls?\b`),
	pattern(model.PrefixNew+"structural-beam", `\bbeams?\b|lintel|load[\s-]bearing`),
	pattern(model.PrefixNew+"laneway-suite", `laneway|garden\s+suite|rear\s+yard\s+suite`),
	pattern(model.PrefixNew+"pool", `\b(?:swimming\s+)?pools?\b`),
	pattern(model.PrefixNew+"carport", `carport`),
	pattern(model.PrefixNew+"canopy", `canop(?:y|ies)`),
	pattern(model.PrefixNew+"roofing", `\broof`),
	pattern(model.PrefixNew+"fence", `\bfenc(?:e|es|ing)\b`),
	pattern(model.PrefixNew+"foundation", `foundation`),
	pattern(model.PrefixNew+"solar", `solar`),
	pattern(model.PrefixNew+"fireplace", `fireplace|wood\s*stove|chimney`),
	pattern(model.PrefixNew+"accessory-building", `accessory\s+(?:building|structure)|\bshed\b|cabana|gazebo|pool\s*house`),
}

var (
	interiorAlterRe  = regexp.MustCompile(`interior\s+(?:alter|renov)|\brenovat|\bremodel`)
	fireDamageRe     = regexp.MustCompile(`fire[\s-]damage|fire\s+restoration`)
	unitConversionRe = regexp.MustCompile(`\bconver(?:t|ted|ting|sion)\b.{0,40}\b(?:units?|dwellings?|duplex|triplex|fourplex|suites?)\b|\bunit\s+conversion\b`)
)

// Residential tags referenced by the dedup rules.
const (
	tagBasement      = model.PrefixNew + "basement"
	tagUnderpinning  = model.PrefixNew + "underpinning"
	tagSecondSuite   = model.PrefixNew + "second-suite"
	tagInterior      = model.PrefixAlter + "interior-alterations"
	tagAccessory     = model.PrefixNew + "accessory-building"
	tagNewGarage     = model.PrefixNew + "garage"
	tagAlterGarage   = model.PrefixAlter + "garage"
	tagPool          = model.PrefixNew + "pool"
	tagUnitConverted = model.PrefixAlter + "unit-conversion"
	tagFireDamage    = model.PrefixAlter + "fire-damage"
)

// dedupRule removes tag when any of the "when" tags is present.
type dedupRule struct {
	remove string
	when   []string
}

// residentialDedup runs unconditionally and in this order.
var residentialDedup = []dedupRule{
	{remove: tagBasement, when: []string{tagUnderpinning}},
	{remove: tagBasement, when: []string{tagSecondSuite}},
	{remove: tagInterior, when: []string{tagSecondSuite}},
	{remove: tagAccessory, when: []string{tagNewGarage, tagAlterGarage}},
	{remove: tagAccessory, when: []string{tagPool}},
	{remove: tagUnitConverted, when: []string{tagSecondSuite}},
}

func (c *Classifier) residentialTags(p *model.Permit) []string {
	desc := normalize(p.Description)
	work := strings.ToLower(strings.TrimSpace(p.Work))
	tags := newTagSet()

	if strings.HasPrefix(work, "addition") || c.HasStructuralAddition(desc) {
		tags.add(additionTag(ExtractStoreys(desc)))
	}

	for _, f := range contextualFeatures {
		if !f.re.MatchString(desc) {
			continue
		}
		prefix := model.PrefixNew
		if repairAround(desc, f.re) {
			prefix = model.PrefixAlter
		}
		tags.add(prefix + f.tag)
	}

	for _, f := range residentialFeatures {
		if f.re.MatchString(desc) {
			tags.add(f.tag)
		}
	}

	if interiorAlterRe.MatchString(desc) || strings.Contains(work, "interior alteration") {
		tags.add(tagInterior)
	}
	if fireDamageRe.MatchString(desc) || strings.Contains(work, "fire damage") {
		tags.add(tagFireDamage)
	}
	if unitConversionRe.MatchString(desc) {
		tags.add(tagUnitConverted)
	}

	for _, r := range residentialDedup {
		if tags.contains(r.when...) {
			tags.remove(r.remove)
		}
	}
	return tags.list()
}
