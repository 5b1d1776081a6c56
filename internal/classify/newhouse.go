package classify

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/permit-cli/internal/model"
)

// Houseplex unit counts are clamped to this range.
const (
	minHouseplexUnits = 2
	maxHouseplexUnits = 6
)

var houseplexUnitsRe = regexp.MustCompile(`houseplex\D{0,12}?(\d+)`)

// newHouseFeatures are appended independently of the building type.
var newHouseFeatures = []tagPattern{
	pattern(model.PrefixNew+"garage", `\bgarages?\b`),
	pattern(model.PrefixNew+"deck", `\bdecks?\b`),
	pattern(model.PrefixNew+"porch", `\bporch(?:es)?\b`),
	pattern(model.PrefixNew+"walkout", `walk[\s-]?out`),
	pattern(model.PrefixNew+"balcony", `balcon(?:y|ies)`),
	pattern(model.PrefixNew+"laneway-suite", `laneway|garden\s+suite|rear\s+yard\s+suite`),
	pattern(model.PrefixNew+"finished-basement", `finish(?:ed|ing)?\s+basement|basement\s+finish`),
}

func houseplexTag(units int) string {
	return fmt.Sprintf("%shouseplex-%d-unit", model.PrefixNew, clamp(units, minHouseplexUnits, maxHouseplexUnits))
}

// buildingTypeTag picks exactly one building-type tag for a new house.
func buildingTypeTag(p *model.Permit) string {
	proposed := normalize(p.ProposedUse)
	structure := normalize(p.StructureType)
	desc := normalize(p.Description)

	switch {
	case strings.Contains(proposed, "houseplex"):
		units := p.HousingUnits
		if m := houseplexUnitsRe.FindStringSubmatch(proposed); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				units = n
			}
		}
		return houseplexTag(units)
	case strings.Contains(structure, "3+ unit"):
		return houseplexTag(p.HousingUnits)
	case p.HousingUnits > 1 && strings.Contains(desc, "houseplex"):
		return houseplexTag(p.HousingUnits)
	case strings.Contains(structure, "stacked"):
		return model.PrefixNew + "stacked-townhouse"
	case strings.Contains(structure, "townhouse"), strings.Contains(structure, "row house"):
		return model.PrefixNew + "townhouse"
	case strings.Contains(structure, "semi"):
		return model.PrefixNew + "semi-detached"
	default:
		return model.PrefixNew + "sfd"
	}
}

func newHouseTags(p *model.Permit) []string {
	tags := newTagSet()
	tags.add(buildingTypeTag(p))

	desc := normalize(p.Description)
	for _, f := range newHouseFeatures {
		if f.re.MatchString(desc) {
			tags.add(f.tag)
		}
	}
	return tags.list()
}
