package classify

import (
	"regexp"
	"strings"

	"github.com/sells-group/permit-cli/internal/model"
)

// UseTypeTag is the universal building-use tag appended to every permit.
type UseTypeTag string

// Use-type tags.
const (
	UseResidential UseTypeTag = "residential"
	UseCommercial  UseTypeTag = "commercial"
	UseMixed       UseTypeTag = "mixed-use"
)

var (
	residentialSignalRe = regexp.MustCompile(`\bsfd\b|single[\s-]family|detached|\bsemi\b|town\s?house|row\s?house|duplex|triplex|fourplex|houseplex|apartment|dwelling`)
	commercialSignalRe  = regexp.MustCompile(`commercial|industrial|mercantile|retail|office|warehouse`)
	nonResidentialRe    = regexp.MustCompile(`non[\s-]?residential`)
	residentialWordRe   = regexp.MustCompile(`\bresidential\b|\bhouses?\b`)
)

// UseType classifies the permit as residential, commercial, or mixed-use
// from its permit-type, structure-type, and proposed-use fields. Permits
// with neither signal default to commercial.
func UseType(p *model.Permit) UseTypeTag {
	pt := strings.ToLower(strings.TrimSpace(p.PermitType))
	text := joinFields(p.PermitType, p.StructureType, p.ProposedUse)

	residential := residentialSignalRe.MatchString(text) ||
		strings.HasPrefix(pt, "small residential") ||
		strings.HasPrefix(pt, "new house") ||
		strings.HasPrefix(pt, "residential")
	commercial := commercialSignalRe.MatchString(text) ||
		strings.HasPrefix(pt, "non-residential") ||
		strings.HasPrefix(pt, "non residential")

	switch {
	case residential && commercial:
		return UseMixed
	case residential:
		return UseResidential
	default:
		return UseCommercial
	}
}

// isResidentialStructure reports whether the structure and use fields
// describe a residential building.
func isResidentialStructure(p *model.Permit) bool {
	text := joinFields(p.StructureType, p.CurrentUse, p.ProposedUse)
	if residentialSignalRe.MatchString(text) {
		return true
	}
	text = nonResidentialRe.ReplaceAllString(text, "")
	return residentialWordRe.MatchString(text)
}
