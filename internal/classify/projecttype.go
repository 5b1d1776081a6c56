package classify

import (
	"regexp"
	"strings"

	"github.com/sells-group/permit-cli/internal/model"
)

// projectFields is the normalized view of the permit fields the project-type
// cascade reads.
type projectFields struct {
	work       string // trimmed, original case
	workLower  string
	permitType string // lower-cased
	desc       string // normalized
}

type projectRule struct {
	name   string
	match  func(f projectFields) bool
	result model.ProjectType
}

var (
	accessoryWorkRe    = regexp.MustCompile(`(?i)^(deck|porch|garage|pool)$`)
	buildingActivityRe = regexp.MustCompile(`addition|alteration|new building|renovation|construct`)

	descNewRe        = regexp.MustCompile(`\b(?:new|construct\w*|erect\w*)\b`)
	descDemolitionRe = regexp.MustCompile(`demolish|demolition|tear\s*down`)
	descAdditionRe   = regexp.MustCompile(`\badd(?:i)?tions?\b`)
	descRenovationRe = regexp.MustCompile(`renovat|interior\s+alter|remodel`)
	descRepairRe     = regexp.MustCompile(`repair`)
)

func workIs(value string) func(projectFields) bool {
	return func(f projectFields) bool { return strings.EqualFold(f.work, value) }
}

func workContains(subs ...string) func(projectFields) bool {
	return func(f projectFields) bool {
		for _, s := range subs {
			if strings.Contains(f.workLower, s) {
				return true
			}
		}
		return false
	}
}

func permitTypeContains(sub string) func(projectFields) bool {
	return func(f projectFields) bool { return strings.Contains(f.permitType, sub) }
}

func descMatches(re *regexp.Regexp) func(projectFields) bool {
	return func(f projectFields) bool { return re.MatchString(f.desc) }
}

func mechanicalOnly(f projectFields) bool {
	for _, prefix := range []string{"plumbing", "mechanical", "drain", "electrical"} {
		if strings.HasPrefix(f.permitType, prefix) {
			return !buildingActivityRe.MatchString(f.workLower)
		}
	}
	return false
}

// projectRules is evaluated top to bottom; the first match wins.
var projectRules = []projectRule{
	{"work new building", workIs("New Building"), model.ProjectNewBuild},
	{"work demolition", workIs("Demolition"), model.ProjectDemolition},
	{"work interior alterations", workIs("Interior Alterations"), model.ProjectRenovation},
	{"work additions", workIs("Addition(s)"), model.ProjectAddition},
	{"work accessory structure", func(f projectFields) bool { return accessoryWorkRe.MatchString(f.work) }, model.ProjectAddition},
	{"work repair", workContains("repair", "fire damage", "balcony/guard"), model.ProjectRepair},
	{"permit type new house", permitTypeContains("new house"), model.ProjectNewBuild},
	{"permit type new building", permitTypeContains("new building"), model.ProjectNewBuild},
	{"permit type demolition folder", permitTypeContains("demolition folder"), model.ProjectDemolition},
	{"mechanical permit", mechanicalOnly, model.ProjectMechanical},
	{"description new", descMatches(descNewRe), model.ProjectNewBuild},
	{"description demolition", descMatches(descDemolitionRe), model.ProjectDemolition},
	{"description addition", descMatches(descAdditionRe), model.ProjectAddition},
	{"description renovation", descMatches(descRenovationRe), model.ProjectRenovation},
	{"description repair", descMatches(descRepairRe), model.ProjectRepair},
}

// ProjectType assigns exactly one project category to a permit.
func ProjectType(p *model.Permit) model.ProjectType {
	pt, _ := ExplainProjectType(p)
	return pt
}

// ExplainProjectType also returns the name of the rule that fired, or
// "default" when none did.
func ExplainProjectType(p *model.Permit) (model.ProjectType, string) {
	work := strings.TrimSpace(p.Work)
	f := projectFields{
		work:       work,
		workLower:  strings.ToLower(work),
		permitType: strings.ToLower(strings.TrimSpace(p.PermitType)),
		desc:       normalize(p.Description),
	}
	for _, r := range projectRules {
		if r.match(f) {
			return r.result, r.name
		}
	}
	return model.ProjectOther, "default"
}
