// Package classify derives a permit's project type and scope tags from its
// free-text and coded fields.
package classify

import (
	"regexp"
	"sort"
	"strings"

	"github.com/sells-group/permit-cli/internal/model"
	"github.com/sells-group/permit-cli/internal/reference"
)

// Branch names the tag vocabulary used for a permit.
type Branch string

// Branch constants.
const (
	BranchGeneral     Branch = "general"
	BranchResidential Branch = "residential"
	BranchNewHouse    Branch = "new_house"
)

// DemolitionTag is force-appended to demolition permits in every branch.
const DemolitionTag = "demolition"

// Classifier produces ScopeResults. It is safe for concurrent use.
type Classifier struct {
	tables        *reference.Tables
	featureSuffix *regexp.Regexp
}

// New returns a Classifier reading the non-structural addition nouns from t.
func New(t *reference.Tables) *Classifier {
	return &Classifier{
		tables:        t,
		featureSuffix: featureSuffixRe(t.NonStructuralNouns()),
	}
}

type branchRule struct {
	match  func(p *model.Permit, permitType string) bool
	branch Branch
}

// branchRules is evaluated top to bottom; the first match wins.
var branchRules = []branchRule{
	{func(_ *model.Permit, pt string) bool { return strings.HasPrefix(pt, "small residential") }, BranchResidential},
	{func(_ *model.Permit, pt string) bool { return strings.HasPrefix(pt, "new house") }, BranchNewHouse},
	{func(p *model.Permit, pt string) bool {
		return strings.HasPrefix(pt, "building additions") && isResidentialStructure(p)
	}, BranchResidential},
}

// SelectBranch picks the tag vocabulary for a permit.
func SelectBranch(p *model.Permit) Branch {
	pt := strings.ToLower(strings.TrimSpace(p.PermitType))
	for _, r := range branchRules {
		if r.match(p, pt) {
			return r.branch
		}
	}
	return BranchGeneral
}

// Classify computes the project type and scope tags of a permit. The result
// depends only on the permit's own fields and the reference tables.
func (c *Classifier) Classify(p *model.Permit) model.ScopeResult {
	pt := ProjectType(p)

	var tags []string
	switch SelectBranch(p) {
	case BranchResidential:
		tags = c.residentialTags(p)
	case BranchNewHouse:
		tags = newHouseTags(p)
	default:
		tags = generalTags(p)
	}

	if pt == model.ProjectDemolition || isDemolitionFolder(p.PermitType) {
		tags = appendIfMissing(tags, DemolitionTag)
	}
	tags = append(tags, string(UseType(p)))

	return model.ScopeResult{
		Key:         p.Key(),
		ProjectType: pt,
		ScopeTags:   SortTags(tags),
		Source:      model.ScopeClassified,
	}
}

func isDemolitionFolder(permitType string) bool {
	return strings.Contains(strings.ToLower(permitType), "demolition folder")
}

// IsDemolitionFolder reports whether a permit type is a demolition-folder type.
func IsDemolitionFolder(permitType string) bool {
	return isDemolitionFolder(permitType)
}

func appendIfMissing(tags []string, tag string) []string {
	for _, t := range tags {
		if t == tag {
			return tags
		}
	}
	return append(tags, tag)
}

// SortTags returns the tags deduplicated and sorted ascending. Empty
// strings are dropped.
func SortTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// tagSet is an insertion-ordered set of tags.
type tagSet struct {
	order []string
	has   map[string]bool
}

func newTagSet() *tagSet {
	return &tagSet{has: make(map[string]bool)}
}

func (s *tagSet) add(tag string) {
	if s.has[tag] {
		return
	}
	s.has[tag] = true
	s.order = append(s.order, tag)
}

func (s *tagSet) remove(tag string) {
	if !s.has[tag] {
		return
	}
	delete(s.has, tag)
	for i, t := range s.order {
		if t == tag {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *tagSet) contains(tags ...string) bool {
	for _, t := range tags {
		if s.has[t] {
			return true
		}
	}
	return false
}

func (s *tagSet) list() []string {
	return append([]string(nil), s.order...)
}
