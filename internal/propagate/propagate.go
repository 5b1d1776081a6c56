// Package propagate copies a building permit's scope onto its companion
// permits (plumbing, mechanical, demolition, ...) that share its base number.
package propagate

import (
	"cmp"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/sells-group/permit-cli/internal/classify"
	"github.com/sells-group/permit-cli/internal/model"
)

// SourceCode is the permit code of the record whose scope is propagated.
const SourceCode = "BLD"

// BaseID returns the first two whitespace-delimited tokens of a permit
// number, or "" when it has fewer than two.
func BaseID(permitNum string) string {
	fields := strings.Fields(permitNum)
	if len(fields) < 2 {
		return ""
	}
	return fields[0] + " " + fields[1]
}

// Group buckets permits by base identifier. Permits without one are dropped.
func Group(permits []*model.Permit) map[string][]*model.Permit {
	groups := make(map[string][]*model.Permit)
	for _, p := range permits {
		base := BaseID(p.PermitNum)
		if base == "" {
			continue
		}
		groups[base] = append(groups[base], p)
	}
	return groups
}

// Source returns the BLD sibling with the highest revision number.
func Source(group []*model.Permit) (*model.Permit, bool) {
	var src *model.Permit
	for _, p := range group {
		if model.PermitCode(p.PermitNum) != SourceCode {
			continue
		}
		if src == nil || CompareRevisions(src.RevisionNum, p.RevisionNum) < 0 {
			src = p
		}
	}
	return src, src != nil
}

// CompareRevisions orders revision numbers numerically when both are
// integers, so "10" follows "9". Otherwise, or on a numeric tie such as
// "01" and "1", it falls back to string order.
func CompareRevisions(a, b string) int {
	x, errA := strconv.Atoi(strings.TrimSpace(a))
	y, errB := strconv.Atoi(strings.TrimSpace(b))
	if errA == nil && errB == nil && x != y {
		return cmp.Compare(x, y)
	}
	return strings.Compare(a, b)
}

// Propagate copies the source's project type and scope tags onto every
// coded non-BLD sibling, then restores the demolition tag on demolition
// folders that lost it. Only siblings whose scope changes are returned, in
// key order. The group is not modified.
func Propagate(group []*model.Permit) []model.ScopeResult {
	src, ok := Source(group)
	if !ok || len(src.ScopeTags) == 0 {
		return nil
	}

	var out []model.ScopeResult
	for _, p := range group {
		code := model.PermitCode(p.PermitNum)
		if code == "" || code == SourceCode {
			continue
		}

		tags := slices.Clone(src.ScopeTags)
		if classify.IsDemolitionFolder(p.PermitType) && !slices.Contains(tags, classify.DemolitionTag) {
			tags = classify.SortTags(append(tags, classify.DemolitionTag))
		}

		if p.ProjectType == src.ProjectType && slices.Equal(p.ScopeTags, tags) {
			continue
		}
		out = append(out, model.ScopeResult{
			Key:         p.Key(),
			ProjectType: src.ProjectType,
			ScopeTags:   tags,
			Source:      model.ScopePropagated,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key.Less(out[j].Key) })
	return out
}

// Apply writes results back onto the matching permits of the group.
func Apply(group []*model.Permit, results []model.ScopeResult) {
	byKey := make(map[model.PermitKey]model.ScopeResult, len(results))
	for _, r := range results {
		byKey[r.Key] = r
	}
	for _, p := range group {
		if r, ok := byKey[p.Key()]; ok {
			p.ProjectType = r.ProjectType
			p.ScopeTags = slices.Clone(r.ScopeTags)
		}
	}
}
