package model

import "time"

// ProjectType is the single, mutually exclusive category of a permit.
type ProjectType string

// Project type constants.
const (
	ProjectNewBuild   ProjectType = "new_build"
	ProjectAddition   ProjectType = "addition"
	ProjectDemolition ProjectType = "demolition"
	ProjectRenovation ProjectType = "renovation"
	ProjectMechanical ProjectType = "mechanical"
	ProjectRepair     ProjectType = "repair"
	ProjectOther      ProjectType = "other"
)

// ProjectTypes lists every project type in declaration order.
var ProjectTypes = []ProjectType{
	ProjectNewBuild, ProjectAddition, ProjectDemolition, ProjectRenovation,
	ProjectMechanical, ProjectRepair, ProjectOther,
}

// Valid reports whether pt is one of the enumerated project types.
func (pt ProjectType) Valid() bool {
	for _, v := range ProjectTypes {
		if v == pt {
			return true
		}
	}
	return false
}

// ScopeSource records how a scope row was produced.
type ScopeSource string

// Scope source constants.
const (
	ScopeClassified ScopeSource = "classified"
	ScopePropagated ScopeSource = "propagated"
)

// Work-type prefixes carried by residential and new-house tags.
const (
	PrefixNew   = "new:"
	PrefixAlter = "alter:"
)

// ScopeResult is the output of scope classification for one permit.
// ScopeTags is sorted ascending and holds no duplicates.
type ScopeResult struct {
	Key          PermitKey   `json:"key"`
	ProjectType  ProjectType `json:"project_type"`
	ScopeTags    []string    `json:"scope_tags"`
	Source       ScopeSource `json:"source"`
	RunID        string      `json:"run_id,omitempty"`
	ClassifiedAt time.Time   `json:"classified_at"`
}
