// Package model defines the permit, scope, and trade types shared across the
// classification engine, the batch driver, and the store.
package model

import (
	"fmt"
	"time"
)

// Permit is a building-permit record as read from the source feed. The
// ProjectType and ScopeTags fields hold the last persisted classification;
// they are read by propagation but never by classification of the same permit.
type Permit struct {
	PermitNum     string     `json:"permit_num"`
	RevisionNum   string     `json:"revision_num"`
	Work          string     `json:"work"`
	PermitType    string     `json:"permit_type"`
	Description   string     `json:"description"`
	StructureType string     `json:"structure_type"`
	CurrentUse    string     `json:"current_use"`
	ProposedUse   string     `json:"proposed_use"`
	Storeys       int        `json:"storeys"`
	EstConstCost  *float64   `json:"est_const_cost,omitempty"`
	Status        string     `json:"status"`
	IssuedDate    *time.Time `json:"issued_date,omitempty"`
	HousingUnits  int        `json:"housing_units"`

	ProjectType ProjectType `json:"project_type,omitempty"`
	ScopeTags   []string    `json:"scope_tags,omitempty"`
}

// Key returns the permit identity.
func (p *Permit) Key() PermitKey {
	return PermitKey{PermitNum: p.PermitNum, RevisionNum: p.RevisionNum}
}

// PermitKey is the stable (permit number, revision number) identity of a permit.
type PermitKey struct {
	PermitNum   string `json:"permit_num"`
	RevisionNum string `json:"revision_num"`
}

func (k PermitKey) String() string {
	return fmt.Sprintf("%s/%s", k.PermitNum, k.RevisionNum)
}

// Less orders keys by permit number, then revision number. This is the
// order used by cursor pagination.
func (k PermitKey) Less(o PermitKey) bool {
	if k.PermitNum != o.PermitNum {
		return k.PermitNum < o.PermitNum
	}
	return k.RevisionNum < o.RevisionNum
}
