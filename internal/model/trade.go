package model

// Phase is a coarse construction-lifecycle stage.
type Phase string

// Phase constants, in lifecycle order.
const (
	PhaseEarlyConstruction Phase = "early_construction"
	PhaseStructural        Phase = "structural"
	PhaseFinishing         Phase = "finishing"
	PhaseLandscaping       Phase = "landscaping"
)

// Phases lists every phase in lifecycle order.
var Phases = []Phase{PhaseEarlyConstruction, PhaseStructural, PhaseFinishing, PhaseLandscaping}

// Tier is the provenance marker of a trade match.
type Tier int

// Tier constants.
const (
	TierDirect   Tier = 1 // direct field-pattern rule
	TierTag      Tier = 2 // tag-matrix derived
	TierFallback Tier = 3 // no signal, minimal trade set
)

// Trade is a construction discipline from the static catalog.
type Trade struct {
	ID        int    `json:"id" yaml:"id"`
	Slug      string `json:"slug" yaml:"slug"`
	Name      string `json:"name" yaml:"name"`
	Icon      string `json:"icon" yaml:"icon"`
	Color     string `json:"color" yaml:"color"`
	SortOrder int    `json:"sort_order" yaml:"sort_order"`
}

// TradeMappingRule is a tier-1 direct field-pattern rule. A zero Confidence
// means the tier default applies.
type TradeMappingRule struct {
	TradeSlug    string  `json:"trade_slug" yaml:"trade_slug"`
	Tier         Tier    `json:"tier" yaml:"tier"`
	MatchField   string  `json:"match_field" yaml:"match_field"`
	MatchPattern string  `json:"match_pattern" yaml:"match_pattern"`
	Confidence   float64 `json:"confidence" yaml:"confidence"`
	PhaseStart   int     `json:"phase_start" yaml:"phase_start"`
	PhaseEnd     int     `json:"phase_end" yaml:"phase_end"`
	Active       bool    `json:"active" yaml:"active"`
}

// Match fields a rule may test.
const (
	FieldPermitType    = "permit_type"
	FieldWork          = "work"
	FieldDescription   = "description"
	FieldStructureType = "structure_type"
	FieldProposedUse   = "proposed_use"
	FieldCurrentUse    = "current_use"
)

// FieldValue returns the permit attribute named by a rule's match field.
// Unknown field names yield an empty string.
func (p *Permit) FieldValue(field string) string {
	switch field {
	case FieldPermitType:
		return p.PermitType
	case FieldWork:
		return p.Work
	case FieldDescription:
		return p.Description
	case FieldStructureType:
		return p.StructureType
	case FieldProposedUse:
		return p.ProposedUse
	case FieldCurrentUse:
		return p.CurrentUse
	default:
		return ""
	}
}

// TradeMatch is one trade inferred for one permit. A permit's full set of
// matches is replaced on every classification pass.
type TradeMatch struct {
	Key        PermitKey `json:"key"`
	TradeID    int       `json:"trade_id"`
	TradeSlug  string    `json:"trade_slug"`
	TradeName  string    `json:"trade_name"`
	Tier       Tier      `json:"tier"`
	Confidence float64   `json:"confidence"`
	IsActive   bool      `json:"is_active"`
	Phase      Phase     `json:"phase"`
	LeadScore  int       `json:"lead_score"`
}

// ProductGroup is a product category a permit's scope may call for.
type ProductGroup struct {
	ID        int    `json:"id" yaml:"id"`
	Slug      string `json:"slug" yaml:"slug"`
	Name      string `json:"name" yaml:"name"`
	SortOrder int    `json:"sort_order" yaml:"sort_order"`
}

// ProductMatch is a product group inferred from scope tags.
type ProductMatch struct {
	Key         PermitKey `json:"key"`
	ProductID   int       `json:"product_id"`
	ProductSlug string    `json:"product_slug"`
	ProductName string    `json:"product_name"`
}
