package feed

import (
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/permit-cli/internal/model"
)

// columnAliases maps normalized header names onto permit fields.
var columnAliases = map[string]string{
	"permit_num":             "permit_num",
	"permit_number":          "permit_num",
	"permit_no":              "permit_num",
	"revision_num":           "revision_num",
	"revision_number":        "revision_num",
	"revision":               "revision_num",
	"work":                   "work",
	"permit_type":            "permit_type",
	"description":            "description",
	"structure_type":         "structure_type",
	"current_use":            "current_use",
	"proposed_use":           "proposed_use",
	"storeys":                "storeys",
	"stories":                "storeys",
	"est_const_cost":         "est_const_cost",
	"estimated_cost":         "est_const_cost",
	"est_cost":               "est_const_cost",
	"status":                 "status",
	"issued_date":            "issued_date",
	"issue_date":             "issued_date",
	"housing_units":          "housing_units",
	"dwelling_units_created": "housing_units",
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
}

// Decoder maps rows onto permits using the column positions of a header row.
type Decoder struct {
	cols map[string]int
}

// NewDecoder builds a decoder from a header row. Unknown columns are ignored;
// a permit number column is required.
func NewDecoder(header []string) (*Decoder, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		field, ok := columnAliases[normalizeHeader(h)]
		if !ok {
			continue
		}
		if _, dup := cols[field]; !dup {
			cols[field] = i
		}
	}
	if _, ok := cols["permit_num"]; !ok {
		return nil, eris.New("feed: header has no permit number column")
	}
	return &Decoder{cols: cols}, nil
}

// Columns returns the permit fields the header provides.
func (d *Decoder) Columns() []string {
	out := make([]string, 0, len(d.cols))
	for f := range d.cols {
		out = append(out, f)
	}
	return out
}

// Decode converts one row into a permit.
func (d *Decoder) Decode(row []string) (model.Permit, error) {
	p := model.Permit{
		PermitNum:     d.get(row, "permit_num"),
		RevisionNum:   d.get(row, "revision_num"),
		Work:          d.get(row, "work"),
		PermitType:    d.get(row, "permit_type"),
		Description:   d.get(row, "description"),
		StructureType: d.get(row, "structure_type"),
		CurrentUse:    d.get(row, "current_use"),
		ProposedUse:   d.get(row, "proposed_use"),
		Status:        d.get(row, "status"),
	}
	if p.PermitNum == "" {
		return p, eris.New("feed: missing permit number")
	}

	var err error
	if p.Storeys, err = parseCount(d.get(row, "storeys")); err != nil {
		return p, eris.Wrapf(err, "feed: %s storeys", p.Key())
	}
	if p.HousingUnits, err = parseCount(d.get(row, "housing_units")); err != nil {
		return p, eris.Wrapf(err, "feed: %s housing units", p.Key())
	}
	if p.EstConstCost, err = parseCost(d.get(row, "est_const_cost")); err != nil {
		return p, eris.Wrapf(err, "feed: %s cost", p.Key())
	}
	if p.IssuedDate, err = parseDate(d.get(row, "issued_date")); err != nil {
		return p, eris.Wrapf(err, "feed: %s issued date", p.Key())
	}
	return p, nil
}

func (d *Decoder) get(row []string, field string) string {
	i, ok := d.cols[field]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "_", "-", "_", ".", "").Replace(h)
}

// parseCount accepts integers and spreadsheet floats such as "3.0".
func parseCount(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, eris.Errorf("not a number: %q", s)
	}
	return int(f), nil
}

func parseCost(s string) (*float64, error) {
	s = strings.NewReplacer("$", "", ",", "").Replace(s)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, eris.Errorf("not a number: %q", s)
	}
	return &f, nil
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d, nil
		}
	}
	return nil, eris.Errorf("unrecognized date: %q", s)
}
