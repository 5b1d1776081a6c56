// Package export writes trade leads to CSV or XLSX.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/permit-cli/internal/store"
)

// Format is an export file format.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// SheetName is the worksheet XLSX exports write to.
const SheetName = "Leads"

// Header is the column order of every export.
var Header = []string{
	"permit_num", "revision_num", "trade_slug", "trade_name", "lead_score",
	"tier", "confidence", "phase", "is_active", "status", "issued_date",
	"est_const_cost", "work", "permit_type", "description",
}

// Write encodes leads to w in the given format.
func Write(w io.Writer, format Format, leads []store.Lead) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, leads)
	case FormatXLSX:
		return WriteXLSX(w, leads)
	default:
		return eris.Errorf("export: unsupported format %q", format)
	}
}

// WriteCSV writes a header row followed by one row per lead.
func WriteCSV(w io.Writer, leads []store.Lead) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, l := range leads {
		if err := cw.Write(Record(l)); err != nil {
			return eris.Wrapf(err, "export: write csv row %s", l.Match.Key)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

// WriteXLSX writes leads to a single worksheet. Numeric columns are stored as
// numbers so the sheet sorts and filters correctly.
func WriteXLSX(w io.Writer, leads []store.Lead) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	row := sheet.AddRow()
	for _, h := range Header {
		row.AddCell().SetString(h)
	}

	for _, l := range leads {
		rec := Record(l)
		row := sheet.AddRow()
		for i, v := range rec {
			cell := row.AddCell()
			switch Header[i] {
			case "lead_score":
				cell.SetInt(l.Match.LeadScore)
			case "tier":
				cell.SetInt(int(l.Match.Tier))
			case "confidence":
				cell.SetFloat(l.Match.Confidence)
			case "est_const_cost":
				if l.Permit.EstConstCost != nil {
					cell.SetFloat(*l.Permit.EstConstCost)
				}
			default:
				cell.SetString(v)
			}
		}
	}

	return eris.Wrap(f.Write(w), "export: write xlsx")
}

// Record renders a lead as strings in Header order.
func Record(l store.Lead) []string {
	issued := ""
	if l.Permit.IssuedDate != nil {
		issued = l.Permit.IssuedDate.Format("2006-01-02")
	}
	cost := ""
	if l.Permit.EstConstCost != nil {
		cost = strconv.FormatFloat(*l.Permit.EstConstCost, 'f', 2, 64)
	}
	return []string{
		l.Permit.PermitNum,
		l.Permit.RevisionNum,
		l.Match.TradeSlug,
		l.Match.TradeName,
		strconv.Itoa(l.Match.LeadScore),
		strconv.Itoa(int(l.Match.Tier)),
		strconv.FormatFloat(l.Match.Confidence, 'f', 2, 64),
		string(l.Match.Phase),
		strconv.FormatBool(l.Match.IsActive),
		l.Permit.Status,
		issued,
		cost,
		l.Permit.Work,
		l.Permit.PermitType,
		l.Permit.Description,
	}
}
