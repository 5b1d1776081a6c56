package feed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/permit-cli/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

const sampleCSV = `PERMIT_NUM,REVISION_NUM,PERMIT_TYPE,STRUCTURE_TYPE,WORK,STATUS,DESCRIPTION,EST_CONST_COST,ISSUED_DATE,STOREYS,DWELLING_UNITS_CREATED,UNUSED
24 101234 BLD,00,Small Residential Projects,SFD - Detached,Interior Alterations,Permit Issued,"Underpin basement, new washroom","$125,000",2026-03-02,2,0,x
24 101234 PLB,00,Plumbing(PS),SFD - Detached,Interior Alterations,Inspection,,,03/05/2026,,,x
,00,Small Residential Projects,,New Building,Permit Issued,missing number,,,,,x
24 555555 BLD,01,New Houses,SFD - Detached,New Building,Permit Issued,new house,not-a-cost,,,,x
`

func collect() (Sink, *[][]model.Permit) {
	var batches [][]model.Permit
	return func(_ context.Context, permits []model.Permit) error {
		batches = append(batches, append([]model.Permit(nil), permits...))
		return nil
	}, &batches
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDecoder_Decode(t *testing.T) {
	dec, err := NewDecoder([]string{"\ufeffPermit Num", "Revision", "Est. Const. Cost", "Issue Date", "Stories", "Description"})
	require.NoError(t, err)

	p, err := dec.Decode([]string{" 24 1 BLD ", "01", "1,500.50", "2026-01-15T00:00:00", "3.0", "deck"})
	require.NoError(t, err)
	assert.Equal(t, "24 1 BLD", p.PermitNum)
	assert.Equal(t, "01", p.RevisionNum)
	require.NotNil(t, p.EstConstCost)
	assert.InDelta(t, 1500.50, *p.EstConstCost, 1e-9)
	require.NotNil(t, p.IssuedDate)
	assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), *p.IssuedDate)
	assert.Equal(t, 3, p.Storeys)
	assert.Equal(t, "deck", p.Description)
}

func TestDecoder_ShortRow(t *testing.T) {
	dec, err := NewDecoder([]string{"permit_num", "revision_num", "status"})
	require.NoError(t, err)

	p, err := dec.Decode([]string{"24 1 BLD"})
	require.NoError(t, err)
	assert.Equal(t, "", p.Status)
	assert.Nil(t, p.IssuedDate)
	assert.Nil(t, p.EstConstCost)
}

func TestNewDecoder_RequiresPermitNum(t *testing.T) {
	_, err := NewDecoder([]string{"revision_num", "status"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permit number")
}

func TestDecoder_Errors(t *testing.T) {
	dec, err := NewDecoder([]string{"permit_num", "storeys", "est_const_cost", "issued_date"})
	require.NoError(t, err)

	tests := []struct {
		name string
		row  []string
		want string
	}{
		{"missing number", []string{"", "", "", ""}, "missing permit number"},
		{"bad storeys", []string{"1", "two", "", ""}, "storeys"},
		{"bad cost", []string{"1", "", "lots", ""}, "cost"},
		{"bad date", []string{"1", "", "", "yesterday"}, "issued date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := dec.Decode(tt.row)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFile_CSV(t *testing.T) {
	path := writeFile(t, "permits.csv", sampleCSV)
	sink, batches := collect()

	stats, err := LoadFile(context.Background(), path, Options{BatchSize: 1}, sink)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Rows)
	assert.Equal(t, 2, stats.Loaded)
	assert.Equal(t, 2, stats.Skipped)
	assert.Equal(t, 2, stats.Batches)
	require.Len(t, *batches, 2)

	bld := (*batches)[0][0]
	assert.Equal(t, "24 101234 BLD", bld.PermitNum)
	assert.Equal(t, "Underpin basement, new washroom", bld.Description)
	assert.Equal(t, 2, bld.Storeys)
	require.NotNil(t, bld.EstConstCost)
	assert.InDelta(t, 125000.0, *bld.EstConstCost, 1e-9)

	plb := (*batches)[1][0]
	require.NotNil(t, plb.IssuedDate)
	assert.Equal(t, time.March, plb.IssuedDate.Month())
	assert.Equal(t, 5, plb.IssuedDate.Day())
}

func TestLoadFile_TSV(t *testing.T) {
	body := strings.ReplaceAll("permit_num,revision_num,status\n24 1 BLD,00,Permit Issued\n", ",", "\t")
	path := writeFile(t, "permits.tsv", body)
	sink, batches := collect()

	stats, err := LoadFile(context.Background(), path, Options{}, sink)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Loaded)
	assert.Equal(t, "Permit Issued", (*batches)[0][0].Status)
}

func TestLoadFile_XLSX(t *testing.T) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Permits")
	require.NoError(t, err)
	for _, rowData := range [][]string{
		{"permit_num", "revision_num", "work", "storeys"},
		{"24 1 BLD", "00", "New Building", "3"},
		{"", "", "", ""},
		{"24 2 BLD", "00", "Demolition", ""},
	} {
		row := sheet.AddRow()
		for _, v := range rowData {
			row.AddCell().SetString(v)
		}
	}
	path := filepath.Join(t.TempDir(), "permits.xlsx")
	require.NoError(t, f.Save(path))

	sink, batches := collect()
	stats, err := LoadFile(context.Background(), path, Options{Sheet: "Permits"}, sink)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Rows, "blank rows are not counted")
	assert.Equal(t, 2, stats.Loaded)
	require.Len(t, *batches, 1)
	assert.Equal(t, 3, (*batches)[0][0].Storeys)
	assert.Equal(t, "Demolition", (*batches)[0][1].Work)
}

func TestLoadFile_MissingSheet(t *testing.T) {
	f := xlsx.NewFile()
	_, err := f.AddSheet("Sheet1")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "permits.xlsx")
	require.NoError(t, f.Save(path))

	sink, _ := collect()
	_, err = LoadFile(context.Background(), path, Options{Sheet: "Nope"}, sink)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoadFile_UnsupportedType(t *testing.T) {
	sink, _ := collect()
	_, err := LoadFile(context.Background(), "permits.json", Options{}, sink)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestLoadFile_Empty(t *testing.T) {
	path := writeFile(t, "empty.csv", "")
	sink, _ := collect()
	_, err := LoadFile(context.Background(), path, Options{}, sink)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty input")
}

func TestLoadFile_SinkError(t *testing.T) {
	path := writeFile(t, "permits.csv", sampleCSV)
	boom := errors.New("db down")

	stats, err := LoadFile(context.Background(), path, Options{BatchSize: 1}, func(context.Context, []model.Permit) error {
		return boom
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, stats.Loaded)
}

func TestStreamCSV_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rows, errs := StreamCSV(ctx, strings.NewReader("a,b\n1,2\n"), CSVOptions{})
	for range rows {
	}
	err := <-errs
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cancelled")
}
