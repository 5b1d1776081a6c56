package feed

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/permit-cli/internal/model"
)

// Stats summarizes one load.
type Stats struct {
	Rows    int `json:"rows"`
	Loaded  int `json:"loaded"`
	Skipped int `json:"skipped"`
	Batches int `json:"batches"`
}

// Sink receives decoded permits in batches.
type Sink func(ctx context.Context, permits []model.Permit) error

// Options configures a load.
type Options struct {
	BatchSize int
	Sheet     string // XLSX worksheet name; defaults to the first sheet
}

// LoadFile streams a .csv, .tsv, or .xlsx extract into sink.
func LoadFile(ctx context.Context, path string, opts Options, sink Sink) (*Stats, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		rows <-chan []string
		errs <-chan error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".tsv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "feed: open %s", path)
		}
		defer f.Close() //nolint:errcheck
		csvOpts := CSVOptions{LazyQuotes: true}
		if ext == ".tsv" {
			csvOpts.Delimiter = '\t'
		}
		rows, errs = StreamCSV(ctx, f, csvOpts)
	case ".xlsx":
		rows, errs = StreamXLSX(ctx, path, XLSXOptions{SheetName: opts.Sheet})
	default:
		return nil, eris.Errorf("feed: unsupported file type %q", ext)
	}

	return Load(ctx, rows, errs, opts, sink)
}

// Load decodes rows, the first of which must be the header, and hands them
// to sink in batches. Rows that fail to decode are logged and skipped.
func Load(ctx context.Context, rows <-chan []string, errs <-chan error, opts Options, sink Sink) (*Stats, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 1000
	}
	log := zap.L().With(zap.String("component", "feed"))

	stats := &Stats{}
	var (
		dec   *Decoder
		batch []model.Permit
		line  int
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := sink(ctx, batch); err != nil {
			return eris.Wrapf(err, "feed: write batch ending at row %d", line)
		}
		stats.Loaded += len(batch)
		stats.Batches++
		batch = make([]model.Permit, 0, opts.BatchSize)
		return nil
	}

	for row := range rows {
		line++
		if dec == nil {
			d, err := NewDecoder(row)
			if err != nil {
				return stats, err
			}
			dec = d
			log.Debug("feed: header decoded", zap.Strings("columns", dec.Columns()))
			continue
		}
		if isBlank(row) {
			continue
		}

		stats.Rows++
		p, err := dec.Decode(row)
		if err != nil {
			stats.Skipped++
			log.Warn("feed: skipping row", zap.Int("row", line), zap.Error(err))
			continue
		}
		batch = append(batch, p)
		if len(batch) >= opts.BatchSize {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}

	if err := <-errs; err != nil {
		return stats, err
	}
	if dec == nil {
		return stats, eris.New("feed: empty input")
	}
	if err := flush(); err != nil {
		return stats, err
	}

	log.Info("feed: load complete",
		zap.Int("rows", stats.Rows),
		zap.Int("loaded", stats.Loaded),
		zap.Int("skipped", stats.Skipped),
	)
	return stats, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}
