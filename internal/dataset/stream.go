package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/sells-group/ads-report/internal/model"
)

// ErrNoHeader is returned when the input has no header row.
var ErrNoHeader = eris.New("dataset: csv has no header row")

// CSVOptions configures the CSV reader.
type CSVOptions struct {
	Delimiter  rune // default ','
	Comment    rune // comment character (0 = none)
	LazyQuotes bool
}

// Scan reads r row by row in file order. onHeader is called once with the
// first row; a non-nil error from it stops the scan before any data row is
// read. onRow is called for every following row and must not retain the slice,
// which is reused between calls. A leading UTF-8 or UTF-16 BOM is removed.
//
// A data row the CSV reader cannot tokenize (for example a stray quote) is
// skipped and counted in the returned malformed total; reading resumes at the
// next record. A malformed header and any I/O error stop the scan.
func Scan(ctx context.Context, r io.Reader, opts CSVOptions, onHeader func([]string) error, onRow func([]string) error) (malformed int, err error) {
	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(transform.Nop)))
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	if opts.Comment != 0 {
		reader.Comment = opts.Comment
	}
	reader.LazyQuotes = opts.LazyQuotes
	reader.FieldsPerRecord = -1 // allow variable fields
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return 0, ErrNoHeader
	}
	if err != nil {
		return 0, eris.Wrap(err, "dataset: read header")
	}
	if err := onHeader(append([]string(nil), header...)); err != nil {
		return 0, err
	}

	for {
		if ctx.Err() != nil {
			return malformed, eris.Wrap(ctx.Err(), "dataset: context cancelled")
		}

		record, err := reader.Read()
		if err == io.EOF {
			return malformed, nil
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			malformed++
			continue
		}
		if err != nil {
			return malformed, eris.Wrap(err, "dataset: read row")
		}
		if err := onRow(record); err != nil {
			return malformed, err
		}
	}
}

// Source describes how to read one dataset file.
type Source struct {
	Columns Columns
	Labels  model.LabelSet
	CSV     CSVOptions
}

// Load resolves the schema from the header of path and folds every valid row
// into fn in file order. Skipped rows are only counted.
func Load(ctx context.Context, path string, src Source, fn func(model.ClassifiedRecord)) (ParseStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return ParseStats{}, eris.Wrap(err, "dataset: open csv")
	}
	defer f.Close()

	var parser *Parser
	malformed, err := Scan(ctx, f, src.CSV,
		func(header []string) error {
			schema, err := ResolveSchema(header, src.Columns)
			if err != nil {
				return err
			}
			parser = NewParser(schema, src.Labels)
			return nil
		},
		func(row []string) error {
			if rec, outcome := parser.Parse(row); outcome == RowOK {
				fn(rec)
			}
			return nil
		},
	)
	if parser == nil {
		return ParseStats{}, err
	}
	stats := parser.Stats()
	stats.MalformedRows = malformed
	return stats, err
}
