package dataset

import (
	"math"
	"strconv"
	"strings"

	"github.com/sells-group/ads-report/internal/model"
)

// RowOutcome classifies how a raw row was handled.
type RowOutcome int

const (
	RowOK RowOutcome = iota
	RowSkippedLabel
)

// ParseStats counts row-level recoveries for diagnostics.
type ParseStats struct {
	Rows          int
	Valid         int
	SkippedLabel  int
	CoercedCells  int
	MalformedRows int // rows the CSV reader could not tokenize; not in Rows
}

// Diagnostics converts the stats to the report view.
func (s ParseStats) Diagnostics() model.Diagnostics {
	return model.Diagnostics{
		Rows:          s.Rows,
		Valid:         s.Valid,
		SkippedLabel:  s.SkippedLabel,
		CoercedCells:  s.CoercedCells,
		MalformedRows: s.MalformedRows,
	}
}

// Parser converts raw rows into records and keeps running stats.
type Parser struct {
	schema Schema
	labels model.LabelSet
	stats  ParseStats
}

// NewParser returns a Parser for a resolved schema.
func NewParser(schema Schema, labels model.LabelSet) *Parser {
	return &Parser{schema: schema, labels: labels}
}

// Stats returns the counts accumulated so far.
func (p *Parser) Stats() ParseStats {
	return p.stats
}

// Parse converts one row. Rows whose labels do not normalize to a known
// variant are skipped; numeric cells that are missing or unparseable become 0.
func (p *Parser) Parse(row []string) (model.ClassifiedRecord, RowOutcome) {
	p.stats.Rows++

	actual, okA := p.labels.Parse(cell(row, p.schema.Index(FieldActual)))
	predicted, okP := p.labels.Parse(cell(row, p.schema.Index(FieldPredicted)))
	if !okA || !okP {
		p.stats.SkippedLabel++
		return model.ClassifiedRecord{}, RowSkippedLabel
	}

	rec := model.ClassifiedRecord{
		Actual:    actual,
		Predicted: predicted,
		Length:    p.number(row, FieldLength),
		IP:        p.number(row, FieldIP),
		Dots:      p.number(row, FieldDots),
	}
	p.stats.Valid++
	return rec, RowOK
}

func (p *Parser) number(row []string, f Field) float64 {
	v, ok := ParseNumber(cell(row, p.schema.Index(f)))
	if !ok {
		p.stats.CoercedCells++
	}
	return v
}

// ParseNumber parses a numeric cell with parse-or-zero semantics. The bool is
// false when the value was coerced to zero.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
