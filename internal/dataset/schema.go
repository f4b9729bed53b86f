// Package dataset resolves the header of a classified-URL CSV and turns its
// rows into typed records.
package dataset

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Field is a logical column required by the pipeline.
type Field string

const (
	FieldActual    Field = "actual"
	FieldPredicted Field = "predicted"
	FieldLength    Field = "length"
	FieldIP        Field = "ip"
	FieldDots      Field = "dots"
)

// RequiredFields is the resolution order; SchemaError lists missing fields in
// this order.
var RequiredFields = []Field{FieldActual, FieldPredicted, FieldLength, FieldIP, FieldDots}

// Columns maps each logical field to the header name expected in the file.
type Columns struct {
	Actual    string
	Predicted string
	Length    string
	IP        string
	Dots      string
}

// DefaultColumns returns the header names used by the phishing datasets.
func DefaultColumns() Columns {
	return Columns{
		Actual:    "status",
		Predicted: "predicted_status",
		Length:    "length_url",
		IP:        "ip",
		Dots:      "nb_dots",
	}
}

// Name returns the header name configured for f.
func (c Columns) Name(f Field) string {
	switch f {
	case FieldActual:
		return c.Actual
	case FieldPredicted:
		return c.Predicted
	case FieldLength:
		return c.Length
	case FieldIP:
		return c.IP
	case FieldDots:
		return c.Dots
	default:
		return ""
	}
}

// Schema maps logical fields to column positions. It is resolved once per run
// and never modified.
type Schema struct {
	index map[Field]int
}

// Index returns the column position of f, or -1 if f is not part of the
// schema.
func (s Schema) Index(f Field) int {
	if i, ok := s.index[f]; ok {
		return i
	}
	return -1
}

// MissingField names a logical field and the header it was expected under.
type MissingField struct {
	Field  Field
	Column string
}

// SchemaError reports every required field that did not resolve.
type SchemaError struct {
	Missing []MissingField
}

func (e *SchemaError) Error() string {
	parts := make([]string, len(e.Missing))
	for i, m := range e.Missing {
		parts[i] = fmt.Sprintf("%q (%s)", m.Column, m.Field)
	}
	return "dataset: required columns not found in header: " + strings.Join(parts, ", ")
}

// Columns returns the missing header names.
func (e *SchemaError) Columns() []string {
	out := make([]string, len(e.Missing))
	for i, m := range e.Missing {
		out[i] = m.Column
	}
	return out
}

// ResolveSchema matches the configured column names against header, ignoring
// case and surrounding whitespace. The first matching column wins.
func ResolveSchema(header []string, cols Columns) (Schema, error) {
	fold := cases.Fold()
	positions := make(map[string]int, len(header))
	for i, h := range header {
		key := fold.String(strings.TrimSpace(h))
		if _, dup := positions[key]; !dup {
			positions[key] = i
		}
	}

	index := make(map[Field]int, len(RequiredFields))
	var missing []MissingField
	for _, f := range RequiredFields {
		name := cols.Name(f)
		i, ok := positions[fold.String(strings.TrimSpace(name))]
		if name == "" || !ok {
			missing = append(missing, MissingField{Field: f, Column: name})
			continue
		}
		index[f] = i
	}

	if len(missing) > 0 {
		return Schema{}, &SchemaError{Missing: missing}
	}
	return Schema{index: index}, nil
}
