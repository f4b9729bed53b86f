package model

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Label is a ground-truth or predicted class. The zero value is not a valid
// label; rows that cannot be mapped to one of the two variants are skipped.
type Label uint8

const (
	LabelInvalid Label = iota
	// LabelNegative is the benign class, e.g. "legitimate".
	LabelNegative
	// LabelPositive is the class being detected, e.g. "phishing".
	LabelPositive
)

// Labels lists the valid variants in display order.
var Labels = [...]Label{LabelNegative, LabelPositive}

// Valid reports whether l is one of the two known variants.
func (l Label) Valid() bool {
	return l == LabelNegative || l == LabelPositive
}

// Index returns a dense 0/1 index for bucket arrays. Callers must only pass
// valid labels.
func (l Label) Index() int {
	return int(l) - 1
}

// LabelSet maps the literal cell values of a dataset to label variants.
type LabelSet struct {
	Negative string `yaml:"negative" mapstructure:"negative"`
	Positive string `yaml:"positive" mapstructure:"positive"`
}

// DefaultLabelSet returns the literals used by the phishing URL datasets.
func DefaultLabelSet() LabelSet {
	return LabelSet{Negative: "legitimate", Positive: "phishing"}
}

// Parse normalizes a raw cell (trim, lowercase) and maps it to a variant.
func (s LabelSet) Parse(cell string) (Label, bool) {
	v := strings.ToLower(strings.TrimSpace(cell))
	switch v {
	case "":
		return LabelInvalid, false
	case normalize(s.Positive):
		return LabelPositive, true
	case normalize(s.Negative):
		return LabelNegative, true
	default:
		return LabelInvalid, false
	}
}

// Name returns the normalized literal for l.
func (s LabelSet) Name(l Label) string {
	switch l {
	case LabelNegative:
		return normalize(s.Negative)
	case LabelPositive:
		return normalize(s.Positive)
	default:
		return ""
	}
}

// Display returns a title-cased name suitable for chart legends.
func (s LabelSet) Display(l Label) string {
	return cases.Title(language.English).String(s.Name(l))
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
