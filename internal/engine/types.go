package engine

import (
	"fmt"
	"strings"
)

// TemplateField is one mappable column of the loaded template. Name is the
// technical label found on the target row; Labels carries the values of the
// extra label rows, in row order.
type TemplateField struct {
	Index  int
	Name   string
	Labels []string
}

// SourceColumn is one column of the loaded source, identified by its header
// cell. An Index of -1 marks a column that does not exist in the source;
// evaluation degrades it to the empty string.
type SourceColumn struct {
	Index int
	Name  string
}

// ConcatSource is one entry of a concat rule: a source column reference and
// an optional literal prefix prepended to the cell value.
type ConcatSource struct {
	Column string `json:"column"`
	Prefix string `json:"prefix,omitempty"`
}

// ConcatRule joins several source columns into one target field value.
// Sources are applied in order. Separator supports the escape sequences
// \n, \t and \r\n written literally.
type ConcatRule struct {
	Sources   []ConcatSource `json:"sources"`
	Separator string         `json:"separator"`
	Dedupe    bool           `json:"dedupe"`
	SkipEmpty bool           `json:"skip_empty"`
}

// ExportRow is one evaluated output row, one value per template field.
type ExportRow []string

// InvalidRuleError reports a concat rule that cannot be assigned.
type InvalidRuleError struct {
	Field  string
	Reason string
}

func (e *InvalidRuleError) Error() string {
	return fmt.Sprintf("invalid concat rule for field %q: %s", e.Field, e.Reason)
}

// Validate checks the rule invariant: at least one source, each naming a
// column. The field name is only used for error reporting.
func (r ConcatRule) Validate(field string) error {
	if len(r.Sources) == 0 {
		return &InvalidRuleError{Field: field, Reason: "needs at least one source column"}
	}
	for i, src := range r.Sources {
		if strings.TrimSpace(src.Column) == "" {
			return &InvalidRuleError{Field: field, Reason: fmt.Sprintf("source %d has no column", i+1)}
		}
	}
	return nil
}

// NormalizeSeparator converts literal escape sequences in a configured
// separator to their control characters. "\r\n" is handled before "\n" so
// CRLF survives intact.
func NormalizeSeparator(sep string) string {
	sep = strings.ReplaceAll(sep, `\r\n`, "\r\n")
	sep = strings.ReplaceAll(sep, `\n`, "\n")
	sep = strings.ReplaceAll(sep, `\t`, "\t")
	return sep
}
