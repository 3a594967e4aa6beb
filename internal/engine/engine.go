// Package engine implements the mapping and concatenation engine: given a
// template's fields, a source's columns and a set of field mappings, it
// evaluates source rows into export rows. Evaluation is total; missing or
// out-of-bounds data degrades to empty values instead of failing.
package engine

import (
	"iter"
	"strings"
)

type mappingMode int

const (
	modeSimple mappingMode = iota
	modeConcat
)

type fieldMapping struct {
	mode   mappingMode
	column SourceColumn
	rule   ConcatRule
}

// Engine holds the field mapping table for one template/source pair.
// It is exercised from one interactive session at a time; no locking.
type Engine struct {
	template *Template
	source   *Source
	mappings map[int]fieldMapping
}

// New creates an engine with no mappings assigned.
func New(template *Template, source *Source) *Engine {
	return &Engine{
		template: template,
		source:   source,
		mappings: make(map[int]fieldMapping),
	}
}

// Template returns the bound template.
func (e *Engine) Template() *Template {
	return e.template
}

// Source returns the bound source.
func (e *Engine) Source() *Source {
	return e.source
}

// SetMapping assigns a direct 1:1 mapping, replacing any prior mapping
// (simple or concat) for the field.
func (e *Engine) SetMapping(field TemplateField, column SourceColumn) {
	e.mappings[field.Index] = fieldMapping{mode: modeSimple, column: column}
}

// SetConcatMapping assigns a concat mapping. An invalid rule is rejected
// with InvalidRuleError and the field's prior mapping is left untouched.
func (e *Engine) SetConcatMapping(field TemplateField, rule ConcatRule) error {
	if err := rule.Validate(field.Name); err != nil {
		return err
	}
	e.mappings[field.Index] = fieldMapping{mode: modeConcat, rule: rule}
	return nil
}

// ClearMapping removes the field's mapping; its exported value becomes empty.
func (e *Engine) ClearMapping(field TemplateField) {
	delete(e.mappings, field.Index)
}

// HasMapping reports whether the field currently has a mapping.
func (e *Engine) HasMapping(field TemplateField) bool {
	_, ok := e.mappings[field.Index]
	return ok
}

// EvaluateRow resolves every field's mapping against one source row.
func (e *Engine) EvaluateRow(sourceRow []string) ExportRow {
	out := make(ExportRow, len(e.template.fields))
	for i := range e.template.fields {
		m, ok := e.mappings[i]
		if !ok {
			continue
		}
		switch m.mode {
		case modeSimple:
			out[i] = cellAt(sourceRow, m.column.Index)
		case modeConcat:
			out[i] = e.evalConcat(sourceRow, m.rule)
		}
	}
	return out
}

// EvaluateAll evaluates every source row in order. The sequence is lazy and
// restartable: each range over it replays the rows from the start.
func (e *Engine) EvaluateAll(sourceRows [][]string) iter.Seq[ExportRow] {
	return func(yield func(ExportRow) bool) {
		for _, row := range sourceRows {
			if !yield(e.EvaluateRow(row)) {
				return
			}
		}
	}
}

func (e *Engine) evalConcat(sourceRow []string, rule ConcatRule) string {
	var parts []string
	for _, src := range rule.Sources {
		col, _ := e.source.ColumnByName(src.Column)
		text := cellAt(sourceRow, col.Index)
		if rule.SkipEmpty && strings.TrimSpace(text) == "" {
			continue
		}
		parts = append(parts, src.Prefix+text)
	}
	if rule.Dedupe {
		parts = dedupeKeepOrder(parts)
	}
	return strings.Join(parts, NormalizeSeparator(rule.Separator))
}

// dedupeKeepOrder removes repeated tokens globally, keeping the first
// occurrence in place.
func dedupeKeepOrder(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
