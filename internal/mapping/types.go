package mapping

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Hsbtqemy/Mapala/internal/engine"
)

// Mapping modes.
const (
	ModeSimple = "simple"
	ModeConcat = "concat"
)

// FieldMapping associates one template field with either a source column or
// a concat rule. Target carries the field's technical label; ColIndex is the
// fallback used when the label cannot be found on the target row.
type FieldMapping struct {
	Target       string             `json:"target"`
	ColIndex     int                `json:"col_index"`
	Mode         string             `json:"mode"`
	SourceColumn string             `json:"source_column,omitempty"`
	Concat       *engine.ConcatRule `json:"concat,omitempty"`
}

// File holds all field mappings persisted between sessions
type File struct {
	Mappings []FieldMapping `json:"mappings"`
}

// SaveToFile saves the mapping file as indented JSON
func (f *File) SaveToFile(path string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// LoadFromFile loads a mapping file from JSON
func LoadFromFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	err = json.Unmarshal(data, &f)
	if err != nil {
		return nil, err
	}

	return &f, nil
}

// Find returns the mapping for a field, matching the target label first and
// falling back to the column index, mirroring how Apply resolves entries. The
// fallback keeps an entry attached to its field after a label rename.
func (f *File) Find(target string, colIndex int) (FieldMapping, bool) {
	for _, m := range f.Mappings {
		if target != "" && m.Target == target {
			return m, true
		}
	}
	for _, m := range f.Mappings {
		if m.ColIndex == colIndex {
			return m, true
		}
	}
	return FieldMapping{}, false
}

// Set adds or replaces the mapping for the field identified by the entry's
// target label (or column index when the label is empty).
func (f *File) Set(entry FieldMapping) {
	for i, m := range f.Mappings {
		if entry.Target != "" && m.Target == entry.Target {
			f.Mappings[i] = entry
			return
		}
		if entry.Target == "" && m.Target == "" && m.ColIndex == entry.ColIndex {
			f.Mappings[i] = entry
			return
		}
	}
	f.Mappings = append(f.Mappings, entry)
}

// Remove drops the mapping for a field.
func (f *File) Remove(target string, colIndex int) {
	kept := f.Mappings[:0]
	for _, m := range f.Mappings {
		if target != "" && m.Target == target {
			continue
		}
		if target == "" && m.Target == "" && m.ColIndex == colIndex {
			continue
		}
		kept = append(kept, m)
	}
	f.Mappings = kept
}

// Apply assigns every resolvable mapping to the engine. Mappings whose field
// cannot be located on the template, or whose concat rule is invalid, are
// skipped and reported.
func (f *File) Apply(eng *engine.Engine) (applied int, skipped []string) {
	tmpl := eng.Template()
	src := eng.Source()

	for _, m := range f.Mappings {
		field, ok := tmpl.FieldByName(m.Target)
		if !ok {
			field, ok = tmpl.FieldAt(m.ColIndex)
		}
		if !ok {
			skipped = append(skipped, fmt.Sprintf("field %q not found in template", m.Target))
			continue
		}

		switch m.Mode {
		case ModeConcat:
			if m.Concat == nil {
				skipped = append(skipped, fmt.Sprintf("field %q: concat mapping without rule", field.Name))
				continue
			}
			if err := eng.SetConcatMapping(field, *m.Concat); err != nil {
				skipped = append(skipped, err.Error())
				continue
			}
		case ModeSimple:
			// Unknown column names degrade to empty values at evaluation.
			col, _ := src.ColumnByName(m.SourceColumn)
			eng.SetMapping(field, col)
		default:
			skipped = append(skipped, fmt.Sprintf("field %q: unknown mapping mode %q", field.Name, m.Mode))
			continue
		}
		applied++
	}
	return applied, skipped
}
