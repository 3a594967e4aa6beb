package engine

import (
	"fmt"
)

// Template holds the fields parsed from a template sheet. Fields are read
// from the target row; header rows (everything up to and including the
// deepest header row) are kept so exports can reproduce them above the data.
type Template struct {
	fields     []TemplateField
	headerRows [][]string
	width      int
}

// NewTemplate parses raw template rows. targetRow is the 1-based row holding
// the technical field labels; labelRows are optional extra 1-based header
// rows whose values annotate each field.
func NewTemplate(rows [][]string, targetRow int, labelRows []int) (*Template, error) {
	if targetRow < 1 {
		return nil, fmt.Errorf("target row must be >= 1, got %d", targetRow)
	}
	if targetRow > len(rows) {
		return nil, fmt.Errorf("target row %d is beyond the template (%d rows)", targetRow, len(rows))
	}
	for _, lr := range labelRows {
		if lr < 1 || lr > len(rows) {
			return nil, fmt.Errorf("label row %d is beyond the template (%d rows)", lr, len(rows))
		}
	}

	headerEnd := targetRow
	for _, lr := range labelRows {
		if lr > headerEnd {
			headerEnd = lr
		}
	}

	width := 0
	for _, row := range rows[:headerEnd] {
		if len(row) > width {
			width = len(row)
		}
	}
	if width == 0 {
		return nil, fmt.Errorf("template has no columns on rows 1-%d", headerEnd)
	}

	target := rows[targetRow-1]
	fields := make([]TemplateField, width)
	for i := 0; i < width; i++ {
		fields[i] = TemplateField{Index: i, Name: cellAt(target, i)}
		for _, lr := range labelRows {
			fields[i].Labels = append(fields[i].Labels, cellAt(rows[lr-1], i))
		}
	}

	header := make([][]string, headerEnd)
	for i := 0; i < headerEnd; i++ {
		header[i] = normalizeRow(rows[i], width)
	}

	return &Template{fields: fields, headerRows: header, width: width}, nil
}

// Fields returns the template fields in column order.
func (t *Template) Fields() []TemplateField {
	return t.fields
}

// Width returns the number of template columns.
func (t *Template) Width() int {
	return t.width
}

// HeaderRows returns the template's header block, each row normalized to the
// template width. Exports emit these rows above the data.
func (t *Template) HeaderRows() [][]string {
	return t.headerRows
}

// FieldByName returns the first field whose technical label matches name.
func (t *Template) FieldByName(name string) (TemplateField, bool) {
	if name == "" {
		return TemplateField{}, false
	}
	for _, f := range t.fields {
		if f.Name == name {
			return f, true
		}
	}
	return TemplateField{}, false
}

// FieldAt returns the field at the given zero-based column index.
func (t *Template) FieldAt(index int) (TemplateField, bool) {
	if index < 0 || index >= len(t.fields) {
		return TemplateField{}, false
	}
	return t.fields[index], true
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func normalizeRow(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}
