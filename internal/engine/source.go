package engine

import (
	"fmt"
	"strings"
)

// Source holds the columns and data rows parsed from a source sheet.
type Source struct {
	columns []SourceColumn
	byName  map[string]int
	rows    [][]string
}

// NewSource parses raw source rows. headerRow is the 1-based row holding the
// column names; everything below it is data.
func NewSource(rows [][]string, headerRow int) (*Source, error) {
	if headerRow < 1 {
		return nil, fmt.Errorf("header row must be >= 1, got %d", headerRow)
	}
	if headerRow > len(rows) {
		return nil, fmt.Errorf("header row %d is beyond the source (%d rows)", headerRow, len(rows))
	}

	header := rows[headerRow-1]
	columns := make([]SourceColumn, len(header))
	byName := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		columns[i] = SourceColumn{Index: i, Name: name}
		if name != "" {
			if _, dup := byName[name]; !dup {
				byName[name] = i
			}
		}
	}

	return &Source{
		columns: columns,
		byName:  byName,
		rows:    rows[headerRow:],
	}, nil
}

// Columns returns the source columns in file order.
func (s *Source) Columns() []SourceColumn {
	return s.columns
}

// Rows returns the data rows, header excluded.
func (s *Source) Rows() [][]string {
	return s.rows
}

// ColumnByName looks a column up by its header name. Duplicated names
// resolve to the leftmost occurrence.
func (s *Source) ColumnByName(name string) (SourceColumn, bool) {
	idx, ok := s.byName[strings.TrimSpace(name)]
	if !ok {
		return SourceColumn{Index: -1, Name: name}, false
	}
	return s.columns[idx], true
}
