// Package tabular reads and writes the spreadsheet formats Mapala works
// with: .xlsx through excelize and .csv through encoding/csv with delimiter
// sniffing. Cell values are plain strings; interpretation belongs to the
// mapping engine.
package tabular

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CSVSheetName is the pseudo sheet name reported for CSV files, which have
// no sheet structure of their own.
const CSVSheetName = "(data)"

// WriteOptions controls output serialization.
type WriteOptions struct {
	SheetName    string
	CSVSeparator rune
}

func extOf(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// ListSheets returns the sheet names of a workbook. CSV files expose a
// single pseudo-sheet.
func ListSheets(path string) ([]string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	switch extOf(path) {
	case ".csv":
		return []string{CSVSheetName}, nil
	case ".xlsx":
		wb, err := OpenWorkbook(path)
		if err != nil {
			return nil, err
		}
		defer wb.Close()
		return wb.SheetNames(), nil
	default:
		return nil, fmt.Errorf("unsupported file format %q (supported: .xlsx, .csv)", extOf(path))
	}
}

// ReadSheet returns all rows of one sheet as raw strings. For CSV files the
// sheet argument is ignored.
func ReadSheet(path, sheet string) ([][]string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	switch extOf(path) {
	case ".csv":
		return readCSV(path)
	case ".xlsx":
		wb, err := OpenWorkbook(path)
		if err != nil {
			return nil, err
		}
		defer wb.Close()
		return wb.Rows(sheet)
	default:
		return nil, fmt.Errorf("unsupported file format %q (supported: .xlsx, .csv)", extOf(path))
	}
}

// WriteTable serializes rows to the format implied by the path extension.
func WriteTable(path string, rows [][]string, opts WriteOptions) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %v", err)
		}
	}
	switch extOf(path) {
	case ".csv":
		return writeCSV(path, rows, opts.CSVSeparator)
	case ".xlsx":
		return writeXLSX(path, opts.SheetName, rows)
	default:
		return fmt.Errorf("unsupported output format %q (supported: .xlsx, .csv)", extOf(path))
	}
}
