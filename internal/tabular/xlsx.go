package tabular

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Workbook wraps an excelize file opened for reading.
type Workbook struct {
	file *excelize.File
	path string
}

// OpenWorkbook opens an existing .xlsx file.
func OpenWorkbook(path string) (*Workbook, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %v", err)
	}
	return &Workbook{file: file, path: path}, nil
}

// SheetNames returns all sheet names in the workbook.
func (w *Workbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// Rows returns all rows of a sheet as strings. An empty sheet name selects
// the first sheet.
func (w *Workbook) Rows(sheet string) ([][]string, error) {
	if sheet == "" {
		sheet = w.file.GetSheetName(0)
	}
	rows, err := w.file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows from sheet %q: %v", sheet, err)
	}
	return rows, nil
}

// Close closes the underlying file.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// writeXLSX writes rows to a new .xlsx file with a single named sheet.
func writeXLSX(path, sheetName string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	// Sheet names are capped at 31 characters.
	if sheetName == "" {
		sheetName = "Output"
	}
	if len(sheetName) > 31 {
		sheetName = sheetName[:31]
	}

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return fmt.Errorf("failed to set sheet name: %v", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %v", i+1, err)
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %v", i+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save file: %v", err)
	}
	return nil
}
