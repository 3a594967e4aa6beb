// Package export ties the pieces together: it loads the template and source
// workbooks, applies the saved field mappings and writes the evaluated rows
// out in the template's shape.
package export

import (
	"fmt"
	"strings"

	"github.com/Hsbtqemy/Mapala/internal/config"
	"github.com/Hsbtqemy/Mapala/internal/engine"
	"github.com/Hsbtqemy/Mapala/internal/logger"
	"github.com/Hsbtqemy/Mapala/internal/mapping"
	"github.com/Hsbtqemy/Mapala/internal/tabular"
)

// Workset is a template/source pair loaded per the configuration.
type Workset struct {
	Template *engine.Template
	Source   *engine.Source
}

// LoadWorkset reads the configured template and source sheets.
func LoadWorkset(cfg *config.Config) (*Workset, error) {
	if cfg.Template.File == "" {
		return nil, fmt.Errorf("no template file configured")
	}
	if cfg.Source.File == "" {
		return nil, fmt.Errorf("no source file configured")
	}

	templateRows, err := tabular.ReadSheet(cfg.Template.File, cfg.Template.Sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %v", err)
	}
	tmpl, err := engine.NewTemplate(templateRows, cfg.Template.TargetRow, cfg.Template.LabelRows)
	if err != nil {
		return nil, fmt.Errorf("invalid template: %v", err)
	}

	sourceRows, err := tabular.ReadSheet(cfg.Source.File, cfg.Source.Sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %v", err)
	}
	src, err := engine.NewSource(sourceRows, cfg.Source.HeaderRow)
	if err != nil {
		return nil, fmt.Errorf("invalid source: %v", err)
	}

	logger.Info("Loaded workset",
		"template", cfg.Template.File,
		"fields", len(tmpl.Fields()),
		"source", cfg.Source.File,
		"columns", len(src.Columns()),
		"rows", len(src.Rows()))

	return &Workset{Template: tmpl, Source: src}, nil
}

// BuildEngine creates an engine for the workset with the saved mappings
// applied. Mappings that no longer resolve are reported, not fatal.
func BuildEngine(ws *Workset, mappingFile string) (*engine.Engine, error) {
	mf, err := mapping.LoadFromFile(mappingFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load mappings from %s: %v", mappingFile, err)
	}

	eng := engine.New(ws.Template, ws.Source)
	applied, skipped := mf.Apply(eng)

	logger.Info("Applied field mappings", "file", mappingFile, "applied", applied, "skipped", len(skipped))
	for _, reason := range skipped {
		logger.Warn("Skipped mapping", "reason", reason)
		fmt.Printf("⚠️  skipped mapping: %s\n", reason)
	}
	if applied == 0 {
		return nil, fmt.Errorf("no mappings from %s apply to this template and source", mappingFile)
	}

	return eng, nil
}

// BuildTable evaluates every source row and returns the full output table:
// the template's header block followed by one row per source row.
func BuildTable(eng *engine.Engine) [][]string {
	tmpl := eng.Template()

	rows := make([][]string, 0, len(tmpl.HeaderRows())+len(eng.Source().Rows()))
	for _, header := range tmpl.HeaderRows() {
		rows = append(rows, header)
	}
	for out := range eng.EvaluateAll(eng.Source().Rows()) {
		rows = append(rows, out)
	}
	return rows
}

// dropEmptyColumns removes columns whose data cells are all blank. Header
// block rows do not count; a column with only a title is still empty.
func dropEmptyColumns(rows [][]string, headerHeight int) [][]string {
	if len(rows) == 0 {
		return rows
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	keep := make([]bool, width)
	for _, row := range rows[headerHeight:] {
		for i, cell := range row {
			if strings.TrimSpace(cell) != "" {
				keep[i] = true
			}
		}
	}

	out := make([][]string, len(rows))
	for r, row := range rows {
		var slim []string
		for i := 0; i < width; i++ {
			if !keep[i] {
				continue
			}
			if i < len(row) {
				slim = append(slim, row[i])
			} else {
				slim = append(slim, "")
			}
		}
		out[r] = slim
	}
	return out
}

// Run executes the full export: load, map, evaluate, write. outputPath
// overrides the configured output file when non-empty.
func Run(cfg *config.Config, outputPath string) error {
	ws, err := LoadWorkset(cfg)
	if err != nil {
		return err
	}

	eng, err := BuildEngine(ws, cfg.Mapping.File)
	if err != nil {
		return err
	}

	rows := BuildTable(eng)
	if cfg.Output.DropEmptyColumns {
		rows = dropEmptyColumns(rows, len(ws.Template.HeaderRows()))
	}

	if outputPath == "" {
		outputPath = cfg.Output.File
	}

	sep := ';'
	if cfg.Output.CSVSeparator != "" {
		sep = []rune(cfg.Output.CSVSeparator)[0]
	}
	err = tabular.WriteTable(outputPath, rows, tabular.WriteOptions{
		SheetName:    cfg.Output.SheetName,
		CSVSeparator: sep,
	})
	if err != nil {
		return fmt.Errorf("failed to write output: %v", err)
	}

	dataRows := len(rows) - len(ws.Template.HeaderRows())
	logger.Info("Export complete", "output", outputPath, "rows", dataRows)
	fmt.Printf("✓ Exported %d rows to: %s\n", dataRows, outputPath)
	return nil
}

// Preview prints the first n evaluated rows as an aligned text table.
func Preview(cfg *config.Config, n int) error {
	ws, err := LoadWorkset(cfg)
	if err != nil {
		return err
	}

	eng, err := BuildEngine(ws, cfg.Mapping.File)
	if err != nil {
		return err
	}

	fields := ws.Template.Fields()
	header := make([]string, len(fields))
	for i, f := range fields {
		header[i] = f.Name
	}

	preview := [][]string{header}
	count := 0
	for row := range eng.EvaluateAll(ws.Source.Rows()) {
		preview = append(preview, row)
		count++
		if count >= n {
			break
		}
	}

	printTable(preview)
	fmt.Printf("\n(%d of %d rows)\n", count, len(ws.Source.Rows()))
	return nil
}

const previewCellWidth = 24

func printTable(rows [][]string) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, 0)
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			w := len([]rune(cell))
			if w > previewCellWidth {
				w = previewCellWidth
			}
			if w > widths[i] {
				widths[i] = w
			}
		}
	}

	for r, row := range rows {
		var b strings.Builder
		for i, w := range widths {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			runes := []rune(cell)
			if len(runes) > previewCellWidth {
				cell = string(runes[:previewCellWidth-3]) + "..."
			}
			b.WriteString(fmt.Sprintf("%-*s", w, cell))
			if i < len(widths)-1 {
				b.WriteString(" | ")
			}
		}
		fmt.Println(b.String())
		if r == 0 {
			var sep strings.Builder
			for i, w := range widths {
				sep.WriteString(strings.Repeat("-", w))
				if i < len(widths)-1 {
					sep.WriteString("-+-")
				}
			}
			fmt.Println(sep.String())
		}
	}
}
