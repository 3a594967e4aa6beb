package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Hsbtqemy/Mapala/internal/config"
	"github.com/Hsbtqemy/Mapala/internal/engine"
	"github.com/Hsbtqemy/Mapala/internal/mapping"
	"github.com/Hsbtqemy/Mapala/internal/tabular"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFixtureXLSX(t *testing.T, path, sheet string, rows [][]string) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		require.NoError(t, f.SetSheetRow(sheet, cell, &cells))
	}
	require.NoError(t, f.SaveAs(path))
}

func fixtureConfig(t *testing.T) (*config.Config, string) {
	t.Helper()
	dir := t.TempDir()

	templatePath := filepath.Join(dir, "template.xlsx")
	writeFixtureXLSX(t, templatePath, "Modèle", [][]string{
		{"Client export", "", ""},
		{"ID", "NAME", "NOTES"},
	})

	sourcePath := filepath.Join(dir, "source.xlsx")
	writeFixtureXLSX(t, sourcePath, "Données", [][]string{
		{"ident", "prenom", "nom", "remarque"},
		{"1", "Ada", "Lovelace", "première"},
		{"2", "Alan", "Turing", ""},
	})

	cfg := &config.Config{
		Template: config.TemplateConfig{File: templatePath, Sheet: "Modèle", TargetRow: 2},
		Source:   config.SourceConfig{File: sourcePath, Sheet: "Données", HeaderRow: 1},
		Mapping:  config.MappingConfig{File: filepath.Join(dir, "field_mapping.json")},
		Output: config.OutputConfig{
			File:         filepath.Join(dir, "output.csv"),
			SheetName:    "Output",
			CSVSeparator: ";",
		},
	}
	return cfg, dir
}

func saveFixtureMappings(t *testing.T, cfg *config.Config) {
	t.Helper()

	mf := &mapping.File{}
	mf.Set(mapping.FieldMapping{Target: "ID", Mode: mapping.ModeSimple, SourceColumn: "ident"})
	mf.Set(mapping.FieldMapping{
		Target: "NAME",
		Mode:   mapping.ModeConcat,
		Concat: &engine.ConcatRule{
			Sources: []engine.ConcatSource{
				{Column: "prenom"},
				{Column: "nom"},
			},
			Separator: " ",
			SkipEmpty: true,
		},
	})
	mf.Set(mapping.FieldMapping{Target: "NOTES", Mode: mapping.ModeSimple, SourceColumn: "remarque"})
	require.NoError(t, mf.SaveToFile(cfg.Mapping.File))
}

func TestLoadWorkset(t *testing.T) {
	cfg, _ := fixtureConfig(t)

	ws, err := LoadWorkset(cfg)
	require.NoError(t, err)

	assert.Len(t, ws.Template.Fields(), 3)
	assert.Equal(t, "NAME", ws.Template.Fields()[1].Name)
	assert.Len(t, ws.Template.HeaderRows(), 2)
	assert.Len(t, ws.Source.Columns(), 4)
	assert.Len(t, ws.Source.Rows(), 2)
}

func TestLoadWorksetMissingTemplate(t *testing.T) {
	cfg, _ := fixtureConfig(t)
	cfg.Template.File = filepath.Join(t.TempDir(), "nope.xlsx")

	_, err := LoadWorkset(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read template")
}

func TestBuildTableKeepsHeaderBlock(t *testing.T) {
	cfg, _ := fixtureConfig(t)
	saveFixtureMappings(t, cfg)

	ws, err := LoadWorkset(cfg)
	require.NoError(t, err)
	eng, err := BuildEngine(ws, cfg.Mapping.File)
	require.NoError(t, err)

	rows := BuildTable(eng)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Client export", "", ""}, rows[0])
	assert.Equal(t, []string{"ID", "NAME", "NOTES"}, rows[1])
	assert.Equal(t, []string{"1", "Ada Lovelace", "première"}, rows[2])
	assert.Equal(t, []string{"2", "Alan Turing", ""}, rows[3])
}

func TestBuildEngineNoUsableMappings(t *testing.T) {
	cfg, _ := fixtureConfig(t)

	mf := &mapping.File{}
	mf.Set(mapping.FieldMapping{Target: "GHOST", ColIndex: 99, Mode: mapping.ModeSimple, SourceColumn: "ident"})
	require.NoError(t, mf.SaveToFile(cfg.Mapping.File))

	ws, err := LoadWorkset(cfg)
	require.NoError(t, err)

	_, err = BuildEngine(ws, cfg.Mapping.File)
	assert.Error(t, err)
}

func TestRunWritesCSV(t *testing.T) {
	cfg, _ := fixtureConfig(t)
	saveFixtureMappings(t, cfg)

	require.NoError(t, Run(cfg, ""))

	rows, err := tabular.ReadSheet(cfg.Output.File, "")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"ID", "NAME", "NOTES"}, rows[1])
	assert.Equal(t, []string{"2", "Alan Turing", ""}, rows[3])
}

func TestRunOutputOverride(t *testing.T) {
	cfg, dir := fixtureConfig(t)
	saveFixtureMappings(t, cfg)

	override := filepath.Join(dir, "override.xlsx")
	require.NoError(t, Run(cfg, override))

	_, err := os.Stat(override)
	assert.NoError(t, err)
	_, err = os.Stat(cfg.Output.File)
	assert.True(t, os.IsNotExist(err))

	rows, err := tabular.ReadSheet(override, "Output")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "Ada Lovelace", "première"}, rows[2])
}

func TestDropEmptyColumns(t *testing.T) {
	rows := [][]string{
		{"ID", "EMPTY", "NOTES"},
		{"1", "", "a"},
		{"2", "", ""},
	}

	got := dropEmptyColumns(rows, 1)
	assert.Equal(t, [][]string{
		{"ID", "NOTES"},
		{"1", "a"},
		{"2", ""},
	}, got)
}

func TestDropEmptyColumnsRaggedRows(t *testing.T) {
	rows := [][]string{
		{"A", "B", "C"},
		{"x"},
		{"", "y", ""},
	}

	got := dropEmptyColumns(rows, 1)
	assert.Equal(t, [][]string{
		{"A", "B"},
		{"x", ""},
		{"", "y"},
	}, got)
}
