package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configs", "config.toml")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err, "default config file should be written")

	assert.Equal(t, 1, cfg.Template.TargetRow)
	assert.Equal(t, 1, cfg.Source.HeaderRow)
	assert.Equal(t, "data/field_mapping.json", cfg.Mapping.File)
	assert.Equal(t, 0.8, cfg.Mapping.MinSuggestScore)
	assert.Equal(t, ";", cfg.Output.CSVSeparator)
	assert.Equal(t, 4, cfg.UI.ColumnsPerRow)
}

func TestLoadConfigBackfillsMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	partial := `
[template]
file = "data/modele.xlsx"
target_row = 3
label_rows = [1, 2]

[source]
file = "data/export.csv"
`
	require.NoError(t, os.WriteFile(path, []byte(partial), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "data/modele.xlsx", cfg.Template.File)
	assert.Equal(t, 3, cfg.Template.TargetRow)
	assert.Equal(t, []int{1, 2}, cfg.Template.LabelRows)
	assert.Equal(t, "data/export.csv", cfg.Source.File)

	// Omitted sections come back with defaults
	assert.Equal(t, 1, cfg.Source.HeaderRow)
	assert.Equal(t, "Output", cfg.Output.SheetName)
	assert.Equal(t, 3, cfg.UI.RowsPerPage)
}

func TestSaveConfigRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	original := DefaultConfig()
	original.Template.Sheet = "Modèle"
	original.Template.LabelRows = []int{1, 2}
	original.Output.DropEmptyColumns = true
	require.NoError(t, SaveConfig(path, original))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}

func TestLoadConfigRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[template\nbroken"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
