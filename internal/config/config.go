package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Hsbtqemy/Mapala/internal/logger"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Template TemplateConfig `toml:"template"`
	Source   SourceConfig   `toml:"source"`
	Mapping  MappingConfig  `toml:"mapping"`
	Output   OutputConfig   `toml:"output"`
	UI       UIConfig       `toml:"ui"`
}

type TemplateConfig struct {
	File      string `toml:"file"`
	Sheet     string `toml:"sheet"`
	TargetRow int    `toml:"target_row"`
	LabelRows []int  `toml:"label_rows"`
}

type SourceConfig struct {
	File      string `toml:"file"`
	Sheet     string `toml:"sheet"`
	HeaderRow int    `toml:"header_row"`
}

type MappingConfig struct {
	File            string  `toml:"file"`
	MinSuggestScore float64 `toml:"min_suggest_score"`
}

type OutputConfig struct {
	File             string `toml:"file"`
	SheetName        string `toml:"sheet_name"`
	CSVSeparator     string `toml:"csv_separator"`
	DropEmptyColumns bool   `toml:"drop_empty_columns"`
}

type UIConfig struct {
	ColumnsPerRow int `toml:"columns_per_row"`
	RowsPerPage   int `toml:"rows_per_page"`
}

// LoadConfig loads configuration from the specified config file path
func LoadConfig(configPath string) (*Config, error) {
	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Create configs directory if it doesn't exist
		configDir := filepath.Dir(configPath)
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %v", err)
		}

		// Create default config file
		defaultConfig := DefaultConfig()

		err = SaveConfig(configPath, defaultConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create default config: %v", err)
		}

		logger.Info("Created default config file", "path", configPath)
		return defaultConfig, nil
	}

	// Load existing config
	var config Config
	_, err := toml.DecodeFile(configPath, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %v", configPath, err)
	}

	// Set defaults if missing
	if config.Template.TargetRow == 0 {
		config.Template.TargetRow = 1
	}
	if config.Source.HeaderRow == 0 {
		config.Source.HeaderRow = 1
	}
	if config.Mapping.File == "" {
		config.Mapping.File = "data/field_mapping.json"
	}
	if config.Mapping.MinSuggestScore == 0 {
		config.Mapping.MinSuggestScore = 0.8
	}
	if config.Output.File == "" {
		config.Output.File = "data/output.xlsx"
	}
	if config.Output.SheetName == "" {
		config.Output.SheetName = "Output"
	}
	if config.Output.CSVSeparator == "" {
		config.Output.CSVSeparator = ";"
	}
	if config.UI.ColumnsPerRow == 0 {
		config.UI.ColumnsPerRow = 4
	}
	if config.UI.RowsPerPage == 0 {
		config.UI.RowsPerPage = 3
	}

	logger.Info("Loaded configuration", "path", configPath)
	return &config, nil
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() *Config {
	return &Config{
		Template: TemplateConfig{
			File:      "data/template.xlsx",
			TargetRow: 1,
		},
		Source: SourceConfig{
			File:      "data/source.xlsx",
			HeaderRow: 1,
		},
		Mapping: MappingConfig{
			File:            "data/field_mapping.json",
			MinSuggestScore: 0.8,
		},
		Output: OutputConfig{
			File:         "data/output.xlsx",
			SheetName:    "Output",
			CSVSeparator: ";",
		},
		UI: UIConfig{
			ColumnsPerRow: 4,
			RowsPerPage:   3,
		},
	}
}

// SaveConfig saves configuration to the specified config file path
func SaveConfig(configPath string, config *Config) error {
	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %v", err)
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	err = encoder.Encode(config)
	if err != nil {
		return fmt.Errorf("failed to encode config: %v", err)
	}

	logger.Info("Saved configuration", "path", configPath)
	return nil
}
