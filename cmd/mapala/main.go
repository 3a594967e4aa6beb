package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/Hsbtqemy/Mapala/internal/config"
	"github.com/Hsbtqemy/Mapala/internal/export"
	"github.com/Hsbtqemy/Mapala/internal/logger"
	"github.com/Hsbtqemy/Mapala/internal/mapping"
	"github.com/Hsbtqemy/Mapala/internal/tabular"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		return
	}

	command := os.Args[1]

	cfg, err := config.LoadConfig("configs/config.toml")
	if err != nil {
		logger.Error("Failed to load config", "error", err)
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	switch command {
	case "map":
		runMapping(cfg)
	case "suggest":
		runSuggest(cfg)
	case "preview":
		n := 10
		if len(os.Args) >= 3 {
			parsed, err := strconv.Atoi(os.Args[2])
			if err != nil || parsed < 1 {
				fmt.Printf("Error: invalid row count %q\n", os.Args[2])
				fmt.Println("Usage: mapala preview [rows]")
				return
			}
			n = parsed
		}
		runPreview(cfg, n)
	case "export":
		output := ""
		if len(os.Args) >= 3 {
			output = os.Args[2]
		}
		runExport(cfg, output)
	case "sheets":
		if len(os.Args) < 3 {
			fmt.Println("Error: sheets command requires a file path")
			fmt.Println("Usage: mapala sheets <file>")
			return
		}
		runSheets(os.Args[2])
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
	}
}

func printUsage() {
	fmt.Println("Mapala - Spreadsheet Mapping Tool")
	fmt.Println("\nUsage:")
	fmt.Println("  mapala map                 - Open interactive field mapping tool")
	fmt.Println("  mapala suggest             - Auto-map fields to similar column names")
	fmt.Println("  mapala preview [rows]      - Preview mapped output (default 10 rows)")
	fmt.Println("  mapala export [output]     - Export mapped data (default from config)")
	fmt.Println("  mapala sheets <file>       - List sheet names of a workbook")
}

func runMapping(cfg *config.Config) {
	logger.Info("Starting mapping operation",
		"template", cfg.Template.File,
		"source", cfg.Source.File,
		"mapping_file", cfg.Mapping.File)

	ws, err := export.LoadWorkset(cfg)
	if err != nil {
		logger.Error("Failed to load workset", "error", err)
		fmt.Printf("Error loading files: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Using files:\n")
	fmt.Printf("   Template: %s (%d fields)\n", cfg.Template.File, len(ws.Template.Fields()))
	fmt.Printf("   Source:   %s (%d columns)\n", cfg.Source.File, len(ws.Source.Columns()))
	fmt.Printf("   Mappings: %s\n", cfg.Mapping.File)
	fmt.Printf("Grid: %dx%d (cols x rows)\n", cfg.UI.ColumnsPerRow, cfg.UI.RowsPerPage)
	fmt.Println()

	uiConfig := mapping.UIConfig{
		ColumnsPerRow: cfg.UI.ColumnsPerRow,
		RowsPerPage:   cfg.UI.RowsPerPage,
	}

	err = mapping.RunMappingTUI(ws.Template.Fields(), ws.Source.Columns(), cfg.Mapping.File, uiConfig)
	if err != nil {
		logger.Error("Mapping operation failed", "error", err)
		fmt.Printf("Error running mapping tool: %v\n", err)
		os.Exit(1)
	}
}

func runSuggest(cfg *config.Config) {
	logger.Info("Starting suggest operation", "min_score", cfg.Mapping.MinSuggestScore)

	ws, err := export.LoadWorkset(cfg)
	if err != nil {
		logger.Error("Failed to load workset", "error", err)
		fmt.Printf("Error loading files: %v\n", err)
		os.Exit(1)
	}

	mf := &mapping.File{}
	if _, err := os.Stat(cfg.Mapping.File); err == nil {
		mf, err = mapping.LoadFromFile(cfg.Mapping.File)
		if err != nil {
			logger.Error("Failed to load mappings", "error", err)
			fmt.Printf("Error loading mappings: %v\n", err)
			os.Exit(1)
		}
	}

	suggestions := mapping.Suggest(mf, ws.Template.Fields(), ws.Source.Columns(), cfg.Mapping.MinSuggestScore)
	if len(suggestions) == 0 {
		fmt.Println("No new suggestions found.")
		return
	}

	for _, s := range suggestions {
		fmt.Printf("  %s → %s (%.0f%%)\n", s.Field.Name, s.Column.Name, s.Score*100)
	}

	mapping.ApplySuggestions(mf, suggestions)
	if err := mf.SaveToFile(cfg.Mapping.File); err != nil {
		logger.Error("Failed to save mappings", "error", err)
		fmt.Printf("Error saving mappings: %v\n", err)
		os.Exit(1)
	}

	logger.Info("Suggest operation completed", "suggestions", len(suggestions))
	fmt.Printf("✓ Added %d suggested mappings to: %s\n", len(suggestions), cfg.Mapping.File)
	fmt.Println("Run 'mapala map' to review them.")
}

func runPreview(cfg *config.Config, n int) {
	logger.Info("Starting preview operation", "rows", n)

	if err := export.Preview(cfg, n); err != nil {
		logger.Error("Preview operation failed", "error", err)
		fmt.Printf("Error previewing output: %v\n", err)
		os.Exit(1)
	}
}

func runExport(cfg *config.Config, output string) {
	logger.Info("Starting export operation", "output", output)

	if _, err := os.Stat(cfg.Mapping.File); os.IsNotExist(err) {
		fmt.Printf("Mapping file not found: %s\n", cfg.Mapping.File)
		fmt.Println("Please run 'mapala map' or 'mapala suggest' first to create field mappings.")
		return
	}

	if err := export.Run(cfg, output); err != nil {
		logger.Error("Export operation failed", "error", err)
		fmt.Printf("Error exporting: %v\n", err)
		os.Exit(1)
	}
}

func runSheets(path string) {
	sheets, err := tabular.ListSheets(path)
	if err != nil {
		logger.Error("Failed to list sheets", "error", err)
		fmt.Printf("Error listing sheets: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Sheets in %s:\n", path)
	for i, name := range sheets {
		fmt.Printf("  %d. %s\n", i+1, name)
	}
}
