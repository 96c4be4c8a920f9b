package excel

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/orfobot/internal/content"
	"github.com/example/orfobot/pkg/models"
)

// WordCreator validates and stores a word
type WordCreator interface {
	Create(ctx context.Context, w *models.Word) error
}

// ImportConfig defines the import configuration
type ImportConfig struct {
	WordColumn          string // Column with the word
	DefinitionColumn    string // Column with the definition
	CategoryColumn      string // Column with the category code or title
	PatternColumn       string // Column with the puzzle pattern
	HiddenLettersColumn string // Column with the hidden letters
	DifficultyColumn    string // Column with the difficulty
	ExplanationColumn   string // Column with the explanation
	SheetName           string // Sheet to import, the first one when empty
	StartRow            int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		WordColumn:          "A",
		DefinitionColumn:    "B",
		CategoryColumn:      "C",
		PatternColumn:       "D",
		HiddenLettersColumn: "E",
		DifficultyColumn:    "F",
		ExplanationColumn:   "G",
		StartRow:            2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Skipped        int // Rows whose word already exists
	Errors         []string
}

// Import reads words from an .xlsx or .csv stream and stores them through creator.
// Bad rows are reported in the result and do not stop the import.
func Import(ctx context.Context, r io.Reader, ext string, config ImportConfig, creator WordCreator) (*ImportResult, error) {
	var rows [][]string
	var err error

	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "csv":
		rows, err = readCSV(r)
	case "xlsx", "xlsm":
		rows, err = readExcel(r, config.SheetName)
	default:
		return nil, fmt.Errorf("unsupported file type %q", ext)
	}
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: make([]string, 0)}
	start := config.StartRow
	if start < 1 {
		start = 1
	}

	for i, row := range rows {
		// Skip header rows
		if i < start-1 || blankRow(row) {
			continue
		}
		result.TotalProcessed++

		if err := processRow(ctx, row, config, creator, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}
	return result, nil
}

// readExcel returns the rows of an Excel sheet
func readExcel(r io.Reader, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

// readCSV returns the records of a CSV file
func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV: %w", err)
	}
	return rows, nil
}

// processRow processes a single row
func processRow(ctx context.Context, row []string, config ImportConfig, creator WordCreator, result *ImportResult) error {
	cell := func(column string) string {
		if column == "" {
			return ""
		}
		if idx := columnToIndex(column); idx >= 0 && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	category, ok := parseCategory(cell(config.CategoryColumn))
	if !ok {
		return fmt.Errorf("unknown category %q", cell(config.CategoryColumn))
	}

	word := &models.Word{
		Form:          cell(config.WordColumn),
		Definition:    cell(config.DefinitionColumn),
		Explanation:   cell(config.ExplanationColumn),
		Category:      category,
		Pattern:       strings.ToLower(cell(config.PatternColumn)),
		HiddenLetters: strings.ToLower(cell(config.HiddenLettersColumn)),
		Difficulty:    parseIntOrDefault(cell(config.DifficultyColumn), 1, 5, 3),
	}
	if word.HiddenLetters == "" {
		word.HiddenLetters = content.SuggestHiddenLetters(word.Form, word.Pattern)
	}

	err := creator.Create(ctx, word)
	if errors.Is(err, content.ErrDuplicateWord) {
		result.Skipped++
		return nil
	}
	if err != nil {
		return err
	}
	result.Created++
	return nil
}

// parseCategory accepts a category code or its Russian title
func parseCategory(s string) (models.Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range models.Categories {
		if strings.EqualFold(s, string(c)) || strings.EqualFold(s, c.Title()) {
			return c, true
		}
	}
	return "", false
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Helper function to convert Excel column letter to index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}

// Helper function to parse integer with default value
func parseIntOrDefault(s string, min, max, defaultVal int) int {
	val, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return defaultVal
	}
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
