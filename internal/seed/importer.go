package seed

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vytor/sqlflash/internal/logger"
	"github.com/vytor/sqlflash/internal/models"
	"github.com/vytor/sqlflash/internal/repository"
	"github.com/xuri/excelize/v2"
)

// ImportConfig defines the spreadsheet layout
type ImportConfig struct {
	FilePath          string // Path to the .xlsx or .csv file
	SheetName         string // Sheet to read, empty for the first sheet
	StartRow          int    // First data row (1-based)
	IDColumn          string // Optional, generated from level and row when empty
	LevelColumn       string
	TopicColumn       string
	QuestionColumn    string
	AnswerColumn      string
	ExplanationColumn string
	ExampleColumn     string
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		StartRow:          2, // skip the header row
		IDColumn:          "A",
		LevelColumn:       "B",
		TopicColumn:       "C",
		QuestionColumn:    "D",
		AnswerColumn:      "E",
		ExplanationColumn: "F",
		ExampleColumn:     "G",
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Updated        int
	Skipped        int
	Errors         []string
}

// ImportCards imports cards from an Excel or CSV file. Row problems are
// collected in the result; only unreadable files fail the import.
func ImportCards(ctx context.Context, repo repository.CardRepository, cfg ImportConfig) (*ImportResult, error) {
	var rows [][]string
	var err error
	if strings.ToLower(filepath.Ext(cfg.FilePath)) == ".csv" {
		rows, err = readCSV(cfg.FilePath)
	} else {
		rows, err = readExcel(cfg.FilePath, cfg.SheetName)
	}
	if err != nil {
		return nil, err
	}
	return importRows(ctx, repo, rows, cfg), nil
}

func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
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

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func importRows(ctx context.Context, repo repository.CardRepository, rows [][]string, cfg ImportConfig) *ImportResult {
	log := logger.FromContext(ctx).WithPrefix("import")
	result := &ImportResult{Errors: make([]string, 0)}

	start := max(cfg.StartRow, 1)
	for i, row := range rows {
		rowNum := i + 1
		if rowNum < start {
			continue
		}
		if blankRow(row) {
			result.Skipped++
			continue
		}
		result.TotalProcessed++

		card, err := rowToCard(row, cfg, rowNum)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}

		existing, err := repo.Get(ctx, card.ID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: lookup failed: %v", rowNum, err))
			continue
		}
		if err := repo.Upsert(ctx, card); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: save failed: %v", rowNum, err))
			continue
		}
		if existing != nil {
			result.Updated++
		} else {
			result.Created++
		}
	}

	log.Info("import finished: processed=%d created=%d updated=%d skipped=%d errors=%d",
		result.TotalProcessed, result.Created, result.Updated, result.Skipped, len(result.Errors))
	return result
}

func rowToCard(row []string, cfg ImportConfig, rowNum int) (models.Card, error) {
	level, err := models.ParseLevel(strings.ToLower(cell(row, cfg.LevelColumn)))
	if err != nil {
		return models.Card{}, err
	}

	c := models.Card{
		ID:          cell(row, cfg.IDColumn),
		Level:       level,
		Topic:       cell(row, cfg.TopicColumn),
		Question:    cell(row, cfg.QuestionColumn),
		Answer:      cell(row, cfg.AnswerColumn),
		Explanation: cell(row, cfg.ExplanationColumn),
		Example:     cell(row, cfg.ExampleColumn),
	}
	if c.Question == "" {
		return c, fmt.Errorf("question cannot be empty")
	}
	if c.Answer == "" {
		return c, fmt.Errorf("answer cannot be empty")
	}
	if c.ID == "" {
		c.ID = fmt.Sprintf("%s_import_%d", level, rowNum)
	}
	return c, nil
}

func cell(row []string, column string) string {
	if column == "" {
		return ""
	}
	if idx := columnToIndex(column); idx >= 0 && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// columnToIndex converts an Excel column letter to a 0-based index.
func columnToIndex(column string) int {
	idx, err := excelize.ColumnNameToNumber(strings.ToUpper(column))
	if err != nil {
		return -1
	}
	return idx - 1
}
