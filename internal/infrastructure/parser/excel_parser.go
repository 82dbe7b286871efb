package parser

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"github.com/yourusername/stock-backoffice/internal/domain/entity"
	"github.com/yourusername/stock-backoffice/internal/domain/repository"
	"go.uber.org/zap"
)

type excelParser struct {
	log *zap.Logger
}

// NewExcelParser spreadsheet reader for .xlsx/.xlsm and .csv files
func NewExcelParser(log *zap.Logger) repository.SheetReader {
	if log == nil {
		log = zap.NewNop()
	}
	return &excelParser{log: log}
}

// ReadSheet reads the named sheet, or the first one when sheet is empty
func (e *excelParser) ReadSheet(ctx context.Context, path, sheet string) (*entity.Sheet, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open csv file: %w", err)
		}
		defer f.Close()
		return e.parseCSV(f, filepath.Base(path))
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer f.Close()

	return e.parseExcelFile(f, sheet)
}

// ReadSheetFromBytes parses an in-memory workbook
func (e *excelParser) ReadSheetFromBytes(ctx context.Context, data []byte, sheet string) (*entity.Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open excel from bytes: %w", err)
	}
	defer f.Close()

	return e.parseExcelFile(f, sheet)
}

// parseExcelFile picks the sheet and splits header from data rows
func (e *excelParser) parseExcelFile(f *excelize.File, sheet string) (*entity.Sheet, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel file has no sheets")
	}

	sheetName, err := selectSheet(sheets, sheet)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	raw, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to get raw rows: %w", err)
	}

	numbers, err := numberCells(f, sheetName, raw)
	if err != nil {
		return nil, err
	}
	return e.buildSheet(sheetName, rows, numbers)
}

// selectSheet matches by name first, then by 0-based index
func selectSheet(sheets []string, sheet string) (string, error) {
	want := strings.TrimSpace(sheet)
	if want == "" {
		return sheets[0], nil
	}
	for _, name := range sheets {
		if strings.EqualFold(strings.TrimSpace(name), want) {
			return name, nil
		}
	}
	if idx, err := strconv.Atoi(want); err == nil && idx >= 0 && idx < len(sheets) {
		return sheets[idx], nil
	}
	return "", fmt.Errorf("sheet %q not found (available: %s)", sheet, strings.Join(sheets, ", "))
}

// numberCells keeps the unformatted value of every number cell so amounts
// like 12.345 are not read back through the text heuristics
func numberCells(f *excelize.File, sheet string, raw [][]string) ([][]string, error) {
	numbers := make([][]string, len(raw))
	for r, row := range raw {
		numbers[r] = make([]string, len(row))
		for c, value := range row {
			value = strings.TrimSpace(value)
			if value == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			typ, err := f.GetCellType(sheet, cell)
			if err != nil {
				return nil, fmt.Errorf("failed to read cell type of %s: %w", cell, err)
			}
			if typ != excelize.CellTypeUnset && typ != excelize.CellTypeNumber {
				continue
			}
			if _, err := strconv.ParseFloat(value, 64); err == nil {
				numbers[r][c] = value
			}
		}
	}
	return numbers, nil
}

func (e *excelParser) parseCSV(r io.Reader, name string) (*entity.Sheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.Comma = sniffSeparator(data)

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return e.buildSheet(name, rows, nil)
}

// sniffSeparator French locale exports use ';'
func sniffSeparator(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}

// buildSheet the first non-empty row is the header, blank rows are dropped and data rows padded to its width
func (e *excelParser) buildSheet(name string, rows, numbers [][]string) (*entity.Sheet, error) {
	headerIdx := -1
	for i, row := range rows {
		if !isEmptyRow(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, fmt.Errorf("sheet %q is empty", name)
	}

	header := make([]string, len(rows[headerIdx]))
	for i, h := range rows[headerIdx] {
		header[i] = strings.TrimSpace(h)
	}

	sheet := &entity.Sheet{Name: name, Header: header}
	for i := headerIdx + 1; i < len(rows); i++ {
		if isEmptyRow(rows[i]) {
			continue
		}
		padded := make([]string, max(len(header), len(rows[i])))
		copy(padded, rows[i])
		sheet.Rows = append(sheet.Rows, padded)
		sheet.Lines = append(sheet.Lines, i+1)
		if numbers != nil {
			nums := make([]string, len(padded))
			if i < len(numbers) {
				copy(nums, numbers[i])
			}
			sheet.Numbers = append(sheet.Numbers, nums)
		}
	}

	e.log.Debug("sheet loaded",
		zap.String("sheet", name),
		zap.Strings("header", header),
		zap.Int("rows", len(sheet.Rows)))

	return sheet, nil
}

// isEmptyRow reports whether every cell is blank
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
