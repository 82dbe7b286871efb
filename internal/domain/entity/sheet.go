package entity

import "strings"

// Sheet tabular data read from a spreadsheet
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]string
	// Lines 1-based spreadsheet line of each row
	Lines []int
	// Numbers raw value of number cells, "" for text; nil for csv input
	Numbers [][]string
}

// Number raw value of the number cell at row i, col
func (s *Sheet) Number(i, col int) (string, bool) {
	if i < 0 || i >= len(s.Numbers) || col < 0 || col >= len(s.Numbers[i]) {
		return "", false
	}
	v := s.Numbers[i][col]
	return v, v != ""
}

// Line spreadsheet line of row i
func (s *Sheet) Line(i int) int {
	if i >= 0 && i < len(s.Lines) {
		return s.Lines[i]
	}
	return i + 2
}

// Cell returns the trimmed cell value or "" when out of range
func (s *Sheet) Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// Width number of header columns
func (s *Sheet) Width() int {
	return len(s.Header)
}
