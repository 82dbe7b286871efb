package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Decimal parses spreadsheet amounts such as "1 234,50 €", "1.234,5" or "1,234.50".
func Decimal(raw string) (decimal.Decimal, error) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		if (r >= '0' && r <= '9') || r == '-' || r == ',' || r == '.' {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" || s == "-" {
		return decimal.Zero, fmt.Errorf("no number in %q", raw)
	}

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")
	switch {
	case hasComma && hasDot:
		// the last separator is the decimal one
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasComma:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ",", ".")
		}
	case hasDot:
		parts := strings.Split(s, ".")
		if len(parts) > 2 || len(parts[len(parts)-1]) == 3 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number %q: %w", raw, err)
	}
	return d, nil
}

// NumberCell parses the raw value of a spreadsheet number cell, keeping the
// shortest decimal form of the stored float.
func NumberCell(raw string) (decimal.Decimal, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number %q: %w", raw, err)
	}
	return decimal.NewFromFloat(f), nil
}
