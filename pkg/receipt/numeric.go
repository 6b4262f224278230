package receipt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseDecimal converts a numeric token that may use comma or dot as decimal
// or thousands separator ("1,50", "1.234,56", "1,234.56"). When both appear,
// the one occurring later in the string is the decimal point and the earlier
// one is stripped as a thousands separator.
func ParseDecimal(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if s == "" {
		return 0, fmt.Errorf("empty numeric token")
	}
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	default:
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse decimal %q: %w", s, err)
	}
	return v, nil
}

// round2 rounds to two decimals, the precision receipts print prices in.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
