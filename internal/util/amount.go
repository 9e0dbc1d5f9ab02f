package util

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var thousandsComma = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+(?:\.\d+)?$`)

// ParseAmount coerces a raw cell value into a decimal amount. Blank, absent
// and malformed values become 0 — permissive spreadsheet input is expected.
// The second return reports whether a non-blank value failed to parse.
func ParseAmount(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if thousandsComma.MatchString(s) {
		s = strings.ReplaceAll(s, ",", "")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, true
	}
	return v, false
}

// Round2 rounds to 2 decimal places for display. The aggregation path sums
// unrounded values and rounds only at the edge.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
