package store

import (
	"strconv"
	"strings"
)

// normalizeState uppercases and trims a state code, matching the uppercase
// short-code convention of the datasets.
func normalizeState(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// coerceInt parses a population-style cell. Malformed or negative input
// coerces to zero so one bad row degrades that field without dropping the
// record or aborting the dataset.
func coerceInt(s string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// coerceFloat parses a vote-count cell with the same zero-on-malformed
// policy as coerceInt.
func coerceFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// columnIndex finds a named column in a header row, case-insensitively.
// Returns -1 when the column is not present.
func columnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

// cell returns row[i], or "" when the index is out of range. Short rows and
// missing columns read as empty cells.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
