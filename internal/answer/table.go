// internal/answer/table.go
package answer

import (
	"strconv"
	"strings"
)

// Table renders rows in psql style:
//
//	Month  |       Total
//	-------+------------
//	June   | 1,408,099.55
//
// Numeric columns are right aligned; text columns and all headers are
// left aligned. A column counts as numeric when every non-empty cell
// parses as a number after currency and grouping marks are stripped.
func Table(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	numeric := make([]bool, len(headers))
	for i := range headers {
		numeric[i] = columnIsNumeric(rows, i)
	}

	var lines []string

	headerParts := make([]string, len(headers))
	for i, h := range headers {
		headerParts[i] = padRight(h, widths[i])
	}
	lines = append(lines, strings.Join(headerParts, " | "))

	sepParts := make([]string, len(headers))
	for i := range headers {
		sepParts[i] = strings.Repeat("-", widths[i])
	}
	lines = append(lines, strings.Join(sepParts, "-+-"))

	for _, row := range rows {
		parts := make([]string, len(headers))
		for i := range headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if numeric[i] {
				parts[i] = padLeft(cell, widths[i])
			} else {
				parts[i] = padRight(cell, widths[i])
			}
		}
		lines = append(lines, strings.Join(parts, " | "))
	}

	return strings.Join(lines, "\n")
}

func columnIsNumeric(rows [][]string, col int) bool {
	seen := false
	for _, row := range rows {
		if col >= len(row) || row[col] == "" {
			continue
		}
		seen = true
		if !looksNumeric(row[col]) {
			return false
		}
	}
	return seen
}

func looksNumeric(cell string) bool {
	s := strings.TrimSpace(cell)
	s = strings.TrimSuffix(s, "LKR")
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "%")
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}
