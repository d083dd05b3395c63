package dataset

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ParseStats summarizes the shape of a parsed file.
type ParseStats struct {
	RowCount      int
	ColumnCount   int
	EstimatedSize int
}

// ParseResult carries parsed rows plus fatal errors and non-fatal warnings.
// Errors means the import failed; warnings are informational only.
type ParseResult struct {
	Data     []Row
	Headers  []string
	Errors   []string
	Warnings []string
	Stats    ParseStats
}

// mismatchWarnLimit caps column-count mismatch warnings per file.
const mismatchWarnLimit = 5

var lineSplitRe = regexp.MustCompile(`\r\n|\r|\n`)

// ParseCSV tokenizes raw CSV text. Quoted fields may contain commas; "" inside
// a quoted field is an escaped literal quote. Rows whose field count differs
// from the header count are kept (missing cells become null) and reported as
// warnings for the first few offending rows.
func ParseCSV(text string) *ParseResult {
	res := &ParseResult{}

	lines := make([]string, 0, 64)
	for _, l := range lineSplitRe.Split(text, -1) {
		l = strings.TrimSpace(l)
		if l != "" {
			lines = append(lines, l)
		}
	}

	if len(lines) < 2 {
		res.Errors = append(res.Errors, "file must contain at least a header and one data row")
		return res
	}

	headers := parseCSVLine(lines[0])
	if len(headers) == 0 {
		res.Errors = append(res.Errors, "headers cannot be empty")
		return res
	}
	res.Headers = headers

	// Duplicate headers are warned about but not renamed; the last duplicate
	// wins on index-based assignment.
	if dups := duplicateHeaders(headers); len(dups) > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%d duplicated column names: %s", len(dups), strings.Join(dups, ", ")))
	}

	mismatches := 0
	for i := 1; i < len(lines); i++ {
		values := parseCSVLine(lines[i])

		empty := true
		for _, v := range values {
			if v != "" {
				empty = false
				break
			}
		}
		if empty {
			continue
		}

		if len(values) != len(headers) {
			mismatches++
			if mismatches <= mismatchWarnLimit {
				rel := "too few"
				if len(values) > len(headers) {
					rel = "too many"
				}
				res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: %d columns instead of %d (%s)", i+1, len(values), len(headers), rel))
			}
		}

		row := make(Row, len(headers))
		for idx, header := range headers {
			var value string
			if idx < len(values) {
				value = values[idx]
			}
			row[header] = coerceField(value)
		}
		res.Data = append(res.Data, row)
	}

	if len(res.Data) == 0 {
		res.Errors = append(res.Errors, "no valid data rows found")
	}

	res.Stats = ParseStats{
		RowCount:      len(res.Data),
		ColumnCount:   len(headers),
		EstimatedSize: len(text),
	}
	return res
}

// parseCSVLine scans a single line honoring quotes. A quote toggles quoted
// mode; an unquoted comma ends the field.
func parseCSVLine(line string) []string {
	var result []string
	var current strings.Builder
	insideQuotes := false

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '"':
			if insideQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				current.WriteRune('"')
				i++
			} else {
				insideQuotes = !insideQuotes
			}
		case ch == ',' && !insideQuotes:
			result = append(result, finishField(current.String()))
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	result = append(result, finishField(current.String()))
	return result
}

func finishField(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	return s
}

// coerceField turns a raw field into its typed value: empty becomes nil, a
// field that fully parses as a finite number becomes float64, anything else
// stays a string.
func coerceField(value string) any {
	if value == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	return value
}

func duplicateHeaders(headers []string) []string {
	counts := map[string]int{}
	for _, h := range headers {
		counts[h]++
	}
	var dups []string
	for _, h := range headers {
		if counts[h] > 1 {
			counts[h] = 0 // report each name once
			if h == "" {
				h = "(unnamed)"
			}
			dups = append(dups, h)
		}
	}
	return dups
}
