package dataset

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	inferSampleRows   = 100
	sampleKeep        = 5
	uniqueKeep        = 10
	booleanThreshold  = 0.95
	numericThreshold  = 0.8
	dateThreshold     = 0.8
	categoricalRatio  = 0.1
	categoricalUnique = 20
)

// Columns whose name looks like a row index or identifier start deselected.
var indexNameRe = regexp.MustCompile(`(?i)^(index|id|row|num|n°|\d+)$`)

// InferColumns classifies every column from a sample of the first rows.
// Ordered thresholds: boolean, then number, then date, then categorical,
// falling back to string.
func InferColumns(rows []Row, order []string) []Column {
	cols := make([]Column, 0, len(order))
	for _, name := range order {
		limit := len(rows)
		if limit > inferSampleRows {
			limit = inferSampleRows
		}
		var nonNull []any
		for _, row := range rows[:limit] {
			if v := row[name]; !IsNull(v) {
				nonNull = append(nonNull, v)
			}
		}

		col := Column{
			Name:     name,
			Type:     TypeString,
			Selected: !indexNameRe.MatchString(name),
		}

		if len(nonNull) > 0 {
			col.Type = inferType(nonNull)
			if len(nonNull) > sampleKeep {
				col.Sample = append(col.Sample, nonNull[:sampleKeep]...)
			} else {
				col.Sample = append(col.Sample, nonNull...)
			}
			if col.Type == TypeCategorical {
				uniques := uniqueInOrder(nonNull)
				if len(uniques) > uniqueKeep {
					uniques = uniques[:uniqueKeep]
				}
				col.UniqueValues = uniques
			}
		}
		cols = append(cols, col)
	}
	return cols
}

func inferType(values []any) ColumnType {
	total := float64(len(values))
	var booleans, numerics, dates int
	for _, v := range values {
		if IsBooleanToken(v) {
			booleans++
		}
		_, isNum := AsNumber(v)
		if isNum {
			numerics++
		}
		if !isNum && parsesAsDate(v) {
			dates++
		}
	}

	switch {
	case float64(booleans)/total > booleanThreshold:
		return TypeBoolean
	case float64(numerics)/total > numericThreshold:
		return TypeNumber
	case float64(dates)/total > dateThreshold:
		return TypeDate
	}

	uniques := uniqueInOrder(values)
	if float64(len(uniques))/total < categoricalRatio && len(uniques) < categoricalUnique {
		return TypeCategorical
	}
	return TypeString
}

// IsBooleanToken reports whether a value belongs to the fixed boolean token
// set: 0/1, true/false, yes/no, oui/non (case-insensitive).
func IsBooleanToken(v any) bool {
	switch t := v.(type) {
	case bool:
		return true
	case float64:
		return t == 0 || t == 1
	case string:
		switch strings.ToLower(t) {
		case "0", "1", "true", "false", "yes", "no", "oui", "non":
			return true
		}
	}
	return false
}

// AsNumber coerces a cell to float64 when possible. Booleans count as 1/0.
func AsNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

var dateLayouts = []string{
	time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
}

func parsesAsDate(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// uniqueInOrder deduplicates values preserving first appearance.
func uniqueInOrder(values []any) []any {
	seen := make(map[any]struct{}, len(values))
	var out []any
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
