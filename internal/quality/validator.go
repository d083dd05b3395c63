// Package quality scores datasets before analysis: per-column null rates,
// unique counts and variance, aggregated into a completeness report with
// issue/warning/suggestion lists.
package quality

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/datavue/datavue-cli/internal/dataset"
)

// ColumnAnalysis holds the per-column quality metrics.
type ColumnAnalysis struct {
	NullCount      int     `json:"nullCount"`
	NullPercentage float64 `json:"nullPercentage"`
	UniqueValues   int     `json:"uniqueValues"`
	Type           string  `json:"type"`
	Variance       float64 `json:"variance"`
	Issue          string  `json:"issue,omitempty"`
}

// Metrics aggregates dataset-level quality numbers.
type Metrics struct {
	Completeness    float64 `json:"completeness"`
	UniquenessRatio float64 `json:"uniquenessRatio"`
	NullPercentage  float64 `json:"nullPercentage"`
	DuplicateRows   int     `json:"duplicateRows"`
}

// Report is the full validation result. It is a pure function of the input
// rows and column list; validating the same data twice yields the same report.
type Report struct {
	IsValid            bool                      `json:"isValid"`
	Quality            Metrics                   `json:"quality"`
	Columns            map[string]ColumnAnalysis `json:"columnAnalysis"`
	Issues             []string                  `json:"issues"`
	Warnings           []string                  `json:"warnings"`
	Suggestions        []string                  `json:"suggestions"`
	ProblematicColumns []string                  `json:"problematicColumns"`
}

// Validate analyzes data quality over the given columns. A nil column list
// means all columns of the first row, in sorted order.
func Validate(rows []dataset.Row, columns []string) *Report {
	report := &Report{
		IsValid: true,
		Columns: map[string]ColumnAnalysis{},
	}

	if len(rows) == 0 {
		report.IsValid = false
		report.Issues = append(report.Issues, "dataset is empty")
		return report
	}

	if columns == nil {
		for name := range rows[0] {
			columns = append(columns, name)
		}
		sort.Strings(columns)
	}

	for _, col := range columns {
		var nonNull []any
		for _, row := range rows {
			if v := row[col]; !dataset.IsNull(v) {
				nonNull = append(nonNull, v)
			}
		}
		nullCount := len(rows) - len(nonNull)
		nullPct := float64(nullCount) / float64(len(rows)) * 100
		uniques := countUnique(nonNull)

		colType := detectType(nonNull)
		variance := 0.0
		if colType == "number" {
			variance = populationVariance(nonNull)
		}

		analysis := ColumnAnalysis{
			NullCount:      nullCount,
			NullPercentage: round2(nullPct),
			UniqueValues:   uniques,
			Type:           colType,
			Variance:       round2(variance),
		}

		if issues := identifyIssues(nullPct, uniques, variance); len(issues) > 0 {
			analysis.Issue = issues[0]
			report.ProblematicColumns = append(report.ProblematicColumns, col)
		}
		report.Columns[col] = analysis
	}

	totalValues := 0
	for _, a := range report.Columns {
		totalValues += len(rows) - a.NullCount
	}
	totalPossible := len(report.Columns) * len(rows)
	report.Quality.Completeness = round2(float64(totalValues) / float64(totalPossible) * 100)
	report.Quality.NullPercentage = 100 - report.Quality.Completeness

	distinct := distinctRowCount(rows)
	report.Quality.DuplicateRows = len(rows) - distinct
	report.Quality.UniquenessRatio = round2(float64(distinct) / float64(len(rows)))

	generateAlerts(report)
	return report
}

// detectType re-derives the column type for quality purposes. Same ordered
// thresholds as import-time inference, minus the date case which quality
// scoring does not need.
func detectType(values []any) string {
	if len(values) == 0 {
		return "unknown"
	}
	total := float64(len(values))

	booleans := 0
	for _, v := range values {
		if dataset.IsBooleanToken(v) {
			booleans++
		}
	}
	if float64(booleans)/total > 0.95 {
		return "boolean"
	}

	numerics := 0
	for _, v := range values {
		if _, ok := dataset.AsNumber(v); ok {
			numerics++
		}
	}
	if float64(numerics)/total > 0.8 {
		return "number"
	}

	uniques := countUnique(values)
	if uniques < 20 && float64(uniques) < total/10 {
		return "categorical"
	}
	return "string"
}

func populationVariance(values []any) float64 {
	var nums []float64
	for _, v := range values {
		if f, ok := dataset.AsNumber(v); ok {
			nums = append(nums, f)
		}
	}
	if len(nums) == 0 {
		return 0
	}
	var sum float64
	for _, f := range nums {
		sum += f
	}
	mean := sum / float64(len(nums))
	var sq float64
	for _, f := range nums {
		sq += (f - mean) * (f - mean)
	}
	return sq / float64(len(nums))
}

func identifyIssues(nullPct float64, uniques int, variance float64) []string {
	var issues []string

	if nullPct == 100 {
		issues = append(issues, "column is completely empty")
	} else if nullPct >= 50 {
		issues = append(issues, fmt.Sprintf("%.1f%% missing values", nullPct))
	}

	if uniques == 1 {
		issues = append(issues, "no variance (single value)")
	}
	if variance == 0 && uniques > 1 {
		issues = append(issues, "no numeric variance")
	}
	if uniques < 3 && uniques > 1 {
		issues = append(issues, fmt.Sprintf("very few unique values (%d)", uniques))
	}
	return issues
}

func generateAlerts(report *Report) {
	if report.Quality.NullPercentage > 50 {
		report.Issues = append(report.Issues, fmt.Sprintf("incomplete data: %.1f%% missing values", report.Quality.NullPercentage))
		report.IsValid = false
	} else if report.Quality.NullPercentage > 30 {
		report.Warnings = append(report.Warnings, fmt.Sprintf("partially incomplete data: %.1f%% N/A", report.Quality.NullPercentage))
	}

	if report.Quality.DuplicateRows > 0 {
		report.Warnings = append(report.Warnings, fmt.Sprintf("%d duplicated rows detected", report.Quality.DuplicateRows))
	}

	if len(report.ProblematicColumns) > 0 {
		report.Warnings = append(report.Warnings, fmt.Sprintf("%d problematic columns: %s",
			len(report.ProblematicColumns), strings.Join(report.ProblematicColumns, ", ")))

		limit := len(report.ProblematicColumns)
		if limit > 5 {
			limit = 5
		}
		report.Suggestions = append(report.Suggestions, "consider removing or cleaning these columns: "+
			strings.Join(report.ProblematicColumns[:limit], ", "))
	}

	if report.Quality.NullPercentage > 20 {
		report.Suggestions = append(report.Suggestions, "run the data-cleaning analysis before modeling")
	}
	if report.Quality.Completeness >= 80 {
		report.Suggestions = append(report.Suggestions, "data quality is sufficient for analysis")
	}
}

// distinctRowCount counts distinct rows by serialized equality. Keys are
// sorted before serialization so the count does not depend on map iteration
// order.
func distinctRowCount(rows []dataset.Row) int {
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		for _, k := range keys {
			v, _ := json.Marshal(row[k])
			b.WriteString(k)
			b.WriteByte('=')
			b.Write(v)
			b.WriteByte(';')
		}
		seen[b.String()] = struct{}{}
	}
	return len(seen)
}

// SuggestBestColumns ranks columns by completeness minus a 0.2 penalty for
// zero variance, filters out columns below minCompleteness (0..1), and
// returns at most maxColumns names.
func SuggestBestColumns(rows []dataset.Row, maxColumns int, minCompleteness float64) []string {
	report := Validate(rows, nil)

	type scored struct {
		name  string
		score float64
		compl float64
	}
	var cols []scored
	for name, a := range report.Columns {
		compl := 1 - a.NullPercentage/100
		score := compl
		if a.Variance == 0 {
			score -= 0.2
		}
		cols = append(cols, scored{name: name, score: score, compl: compl})
	}
	sort.Slice(cols, func(i, j int) bool {
		if cols[i].score == cols[j].score {
			return cols[i].name < cols[j].name
		}
		return cols[i].score > cols[j].score
	})

	var out []string
	for _, c := range cols {
		if c.compl < minCompleteness {
			continue
		}
		out = append(out, c.name)
		if len(out) == maxColumns {
			break
		}
	}
	return out
}

func countUnique(values []any) int {
	seen := make(map[any]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
