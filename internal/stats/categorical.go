package stats

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/datavue/datavue-cli/internal/dataset"
)

// FrequencyTable summarizes one categorical column: the most frequent values
// with counts and percentages plus the mode.
type FrequencyTable struct {
	Values        []string  `json:"values"`
	Counts        []int     `json:"counts"`
	Percentages   []float64 `json:"percentages"`
	Mode          string    `json:"mode"`
	ModeFrequency int       `json:"modeFrequency"`
	UniqueCount   int       `json:"uniqueCount"`
}

const frequenciesKept = 20

// Frequencies builds frequency tables for the named categorical columns,
// keeping the 20 most frequent values of each.
func Frequencies(rows []dataset.Row, categoricalColumns []string) map[string]FrequencyTable {
	out := make(map[string]FrequencyTable, len(categoricalColumns))
	for _, col := range categoricalColumns {
		counts := map[string]int{}
		total := 0
		for _, row := range rows {
			v := row[col]
			if dataset.IsNull(v) {
				continue
			}
			counts[stringValue(v)]++
			total++
		}
		if total == 0 {
			continue
		}

		type entry struct {
			value string
			count int
		}
		entries := make([]entry, 0, len(counts))
		for v, c := range counts {
			entries = append(entries, entry{v, c})
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].count == entries[j].count {
				return entries[i].value < entries[j].value
			}
			return entries[i].count > entries[j].count
		})

		table := FrequencyTable{
			Mode:          entries[0].value,
			ModeFrequency: entries[0].count,
			UniqueCount:   len(entries),
		}
		kept := entries
		if len(kept) > frequenciesKept {
			kept = kept[:frequenciesKept]
		}
		for _, e := range kept {
			table.Values = append(table.Values, e.value)
			table.Counts = append(table.Counts, e.count)
			table.Percentages = append(table.Percentages, float64(e.count)/float64(total)*100)
		}
		out[col] = table
	}
	return out
}

// Association is the chi-square independence test of one column pair.
type Association struct {
	ColumnA          string  `json:"columnA"`
	ColumnB          string  `json:"columnB"`
	ChiSquare        float64 `json:"chiSquare"`
	DegreesOfFreedom int     `json:"degreesOfFreedom"`
	Interpretation   string  `json:"interpretation"`
}

// chiSquareCritical is the 0.05 critical value at 1 degree of freedom, used as
// a coarse significance cutoff regardless of the actual dof.
const chiSquareCritical = 3.84

// ChiSquareAssociations runs pairwise chi-square tests over the categorical
// columns. Interpretation is a coarse significant / not significant verdict.
func ChiSquareAssociations(rows []dataset.Row, categoricalColumns []string) []Association {
	var out []Association
	for i := 0; i < len(categoricalColumns); i++ {
		for j := i + 1; j < len(categoricalColumns); j++ {
			a, b := categoricalColumns[i], categoricalColumns[j]
			chi, dof := chiSquare(rows, a, b)
			interp := "not significant"
			if chi > chiSquareCritical {
				interp = "significant"
			}
			out = append(out, Association{
				ColumnA:          a,
				ColumnB:          b,
				ChiSquare:        chi,
				DegreesOfFreedom: dof,
				Interpretation:   interp,
			})
		}
	}
	return out
}

// chiSquare builds the contingency table over rows where both values are
// present; a pair with a missing value never contributes a category.
func chiSquare(rows []dataset.Row, a, b string) (float64, int) {
	table := map[string]map[string]int{}
	rowTotals := map[string]int{}
	colTotals := map[string]int{}
	included := 0
	for _, row := range rows {
		if dataset.IsNull(row[a]) || dataset.IsNull(row[b]) {
			continue
		}
		va, vb := stringValue(row[a]), stringValue(row[b])
		if table[va] == nil {
			table[va] = map[string]int{}
		}
		table[va][vb]++
		rowTotals[va]++
		colTotals[vb]++
		included++
	}
	if included == 0 {
		return 0, 0
	}

	total := float64(included)
	var chi float64
	for va, cells := range table {
		for vb, observed := range cells {
			expected := float64(rowTotals[va]) * float64(colTotals[vb]) / total
			if expected > 0 {
				d := float64(observed) - expected
				chi += d * d / expected
			}
		}
	}
	dof := (len(rowTotals) - 1) * (len(colTotals) - 1)
	return chi, dof
}

func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
