package analyze

import (
	"fmt"
	"sort"
	"strings"

	"github.com/datavue/datavue-cli/internal/stats"
)

// Render formats a run's results as readable terminal text.
func Render(res *Results) string {
	var b strings.Builder

	b.WriteString("Analysis summary\n")
	b.WriteString(fmt.Sprintf("  rows: %d  selected columns: %d  numeric: %d\n",
		res.Summary.TotalRows, res.Summary.SelectedColumns, res.Summary.NumericColumns))
	if res.Summary.TargetColumn != "" {
		b.WriteString(fmt.Sprintf("  target: %s\n", res.Summary.TargetColumn))
	}
	b.WriteString(fmt.Sprintf("  date: %s\n", res.Summary.AnalysisDate))

	if desc, ok := res.Analyses["descriptiveStats"].(map[string]stats.Descriptive); ok && len(desc) > 0 {
		b.WriteString("\nDescriptive statistics\n")
		cols := sortedKeys(desc)
		b.WriteString("  column | count | mean | median | min | max | std\n")
		for _, col := range cols {
			d := desc[col]
			b.WriteString(fmt.Sprintf("  %s | %d | %.3f | %.3f | %.3f | %.3f | %.3f\n",
				col, d.Count, d.Mean, d.Median, d.Min, d.Max, d.Std))
		}
	}

	if out, ok := res.Analyses["outliers"].(map[string]stats.OutlierReport); ok && len(out) > 0 {
		b.WriteString("\nOutliers\n")
		for _, col := range sortedKeys(out) {
			rep := out[col]
			if rep.Count == 0 {
				continue
			}
			b.WriteString(fmt.Sprintf("  %s: %d values (%.1f%%) outside [%.3f, %.3f]\n",
				col, rep.Count, rep.Percentage, rep.LowerBound, rep.UpperBound))
		}
	}

	if len(res.Summary.Performance) > 0 {
		b.WriteString("\nModel performance\n")
		for _, s := range res.Summary.Performance {
			if s.Numeric {
				b.WriteString(fmt.Sprintf("  %s/%s: %s=%.4f\n", s.Analysis, s.Model, s.Metric, s.Score))
			} else {
				b.WriteString(fmt.Sprintf("  %s/%s: %s=n/a\n", s.Analysis, s.Model, s.Metric))
			}
		}
	}

	if len(res.Summary.BestModels) > 0 {
		b.WriteString("\nBest models\n")
		var kinds []string
		for k := range res.Summary.BestModels {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			m := res.Summary.BestModels[k]
			b.WriteString(fmt.Sprintf("  %s: %s (%s=%.4f)\n", k, m.Model, m.Metric, m.Score))
		}
	}

	var names []string
	for name := range res.Analyses {
		names = append(names, name)
	}
	sort.Strings(names)
	b.WriteString("\nCompleted analyses: " + strings.Join(names, ", ") + "\n")
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
