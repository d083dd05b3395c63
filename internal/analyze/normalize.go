package analyze

import (
	"fmt"
	"sort"
	"strconv"
)

// Backends vary in how they spell metric and container keys across versions.
// Normalization reads through the known aliases so the rest of the pipeline
// sees one shape.
var (
	modelContainerAliases = []string{"models", "results", "model_results"}
	scoreAliases          = map[string][]string{
		"regression":     {"r2", "r2_score", "test_r2"},
		"classification": {"accuracy", "test_accuracy", "acc"},
		"discriminant":   {"accuracy", "test_accuracy", "acc"},
		"neural":         {"accuracy", "test_accuracy", "r2"},
		"clustering":     {"silhouette", "silhouette_score"},
	}
)

// ModelScore is one trained model with its headline metric.
type ModelScore struct {
	Analysis string  `json:"analysis"`
	Model    string  `json:"model"`
	Metric   string  `json:"metric"`
	Score    float64 `json:"score"`
	Numeric  bool    `json:"-"`
}

// extractModelScores pulls per-model headline scores out of one analysis
// response. Responses without a recognizable model container yield nothing.
func extractModelScores(kind string, result map[string]any) []ModelScore {
	aliases, ok := scoreAliases[kind]
	if !ok {
		return nil
	}

	container := result
	for _, key := range modelContainerAliases {
		if inner, ok := result[key].(map[string]any); ok {
			container = inner
			break
		}
	}

	var scores []ModelScore
	for model, v := range container {
		doc, ok := v.(map[string]any)
		if !ok {
			continue
		}
		raw, found := lookupMetric(doc, aliases)
		if !found {
			continue
		}
		ms := ModelScore{Analysis: kind, Model: model, Metric: aliases[0]}
		if f, ok := numericScore(raw); ok {
			ms.Score = f
			ms.Numeric = true
		}
		scores = append(scores, ms)
	}
	return scores
}

// lookupMetric reads the first matching alias from the model document,
// descending into a metrics/test_metrics block when the top level has none.
func lookupMetric(doc map[string]any, aliases []string) (any, bool) {
	for _, alias := range aliases {
		if raw, ok := doc[alias]; ok {
			return raw, true
		}
	}
	for _, nested := range []string{"test_metrics", "metrics"} {
		inner, ok := doc[nested].(map[string]any)
		if !ok {
			continue
		}
		for _, alias := range aliases {
			if raw, ok := inner[alias]; ok {
				return raw, true
			}
		}
	}
	return nil, false
}

// bestModel picks the highest-scoring model of one analysis. Non-numeric
// scores never win over numeric ones.
func bestModel(scores []ModelScore) (ModelScore, bool) {
	if len(scores) == 0 {
		return ModelScore{}, false
	}
	sortScores(scores)
	return scores[0], true
}

// sortScores orders scores descending, with non-numeric scores after all
// numeric ones and ties broken by model name for stable output.
func sortScores(scores []ModelScore) {
	sort.Slice(scores, func(i, j int) bool {
		a, b := scores[i], scores[j]
		if a.Numeric != b.Numeric {
			return a.Numeric
		}
		if a.Numeric && a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Analysis != b.Analysis {
			return a.Analysis < b.Analysis
		}
		return a.Model < b.Model
	})
}

func numericScore(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func asLabel(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return fmt.Sprint(v)
}
