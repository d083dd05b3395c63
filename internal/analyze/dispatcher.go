// Package analyze orchestrates an analysis run: local statistics computed in
// process, advanced analyses delegated to the backend one at a time, and a
// consolidated summary over everything that succeeded.
package analyze

import (
	"context"
	"fmt"
	"time"

	"github.com/datavue/datavue-cli/internal/backend"
	"github.com/datavue/datavue-cli/internal/dataset"
	"github.com/datavue/datavue-cli/internal/stats"
)

// Config selects which analyses to run.
type Config struct {
	DescriptiveStats bool `json:"descriptiveStats"`
	Correlations     bool `json:"correlations"`
	Distributions    bool `json:"distributions"`
	Outliers         bool `json:"outliers"`
	Categorical      bool `json:"categorical"`

	Regression      bool `json:"regression"`
	Classification  bool `json:"classification"`
	Discriminant    bool `json:"discriminant"`
	NeuralNetwork   bool `json:"neuralNetwork"`
	TimeSeries      bool `json:"timeSeries"`
	Clustering      bool `json:"clustering"`
	DataCleaning    bool `json:"dataCleaning"`
	AdvancedStats   bool `json:"advancedStats"`
	SymptomMatching bool `json:"symptomMatching"`
}

// DefaultConfig enables the local analyses; advanced ones are opt in.
func DefaultConfig() Config {
	return Config{
		DescriptiveStats: true,
		Correlations:     true,
		Distributions:    true,
		Outliers:         true,
		Categorical:      true,
	}
}

// Summary is the consolidated view over one run.
type Summary struct {
	TotalRows       int                   `json:"totalRows"`
	SelectedColumns int                   `json:"selectedColumns"`
	NumericColumns  int                   `json:"numericColumns"`
	TargetColumn    string                `json:"targetColumn,omitempty"`
	AnalysisDate    string                `json:"analysisDate"`
	BestModels      map[string]ModelScore `json:"bestModels,omitempty"`
	Performance     []ModelScore          `json:"performance,omitempty"`
}

// Results holds every analysis that completed, keyed by analysis name. An
// analysis that failed is absent rather than present with an error value.
type Results struct {
	Summary  Summary        `json:"summary"`
	Analyses map[string]any `json:"analyses"`
}

// Dispatcher runs a configured set of analyses over a session.
type Dispatcher struct {
	Client   *backend.Client
	Progress func(done, total int)
	Logf     func(format string, args ...any)
}

func (d *Dispatcher) progress(done, total int) {
	if d.Progress != nil {
		d.Progress(done, total)
	}
}

func (d *Dispatcher) logf(format string, args ...any) {
	if d.Logf != nil {
		d.Logf(format, args...)
	}
}

// columnPartition splits the selected columns by how analyses consume them.
type columnPartition struct {
	numeric             []string
	numericFeatures     []string
	categoricalFeatures []string
	booleanFeatures     []string
	dates               []string
}

func partitionColumns(columns []dataset.Column, target string) columnPartition {
	var p columnPartition
	for _, col := range columns {
		if !col.Selected {
			continue
		}
		switch col.Type {
		case dataset.TypeNumber:
			p.numeric = append(p.numeric, col.Name)
			if col.Name != target {
				p.numericFeatures = append(p.numericFeatures, col.Name)
			}
		case dataset.TypeBoolean:
			if col.Name != target {
				p.numericFeatures = append(p.numericFeatures, col.Name)
				p.booleanFeatures = append(p.booleanFeatures, col.Name)
			}
		case dataset.TypeDate:
			p.dates = append(p.dates, col.Name)
		case dataset.TypeCategorical, dataset.TypeString:
			if col.Name != target {
				p.categoricalFeatures = append(p.categoricalFeatures, col.Name)
			}
		}
	}
	return p
}

// Run executes every enabled analysis. Local analyses never abort the run; a
// failure is logged and its key left out of the results. Advanced analyses go
// to the backend sequentially in a fixed order.
func (d *Dispatcher) Run(ctx context.Context, session *dataset.Session, cfg Config) (*Results, error) {
	if len(session.Rows) == 0 {
		return nil, fmt.Errorf("session has no data: run 'datavue import <file>' first")
	}

	part := partitionColumns(session.Columns, session.Target)
	res := &Results{Analyses: map[string]any{}}

	type step struct {
		name string
		run  func() (any, error)
	}
	var steps []step

	if cfg.DescriptiveStats {
		steps = append(steps, step{"descriptiveStats", func() (any, error) {
			return stats.Describe(session.Rows, part.numeric), nil
		}})
	}
	if cfg.Correlations {
		steps = append(steps, step{"correlations", func() (any, error) {
			return stats.CorrelationMatrix(session.Rows, part.numeric), nil
		}})
	}
	if cfg.Distributions {
		steps = append(steps, step{"distributions", func() (any, error) {
			return stats.Histograms(session.Rows, part.numeric), nil
		}})
	}
	if cfg.Outliers {
		steps = append(steps, step{"outliers", func() (any, error) {
			return stats.DetectOutliers(session.Rows, part.numeric), nil
		}})
	}
	if cfg.Categorical {
		steps = append(steps, step{"categorical", func() (any, error) {
			return map[string]any{
				"frequencies":  stats.Frequencies(session.Rows, part.categoricalFeatures),
				"associations": stats.ChiSquareAssociations(session.Rows, part.categoricalFeatures),
			}, nil
		}})
	}

	enc := newLabelEncoder()
	var modeling []map[string]any
	prepared := func() []map[string]any {
		if modeling == nil {
			modeling = prepareModelingData(session.Rows, session.Columns, session.Target, enc)
		}
		return modeling
	}

	for _, adv := range d.advancedSteps(session, cfg, part) {
		adv := adv
		steps = append(steps, step{adv.name, func() (any, error) {
			out, err := d.Client.Analyze(ctx, adv.kind, prepared(), adv.config)
			if err != nil {
				return nil, err
			}
			if scores := extractModelScores(adv.kind, out); len(scores) > 0 {
				res.Summary.Performance = append(res.Summary.Performance, scores...)
			}
			return out, nil
		}})
	}

	total := len(steps)
	for i, s := range steps {
		d.runStep(res, s.name, s.run)
		d.progress(i+1, total)
	}

	if len(enc.encodedColumns()) > 0 {
		encodings := map[string]any{}
		for _, col := range enc.encodedColumns() {
			encodings[col] = enc.mapping(col)
		}
		res.Analyses["encodings"] = encodings
	}

	d.consolidate(res, session, part)
	return res, nil
}

// runStep executes one analysis, converting panics in local computations into
// logged failures so a single bad column cannot kill the whole run.
func (d *Dispatcher) runStep(res *Results, name string, run func() (any, error)) {
	defer func() {
		if r := recover(); r != nil {
			d.logf("analysis %s panicked: %v", name, r)
		}
	}()
	out, err := run()
	if err != nil {
		d.logf("analysis %s failed: %v", name, err)
		return
	}
	res.Analyses[name] = out
}

type advancedStep struct {
	name   string
	kind   string
	config map[string]any
}

// advancedSteps builds the backend calls in their fixed order, skipping any
// analysis whose column requirements the session cannot meet.
func (d *Dispatcher) advancedSteps(session *dataset.Session, cfg Config, part columnPartition) []advancedStep {
	target := session.Target
	targetIsNumeric := false
	for _, col := range session.Columns {
		if col.Name == target && col.Type == dataset.TypeNumber {
			targetIsNumeric = true
		}
	}
	features := append(append([]string(nil), part.numericFeatures...), part.categoricalFeatures...)

	var steps []advancedStep
	add := func(name string, config map[string]any) {
		steps = append(steps, advancedStep{name: name, kind: name, config: config})
	}
	skip := func(name, reason string) {
		d.logf("skipping %s: %s", name, reason)
	}

	if cfg.DataCleaning {
		add("dataCleaning", map[string]any{
			"remove_duplicates": true,
			"impute_strategy":   "mean",
			"outlier_method":    "iqr",
			"scaling":           "standard",
		})
	}
	if cfg.Regression {
		switch {
		case !targetIsNumeric:
			skip("regression", "requires a numeric target column")
		case len(part.numericFeatures) == 0:
			skip("regression", "requires at least one numeric feature")
		default:
			add("regression", map[string]any{
				"methods":   []string{"linear", "polynomial", "ridge", "lasso", "elastic"},
				"target":    target,
				"test_size": 0.2,
				"cv_folds":  5,
			})
		}
	}
	if cfg.Classification {
		switch {
		case target == "":
			skip("classification", "requires a target column")
		case len(features) == 0:
			skip("classification", "requires at least one feature column")
		default:
			add("classification", map[string]any{
				"methods":   []string{"knn", "svm", "random_forest", "gradient_boosting", "decision_tree"},
				"target":    target,
				"test_size": 0.2,
				"cv_folds":  5,
			})
		}
	}
	if cfg.Discriminant {
		switch {
		case target == "":
			skip("discriminant", "requires a target column")
		case len(part.numericFeatures) < 2:
			skip("discriminant", "requires at least two numeric features")
		default:
			add("discriminant", map[string]any{
				"methods": []string{"lda", "qda"},
				"target":  target,
			})
		}
	}
	if cfg.NeuralNetwork {
		switch {
		case target == "":
			skip("neural", "requires a target column")
		case len(part.numericFeatures) == 0:
			skip("neural", "requires at least one numeric feature")
		default:
			add("neural", map[string]any{
				"model":      "mlp",
				"target":     target,
				"epochs":     100,
				"batch_size": 32,
				"test_size":  0.2,
			})
		}
	}
	if cfg.TimeSeries {
		switch {
		case len(part.dates) == 0:
			skip("timeSeries", "requires a date column")
		case len(part.numeric) == 0:
			skip("timeSeries", "requires a numeric column to forecast")
		default:
			add("timeSeries", map[string]any{
				"methods":          []string{"arima", "sarima"},
				"date_column":      part.dates[0],
				"value_column":     part.numeric[0],
				"forecast_periods": 30,
			})
		}
	}
	if cfg.Clustering {
		if len(part.numericFeatures) < 2 {
			skip("clustering", "requires at least two numeric features")
		} else {
			add("clustering", map[string]any{
				"methods":       []string{"kmeans", "dbscan", "hierarchical", "gmm"},
				"n_clusters":    3,
				"auto_optimize": true,
			})
		}
	}
	if cfg.AdvancedStats {
		if len(part.numeric) == 0 {
			skip("advancedStats", "requires at least one numeric column")
		} else {
			add("advancedStats", map[string]any{
				"normality_tests":   true,
				"correlation_tests": true,
			})
		}
	}
	if cfg.SymptomMatching {
		switch {
		case target == "":
			skip("symptomMatching", "requires a target column")
		case len(part.booleanFeatures) == 0:
			skip("symptomMatching", "requires boolean symptom columns")
		default:
			add("symptomMatching", map[string]any{
				"disease_column":  target,
				"symptom_columns": part.booleanFeatures,
				"model":           "all",
				"top_predictions": 5,
				"dataset_id":      "default",
			})
		}
	}
	return steps
}

// consolidate fills the run summary from everything that succeeded.
func (d *Dispatcher) consolidate(res *Results, session *dataset.Session, part columnPartition) {
	res.Summary.TotalRows = len(session.Rows)
	res.Summary.SelectedColumns = len(dataset.SelectedColumns(session.Columns))
	res.Summary.NumericColumns = len(part.numeric)
	res.Summary.TargetColumn = session.Target
	res.Summary.AnalysisDate = time.Now().UTC().Format(time.RFC3339)

	if len(res.Summary.Performance) > 0 {
		sortScores(res.Summary.Performance)
		best := map[string]ModelScore{}
		for _, kind := range []string{"regression", "classification", "discriminant", "neural", "clustering"} {
			var scores []ModelScore
			for _, s := range res.Summary.Performance {
				if s.Analysis == kind {
					scores = append(scores, s)
				}
			}
			if b, ok := bestModel(scores); ok {
				best[kind] = b
			}
		}
		res.Summary.BestModels = best
	}
}
