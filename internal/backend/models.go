package backend

// AnalysisRequest is the common payload of the /analyze endpoints: the
// selected rows plus an analysis-specific configuration block.
type AnalysisRequest struct {
	Data   []map[string]any `json:"data"`
	Config map[string]any   `json:"config,omitempty"`
}

// PredictRequest asks the backend to score one feature vector against a
// previously trained diagnostic model.
type PredictRequest struct {
	DatasetID string             `json:"dataset_id"`
	Features  map[string]float64 `json:"features"`
}

// Prediction is one scored class candidate.
type Prediction struct {
	Class       string  `json:"class"`
	Probability float64 `json:"probability"`
}

// PredictResponse is the backend's scoring result. The top prediction comes
// back as a full class/probability object, not a bare class name.
type PredictResponse struct {
	Predictions   []Prediction `json:"predictions"`
	TopPrediction Prediction   `json:"top_prediction"`
	NFeaturesUsed int          `json:"n_features_used"`
}

// BooleanDetection is the result of the boolean-column detection pass: the
// columns recognized as boolean and the data with those columns converted.
type BooleanDetection struct {
	BooleanColumns []string         `json:"boolean_columns"`
	Data           []map[string]any `json:"data"`
	ConvertedCount int              `json:"converted_count"`
	Message        string           `json:"message"`
}

// ReportRequest bundles everything the PDF generator needs.
type ReportRequest struct {
	Data     []map[string]any `json:"data"`
	Analyses map[string]any   `json:"analyses"`
	Summary  map[string]any   `json:"summary"`
	Title    string           `json:"title,omitempty"`
}

// HealthStatus is the backend liveness response.
type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// analysisPaths maps analysis kinds to their backend endpoints.
var analysisPaths = map[string]string{
	"basic":           "/analyze/basic",
	"regression":      "/analyze/regression",
	"classification":  "/analyze/classification",
	"discriminant":    "/analyze/discriminant",
	"neural":          "/analyze/neural-networks",
	"timeSeries":      "/analyze/time-series",
	"clustering":      "/analyze/clustering-advanced",
	"advancedStats":   "/analyze/advanced-stats",
	"symptomMatching": "/analyze/symptom-matching",
	"dataCleaning":    "/clean/data",
}
