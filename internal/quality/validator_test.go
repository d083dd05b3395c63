package quality

import (
	"testing"

	"github.com/datavue/datavue-cli/internal/dataset"
)

func TestValidateCleanDataset(t *testing.T) {
	rows := []dataset.Row{
		{"age": float64(30), "city": "paris"},
		{"age": float64(45), "city": "lyon"},
		{"age": float64(28), "city": "nice"},
	}
	report := Validate(rows, []string{"age", "city"})

	if !report.IsValid {
		t.Errorf("clean dataset should be valid: issues %v", report.Issues)
	}
	if report.Quality.Completeness != 100 {
		t.Errorf("completeness = %v, want 100", report.Quality.Completeness)
	}
	if report.Quality.DuplicateRows != 0 {
		t.Errorf("duplicates = %d, want 0", report.Quality.DuplicateRows)
	}
	if report.Quality.UniquenessRatio != 1 {
		t.Errorf("uniqueness = %v, want 1", report.Quality.UniquenessRatio)
	}
}

func TestValidateSingleValueColumn(t *testing.T) {
	rows := []dataset.Row{
		{"flat": float64(5)},
		{"flat": float64(5)},
		{"flat": float64(5)},
	}
	report := Validate(rows, []string{"flat"})

	a := report.Columns["flat"]
	if a.Variance != 0 {
		t.Errorf("variance = %v, want 0", a.Variance)
	}
	if a.Issue == "" {
		t.Error("single-value column should carry an issue")
	}
	if len(report.ProblematicColumns) != 1 || report.ProblematicColumns[0] != "flat" {
		t.Errorf("problematic columns = %v", report.ProblematicColumns)
	}
}

func TestValidateMostlyNullColumnInvalidates(t *testing.T) {
	rows := make([]dataset.Row, 10)
	for i := range rows {
		rows[i] = dataset.Row{"sparse": nil}
	}
	rows[0]["sparse"] = float64(1)
	report := Validate(rows, []string{"sparse"})

	if report.IsValid {
		t.Error("a 90% null dataset should be invalid")
	}
	if report.Columns["sparse"].NullCount != 9 {
		t.Errorf("null count = %d, want 9", report.Columns["sparse"].NullCount)
	}
}

func TestValidateDuplicateRows(t *testing.T) {
	rows := []dataset.Row{
		{"a": float64(1), "b": "x"},
		{"a": float64(1), "b": "x"},
		{"a": float64(2), "b": "y"},
	}
	report := Validate(rows, []string{"a", "b"})
	if report.Quality.DuplicateRows != 1 {
		t.Errorf("duplicates = %d, want 1", report.Quality.DuplicateRows)
	}
}

func TestValidateIdempotent(t *testing.T) {
	rows := []dataset.Row{
		{"a": float64(1), "b": nil},
		{"a": nil, "b": "x"},
	}
	first := Validate(rows, []string{"a", "b"})
	second := Validate(rows, []string{"a", "b"})
	if first.Quality != second.Quality {
		t.Errorf("quality metrics differ across runs: %+v vs %+v", first.Quality, second.Quality)
	}
}

func TestSuggestBestColumns(t *testing.T) {
	rows := make([]dataset.Row, 10)
	for i := range rows {
		rows[i] = dataset.Row{
			"good":   float64(i),
			"flat":   float64(7),
			"sparse": nil,
		}
	}
	rows[0]["sparse"] = float64(1)

	best := SuggestBestColumns(rows, 10, 0.7)
	if len(best) != 2 {
		t.Fatalf("best = %v, want good and flat", best)
	}
	if best[0] != "good" {
		t.Errorf("first suggestion = %s, want good (zero-variance penalty)", best[0])
	}
	for _, name := range best {
		if name == "sparse" {
			t.Error("sparse column below completeness floor should be excluded")
		}
	}

	capped := SuggestBestColumns(rows, 1, 0.7)
	if len(capped) != 1 {
		t.Errorf("maxColumns cap not applied: %v", capped)
	}
}
