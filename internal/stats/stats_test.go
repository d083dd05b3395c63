package stats

import (
	"math"
	"testing"

	"github.com/datavue/datavue-cli/internal/dataset"
)

func numericRows(col string, values ...float64) []dataset.Row {
	rows := make([]dataset.Row, len(values))
	for i, v := range values {
		rows[i] = dataset.Row{col: v}
	}
	return rows
}

func TestDescribe(t *testing.T) {
	rows := numericRows("v", 1, 2, 3, 4)
	d, ok := Describe(rows, []string{"v"})["v"]
	if !ok {
		t.Fatal("missing column v")
	}
	if d.Count != 4 || d.Min != 1 || d.Max != 4 {
		t.Errorf("count/min/max = %d/%v/%v", d.Count, d.Min, d.Max)
	}
	if d.Mean != 2.5 {
		t.Errorf("mean = %v, want 2.5", d.Mean)
	}
	if d.Median != 2.5 {
		t.Errorf("even-length median = %v, want 2.5", d.Median)
	}
	wantStd := math.Sqrt(1.25)
	if math.Abs(d.Std-wantStd) > 1e-9 {
		t.Errorf("population std = %v, want %v", d.Std, wantStd)
	}
}

func TestDescribeSkipsNonNumeric(t *testing.T) {
	rows := []dataset.Row{{"v": "abc"}, {"v": nil}}
	if out := Describe(rows, []string{"v"}); len(out) != 0 {
		t.Errorf("expected no entry for a non-numeric column, got %v", out)
	}
}

func TestCorrelationMatrix(t *testing.T) {
	rows := make([]dataset.Row, 5)
	for i := range rows {
		f := float64(i)
		rows[i] = dataset.Row{"x": f, "y": f * 2, "z": 4 - f}
	}
	m := CorrelationMatrix(rows, []string{"x", "y", "z"})
	if m["x"]["x"] != 1 {
		t.Errorf("self correlation = %v", m["x"]["x"])
	}
	if math.Abs(m["x"]["y"]-1) > 1e-9 {
		t.Errorf("x~y = %v, want 1", m["x"]["y"])
	}
	if math.Abs(m["x"]["z"]+1) > 1e-9 {
		t.Errorf("x~z = %v, want -1", m["x"]["z"])
	}
}

func TestCorrelationZeroVariance(t *testing.T) {
	rows := []dataset.Row{
		{"x": float64(1), "c": float64(5)},
		{"x": float64(2), "c": float64(5)},
	}
	m := CorrelationMatrix(rows, []string{"x", "c"})
	if m["x"]["c"] != 0 {
		t.Errorf("constant column correlation = %v, want 0", m["x"]["c"])
	}
}

func TestHistograms(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i)
	}
	h := Histograms(numericRows("v", values...), []string{"v"})["v"]
	if len(h.Counts) != 10 || len(h.BinEdges) != 11 {
		t.Fatalf("bins = %d edges = %d", len(h.Counts), len(h.BinEdges))
	}
	total := 0
	for _, c := range h.Counts {
		total += c
	}
	if total != 100 {
		t.Errorf("binned values = %d, want 100", total)
	}
	// The maximum lands in the last bin, not past it.
	if h.Counts[9] != 10 {
		t.Errorf("last bin = %d, want 10", h.Counts[9])
	}
}

func TestDetectOutliers(t *testing.T) {
	out := DetectOutliers(numericRows("v", 1, 2, 3, 4, 100), []string{"v"})["v"]
	if out.Count != 1 {
		t.Fatalf("outlier count = %d, want 1", out.Count)
	}
	if out.Points[0].Value != 100 || out.Points[0].Index != 4 {
		t.Errorf("outlier point = %+v", out.Points[0])
	}
	if out.Percentage != 20 {
		t.Errorf("percentage = %v, want 20", out.Percentage)
	}
}

func TestFrequencies(t *testing.T) {
	rows := []dataset.Row{
		{"c": "a"}, {"c": "a"}, {"c": "a"}, {"c": "b"}, {"c": nil},
	}
	f := Frequencies(rows, []string{"c"})["c"]
	if f.Mode != "a" || f.ModeFrequency != 3 {
		t.Errorf("mode = %s/%d", f.Mode, f.ModeFrequency)
	}
	if f.UniqueCount != 2 {
		t.Errorf("unique = %d, want 2", f.UniqueCount)
	}
	if f.Percentages[0] != 75 {
		t.Errorf("mode percentage = %v, want 75", f.Percentages[0])
	}
}

func TestChiSquareIndependentColumns(t *testing.T) {
	// Uniform independent contingency table: chi-square must be ~0.
	var rows []dataset.Row
	for i := 0; i < 40; i++ {
		a := "x"
		if i%2 == 0 {
			a = "y"
		}
		b := "u"
		if (i/2)%2 == 0 {
			b = "v"
		}
		rows = append(rows, dataset.Row{"a": a, "b": b})
	}
	assocs := ChiSquareAssociations(rows, []string{"a", "b"})
	if len(assocs) != 1 {
		t.Fatalf("associations = %d, want 1", len(assocs))
	}
	if assocs[0].Interpretation != "not significant" {
		t.Errorf("independent columns flagged %s (chi=%v)", assocs[0].Interpretation, assocs[0].ChiSquare)
	}
	if assocs[0].DegreesOfFreedom != 1 {
		t.Errorf("dof = %d, want 1", assocs[0].DegreesOfFreedom)
	}
}

func TestChiSquareIgnoresNullPairs(t *testing.T) {
	// Rows with a missing value must not contribute a phantom category.
	var rows []dataset.Row
	for i := 0; i < 40; i++ {
		a := "x"
		if i%2 == 0 {
			a = "y"
		}
		b := "u"
		if (i/2)%2 == 0 {
			b = "v"
		}
		rows = append(rows, dataset.Row{"a": a, "b": b})
	}
	rows = append(rows,
		dataset.Row{"a": "x", "b": nil},
		dataset.Row{"a": nil, "b": "u"},
		dataset.Row{"a": nil, "b": nil},
	)
	assocs := ChiSquareAssociations(rows, []string{"a", "b"})
	if len(assocs) != 1 {
		t.Fatalf("associations = %d, want 1", len(assocs))
	}
	// Still a 2x2 table: the nulls never became a third category.
	if assocs[0].DegreesOfFreedom != 1 {
		t.Errorf("dof = %d, want 1", assocs[0].DegreesOfFreedom)
	}
	if assocs[0].Interpretation != "not significant" {
		t.Errorf("interpretation = %s (chi=%v)", assocs[0].Interpretation, assocs[0].ChiSquare)
	}
}

func TestChiSquareAllNulls(t *testing.T) {
	rows := []dataset.Row{{"a": nil, "b": nil}, {"a": nil, "b": nil}}
	assocs := ChiSquareAssociations(rows, []string{"a", "b"})
	if assocs[0].ChiSquare != 0 || assocs[0].DegreesOfFreedom != 0 {
		t.Errorf("empty table chi/dof = %v/%d, want 0/0", assocs[0].ChiSquare, assocs[0].DegreesOfFreedom)
	}
}

func TestChiSquareDependentColumns(t *testing.T) {
	var rows []dataset.Row
	for i := 0; i < 40; i++ {
		if i%2 == 0 {
			rows = append(rows, dataset.Row{"a": "x", "b": "u"})
		} else {
			rows = append(rows, dataset.Row{"a": "y", "b": "v"})
		}
	}
	assocs := ChiSquareAssociations(rows, []string{"a", "b"})
	if assocs[0].Interpretation != "significant" {
		t.Errorf("perfectly dependent columns flagged %s (chi=%v)", assocs[0].Interpretation, assocs[0].ChiSquare)
	}
}
