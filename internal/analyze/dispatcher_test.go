package analyze

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"testing"
	"time"

	"github.com/datavue/datavue-cli/internal/backend"
	"github.com/datavue/datavue-cli/internal/dataset"
)

func testServer(t *testing.T, handler http.Handler) (string, func()) {
	t.Helper()
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		if errors.Is(err, syscall.EACCES) || errors.Is(err, syscall.EPERM) {
			t.Skipf("skipping test: cannot open local listener (%v)", err)
		}
		t.Fatalf("listen tcp4: %v", err)
	}
	srv := &http.Server{Handler: handler}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic(fmt.Sprintf("test server serve: %v", err))
		}
	}()
	return "http://" + ln.Addr().String(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func testSession() *dataset.Session {
	rows := []dataset.Row{
		{"age": float64(30), "income": float64(1200), "city": "paris", "outcome": "yes"},
		{"age": float64(45), "income": float64(2400), "city": "lyon", "outcome": "no"},
		{"age": float64(28), "income": float64(1800), "city": "paris", "outcome": "yes"},
		{"age": float64(52), "income": float64(3100), "city": "nice", "outcome": "no"},
	}
	return &dataset.Session{
		ID:     "test",
		Source: "test.csv",
		Target: "outcome",
		Rows:   rows,
		Columns: []dataset.Column{
			{Name: "age", Type: dataset.TypeNumber, Selected: true},
			{Name: "income", Type: dataset.TypeNumber, Selected: true},
			{Name: "city", Type: dataset.TypeCategorical, Selected: true},
			{Name: "outcome", Type: dataset.TypeCategorical, Selected: true},
		},
	}
}

func dispatcher(t *testing.T, baseURL string) *Dispatcher {
	t.Helper()
	return &Dispatcher{
		Client: backend.NewClient(baseURL, 2*time.Second, 1, 10*time.Millisecond, 100*time.Millisecond),
		Logf:   t.Logf,
	}
}

func TestRunLocalAnalyses(t *testing.T) {
	d := dispatcher(t, "http://127.0.0.1:1")
	res, err := d.Run(context.Background(), testSession(), DefaultConfig())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, key := range []string{"descriptiveStats", "correlations", "distributions", "outliers", "categorical"} {
		if _, ok := res.Analyses[key]; !ok {
			t.Errorf("missing analysis %s", key)
		}
	}
	if res.Summary.TotalRows != 4 || res.Summary.NumericColumns != 2 {
		t.Errorf("summary = %+v", res.Summary)
	}
	if res.Summary.TargetColumn != "outcome" {
		t.Errorf("target = %s", res.Summary.TargetColumn)
	}
}

func TestRunClassificationAndBestModel(t *testing.T) {
	url, closeSrv := testServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/analyze/classification" {
			http.NotFound(w, r)
			return
		}
		var req backend.AnalysisRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Data) != 4 {
			t.Errorf("data rows = %d, want 4", len(req.Data))
		}
		// Categorical features must arrive label encoded.
		if _, ok := req.Data[0]["city"].(float64); !ok {
			t.Errorf("city not encoded: %v (%T)", req.Data[0]["city"], req.Data[0]["city"])
		}
		// The target stays raw.
		if _, ok := req.Data[0]["outcome"].(string); !ok {
			t.Errorf("outcome should stay raw: %v", req.Data[0]["outcome"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"models": map[string]any{
				"knn":           map[string]any{"accuracy": 0.81},
				"random_forest": map[string]any{"test_accuracy": 0.92},
			},
		})
	}))
	defer closeSrv()

	cfg := Config{Classification: true}
	res, err := dispatcher(t, url).Run(context.Background(), testSession(), cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, ok := res.Analyses["classification"]; !ok {
		t.Fatal("classification result missing")
	}
	best, ok := res.Summary.BestModels["classification"]
	if !ok {
		t.Fatal("best model missing")
	}
	if best.Model != "random_forest" || best.Score != 0.92 {
		t.Errorf("best = %+v", best)
	}
}

func TestRunFailedAnalysisAbsent(t *testing.T) {
	url, closeSrv := testServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "boom"})
	}))
	defer closeSrv()

	cfg := DefaultConfig()
	cfg.Classification = true
	res, err := dispatcher(t, url).Run(context.Background(), testSession(), cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, ok := res.Analyses["classification"]; ok {
		t.Error("failed analysis should be absent from results")
	}
	if _, ok := res.Analyses["descriptiveStats"]; !ok {
		t.Error("local analyses should survive a backend failure")
	}
}

func TestRunProgressCounts(t *testing.T) {
	d := dispatcher(t, "http://127.0.0.1:1")
	var calls []int
	var total int
	d.Progress = func(done, n int) {
		calls = append(calls, done)
		total = n
	}
	if _, err := d.Run(context.Background(), testSession(), DefaultConfig()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if total != 5 || len(calls) != 5 {
		t.Fatalf("progress total=%d calls=%v", total, calls)
	}
	for i, done := range calls {
		if done != i+1 {
			t.Errorf("progress step %d = %d", i, done)
		}
	}
}

func TestRunSkipsIneligibleAnalyses(t *testing.T) {
	session := testSession()
	session.Target = ""
	var skipped []string
	d := dispatcher(t, "http://127.0.0.1:1")
	d.Logf = func(format string, args ...any) {
		skipped = append(skipped, fmt.Sprintf(format, args...))
	}

	cfg := Config{Classification: true, Regression: true}
	res, err := d.Run(context.Background(), session, cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Analyses) != 0 {
		t.Errorf("no analysis should run without a target: %v", res.Analyses)
	}
	if len(skipped) != 2 {
		t.Errorf("skip messages = %v", skipped)
	}
}

func TestRunEmptySession(t *testing.T) {
	d := dispatcher(t, "http://127.0.0.1:1")
	if _, err := d.Run(context.Background(), &dataset.Session{}, DefaultConfig()); err == nil {
		t.Fatal("expected an error for an empty session")
	}
}

func TestLabelEncoderStableCodes(t *testing.T) {
	enc := newLabelEncoder()
	if enc.encode("city", "paris") != 0 || enc.encode("city", "lyon") != 1 {
		t.Error("codes should grow in first-seen order")
	}
	if enc.encode("city", "paris") != 0 {
		t.Error("repeated value must keep its code")
	}
	if enc.encode("other", "paris") != 0 {
		t.Error("codes are per column")
	}
}

func TestPrepareModelingDataMissingSentinel(t *testing.T) {
	enc := newLabelEncoder()
	rows := []dataset.Row{{"city": "paris"}, {"city": nil}}
	cols := []dataset.Column{{Name: "city", Type: dataset.TypeCategorical, Selected: true}}
	out := prepareModelingData(rows, cols, "", enc)
	if out[0]["city"] != float64(0) {
		t.Errorf("first value = %v", out[0]["city"])
	}
	if out[1]["city"] != float64(1) {
		t.Errorf("missing value should encode the sentinel: %v", out[1]["city"])
	}
	mapping := enc.mapping("city")
	if _, ok := mapping[missingLabel]; !ok {
		t.Errorf("mapping lacks the missing sentinel: %v", mapping)
	}
}
