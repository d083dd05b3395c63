package dataset

import (
	"path/filepath"
	"testing"
)

func TestSessionRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	rows := []Row{
		{"age": float64(30), "name": "alice"},
		{"age": float64(45), "name": "bob"},
	}
	cols := InferColumns(rows, []string{"age", "name"})
	s := NewSession("people.csv", rows, cols)
	s.Target = "age"

	if err := s.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := LoadSession(path)
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if loaded.ID != s.ID || loaded.Target != "age" || loaded.Source != "people.csv" {
		t.Errorf("loaded session mismatch: %+v", loaded)
	}
	if len(loaded.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(loaded.Rows))
	}
	// YAML integers must come back as float64 cells.
	if v, ok := loaded.Rows[0]["age"].(float64); !ok || v != 30 {
		t.Errorf("age cell = %v (%T), want float64 30", loaded.Rows[0]["age"], loaded.Rows[0]["age"])
	}
}

func TestLoadSessionMissingFile(t *testing.T) {
	_, err := LoadSession(filepath.Join(t.TempDir(), "none.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing session file")
	}
}
