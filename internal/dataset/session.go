package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Session is the wizard state shared between CLI steps: exactly one active
// dataset plus its curated columns and optional target. Importing a new file
// replaces the whole session, which discards all derived state at once.
type Session struct {
	ID        string    `yaml:"id"`
	Source    string    `yaml:"source"`
	CreatedAt time.Time `yaml:"created_at"`
	Target    string    `yaml:"target,omitempty"`
	Columns   []Column  `yaml:"columns"`
	Rows      []Row     `yaml:"rows"`
}

// NewSession starts a fresh session for the given source file.
func NewSession(source string, rows []Row, columns []Column) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Source:    source,
		CreatedAt: time.Now().UTC(),
		Columns:   columns,
		Rows:      rows,
	}
}

// Save writes the session to path, creating parent directories as needed.
func (s *Session) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir session dir: %w", err)
	}
	b, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// LoadSession reads a session file written by Save.
func LoadSession(path string) (*Session, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no active session: run 'datavue import <file>' first")
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	var s Session
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	// YAML decodes whole numbers as ints; cell values are float64 everywhere
	// else in the pipeline.
	for _, row := range s.Rows {
		for k, v := range row {
			row[k] = normalizeScalar(v)
		}
	}
	for i := range s.Columns {
		for j, v := range s.Columns[i].Sample {
			s.Columns[i].Sample[j] = normalizeScalar(v)
		}
		for j, v := range s.Columns[i].UniqueValues {
			s.Columns[i].UniqueValues[j] = normalizeScalar(v)
		}
	}
	return &s, nil
}

func normalizeScalar(v any) any {
	switch t := v.(type) {
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	}
	return v
}

// ColumnOrder returns the column names in session order.
func (s *Session) ColumnOrder() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}
