package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MaxFileSize is the hard import ceiling. The UI copy historically advertised
// 10MB; the validator limit is authoritative.
const MaxFileSize = 100 * 1024 * 1024

// ValidateFile checks extension and size before any content is read.
func ValidateFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}
	if info.Size() > MaxFileSize {
		return fmt.Errorf("file too large (%.2fMB > 100MB)", float64(info.Size())/1024/1024)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".json":
		return nil
	default:
		return fmt.Errorf("unsupported file format %q: use CSV or JSON", filepath.Ext(path))
	}
}

// LoadFile reads and parses a .csv or .json dataset file.
func LoadFile(path string) (*ParseResult, error) {
	if err := ValidateFile(path); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("file is empty")
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseJSON(raw)
	}
	return ParseCSV(string(raw)), nil
}

// ParseJSON decodes a JSON dataset. The document must be an array of objects;
// anything else is a fatal import error.
func ParseJSON(raw []byte) (*ParseResult, error) {
	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("JSON file must contain an array of objects: %w", err)
	}
	res := &ParseResult{}
	for _, m := range rows {
		res.Data = append(res.Data, Row(m))
	}
	if len(res.Data) == 0 {
		res.Errors = append(res.Errors, "no valid data rows found")
		return res, nil
	}
	// JSON objects carry no column order; sort for a stable wizard layout.
	for key := range res.Data[0] {
		res.Headers = append(res.Headers, key)
	}
	sort.Strings(res.Headers)
	res.Stats = ParseStats{
		RowCount:      len(res.Data),
		ColumnCount:   len(res.Headers),
		EstimatedSize: len(raw),
	}
	return res, nil
}
