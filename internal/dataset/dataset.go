package dataset

// Row is one record of the active dataset. Values are float64, string, bool,
// or nil for missing cells.
type Row map[string]any

// ColumnType is the inferred kind of a column.
type ColumnType string

const (
	TypeNumber      ColumnType = "number"
	TypeString      ColumnType = "string"
	TypeDate        ColumnType = "date"
	TypeBoolean     ColumnType = "boolean"
	TypeCategorical ColumnType = "categorical"
)

// Column describes one dataset column as detected at import time. Type and
// Selected may be overridden by the user afterwards.
type Column struct {
	Name         string     `yaml:"name" json:"name"`
	Type         ColumnType `yaml:"type" json:"type"`
	Selected     bool       `yaml:"selected" json:"selected"`
	Sample       []any      `yaml:"sample,omitempty" json:"sample,omitempty"`
	UniqueValues []any      `yaml:"unique_values,omitempty" json:"unique_values,omitempty"`
}

// IsNull reports whether a cell counts as missing: nil or the empty string.
func IsNull(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

// SelectedColumns filters cols down to the selected subset.
func SelectedColumns(cols []Column) []Column {
	out := make([]Column, 0, len(cols))
	for _, c := range cols {
		if c.Selected {
			out = append(out, c)
		}
	}
	return out
}

// ColumnByName returns a pointer into cols for the named column, or nil.
func ColumnByName(cols []Column, name string) *Column {
	for i := range cols {
		if cols[i].Name == name {
			return &cols[i]
		}
	}
	return nil
}
