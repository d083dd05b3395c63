package analyze

import (
	"sort"

	"github.com/datavue/datavue-cli/internal/dataset"
)

// missingLabel encodes null cells in categorical features.
const missingLabel = "__missing__"

// labelEncoder assigns stable integer codes to categorical values within a
// single run. Codes grow lazily in first-seen order; a fresh encoder is built
// per run so codes never leak between datasets.
type labelEncoder struct {
	codes map[string]map[string]int
}

func newLabelEncoder() *labelEncoder {
	return &labelEncoder{codes: map[string]map[string]int{}}
}

func (e *labelEncoder) encode(column, value string) int {
	col := e.codes[column]
	if col == nil {
		col = map[string]int{}
		e.codes[column] = col
	}
	code, ok := col[value]
	if !ok {
		code = len(col)
		col[value] = code
	}
	return code
}

// mapping returns the value-to-code table of one column, for result display.
func (e *labelEncoder) mapping(column string) map[string]int {
	out := map[string]int{}
	for v, c := range e.codes[column] {
		out[v] = c
	}
	return out
}

// encodedColumns lists the columns that received any encoding, sorted.
func (e *labelEncoder) encodedColumns() []string {
	var cols []string
	for c := range e.codes {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// prepareModelingData converts session rows into the numeric payload the
// backend expects. Numeric and boolean features become float64, categorical
// and string features are label encoded, and the target column is passed
// through raw so the backend sees the original class labels.
func prepareModelingData(rows []dataset.Row, columns []dataset.Column, target string, enc *labelEncoder) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		rec := make(map[string]any, len(columns))
		for _, col := range columns {
			if !col.Selected {
				continue
			}
			v := row[col.Name]
			if col.Name == target {
				rec[col.Name] = v
				continue
			}
			switch col.Type {
			case dataset.TypeNumber, dataset.TypeBoolean:
				if f, ok := dataset.AsNumber(v); ok {
					rec[col.Name] = f
				} else {
					rec[col.Name] = nil
				}
			case dataset.TypeDate:
				rec[col.Name] = v
			default:
				label := missingLabel
				if !dataset.IsNull(v) {
					label = asLabel(v)
				}
				rec[col.Name] = float64(enc.encode(col.Name, label))
			}
		}
		out = append(out, rec)
	}
	return out
}
