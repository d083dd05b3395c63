package dataset

import "testing"

func rowsFrom(col string, values ...any) []Row {
	rows := make([]Row, len(values))
	for i, v := range values {
		rows[i] = Row{col: v}
	}
	return rows
}

func inferOne(t *testing.T, values ...any) Column {
	t.Helper()
	cols := InferColumns(rowsFrom("v", values...), []string{"v"})
	if len(cols) != 1 {
		t.Fatalf("expected 1 column, got %d", len(cols))
	}
	return cols[0]
}

func TestInferBoolean(t *testing.T) {
	col := inferOne(t, float64(0), float64(1), float64(1), float64(0), float64(1))
	if col.Type != TypeBoolean {
		t.Errorf("0/1 column = %s, want boolean", col.Type)
	}
	col = inferOne(t, "oui", "non", "oui", "non", "oui")
	if col.Type != TypeBoolean {
		t.Errorf("oui/non column = %s, want boolean", col.Type)
	}
}

func TestInferNumber(t *testing.T) {
	col := inferOne(t, float64(3), float64(7), float64(42), float64(9), float64(12))
	if col.Type != TypeNumber {
		t.Errorf("numeric column = %s, want number", col.Type)
	}
}

func TestInferDate(t *testing.T) {
	col := inferOne(t, "2024-01-01", "2024-02-15", "2024-03-30", "2024-04-12", "2024-05-01")
	if col.Type != TypeDate {
		t.Errorf("date column = %s, want date", col.Type)
	}
}

func TestInferCategorical(t *testing.T) {
	values := make([]any, 100)
	labels := []string{"red", "green", "blue"}
	for i := range values {
		values[i] = labels[i%3]
	}
	col := inferOne(t, values...)
	if col.Type != TypeCategorical {
		t.Errorf("3 labels over 100 rows = %s, want categorical", col.Type)
	}
	if len(col.UniqueValues) != 3 {
		t.Errorf("unique values = %v", col.UniqueValues)
	}
}

func TestInferStringWhenHighCardinality(t *testing.T) {
	values := make([]any, 20)
	for i := range values {
		values[i] = string(rune('a' + i))
	}
	col := inferOne(t, values...)
	if col.Type != TypeString {
		t.Errorf("distinct strings = %s, want string", col.Type)
	}
}

func TestInferDeselectsIndexColumns(t *testing.T) {
	rows := []Row{{"id": float64(1), "value": float64(10)}, {"id": float64(2), "value": float64(20)}}
	cols := InferColumns(rows, []string{"id", "value"})
	if cols[0].Selected {
		t.Error("id column should start deselected")
	}
	if !cols[1].Selected {
		t.Error("value column should start selected")
	}
}

func TestInferSampleKept(t *testing.T) {
	values := make([]any, 10)
	for i := range values {
		values[i] = float64(i)
	}
	col := inferOne(t, values...)
	if len(col.Sample) != 5 {
		t.Errorf("sample size = %d, want 5", len(col.Sample))
	}
}
