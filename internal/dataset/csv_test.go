package dataset

import (
	"strings"
	"testing"
)

func TestParseCSVQuotedFields(t *testing.T) {
	res := ParseCSV("name,desc\n\"a\",\"b,c\"\n")
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if len(res.Data) != 1 {
		t.Fatalf("expected 1 row, got %d", len(res.Data))
	}
	if got := res.Data[0]["desc"]; got != "b,c" {
		t.Errorf("quoted comma field = %v, want b,c", got)
	}
}

func TestParseCSVEscapedQuotes(t *testing.T) {
	res := ParseCSV("quote\n\"He said \"\"hi\"\" today\"\n")
	if len(res.Data) != 1 {
		t.Fatalf("expected 1 row, got %d (errors %v)", len(res.Data), res.Errors)
	}
	if got := res.Data[0]["quote"]; got != `He said "hi" today` {
		t.Errorf("escaped quote field = %q", got)
	}
}

func TestParseCSVCoercion(t *testing.T) {
	res := ParseCSV("a,b,c\n1.5,hello,\n")
	row := res.Data[0]
	if got, ok := row["a"].(float64); !ok || got != 1.5 {
		t.Errorf("numeric field = %v (%T), want 1.5", row["a"], row["a"])
	}
	if got := row["b"]; got != "hello" {
		t.Errorf("string field = %v", got)
	}
	if row["c"] != nil {
		t.Errorf("empty field = %v, want nil", row["c"])
	}
}

func TestParseCSVPartialNumberStaysString(t *testing.T) {
	res := ParseCSV("v\n12abc\n")
	if got := res.Data[0]["v"]; got != "12abc" {
		t.Errorf("partial numeric field = %v (%T), want string 12abc", got, got)
	}
}

func TestParseCSVMismatchWarnings(t *testing.T) {
	var b strings.Builder
	b.WriteString("a,b\n")
	for i := 0; i < 8; i++ {
		b.WriteString("1,2,3\n")
	}
	res := ParseCSV(b.String())
	if len(res.Data) != 8 {
		t.Fatalf("mismatched rows should be kept, got %d", len(res.Data))
	}
	warned := 0
	for _, w := range res.Warnings {
		if strings.Contains(w, "too many") {
			warned++
		}
	}
	if warned != 5 {
		t.Errorf("mismatch warnings = %d, want 5", warned)
	}
}

func TestParseCSVSkipsEmptyRows(t *testing.T) {
	res := ParseCSV("a,b\n,,\n1,2\n")
	if len(res.Data) != 1 {
		t.Fatalf("expected all-empty row to be skipped, got %d rows", len(res.Data))
	}
}

func TestParseCSVTooShort(t *testing.T) {
	res := ParseCSV("only-headers\n")
	if len(res.Errors) == 0 {
		t.Fatal("expected a fatal error for a file without data rows")
	}
}

func TestParseCSVDuplicateHeaderWarning(t *testing.T) {
	res := ParseCSV("a,a,b\n1,2,3\n")
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "duplicated column names") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a duplicate header warning, got %v", res.Warnings)
	}
}

func TestParseJSONArrayOfObjects(t *testing.T) {
	res, err := ParseJSON([]byte(`[{"x": 1, "y": "a"}, {"x": 2, "y": "b"}]`))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if len(res.Data) != 2 || len(res.Headers) != 2 {
		t.Fatalf("rows=%d headers=%v", len(res.Data), res.Headers)
	}
	if res.Headers[0] != "x" || res.Headers[1] != "y" {
		t.Errorf("headers not sorted: %v", res.Headers)
	}
}

func TestParseJSONRejectsNonArray(t *testing.T) {
	if _, err := ParseJSON([]byte(`{"x": 1}`)); err == nil {
		t.Fatal("expected an error for a non-array document")
	}
}
