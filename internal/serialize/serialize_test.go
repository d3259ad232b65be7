package serialize

import (
	"testing"

	"github.com/lucid-lang/lucid/internal/ast"
)

func sampleRecord() ast.Record {
	return ast.Record{Fields: map[string]ast.Term{
		"foo": ast.Num{Value: 1},
		"bar": ast.List{Elems: []ast.Term{ast.Bool{Value: true}, ast.Str{Value: "x"}}},
	}}
}

// recordsEqual compares two fully-forced record trees by value, since
// map iteration order is not stable and ast.Record has no Equal method
// of its own (equality on records is an evaluator concern, not a
// serialize-package one).
func recordsEqual(t *testing.T, a, b ast.Term) bool {
	t.Helper()
	ag, err := ToGo(a)
	if err != nil {
		t.Fatalf("ToGo(a): %v", err)
	}
	bg, err := ToGo(b)
	if err != nil {
		t.Fatalf("ToGo(b): %v", err)
	}
	return deepEqualGo(ag, bg)
}

func deepEqualGo(a, b any) bool {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bvv, ok := bv[k]
			if !ok || !deepEqualGo(v, bvv) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !deepEqualGo(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

func TestJSONRoundTrip(t *testing.T) {
	rec := sampleRecord()
	text, err := Marshal(rec, JSON)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	back, err := Unmarshal(text, JSON)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !recordsEqual(t, rec, back) {
		t.Fatalf("round trip mismatch: %#v vs %#v", rec, back)
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	rec := sampleRecord()
	text, err := Marshal(rec, YAML)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	back, err := Unmarshal(text, YAML)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !recordsEqual(t, rec, back) {
		t.Fatalf("round trip mismatch: %#v vs %#v", rec, back)
	}
}

func TestTOMLRoundTrip(t *testing.T) {
	rec := sampleRecord()
	text, err := Marshal(rec, TOML)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	back, err := Unmarshal(text, TOML)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !recordsEqual(t, rec, back) {
		t.Fatalf("round trip mismatch: %#v vs %#v", rec, back)
	}
}

func TestToGoRejectsUnforcedValues(t *testing.T) {
	if _, err := ToGo(ast.Closure{}); err == nil {
		t.Fatalf("expected ToGo to reject a function value")
	}
}

func TestJSONGetAndSet(t *testing.T) {
	doc := `{"a":{"b":1}}`
	v, ok := JSONGet(doc, "a.b")
	if !ok || v != "1" {
		t.Fatalf("JSONGet: got (%q, %v), want (\"1\", true)", v, ok)
	}
	updated, err := JSONSet(doc, "a.b", "2")
	if err != nil {
		t.Fatalf("JSONSet: %v", err)
	}
	v2, _ := JSONGet(updated, "a.b")
	if v2 != "2" {
		t.Fatalf("JSONSet: got %q after update, want \"2\"", v2)
	}
}

func TestEnumMarshalsAsString(t *testing.T) {
	text, err := Marshal(ast.Record{Fields: map[string]ast.Term{
		"status": ast.Enum{Tag: "ok"},
	}}, JSON)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if text == "" {
		t.Fatalf("expected non-empty JSON output")
	}
	back, err := Unmarshal(text, JSON)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	rec := back.(ast.Record)
	s, ok := rec.Fields["status"].(ast.Str)
	if !ok || s.Value != "ok" {
		t.Fatalf("expected enum to round-trip as the string \"ok\", got %#v", rec.Fields["status"])
	}
}
