package eval

import (
	"errors"
	"testing"

	"github.com/lucid-lang/lucid/internal/ast"
	"github.com/lucid-lang/lucid/internal/diag"
	"github.com/lucid-lang/lucid/internal/ident"
	"github.com/lucid-lang/lucid/internal/runtime"
)

func newEvaluator() *Evaluator {
	return New(ident.New(), nil)
}

func TestEqualComparesRecordsByKeySetAndForcedValue(t *testing.T) {
	ev := newEvaluator()
	a := ast.Record{Fields: map[string]ast.Term{"x": ast.Num{Value: 1}}}
	b := ast.Record{Fields: map[string]ast.Term{"x": ast.Num{Value: 1}}}
	eq, err := ev.Equal(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !eq {
		t.Fatalf("expected equal records with the same key set and values to compare equal")
	}

	c := ast.Record{Fields: map[string]ast.Term{"x": ast.Num{Value: 1}, "y": ast.Num{Value: 2}}}
	eq, err = ev.Equal(a, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eq {
		t.Fatalf("expected records with different key sets to compare unequal")
	}
}

func TestEqualFunctionsErrorInsteadOfComparing(t *testing.T) {
	ev := newEvaluator()
	_, err := ev.Equal(ast.Closure{}, ast.Closure{})
	if err == nil {
		t.Fatalf("functions/closures are not equatable and must error on ==, not silently return false")
	}
}

func TestEqualListsCompareElementwise(t *testing.T) {
	ev := newEvaluator()
	a := ast.List{Elems: []ast.Term{ast.Num{Value: 1}, ast.Num{Value: 2}}}
	b := ast.List{Elems: []ast.Term{ast.Num{Value: 1}, ast.Num{Value: 1 + 1}}}
	eq, err := ev.Equal(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !eq {
		t.Fatalf("expected elementwise-equal lists to compare equal")
	}
}

func TestMergeRecordsUnionsDisjointFields(t *testing.T) {
	ev := newEvaluator()
	a := ast.Record{Fields: map[string]ast.Term{"a": ast.Num{Value: 1}}}
	b := ast.Record{Fields: map[string]ast.Term{"b": ast.Num{Value: 2}}}
	v, err := ev.MergeRecords(ident.NoPos, a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := v.(ast.Record)
	if len(rec.Fields) != 2 {
		t.Fatalf("expected 2 fields in the union, got %d", len(rec.Fields))
	}
}

func TestMergeRecordsRecursesOnCommonRecordFields(t *testing.T) {
	ev := newEvaluator()
	a := ast.Record{Fields: map[string]ast.Term{
		"nested": ast.Record{Fields: map[string]ast.Term{"x": ast.Num{Value: 1}}},
	}}
	b := ast.Record{Fields: map[string]ast.Term{
		"nested": ast.Record{Fields: map[string]ast.Term{"y": ast.Num{Value: 2}}},
	}}
	v, err := ev.MergeRecords(ident.NoPos, a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := v.(ast.Record)
	nested, err := ev.Force(rec.Fields["nested"], nil)
	if err != nil {
		t.Fatalf("unexpected error forcing nested field: %v", err)
	}
	nestedRec := nested.(ast.Record)
	if len(nestedRec.Fields) != 2 {
		t.Fatalf("expected the nested records to merge into 2 fields, got %d", len(nestedRec.Fields))
	}
}

func TestMergeRecordsIdempotentOnEqualConcreteValues(t *testing.T) {
	ev := newEvaluator()
	a := ast.Record{Fields: map[string]ast.Term{"a": ast.Num{Value: 1}}}
	b := ast.Record{Fields: map[string]ast.Term{"a": ast.Num{Value: 1}}}
	v, err := ev.MergeRecords(ident.NoPos, a, b)
	if err != nil {
		t.Fatalf("merge must be idempotent on equal records (`r & r == r`), got error: %v", err)
	}
	rec := v.(ast.Record)
	forced, err := ev.Force(rec.Fields["a"], nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, ok := forced.(ast.Num); !ok || n.Value != 1 {
		t.Fatalf("expected the merged field to keep the common value, got %#v", forced)
	}
}

func TestMergeRecordsConflictOnConcreteNonRecordValues(t *testing.T) {
	ev := newEvaluator()
	a := ast.Record{Fields: map[string]ast.Term{"a": ast.Num{Value: 1}}}
	b := ast.Record{Fields: map[string]ast.Term{"a": ast.Num{Value: 2}}}
	if _, err := ev.MergeRecords(ident.NoPos, a, b); err == nil {
		t.Fatalf("expected a merge conflict for two concrete, non-mergeable values on the same field")
	}
}

func TestMergeRecordsDefaultPriorityYieldsToConcreteValue(t *testing.T) {
	ev := newEvaluator()
	env := runtime.NewEnv()
	a := ast.Record{Fields: map[string]ast.Term{
		"a": runtime.NewThunk(ast.MetaValue{Value: ast.Num{Value: 1}, Priority: ast.PriorityDefault}, env),
	}}
	b := ast.Record{Fields: map[string]ast.Term{"a": ast.Num{Value: 2}}}
	v, err := ev.MergeRecords(ident.NoPos, a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := v.(ast.Record)
	forced, err := ev.Force(rec.Fields["a"], nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, ok := forced.(ast.Num); !ok || n.Value != 2 {
		t.Fatalf("expected the concrete value to win over the default, got %#v", forced)
	}
}

func requireStackOverflow(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected a stack-overflow error, not a crashed process")
	}
	var re *RuntimeError
	if !errors.As(err, &re) || re.Kind != diag.KindStackOverflow {
		t.Fatalf("expected a stack-overflow diagnostic, got %v", err)
	}
}

// The depth guard must be total: recursion through any term shape, not
// just function application, has to overflow gracefully instead of
// exhausting the native stack.
func TestDeepLetChainOverflowsGracefully(t *testing.T) {
	ev := newEvaluator()
	var term ast.Term = ast.Var{Name: "x"}
	for i := 0; i < DefaultMaxDepth*2; i++ {
		term = ast.Let{Name: "x", Bound: ast.Num{Value: 1}, Body: term}
	}
	_, err := ev.Force(term, runtime.NewEnv())
	requireStackOverflow(t, err)
}

func TestDeepFieldAccessChainOverflowsGracefully(t *testing.T) {
	ev := newEvaluator()
	var term ast.Term = ast.Var{Name: "r"}
	for i := 0; i < DefaultMaxDepth*2; i++ {
		term = ast.FieldAccess{Record: term, Field: "f"}
	}
	_, err := ev.Force(term, runtime.NewEnv())
	requireStackOverflow(t, err)
}

func TestDeepIfChainOverflowsGracefully(t *testing.T) {
	ev := newEvaluator()
	var term ast.Term = ast.Num{Value: 0}
	for i := 0; i < DefaultMaxDepth*2; i++ {
		term = ast.If{Cond: ast.Bool{Value: true}, Then: term, Else: ast.Num{Value: 1}}
	}
	_, err := ev.Force(term, runtime.NewEnv())
	requireStackOverflow(t, err)
}

func TestSetMaxDepthLowersTheGuard(t *testing.T) {
	ev := newEvaluator()
	ev.SetMaxDepth(8)
	var term ast.Term = ast.Num{Value: 0}
	for i := 0; i < 64; i++ {
		term = ast.If{Cond: ast.Bool{Value: true}, Then: term, Else: ast.Num{Value: 1}}
	}
	_, err := ev.Force(term, runtime.NewEnv())
	requireStackOverflow(t, err)
}

func TestDeepForceWalksListsAndRecords(t *testing.T) {
	ev := newEvaluator()
	env := runtime.NewEnv()
	term := ast.Record{Fields: map[string]ast.Term{
		"xs": runtime.NewThunk(ast.List{Elems: []ast.Term{
			runtime.NewThunk(ast.Num{Value: 1}, env),
			runtime.NewThunk(ast.Num{Value: 2}, env),
		}}, env),
	}}
	v, err := ev.DeepForce(term)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := v.(ast.Record)
	xs := rec.Fields["xs"].(ast.List)
	for _, e := range xs.Elems {
		if _, ok := e.(*runtime.Thunk); ok {
			t.Fatalf("expected DeepForce to leave no thunks reachable from the result")
		}
	}
}
