package contracts

import (
	"fmt"
	"testing"

	"github.com/lucid-lang/lucid/internal/ast"
	"github.com/lucid-lang/lucid/internal/ident"
	"github.com/lucid-lang/lucid/internal/label"
	"github.com/lucid-lang/lucid/internal/runtime"
)

// fakeOps is a minimal EvalOps good enough for testing contracts that
// never need to Apply a function or allocate more than one seal symbol:
// Force just returns whatever WHNF term it is handed (every contract
// test here passes already-forced literals), and NewSealSymbol counts up
// from zero so two ForallC instantiations in the same test are
// distinguishable.
type fakeOps struct{ nextSeal int }

func (f *fakeOps) Force(term ast.Term, env *runtime.Env) (ast.Term, error) {
	return term, nil
}
func (f *fakeOps) Apply(fn ast.Term, arg *runtime.Thunk) (ast.Term, error) {
	panic("fakeOps.Apply not needed by these tests")
}
func (f *fakeOps) NewEnv() *runtime.Env { return runtime.NewEnv() }
func (f *fakeOps) NewSealSymbol() int {
	f.nextSeal++
	return f.nextSeal
}

func TestDynContractIsIdentity(t *testing.T) {
	ops := &fakeOps{}
	v, err := DynC{}.Assume(ops, NewLabel(ident.NoPos, "dyn"), ast.Str{Value: "anything"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s, ok := v.(ast.Str); !ok || s.Value != "anything" {
		t.Fatalf("Dyn contract must return the value unchanged, got %#v", v)
	}
}

func TestNumContractAcceptsNum(t *testing.T) {
	ops := &fakeOps{}
	_, err := NumC{}.Assume(ops, NewLabel(ident.NoPos, "n"), ast.Num{Value: 1}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNumContractBlamesWrongShape(t *testing.T) {
	ops := &fakeOps{}
	_, err := NumC{}.Assume(ops, NewLabel(ident.NoPos, "n"), ast.Str{Value: "x"}, nil)
	if err == nil {
		t.Fatalf("expected a blame error for a Str where a Num was required")
	}
	if _, ok := err.(*BlameError); !ok {
		t.Fatalf("expected a *BlameError, got %T", err)
	}
}

func TestEnumContractAcceptsMemberTag(t *testing.T) {
	ops := &fakeOps{}
	ctr := EnumC{Tags: []string{"ok", "err"}}
	_, err := ctr.Assume(ops, NewLabel(ident.NoPos, "e"), ast.Enum{Tag: "ok"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnumContractRejectsNonMemberTag(t *testing.T) {
	ops := &fakeOps{}
	ctr := EnumC{Tags: []string{"ok", "err"}}
	_, err := ctr.Assume(ops, NewLabel(ident.NoPos, "e"), ast.Enum{Tag: "pending"}, nil)
	if err == nil {
		t.Fatalf("expected a blame error for a non-member tag")
	}
}

func TestListContractChecksLazilyPerElement(t *testing.T) {
	ops := &fakeOps{}
	ctr := ListC{Elem: NumC{}}
	lst := ast.List{Elems: []ast.Term{ast.Num{Value: 1}, ast.Str{Value: "bad"}}}
	v, err := ctr.Assume(ops, NewLabel(ident.NoPos, "l"), lst, nil)
	if err != nil {
		t.Fatalf("ListC.Assume must not force elements eagerly, got error: %v", err)
	}
	out := v.(ast.List)
	if len(out.Elems) != 2 {
		t.Fatalf("expected 2 elements")
	}
	if _, ok := out.Elems[0].(Deferred); !ok {
		t.Fatalf("expected elements to be wrapped in a Deferred, not checked immediately")
	}
	// Demanding the bad element is where the violation actually surfaces.
	deferred := out.Elems[1].(Deferred)
	if _, err := deferred.Resolve(ops); err == nil {
		t.Fatalf("expected resolving the second element's contract to blame")
	}
}

func TestForallSealWrapsThenUnwraps(t *testing.T) {
	ops := &fakeOps{}
	ctr := ForallC{Var: "a", Body: VarRefC{Name: "a"}}

	// Negative polarity: the contract wraps the raw value under a fresh
	// symbol.
	neg := NewLabel(ident.NoPos, "t").FlipPolarity()
	wrapped, err := ctr.Assume(ops, neg, ast.Num{Value: 7}, nil)
	if err != nil {
		t.Fatalf("unexpected error wrapping: %v", err)
	}
	w, ok := wrapped.(ast.Wrapped)
	if !ok {
		t.Fatalf("expected a Wrapped value at negative polarity, got %#v", wrapped)
	}

	// Positive polarity over the *same* sym: the contract unwraps back
	// to the original value. A fresh ForallC.Assume call would mint its
	// own symbol, so to unwrap the value wrapped above we drive the
	// matching ForallVarC directly.
	unwrapper := ForallVarC{Sym: w.Sym, Captured: label.Positive}
	pos := NewLabel(ident.NoPos, "t")
	back, err := unwrapper.Assume(ops, pos, wrapped, nil)
	if err != nil {
		t.Fatalf("unexpected error unwrapping: %v", err)
	}
	if n, ok := back.(ast.Num); !ok || n.Value != 7 {
		t.Fatalf("expected the original value back, got %#v", back)
	}
}

func TestForallSealUnwrapRejectsMismatchedSymbol(t *testing.T) {
	ops := &fakeOps{}
	wrapped := ast.Wrapped{Sym: 1, Inner: ast.Num{Value: 1}}
	unwrapper := ForallVarC{Sym: 2, Captured: label.Positive}
	_, err := unwrapper.Assume(ops, NewLabel(ident.NoPos, "t"), wrapped, nil)
	if err == nil {
		t.Fatalf("expected blame when unwrapping under a different symbol")
	}
}

func TestForallSealUnwrapRejectsUnsealedValue(t *testing.T) {
	ops := &fakeOps{}
	unwrapper := ForallVarC{Sym: 1, Captured: label.Positive}
	_, err := unwrapper.Assume(ops, NewLabel(ident.NoPos, "t"), ast.Num{Value: 1}, nil)
	if err == nil {
		t.Fatalf("expected blame inspecting a sealed parameter that was never wrapped")
	}
}

func TestArrowContractWrapsCallable(t *testing.T) {
	ops := &fakeOps{}
	ctr := ArrowC{Dom: NumC{}, Codom: NumC{}}
	closure := ast.Closure{}
	v, err := ctr.Assume(ops, NewLabel(ident.NoPos, "f"), closure, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := v.(WrappedArrow); !ok {
		t.Fatalf("expected a WrappedArrow, got %#v", v)
	}
}

func TestArrowContractRejectsNonCallable(t *testing.T) {
	ops := &fakeOps{}
	ctr := ArrowC{Dom: NumC{}, Codom: NumC{}}
	_, err := ctr.Assume(ops, NewLabel(ident.NoPos, "f"), ast.Num{Value: 1}, nil)
	if err == nil {
		t.Fatalf("expected blame applying an arrow contract to a non-function value")
	}
}

func TestStaticRecordContractRequiresAllFields(t *testing.T) {
	ops := &fakeOps{}
	ctr := StaticRecordC{Row: RowExtendC{Field: "a", Ty: NumC{}, Tail: RowEmptyC{}}}
	_, err := ctr.Assume(ops, NewLabel(ident.NoPos, "r"), ast.Record{Fields: map[string]ast.Term{}}, nil)
	if err == nil {
		t.Fatalf("expected blame for a missing required field")
	}
}

func TestStaticRecordContractRejectsExtraFieldsWhenClosed(t *testing.T) {
	ops := &fakeOps{}
	ctr := StaticRecordC{Row: RowEmptyC{}}
	rec := ast.Record{Fields: map[string]ast.Term{"extra": ast.Num{Value: 1}}}
	_, err := ctr.Assume(ops, NewLabel(ident.NoPos, "r"), rec, nil)
	if err == nil {
		t.Fatalf("expected blame for an unexpected field under a closed row")
	}
}

// predSentinel stands for a Flat contract's not-yet-applied predicate
// expression; predStage1 stands for the partially-applied predicate once
// it has consumed the label argument. Together with flatOps.Apply below
// they simulate the two-argument Flat contract calling convention
// (`apply user_expr label value`) without needing a full evaluator.
type predSentinel struct{}

func (predSentinel) Position() ident.Pos { return ident.NoPos }

type predStage1 struct{ l label.Label }

func (predStage1) Position() ident.Pos { return ident.NoPos }

func identityReduce(term ast.Term, env *runtime.Env) (ast.Term, error) { return term, nil }

type flatOps struct{ fakeOps }

func (o *flatOps) Apply(fn ast.Term, arg *runtime.Thunk) (ast.Term, error) {
	switch f := fn.(type) {
	case predSentinel:
		v, err := arg.Force(identityReduce)
		if err != nil {
			return nil, err
		}
		lv, ok := v.(ast.LabelVal)
		if !ok {
			return nil, fmt.Errorf("expected the first argument to be an ast.LabelVal, got %#v", v)
		}
		return predStage1{l: lv.Label}, nil
	case predStage1:
		v, err := arg.Force(identityReduce)
		if err != nil {
			return nil, err
		}
		n, ok := v.(ast.Num)
		if !ok || n.Value <= 0 {
			return nil, Blame(f.l, "value must be a positive Num")
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unexpected callee %#v", fn)
	}
}

func TestFlatContractUsesTwoArgumentLabelValueProtocol(t *testing.T) {
	ops := &flatOps{}
	ctr := FlatC{Expr: predSentinel{}}
	l := NewLabel(ident.NoPos, "positive")

	v, err := ctr.Assume(ops, l, ast.Num{Value: 3}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, ok := v.(ast.Num); !ok || n.Value != 3 {
		t.Fatalf("expected the checked value back, got %#v", v)
	}

	_, err = ctr.Assume(ops, l, ast.Num{Value: -1}, nil)
	if err == nil {
		t.Fatalf("expected the predicate's own blame to surface")
	}
	if _, ok := err.(*BlameError); !ok {
		t.Fatalf("expected a *BlameError, got %T", err)
	}
}

func TestStaticRecordContractAllowsRowVarTailExtras(t *testing.T) {
	ops := &fakeOps{}
	ctr := StaticRecordC{Row: RowVarC{Name: "r"}}
	rec := ast.Record{Fields: map[string]ast.Term{"extra": ast.Num{Value: 1}}}
	if _, err := ctr.Assume(ops, NewLabel(ident.NoPos, "r"), rec, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
