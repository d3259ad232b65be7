package ops

import (
	"testing"

	"github.com/lucid-lang/lucid/internal/ast"
	"github.com/lucid-lang/lucid/internal/ident"
)

func TestApply1Neg(t *testing.T) {
	v, err := Apply1(ident.NoPos, "Neg", ast.Num{Value: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := v.(ast.Num); n.Value != -3 {
		t.Fatalf("expected -3, got %v", n.Value)
	}
}

func TestApply1TypeMismatch(t *testing.T) {
	if _, err := Apply1(ident.NoPos, "Neg", ast.Str{Value: "x"}); err == nil {
		t.Fatalf("expected an error negating a Str")
	}
}

func TestApply2DivisionByZeroIsAnError(t *testing.T) {
	// Division by zero is a runtime error, not IEEE-754 infinity.
	_, err := Apply2(ident.NoPos, "Div", ast.Num{Value: 1}, ast.Num{Value: 0})
	if err == nil {
		t.Fatalf("expected division by zero to error")
	}
}

func TestApply2Arithmetic(t *testing.T) {
	cases := []struct {
		op   string
		a, b float64
		want float64
	}{
		{"Add", 1, 2, 3},
		{"Sub", 5, 2, 3},
		{"Mul", 4, 3, 12},
		{"Div", 10, 2, 5},
		{"Mod", 7, 3, 1},
		{"Pow", 2, 10, 1024},
	}
	for _, c := range cases {
		v, err := Apply2(ident.NoPos, c.op, ast.Num{Value: c.a}, ast.Num{Value: c.b})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", c.op, err)
		}
		if n := v.(ast.Num); n.Value != c.want {
			t.Fatalf("%s: got %v, want %v", c.op, n.Value, c.want)
		}
	}
}

func TestApply2Comparisons(t *testing.T) {
	v, err := Apply2(ident.NoPos, "Lt", ast.Num{Value: 1}, ast.Num{Value: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b := v.(ast.Bool); !b.Value {
		t.Fatalf("expected 1 < 2 to be true")
	}
}

func TestApply2StrConcat(t *testing.T) {
	v, err := Apply2(ident.NoPos, "StrConcat", ast.Str{Value: "a"}, ast.Str{Value: "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s := v.(ast.Str); s.Value != "ab" {
		t.Fatalf("expected \"ab\", got %q", s.Value)
	}
}

func TestApplyNListConcat(t *testing.T) {
	v, err := ApplyN(ident.NoPos, "ListConcat", []ast.Term{
		ast.List{Elems: []ast.Term{ast.Num{Value: 1}}},
		ast.List{Elems: []ast.Term{ast.Num{Value: 2}, ast.Num{Value: 3}}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lst := v.(ast.List)
	if len(lst.Elems) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(lst.Elems))
	}
}

func TestUnknownOperatorsError(t *testing.T) {
	if _, err := Apply1(ident.NoPos, "Bogus", ast.Num{Value: 1}); err == nil {
		t.Fatalf("expected unknown unary operator to error")
	}
	if _, err := Apply2(ident.NoPos, "Bogus", ast.Num{Value: 1}, ast.Num{Value: 1}); err == nil {
		t.Fatalf("expected unknown binary operator to error")
	}
	if _, err := ApplyN(ident.NoPos, "Bogus", nil); err == nil {
		t.Fatalf("expected unknown n-ary operator to error")
	}
}
