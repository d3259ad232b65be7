package parser

import (
	"testing"

	"github.com/lucid-lang/lucid/internal/ast"
)

func parse(t *testing.T, src string) ast.Term {
	t.Helper()
	term, diags := ParseWithDiagnostics(1, src)
	if len(diags) > 0 {
		t.Fatalf("unexpected parse diagnostics for %q: %v", src, diags)
	}
	return term
}

func TestParseNumBoolStrNull(t *testing.T) {
	if n, ok := parse(t, "42").(ast.Num); !ok || n.Value != 42 {
		t.Fatalf("got %#v", parse(t, "42"))
	}
	if b, ok := parse(t, "true").(ast.Bool); !ok || !b.Value {
		t.Fatalf("got %#v", parse(t, "true"))
	}
	if s, ok := parse(t, `"hi"`).(ast.Str); !ok || s.Value != "hi" {
		t.Fatalf("got %#v", parse(t, `"hi"`))
	}
	if _, ok := parse(t, "null").(ast.Null); !ok {
		t.Fatalf("expected ast.Null")
	}
}

func TestParseArithmeticPrecedence(t *testing.T) {
	// 1 + 2 * 3 should parse as Add(1, Mul(2, 3)).
	term := parse(t, "1 + 2 * 3")
	op, ok := term.(ast.Op2)
	if !ok || op.Op != "Add" {
		t.Fatalf("expected top-level Add, got %#v", term)
	}
	rhs, ok := op.B.(ast.Op2)
	if !ok || rhs.Op != "Mul" {
		t.Fatalf("expected Mul nested on the right, got %#v", op.B)
	}
}

func TestParsePowBindsTighterThanMulAndIsRightAssociative(t *testing.T) {
	// 2 * 3 ^ 2 ^ 2 should parse as Mul(2, Pow(3, Pow(2, 2))).
	term := parse(t, "2 * 3 ^ 2 ^ 2")
	op, ok := term.(ast.Op2)
	if !ok || op.Op != "Mul" {
		t.Fatalf("expected top-level Mul, got %#v", term)
	}
	outerPow, ok := op.B.(ast.Op2)
	if !ok || outerPow.Op != "Pow" {
		t.Fatalf("expected Pow nested on the right of Mul, got %#v", op.B)
	}
	innerPow, ok := outerPow.B.(ast.Op2)
	if !ok || innerPow.Op != "Pow" {
		t.Fatalf("expected Pow to be right-associative, got %#v", outerPow.B)
	}
}

func TestParseUnaryNeg(t *testing.T) {
	term := parse(t, "-5")
	op, ok := term.(ast.Op1)
	if !ok || op.Op != "Neg" {
		t.Fatalf("got %#v", term)
	}
}

func TestParseMergeLowerThanConcat(t *testing.T) {
	// a & b ++ c should parse as Merge(a, StrConcat(b, c)).
	term := parse(t, `a & b ++ c`)
	op, ok := term.(ast.Op2)
	if !ok || op.Op != "Merge" {
		t.Fatalf("expected top-level Merge, got %#v", term)
	}
	rhs, ok := op.B.(ast.Op2)
	if !ok || rhs.Op != "StrConcat" {
		t.Fatalf("expected StrConcat nested on the right, got %#v", op.B)
	}
}

func TestParseApplicationIsLeftAssociative(t *testing.T) {
	term := parse(t, "f x y")
	app, ok := term.(ast.App)
	if !ok {
		t.Fatalf("expected App, got %#v", term)
	}
	inner, ok := app.Fun.(ast.App)
	if !ok {
		t.Fatalf("expected f applied to x first, got %#v", app.Fun)
	}
	if v, ok := inner.Fun.(ast.Var); !ok || v.Name != "f" {
		t.Fatalf("got %#v", inner.Fun)
	}
}

func TestParseFieldAccessBindsTighterThanApp(t *testing.T) {
	term := parse(t, "f x.y")
	app, ok := term.(ast.App)
	if !ok {
		t.Fatalf("expected App, got %#v", term)
	}
	fa, ok := app.Arg.(ast.FieldAccess)
	if !ok || fa.Field != "y" {
		t.Fatalf("expected the argument to be a field projection, got %#v", app.Arg)
	}
}

func TestParseLetIn(t *testing.T) {
	term := parse(t, "let x = 1 in x")
	l, ok := term.(ast.Let)
	if !ok || l.Name != "x" {
		t.Fatalf("got %#v", term)
	}
}

func TestParseIfThenElse(t *testing.T) {
	term := parse(t, "if true then 1 else 2")
	if _, ok := term.(ast.If); !ok {
		t.Fatalf("got %#v", term)
	}
}

func TestParseMultiParamFunDesugarsToNestedFun(t *testing.T) {
	term := parse(t, "fun x y => x")
	outer, ok := term.(ast.Fun)
	if !ok || outer.Param != "x" {
		t.Fatalf("got %#v", term)
	}
	inner, ok := outer.Body.(ast.Fun)
	if !ok || inner.Param != "y" {
		t.Fatalf("expected nested Fun for second parameter, got %#v", outer.Body)
	}
}

func TestParseSwitchWithDefault(t *testing.T) {
	term := parse(t, "switch x { `Ok => 1, _ => 0 }")
	sw, ok := term.(ast.Switch)
	if !ok {
		t.Fatalf("got %#v", term)
	}
	if _, ok := sw.Cases["Ok"]; !ok {
		t.Fatalf("expected a case for tag Ok, got %v", sw.Cases)
	}
	if sw.Default == nil {
		t.Fatalf("expected a default case")
	}
}

func TestParseSwitchDuplicateDefaultIsParseError(t *testing.T) {
	_, diags := ParseWithDiagnostics(1, "switch x { _ => 1, _ => 2 }")
	if len(diags) == 0 {
		t.Fatalf("expected a parse diagnostic for duplicate default cases")
	}
}

func TestParseRecordLiteralWithDottedPath(t *testing.T) {
	term := parse(t, "{ a.b = 1, c = 2 }")
	rec, ok := term.(ast.Record)
	if !ok {
		t.Fatalf("got %#v", term)
	}
	a, ok := rec.Fields["a"].(ast.Record)
	if !ok {
		t.Fatalf("expected dotted path a.b to desugar into a nested record, got %#v", rec.Fields["a"])
	}
	if _, ok := a.Fields["b"]; !ok {
		t.Fatalf("expected nested field b, got %v", a.Fields)
	}
	if _, ok := rec.Fields["c"]; !ok {
		t.Fatalf("expected field c, got %v", rec.Fields)
	}
}

func TestParseRecordDuplicateFieldIsParseError(t *testing.T) {
	_, diags := ParseWithDiagnostics(1, "{ a = 1, a = 2 }")
	if len(diags) == 0 {
		t.Fatalf("expected a parse diagnostic for a duplicate field")
	}
}

func TestParseOpenRecordWithRestMarker(t *testing.T) {
	term := parse(t, "{ a = 1, .. }")
	rec, ok := term.(ast.Record)
	if !ok || !rec.Attrs.Open {
		t.Fatalf("expected an open record, got %#v", term)
	}
}

func TestParseStringInterpolation(t *testing.T) {
	term := parse(t, `"hi ${name}"`)
	chunks, ok := term.(ast.StrChunks)
	if !ok {
		t.Fatalf("expected StrChunks for an interpolated literal, got %#v", term)
	}
	if len(chunks.Chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks.Chunks))
	}
}

func TestParsePlainStringIsNotChunked(t *testing.T) {
	term := parse(t, `"no interpolation here"`)
	if _, ok := term.(ast.Str); !ok {
		t.Fatalf("expected a plain Str for a literal with no ${...}, got %#v", term)
	}
}

func TestParseImport(t *testing.T) {
	term := parse(t, `import "other.lucid"`)
	imp, ok := term.(ast.Import)
	if !ok || imp.Path != "other.lucid" {
		t.Fatalf("got %#v", term)
	}
}

func TestParseEnumTag(t *testing.T) {
	term := parse(t, "`Some")
	e, ok := term.(ast.Enum)
	if !ok || e.Tag != "Some" {
		t.Fatalf("got %#v", term)
	}
}

func TestParseTrailingInputIsAnError(t *testing.T) {
	_, diags := ParseWithDiagnostics(1, "1 )")
	if len(diags) == 0 {
		t.Fatalf("expected a parse error for unconsumed trailing input")
	}
}

func TestParseUnclosedParenIsAnError(t *testing.T) {
	_, diags := ParseWithDiagnostics(1, "(1")
	if len(diags) == 0 {
		t.Fatalf("expected a parse error for an unclosed paren")
	}
}

func TestParseEntryPointReturnsFlattenedError(t *testing.T) {
	_, err := Parse(1, "(1")
	if err == nil {
		t.Fatalf("expected Parse to surface a flattened error for malformed input")
	}
}
