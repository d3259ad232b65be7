package imports

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lucid-lang/lucid/internal/ast"
	"github.com/lucid-lang/lucid/internal/ident"
	"github.com/lucid-lang/lucid/internal/runtime"
	"github.com/lucid-lang/lucid/internal/srcmap"
)

func countingParser(calls *int) Parser {
	return func(srcID int, content string) (ast.Term, error) {
		*calls++
		return ast.Str{Value: content}, nil
	}
}

// whnf forces a resolved thunk with an identity reducer: the fake parser
// above already returns WHNF terms, so no real evaluator is needed.
func whnf(t *testing.T, th *runtime.Thunk) ast.Term {
	t.Helper()
	v, err := th.Force(func(term ast.Term, env *runtime.Env) (ast.Term, error) {
		return term, nil
	})
	if err != nil {
		t.Fatalf("unexpected error forcing resolved thunk: %v", err)
	}
	return v
}

func TestResolveReadsAndParsesFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.lucid"), []byte("1 + 1"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	calls := 0
	r := NewFileResolver(dir, countingParser(&calls), srcmap.New(ident.New()), nil)
	th, err := r.Resolve("a.lucid", ident.NoPos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s, ok := whnf(t, th).(ast.Str)
	if !ok || s.Value != "1 + 1" {
		t.Fatalf("expected parsed content to round trip through the fake parser, got %#v", s)
	}
}

func TestResolveMemoizesPerCanonicalPath(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.lucid"), []byte("42"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	calls := 0
	r := NewFileResolver(dir, countingParser(&calls), srcmap.New(ident.New()), nil)
	th1, err := r.Resolve("a.lucid", ident.NoPos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	th2, err := r.Resolve("a.lucid", ident.NoPos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected the parser to run exactly once across repeated imports of the same path, ran %d times", calls)
	}
	if th1 != th2 {
		t.Fatalf("expected repeated imports of one canonical path to share a single memoized thunk")
	}
}

func TestResolveRejectsPathTraversalOutsideBase(t *testing.T) {
	dir := t.TempDir()
	calls := 0
	r := NewFileResolver(dir, countingParser(&calls), srcmap.New(ident.New()), nil)
	if _, err := r.Resolve("../../etc/passwd", ident.NoPos); err == nil {
		t.Fatalf("expected an error resolving a path that escapes the project root")
	}
}

func TestResolveMissingFileErrors(t *testing.T) {
	dir := t.TempDir()
	calls := 0
	r := NewFileResolver(dir, countingParser(&calls), srcmap.New(ident.New()), nil)
	if _, err := r.Resolve("nope.lucid", ident.NoPos); err == nil {
		t.Fatalf("expected an error resolving a nonexistent file")
	}
}

func TestResolveCycleSurfacesAsBlackhole(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "self.lucid"), []byte("x"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	calls := 0
	r := NewFileResolver(dir, countingParser(&calls), srcmap.New(ident.New()), nil)
	th, err := r.Resolve("self.lucid", ident.NoPos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Simulate a file importing itself: forcing the thunk re-demands it
	// before the first force completes.
	_, err = th.Force(func(term ast.Term, env *runtime.Env) (ast.Term, error) {
		again, err := r.Resolve("self.lucid", ident.NoPos)
		if err != nil {
			return nil, err
		}
		return again.Force(func(t ast.Term, e *runtime.Env) (ast.Term, error) { return t, nil })
	})
	if err != runtime.ErrBlackhole {
		t.Fatalf("expected the cyclic import to surface as ErrBlackhole, got %v", err)
	}
}
