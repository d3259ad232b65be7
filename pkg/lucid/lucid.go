// Package lucid is the embedding API: a small façade letting a host Go
// program evaluate and export lucid source without going through the
// CLI: a Session configured by functional options, exposing Eval/Export
// entry points over the same evaluator cmd/lucid drives.
package lucid

import (
	"errors"
	"fmt"

	"github.com/lucid-lang/lucid/internal/ast"
	"github.com/lucid-lang/lucid/internal/contracts"
	"github.com/lucid-lang/lucid/internal/diag"
	"github.com/lucid-lang/lucid/internal/eval"
	"github.com/lucid-lang/lucid/internal/ident"
	"github.com/lucid-lang/lucid/internal/imports"
	"github.com/lucid-lang/lucid/internal/ops"
	"github.com/lucid-lang/lucid/internal/parser"
	"github.com/lucid-lang/lucid/internal/runtime"
	"github.com/lucid-lang/lucid/internal/serialize"
	"github.com/lucid-lang/lucid/internal/srcmap"
)

// Format re-exports internal/serialize.Format so callers of Export never
// need to import the internal package directly.
type Format = serialize.Format

const (
	JSON = serialize.JSON
	YAML = serialize.YAML
	TOML = serialize.TOML
)

// Resolver re-exports internal/imports.Resolver so a host can supply its
// own import resolution strategy (an embedded filesystem, an HTTP
// fetcher, a test stub) through WithImportResolver.
type Resolver = imports.Resolver

// Option configures a Session.
type Option func(*Session)

// WithImportRoot sets the directory import resolution is rooted at.
// The default is the current working directory.
func WithImportRoot(dir string) Option {
	return func(s *Session) { s.importRoot = dir }
}

// WithImportResolver replaces the default file-based import resolver.
// When set, WithImportRoot has no effect.
func WithImportResolver(r Resolver) Option {
	return func(s *Session) { s.resolver = r }
}

// WithMaxRecursionDepth bounds evaluation nesting; a program that
// exceeds it fails with a stack-overflow diagnostic instead of
// exhausting the process stack. n <= 0 keeps the default
// (eval.DefaultMaxDepth).
func WithMaxRecursionDepth(n int) Option {
	return func(s *Session) { s.maxDepth = n }
}

// Session is a configured evaluation context: one symbol allocator, one
// source map, and one import resolver, shared across every Eval/Export
// call made through it so that imports and sealing symbols stay
// consistent within a single host-program session.
type Session struct {
	importRoot string
	resolver   Resolver
	maxDepth   int
	alloc      *ident.Allocator
	srcMap     *srcmap.Map
	prelude    *runtime.Env
}

// NewSession constructs a Session ready to Eval or Export source.
func NewSession(opts ...Option) *Session {
	s := &Session{importRoot: "."}
	for _, o := range opts {
		o(s)
	}
	s.alloc = ident.New()
	s.srcMap = srcmap.New(s.alloc)
	s.prelude = eval.Prelude()
	return s
}

// Value is the fully-forced result of an Eval call: an internal/ast.Term
// guaranteed to contain no thunks or deferred contract checks, ready to
// inspect or hand to Export's ToGo conversion.
type Value = ast.Term

// Eval parses and fully evaluates source, returning its deep-forced
// value.
func (s *Session) Eval(source string) (Value, error) {
	term, evaluator, err := s.parseAndPrepare(source)
	if err != nil {
		return nil, err
	}
	// The parsed term is free-standing syntax: binding it to a thunk
	// over the prelude environment is what lets its top-level Vars
	// resolve to standard-library names (list.map, string.trim, ...)
	// exactly as an imported file's top-level term does (internal/imports
	// threads the same prelude through FileResolver.BaseEnv).
	rooted := runtime.NewThunk(term, s.prelude)
	return evaluator.DeepForce(rooted)
}

// Export parses, evaluates, and renders source in the requested format.
func (s *Session) Export(source string, format Format) (string, error) {
	v, err := s.Eval(source)
	if err != nil {
		return "", err
	}
	return serialize.Marshal(v, format)
}

func (s *Session) parseAndPrepare(source string) (ast.Term, *eval.Evaluator, error) {
	file := s.srcMap.AddFile("<session>", source)
	term, err := parser.Parse(file.ID, source)
	if err != nil {
		return nil, nil, fmt.Errorf("lucid: parse error: %w", err)
	}
	resolver := s.resolver
	if resolver == nil {
		resolver = imports.NewFileResolver(s.importRoot, parser.Parse, s.srcMap, s.prelude)
	}
	evaluator := eval.New(s.alloc, resolver)
	evaluator.SetMaxDepth(s.maxDepth)
	return term, evaluator, nil
}

// SourceMap exposes the session's position table, so a caller rendering
// a Diagnostic can resolve its spans to file:line:col.
func (s *Session) SourceMap() *srcmap.Map { return s.srcMap }

// Diagnose converts any error produced by Eval or Export into its
// structured diagnostic form. Errors raised with a diagnostic attached
// (parse and import failures, kinded runtime errors) keep their kind and
// span; contract violations become contract-violation diagnostics
// carrying the blame label's trail and polarity as a note; anything else
// is reported as a plain runtime error.
func (s *Session) Diagnose(err error) *diag.Diagnostic {
	var de *diag.Error
	if errors.As(err, &de) {
		return de.Diag
	}
	var re *eval.RuntimeError
	if errors.As(err, &re) {
		return re.Diagnostic()
	}
	var be *contracts.BlameError
	if errors.As(err, &be) {
		d := diag.New(diag.KindContract, be.Label.Pos, be.Reason)
		d.WithNote("blame " + be.Label.Tag + " (" + be.Label.Polarity.String() + ") at " + be.Label.Trail())
		return d
	}
	var oe *ops.OpError
	if errors.As(err, &oe) {
		return diag.New(diag.KindRuntime, oe.Pos, oe.Message)
	}
	return diag.New(diag.KindRuntime, ident.NoPos, err.Error())
}

// Eval is a package-level convenience wrapper constructing a one-shot
// Session, for callers that don't need imports or repeated evaluation
// to share sealing-symbol state.
func Eval(source string, opts ...Option) (Value, error) {
	return NewSession(opts...).Eval(source)
}

// Export is Eval's one-shot sibling for format export.
func Export(format Format, source string, opts ...Option) (string, error) {
	return NewSession(opts...).Export(source, format)
}
