// Package imports resolves `import "path"` terms to parsed, evaluated
// content, memoized and guarded against import cycles. Resolution caches
// one thunk per canonical path rather than per literal path, since the
// same literal path can be imported relative to different base
// directories; each loaded file still gets its own source id
// (internal/ident.Allocator.NewSourceID) for diagnostics.
package imports

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/lucid-lang/lucid/internal/ast"
	"github.com/lucid-lang/lucid/internal/diag"
	"github.com/lucid-lang/lucid/internal/ident"
	"github.com/lucid-lang/lucid/internal/runtime"
	"github.com/lucid-lang/lucid/internal/srcmap"
)

// Resolver resolves an import path encountered at pos to a thunk over
// the parsed term and the environment it should be evaluated under. The
// same canonical path always yields the same thunk, which is what makes
// imports memoized per canonical path — and what turns an
// import cycle into the thunk's blackhole error at evaluation time
// rather than divergence: A importing B importing A re-demands A's thunk
// while it is still being forced.
type Resolver interface {
	Resolve(path string, pos ident.Pos) (*runtime.Thunk, error)
}

// Parser is the narrow slice of internal/parser a Resolver needs: turn
// source text into a term plus any diagnostics. Declared here, not
// imported from internal/parser, so imports<->parser has no cycle (the
// parser package does not need to know about import resolution at all;
// whoever wires the two together, e.g. pkg/lucid, supplies a Parser
// value backed by parser.Parse).
type Parser func(srcID int, content string) (ast.Term, error)

// result is the memoized outcome of resolving one canonical path, positive or
// negative.
type result struct {
	thunk *runtime.Thunk
	err   error
}

// FileResolver resolves import paths against the filesystem, rooted at
// Base. It is the default Resolver.
type FileResolver struct {
	Base   string
	Parse  Parser
	Map    *srcmap.Map
	BaseEnv *runtime.Env

	mu    sync.Mutex
	cache map[string]*result
}

// NewFileResolver constructs a FileResolver rooted at base. baseEnv is
// the environment (typically the stdlib prelude) every imported file is
// evaluated under.
func NewFileResolver(base string, parse Parser, m *srcmap.Map, baseEnv *runtime.Env) *FileResolver {
	return &FileResolver{
		Base:    base,
		Parse:   parse,
		Map:     m,
		BaseEnv: baseEnv,
		cache:   map[string]*result{},
	}
}

// Resolve implements Resolver.
func (r *FileResolver) Resolve(path string, pos ident.Pos) (*runtime.Thunk, error) {
	canon, err := r.canonicalize(path)
	if err != nil {
		return nil, importErr(pos, err)
	}

	r.mu.Lock()
	if cached, ok := r.cache[canon]; ok {
		r.mu.Unlock()
		return cached.thunk, importErr(pos, cached.err)
	}
	r.mu.Unlock()

	th, loadErr := r.load(canon)

	r.mu.Lock()
	r.cache[canon] = &result{thunk: th, err: loadErr}
	r.mu.Unlock()

	return th, importErr(pos, loadErr)
}

// importErr classifies a resolution failure as an import diagnostic at
// the import site, unless it already carries one (a parse failure inside
// the imported file keeps its own kind and span).
func importErr(pos ident.Pos, err error) error {
	if err == nil {
		return nil
	}
	var de *diag.Error
	if errors.As(err, &de) {
		return err
	}
	return &diag.Error{Diag: diag.New(diag.KindImportIO, pos, err.Error())}
}

func (r *FileResolver) load(canon string) (*runtime.Thunk, error) {
	content, err := os.ReadFile(canon)
	if err != nil {
		return nil, fmt.Errorf("import: cannot read %q: %w", canon, err)
	}
	file := r.Map.AddFile(canon, string(content))
	term, err := r.Parse(file.ID, string(content))
	if err != nil {
		return nil, err
	}
	return runtime.NewThunk(term, r.BaseEnv), nil
}

// canonicalize resolves path against Base and guards against traversal
// outside Base via "..", pinning every import under the project root.
func (r *FileResolver) canonicalize(path string) (string, error) {
	joined := path
	if !filepath.IsAbs(path) {
		joined = filepath.Join(r.Base, path)
	}
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("import: cannot resolve %q: %w", path, err)
	}
	baseAbs, err := filepath.Abs(r.Base)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(baseAbs, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("import: path %q escapes the project root", path)
	}
	return abs, nil
}
