package runtime

import (
	"errors"
	"sync"

	"github.com/lucid-lang/lucid/internal/ast"
	"github.com/lucid-lang/lucid/internal/ident"
)

// ErrBlackhole is returned by Force when a thunk is demanded while it is
// already being forced, directly or indirectly. A classic example is
// `let x = x in x`.
var ErrBlackhole = errors.New("blackhole: thunk demanded while being forced")

type thunkState int8

const (
	stateUnevaluated thunkState = iota
	stateForcing
	stateEvaluated
	stateErrored
)

// Reducer is the function internal/eval supplies to reduce a term to
// weak-head-normal-form under an environment. Thunk depends on it as a
// function value, not an import, to avoid a runtime<->eval import cycle:
// eval needs Env and Thunk, runtime must not need to know about the
// evaluator.
type Reducer func(term ast.Term, env *Env) (ast.Term, error)

// Thunk is a mutable cell holding either an unevaluated (term, env) pair
// or its memoized weak-head-normal-form. It is
// mutated exactly once, from Unevaluated to Evaluated (or to Errored, so
// that a thunk which fails during forcing is guaranteed to fail the same
// way on every subsequent demand).
type Thunk struct {
	mu      sync.Mutex
	state   thunkState
	term    ast.Term
	env     *Env
	whnf    ast.Term
	err     error
	compute func() (ast.Term, error)
}

// NewThunk creates a thunk over an unevaluated term and the environment
// it should be reduced under.
func NewThunk(term ast.Term, env *Env) *Thunk {
	return &Thunk{term: term, env: env}
}

// NewLazyThunk wraps a host-computed value (e.g. a builtin that must
// call back into the evaluator, such as record.map's per-field
// application) so it stays undemanded until Force, exactly like an
// ordinary term thunk, without needing a Reducer/Env pair to drive it.
func NewLazyThunk(compute func() (ast.Term, error)) *Thunk {
	return &Thunk{compute: compute}
}

// Position satisfies ast.Term so a *Thunk can stand directly as a List
// element or Record field value — the ordinary representation of an
// unforced composite member.
func (t *Thunk) Position() ident.Pos {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch t.state {
	case stateEvaluated:
		return t.whnf.Position()
	case stateUnevaluated, stateForcing, stateErrored:
		if t.term != nil {
			return t.term.Position()
		}
		return ident.NoPos
	default:
		return ident.NoPos
	}
}

// NewPlaceholder returns an empty, not-yet-bound thunk. It exists so that
// a recursive binding (Let, or a record's sibling fields) can build the
// environment containing the thunk before the thunk's own term is known:
// construct the placeholder, bind it into the environment, then call
// Bind once that environment exists.
func NewPlaceholder() *Thunk {
	return &Thunk{}
}

// Bind sets a placeholder's term and environment. It must be called
// exactly once, before the thunk is ever forced; calling it twice is an
// internal-invariant violation (it would mean two different recursive
// bindings raced to initialize the same cell).
func (t *Thunk) Bind(term ast.Term, env *Env) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.term != nil || t.state != stateUnevaluated {
		panic("runtime: Thunk.Bind called on an already-bound thunk")
	}
	t.term = term
	t.env = env
}

// Done wraps an already-reduced value. Used when a primitive or the
// evaluator already holds a WHNF term and wants to hand it around as a
// thunk without the overhead of a trivial re-force (e.g. literals, and
// list/record elements that were constructed from an already-evaluated
// value during deep_seq).
func Done(v ast.Term) *Thunk {
	return &Thunk{state: stateEvaluated, whnf: v}
}

// Force reduces the thunk to WHNF using reduce, memoizing the result (or
// the error) so that every subsequent Force call returns it immediately
// without redoing any work. Forcing is idempotent.
func (t *Thunk) Force(reduce Reducer) (ast.Term, error) {
	t.mu.Lock()
	switch t.state {
	case stateEvaluated:
		v := t.whnf
		t.mu.Unlock()
		return v, nil
	case stateErrored:
		err := t.err
		t.mu.Unlock()
		return nil, err
	case stateForcing:
		t.mu.Unlock()
		return nil, ErrBlackhole
	}
	t.state = stateForcing
	term, env, compute := t.term, t.env, t.compute
	t.mu.Unlock()

	var v ast.Term
	var err error
	if compute != nil {
		v, err = compute()
	} else {
		v, err = reduce(term, env)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.state = stateErrored
		t.err = err
		return nil, err
	}
	t.state = stateEvaluated
	t.whnf = v
	// Drop references to the unevaluated term/env now that they're no
	// longer needed, so thunks captured only by a forced value's
	// environment chain become collectible once nothing else reaches
	// them.
	t.term = nil
	t.env = nil
	t.compute = nil
	return v, nil
}

// PeekMeta inspects a not-yet-forced thunk's raw term for an
// ast.MetaValue shape, returning it (and the environment it should
// reduce under) without forcing it. Record merge needs
// this to read a field's Priority/Doc/Type/Contracts before deciding
// whether the field even needs evaluating — forcing through
// reduceMetaValue would immediately apply its contracts and discard the
// Priority the merge itself is trying to inspect.
func (t *Thunk) PeekMeta() (ast.MetaValue, *Env, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != stateUnevaluated {
		return ast.MetaValue{}, nil, false
	}
	mv, ok := t.term.(ast.MetaValue)
	if !ok {
		return ast.MetaValue{}, nil, false
	}
	return mv, t.env, true
}

// IsForced reports whether the thunk has already reached WHNF (used by
// deep_seq to avoid re-forcing, and by diagnostics to avoid forcing a
// value just to pretty-print it).
func (t *Thunk) IsForced() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == stateEvaluated
}
