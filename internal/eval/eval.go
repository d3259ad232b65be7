// Package eval implements the small-step call-by-need evaluator. It is
// the one package that ties internal/ast, internal/runtime,
// internal/contracts, internal/types, and internal/ops together —
// everything upstream of it avoids importing it precisely so that it
// can depend on all of them without a cycle (internal/runtime.Reducer
// and internal/contracts.EvalOps are the two dependency-inversion seams
// that make this possible).
//
// Evaluation is demand-driven: Force only evaluates what is demanded,
// memoizing through internal/runtime.Thunk.
package eval

import (
	"fmt"

	"github.com/lucid-lang/lucid/internal/ast"
	"github.com/lucid-lang/lucid/internal/contracts"
	"github.com/lucid-lang/lucid/internal/diag"
	"github.com/lucid-lang/lucid/internal/ident"
	"github.com/lucid-lang/lucid/internal/imports"
	"github.com/lucid-lang/lucid/internal/ops"
	"github.com/lucid-lang/lucid/internal/runtime"
)

// DefaultMaxDepth bounds evaluation nesting. Every Force, DeepForce, and
// Equal entry counts against it, so any reduction shape — nested lets,
// chained field accesses, deep applications — hits the guard and gets a
// stack-overflow diagnostic well before the host Go stack is at risk.
const DefaultMaxDepth = 4096

// RuntimeError is any failure that occurs during reduction other than a
// contract violation (which is a *contracts.BlameError). Kind carries
// the diagnostic category assigned where the error was raised.
type RuntimeError struct {
	Kind    diag.Kind
	Pos     ident.Pos
	Message string
}

func (e *RuntimeError) Error() string { return e.Message }

// Diagnostic converts the error to its structured form for rendering.
func (e *RuntimeError) Diagnostic() *diag.Diagnostic {
	return diag.New(e.Kind, e.Pos, e.Message)
}

func runtimeErr(pos ident.Pos, format string, args ...any) error {
	return kindErr(diag.KindRuntime, pos, format, args...)
}

func kindErr(kind diag.Kind, pos ident.Pos, format string, args ...any) error {
	return &RuntimeError{Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// Evaluator holds the state a single evaluation run needs: the symbol
// allocator (for Forall sealing) and the active import resolver. It
// carries no mutable evaluation state itself beyond the depth guard —
// the rest lives in the Env/Thunk graph — so one Evaluator can safely
// drive many independent top-level Eval calls in sequence.
type Evaluator struct {
	alloc    *ident.Allocator
	resolver imports.Resolver
	depth    int
	maxDepth int
}

// New creates an Evaluator. resolver may be nil if the program being
// evaluated contains no import terms.
func New(alloc *ident.Allocator, resolver imports.Resolver) *Evaluator {
	return &Evaluator{alloc: alloc, resolver: resolver, maxDepth: DefaultMaxDepth}
}

// SetMaxDepth overrides the evaluation nesting limit. n <= 0 keeps the
// current limit.
func (ev *Evaluator) SetMaxDepth(n int) {
	if n > 0 {
		ev.maxDepth = n
	}
}

// enter charges one level of evaluation nesting against the depth guard;
// the returned func undoes it. Called on every recursive entry point
// (Force, DeepForce, Equal) so no reduction shape can drive unbounded
// native recursion.
func (ev *Evaluator) enter(pos ident.Pos) (func(), error) {
	if ev.depth >= ev.maxDepth {
		return nil, kindErr(diag.KindStackOverflow, pos, "stack overflow: evaluation depth exceeded %d", ev.maxDepth)
	}
	ev.depth++
	return func() { ev.depth-- }, nil
}

// NewEnv returns a fresh empty environment; part of contracts.EvalOps.
func (ev *Evaluator) NewEnv() *runtime.Env { return runtime.NewEnv() }

// NewSealSymbol mints a fresh polymorphic sealing symbol; part of
// contracts.EvalOps.
func (ev *Evaluator) NewSealSymbol() int { return ev.alloc.NewSealSymbol() }

// Force reduces term to weak-head-normal-form under env, looping through
// any *runtime.Thunk or contracts.Deferred layers it encounters until a
// genuine value shape is reached. Every entry counts against the depth
// guard, so deeply nested terms of any shape overflow gracefully.
func (ev *Evaluator) Force(term ast.Term, env *runtime.Env) (ast.Term, error) {
	leave, err := ev.enter(term.Position())
	if err != nil {
		return nil, err
	}
	defer leave()
	for {
		switch t := term.(type) {
		case *runtime.Thunk:
			v, err := t.Force(ev.Force)
			if err != nil {
				return nil, err
			}
			term = v
		case contracts.Deferred:
			v, err := t.Resolve(ev)
			if err != nil {
				return nil, err
			}
			term = v
		default:
			v, err := ev.reduce(term, env)
			if err != nil {
				return nil, err
			}
			// A memoized thunk can legitimately hold another lazy layer
			// as its WHNF (e.g. an argument sealed behind a Deferred by
			// an arrow contract's domain check); keep looping until a
			// genuine value shape surfaces.
			switch v.(type) {
			case *runtime.Thunk, contracts.Deferred:
				term = v
				continue
			}
			return v, nil
		}
	}
}

// reduce performs exactly one family of small-step reductions on a
// non-thunk, non-deferred term and returns the fully forced result.
func (ev *Evaluator) reduce(term ast.Term, env *runtime.Env) (ast.Term, error) {
	switch t := term.(type) {

	// Already-WHNF shapes: returned as-is.
	case ast.Null, ast.Bool, ast.Num, ast.Str, ast.Enum, ast.Closure, ast.Wrapped, ast.LabelVal, contracts.WrappedArrow, Builtin:
		return t, nil

	case ast.List:
		elems := make([]ast.Term, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = asThunk(e, env)
		}
		return ast.List{Elems: elems}, nil

	case ast.Record:
		return ev.reduceRecord(t, env)

	case ast.StrChunks:
		return ev.reduceStrChunks(t, env)

	case ast.FieldAccess:
		r, err := ev.Force(t.Record, env)
		if err != nil {
			return nil, err
		}
		rec, ok := r.(ast.Record)
		if !ok {
			return nil, runtimeErr(t.Position(), "field access on a non-record value")
		}
		fv, present := rec.Fields[t.Field]
		if !present {
			return nil, runtimeErr(t.Position(), "record has no field %q", t.Field)
		}
		return ev.Force(fv, nil)

	case ast.Var:
		th, ok := env.Lookup(t.Name)
		if !ok {
			return nil, kindErr(diag.KindUnboundVar, t.Position(), "unbound identifier %q", t.Name)
		}
		return th.Force(ev.Force)

	case ast.Fun:
		return ast.Closure{Term: t, Env: env}, nil

	case ast.FunPattern:
		return ast.Closure{Term: t, Env: env}, nil

	case ast.Let:
		th := runtime.NewPlaceholder()
		newEnv := env.Bind(t.Name, th)
		th.Bind(t.Bound, newEnv)
		return ev.Force(t.Body, newEnv)

	case ast.App:
		fn, err := ev.Force(t.Fun, env)
		if err != nil {
			return nil, err
		}
		argThunk := runtime.NewThunk(t.Arg, env)
		return ev.Apply(fn, argThunk)

	case ast.If:
		c, err := ev.Force(t.Cond, env)
		if err != nil {
			return nil, err
		}
		b, ok := c.(ast.Bool)
		if !ok {
			if err := sealedErr(c); err != nil {
				return nil, err
			}
			return nil, runtimeErr(t.Position(), "if condition must be a Bool")
		}
		if b.Value {
			return ev.Force(t.Then, env)
		}
		return ev.Force(t.Else, env)

	case ast.Switch:
		s, err := ev.Force(t.Scrutinee, env)
		if err != nil {
			return nil, err
		}
		en, ok := s.(ast.Enum)
		if !ok {
			if err := sealedErr(s); err != nil {
				return nil, err
			}
			return nil, runtimeErr(t.Position(), "switch scrutinee must be an enum tag")
		}
		if branch, ok := t.Cases[en.Tag]; ok {
			return ev.Force(branch, env)
		}
		if t.Default != nil {
			return ev.Force(t.Default, env)
		}
		return nil, runtimeErr(t.Position(), "unmatched enum tag `%s", en.Tag)

	case ast.Op1:
		a, err := ev.Force(t.A, env)
		if err != nil {
			return nil, err
		}
		if err := sealedErr(a); err != nil {
			return nil, err
		}
		return ops.Apply1(t.Position(), t.Op, a)

	case ast.Op2:
		if t.Op == "BoolAnd" || t.Op == "BoolOr" {
			return ev.reduceShortCircuit(t, env)
		}
		a, err := ev.Force(t.A, env)
		if err != nil {
			return nil, err
		}
		b, err := ev.Force(t.B, env)
		if err != nil {
			return nil, err
		}
		if err := sealedErr(a); err != nil {
			return nil, err
		}
		if err := sealedErr(b); err != nil {
			return nil, err
		}
		if t.Op == "Merge" {
			aRec, aOK := a.(ast.Record)
			bRec, bOK := b.(ast.Record)
			if !aOK || !bOK {
				return nil, runtimeErr(t.Position(), "`&` requires two records")
			}
			return ev.MergeRecords(t.Position(), aRec, bRec)
		}
		if t.Op == "Eq" || t.Op == "Neq" {
			eq, err := ev.Equal(a, b)
			if err != nil {
				return nil, err
			}
			if t.Op == "Neq" {
				eq = !eq
			}
			return ast.Bool{Value: eq}, nil
		}
		return ops.Apply2(t.Position(), t.Op, a, b)

	case ast.OpN:
		args := make([]ast.Term, len(t.Args))
		for i, a := range t.Args {
			v, err := ev.Force(a, env)
			if err != nil {
				return nil, err
			}
			if err := sealedErr(v); err != nil {
				return nil, err
			}
			args[i] = v
		}
		return ops.ApplyN(t.Position(), t.Op, args)

	case ast.Import:
		return ev.reduceImport(t, env)

	case ast.ParseError:
		return nil, kindErr(diag.KindParse, t.Position(), "parse error: %s", t.Message)

	case ast.MetaValue:
		return ev.reduceMetaValue(t, env)

	default:
		return nil, runtimeErr(term.Position(), "internal error: unreducible term %T", term)
	}
}

// reduceShortCircuit implements && and || without forcing the second
// operand unless demanded.
func (ev *Evaluator) reduceShortCircuit(t ast.Op2, env *runtime.Env) (ast.Term, error) {
	a, err := ev.Force(t.A, env)
	if err != nil {
		return nil, err
	}
	ab, ok := a.(ast.Bool)
	if !ok {
		if err := sealedErr(a); err != nil {
			return nil, err
		}
		return nil, runtimeErr(t.Position(), "%s operand must be a Bool", t.Op)
	}
	if t.Op == "BoolAnd" && !ab.Value {
		return ast.Bool{Value: false}, nil
	}
	if t.Op == "BoolOr" && ab.Value {
		return ast.Bool{Value: true}, nil
	}
	b, err := ev.Force(t.B, env)
	if err != nil {
		return nil, err
	}
	bb, ok := b.(ast.Bool)
	if !ok {
		if err := sealedErr(b); err != nil {
			return nil, err
		}
		return nil, runtimeErr(t.Position(), "%s operand must be a Bool", t.Op)
	}
	return ast.Bool{Value: bb.Value}, nil
}

// sealedErr blames inspection of a polymorphically sealed value
//. The value was
// sealed entering an arrow's domain at negative polarity; the party that
// went on to inspect it is the function's author, so the blame lands at
// the opposite polarity.
func sealedErr(v ast.Term) error {
	if w, ok := v.(ast.Wrapped); ok {
		return contracts.Blame(w.Label.FlipPolarity(),
			"sealed polymorphic value inspected where a concrete value was expected")
	}
	return nil
}

// asThunk wraps t in a *runtime.Thunk unless it already is one (or
// another lazily-resolvable shape), avoiding a redundant indirection.
func asThunk(t ast.Term, env *runtime.Env) ast.Term {
	switch t.(type) {
	case *runtime.Thunk, contracts.Deferred:
		return t
	default:
		return runtime.NewThunk(t, env)
	}
}
