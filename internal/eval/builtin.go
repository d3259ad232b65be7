package eval

import (
	"github.com/lucid-lang/lucid/internal/ast"
	"github.com/lucid-lang/lucid/internal/ident"
	"github.com/lucid-lang/lucid/internal/runtime"
)

// BuiltinFn is a host-implemented primitive of known arity. Builtins are
// curried one argument at a time, exactly like a surface-level nested
// Fun, so they compose with partial application the same way user
// functions do.
type BuiltinFn func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error)

// Builtin is the ast.Term a standard-library entry reduces to: a
// not-yet-fully-applied primitive. internal/eval's Apply recognizes it
// and accumulates arguments until Arity is reached, then calls Fn.
type Builtin struct {
	Name    string
	Arity   int
	Fn      BuiltinFn
	applied []*runtime.Thunk
}

func (Builtin) Position() ident.Pos { return ident.NoPos }

// NewBuiltin constructs a zero-argument Builtin value ready to be bound
// into a prelude environment.
func NewBuiltin(name string, arity int, fn BuiltinFn) Builtin {
	return Builtin{Name: name, Arity: arity, Fn: fn}
}

func (ev *Evaluator) applyBuiltin(b Builtin, arg *runtime.Thunk) (ast.Term, error) {
	next := make([]*runtime.Thunk, len(b.applied)+1)
	copy(next, b.applied)
	next[len(b.applied)] = arg
	if len(next) < b.Arity {
		return Builtin{Name: b.Name, Arity: b.Arity, Fn: b.Fn, applied: next}, nil
	}
	return b.Fn(ev, next)
}
