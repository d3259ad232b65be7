package contracts

import (
	"github.com/lucid-lang/lucid/internal/ast"
	"github.com/lucid-lang/lucid/internal/ident"
	"github.com/lucid-lang/lucid/internal/label"
	"github.com/lucid-lang/lucid/internal/runtime"
)

// Deferred is an ast.Term standing in for "force Orig, then Assume Ctr
// to the result under Label". It is how list elements, record fields,
// and anything else a contract checks lazily stay unforced until
// actually demanded: constructing a Deferred does no work
// at all; only internal/eval recognizing one during Force does.
type Deferred struct {
	PosVal ident.Pos
	// Orig is the not-yet-checked value: a raw syntax term, a
	// *runtime.Thunk, or another Deferred — whatever its dynamic type,
	// internal/eval's Force dispatch knows how to reduce it further.
	Orig  ast.Term
	Ctr   Contract
	Label label.Label
	Env   *runtime.Env
}

func (d Deferred) Position() ident.Pos { return d.PosVal }

// Resolve forces Orig and applies Ctr to the result. internal/eval calls
// this from its own Force/reduce dispatch when it encounters a Deferred
// term; it is the one place Deferred's two halves (the pending force and
// the pending check) actually run.
func (d Deferred) Resolve(ev EvalOps) (ast.Term, error) {
	whnf, err := ev.Force(d.Orig, d.Env)
	if err != nil {
		return nil, err
	}
	return d.Ctr.Assume(ev, d.Label, whnf, d.Env)
}
