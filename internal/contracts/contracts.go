// Package contracts elaborates a internal/types.Type into an executable
// contract tree, applies it to a value under a internal/label.Label, and
// seals/unseals polymorphic values under a Forall.
//
// The package is deliberately neutral: it never imports the evaluator.
// Contracts must call back into the evaluator to force thunks and apply
// functions, but internal/eval must import internal/contracts to
// dispatch MetaValue annotations, so the callback goes through the
// narrow EvalOps interface below.
package contracts

import (
	"fmt"

	"github.com/lucid-lang/lucid/internal/ast"
	"github.com/lucid-lang/lucid/internal/ident"
	"github.com/lucid-lang/lucid/internal/label"
	"github.com/lucid-lang/lucid/internal/runtime"
)

// EvalOps is the slice of the evaluator a Contract needs: forcing a term
// to weak-head-normal-form under an environment, applying a function
// value to an argument thunk, and allocating a fresh sealing symbol.
// internal/eval supplies the concrete implementation.
type EvalOps interface {
	Force(term ast.Term, env *runtime.Env) (ast.Term, error)
	Apply(fn ast.Term, arg *runtime.Thunk) (ast.Term, error)
	NewEnv() *runtime.Env
	NewSealSymbol() int
}

// BlameError is the error value returned when a contract check fails.
// It satisfies the error interface and carries the label that located
// the failure plus a human-readable reason.
type BlameError struct {
	Label  label.Label
	Reason string
}

func (e *BlameError) Error() string {
	return fmt.Sprintf("contract violation (%s, polarity %s) at %s: %s",
		e.Label.Trail(), e.Label.Polarity, e.Label.Tag, e.Reason)
}

func blame(l label.Label, format string, args ...any) error {
	return &BlameError{Label: l, Reason: fmt.Sprintf(format, args...)}
}

// Blame constructs the same *BlameError a failed structural contract
// would, for the `blame`/`blame_with` stdlib primitives
// that let a user-defined (Flat) contract raise blame directly instead
// of returning a Bool.
func Blame(l label.Label, reason string) error {
	return &BlameError{Label: l, Reason: reason}
}

// Contract is an executable check derived from a internal/types.Type (via
// FromType) or directly from a user predicate (Flat). Assume applies it
// to valueTerm — which may be unevaluated — under env, returning the
// (possibly still partially lazy) resulting term or a *BlameError.
// Assume must force valueTerm to weak-head-normal-form to inspect its
// shape for every variant except Dyn (always the identity)
// and the two ForallVar cases that preserve sealing laziness.
type Contract interface {
	ContractString() string
	Assume(ev EvalOps, l label.Label, valueTerm ast.Term, env *runtime.Env) (ast.Term, error)
}

// NewLabel starts a label at positive polarity for a freshly attached
// contract.
func NewLabel(pos ident.Pos, tag string) label.Label {
	return label.New(pos, tag)
}

func forceShallow(ev EvalOps, term ast.Term, env *runtime.Env) (ast.Term, error) {
	return ev.Force(term, env)
}
