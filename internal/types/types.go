// Package types implements the gradual type grammar and its elaboration
// into contracts. Types are parsed but never inferred, so this package
// carries none of the substitution/unification machinery a Hindley-Milner
// engine would need; it keeps only what elaboration requires:
// row-polymorphic records, forall binders, and free-variable collection
// for the CheckUnbound pass.
//
// Records use an explicit row spine (RowEmpty/RowExtend terminated by an
// optional RowVar) rather than a map plus an open flag, so that
// StaticRecord elaboration (internal/contracts) can walk the row one
// extension at a time: require the field, apply its type if annotated,
// recurse on the tail.
package types

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lucid-lang/lucid/internal/ast"
)

// Type is the interface every type-grammar node implements.
type Type interface {
	String() string
	// FreeVars returns the free type variables reachable from this
	// type, used by CheckUnbound.
	FreeVars() []string
}

// Dyn is the unconstrained dynamic type; assuming it is the identity.
type Dyn struct{}

func (Dyn) String() string     { return "Dyn" }
func (Dyn) FreeVars() []string { return nil }

type Num struct{}

func (Num) String() string     { return "Num" }
func (Num) FreeVars() []string { return nil }

type Bool struct{}

func (Bool) String() string     { return "Bool" }
func (Bool) FreeVars() []string { return nil }

type Str struct{}

func (Str) String() string     { return "Str" }
func (Str) FreeVars() []string { return nil }

// Var is a (possibly free, pending CheckUnbound) type variable, e.g. the
// `a` in `forall a. a -> a`.
type Var struct{ Name string }

func (v Var) String() string     { return v.Name }
func (v Var) FreeVars() []string { return []string{v.Name} }

type Arrow struct{ Dom, Codom Type }

func (a Arrow) String() string { return fmt.Sprintf("(%s -> %s)", a.Dom, a.Codom) }
func (a Arrow) FreeVars() []string {
	return append(a.Dom.FreeVars(), a.Codom.FreeVars()...)
}

type List struct{ Elem Type }

func (l List) String() string     { return fmt.Sprintf("List %s", l.Elem) }
func (l List) FreeVars() []string { return l.Elem.FreeVars() }

// Forall is a universally quantified type, enforced at run time by
// dynamic sealing rather than static checking.
type Forall struct {
	Var  string
	Body Type
}

func (f Forall) String() string { return fmt.Sprintf("forall %s. %s", f.Var, f.Body) }
func (f Forall) FreeVars() []string {
	out := []string{}
	for _, v := range f.Body.FreeVars() {
		if v != f.Var {
			out = append(out, v)
		}
	}
	return out
}

// Row is the spine of a record type: a chain of RowExtend terminated by
// RowEmpty or a row variable (RowVar, used for row polymorphism).
type Row interface {
	Type
	row()
}

type RowEmpty struct{}

func (RowEmpty) String() string     { return "" }
func (RowEmpty) FreeVars() []string { return nil }
func (RowEmpty) row()               {}

// RowExtend adds one field to a row. Field may be untyped (Ty == nil),
// meaning the field is required but unconstrained.
type RowExtend struct {
	Field string
	Ty    Type // nil means "untyped, Dyn-like presence check only"
	Tail  Row
}

func (r RowExtend) String() string {
	if r.Ty != nil {
		return fmt.Sprintf("%s: %s, %s", r.Field, r.Ty, r.Tail)
	}
	return fmt.Sprintf("%s, %s", r.Field, r.Tail)
}
func (r RowExtend) FreeVars() []string {
	out := []string{}
	if r.Ty != nil {
		out = append(out, r.Ty.FreeVars()...)
	}
	return append(out, r.Tail.FreeVars()...)
}
func (RowExtend) row() {}

// RowVar terminates a row with a row-polymorphic variable rather than
// RowEmpty, so extra fields are permitted. Its contract (RowVarC)
// passes extra fields through unchecked, inside or outside a forall;
// row variables are not sealed.
type RowVar struct{ Name string }

func (v RowVar) String() string     { return v.Name }
func (v RowVar) FreeVars() []string { return []string{v.Name} }
func (RowVar) row()                 {}

// StaticRecord requires the value be a record whose fields match Row
// exactly (modulo a trailing RowVar, which tolerates extras).
type StaticRecord struct{ Row Row }

func (s StaticRecord) String() string     { return fmt.Sprintf("{ %s }", s.Row) }
func (s StaticRecord) FreeVars() []string { return s.Row.FreeVars() }

// DynRecord requires the value be a record and applies Elem to every
// field, however many there are.
type DynRecord struct{ Elem Type }

func (d DynRecord) String() string     { return fmt.Sprintf("{ _ : %s }", d.Elem) }
func (d DynRecord) FreeVars() []string { return d.Elem.FreeVars() }

// Enum requires the value be an Enum(tag) with tag a member of Tags.
type Enum struct{ Tags []string }

func (e Enum) String() string {
	sorted := append([]string(nil), e.Tags...)
	sort.Strings(sorted)
	parts := make([]string, len(sorted))
	for i, t := range sorted {
		parts[i] = "`" + t
	}
	return strings.Join(parts, " | ")
}
func (Enum) FreeVars() []string { return nil }

// Flat lifts an arbitrary user expression into type position: this is
// how user-defined contracts (predicate-producing functions) appear
// where a type is expected, e.g. `x | #is_positive`. Elaboration
// (internal/contracts) reduces Expr to a function and applies it as a
// Flat contract.
type Flat struct{ Expr ast.Term }

func (f Flat) String() string     { return "<user contract>" }
func (f Flat) FreeVars() []string { return nil }

// CheckUnbound rejects free type variables before elaboration. bound
// names the variables already quantified by an enclosing Forall.
func CheckUnbound(t Type, bound map[string]bool) error {
	for _, v := range t.FreeVars() {
		if !bound[v] {
			return fmt.Errorf("unbound type variable %q", v)
		}
	}
	return nil
}

// CheckAnnotation is the CheckUnbound pass as run over a complete
// annotation before it elaborates into a contract. Unlike the flat
// FreeVars walk it distinguishes row tails: a free row variable ending a
// record type acts as Dyn on extra fields outside a forall, so only
// ordinary type variables are required to be quantified.
func CheckAnnotation(t Type) error { return checkBound(t, nil) }

func checkBound(t Type, bound map[string]bool) error {
	switch t := t.(type) {
	case Var:
		if !bound[t.Name] {
			return fmt.Errorf("unbound type variable %q", t.Name)
		}
		return nil
	case Arrow:
		if err := checkBound(t.Dom, bound); err != nil {
			return err
		}
		return checkBound(t.Codom, bound)
	case List:
		return checkBound(t.Elem, bound)
	case Forall:
		inner := make(map[string]bool, len(bound)+1)
		for k := range bound {
			inner[k] = true
		}
		inner[t.Var] = true
		return checkBound(t.Body, inner)
	case StaticRecord:
		row := t.Row
		for {
			ext, ok := row.(RowExtend)
			if !ok {
				return nil
			}
			if ext.Ty != nil {
				if err := checkBound(ext.Ty, bound); err != nil {
					return err
				}
			}
			row = ext.Tail
		}
	case DynRecord:
		return checkBound(t.Elem, bound)
	default:
		return nil
	}
}
