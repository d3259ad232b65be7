package contracts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lucid-lang/lucid/internal/ast"
	"github.com/lucid-lang/lucid/internal/ident"
	"github.com/lucid-lang/lucid/internal/label"
	"github.com/lucid-lang/lucid/internal/runtime"
	"github.com/lucid-lang/lucid/internal/types"
)

// DynC is the always-succeeding contract: Dyn assumes the identity.
type DynC struct{}

func (DynC) ContractString() string { return "Dyn" }
func (DynC) Assume(_ EvalOps, _ label.Label, v ast.Term, _ *runtime.Env) (ast.Term, error) {
	return v, nil
}

type NumC struct{}

func (NumC) ContractString() string { return "Num" }
func (NumC) Assume(ev EvalOps, l label.Label, v ast.Term, env *runtime.Env) (ast.Term, error) {
	whnf, err := forceShallow(ev, v, env)
	if err != nil {
		return nil, err
	}
	if _, ok := whnf.(ast.Num); !ok {
		return nil, blame(l, "expected a Num, found %s", describe(whnf))
	}
	return whnf, nil
}

type BoolC struct{}

func (BoolC) ContractString() string { return "Bool" }
func (BoolC) Assume(ev EvalOps, l label.Label, v ast.Term, env *runtime.Env) (ast.Term, error) {
	whnf, err := forceShallow(ev, v, env)
	if err != nil {
		return nil, err
	}
	if _, ok := whnf.(ast.Bool); !ok {
		return nil, blame(l, "expected a Bool, found %s", describe(whnf))
	}
	return whnf, nil
}

type StrC struct{}

func (StrC) ContractString() string { return "Str" }
func (StrC) Assume(ev EvalOps, l label.Label, v ast.Term, env *runtime.Env) (ast.Term, error) {
	whnf, err := forceShallow(ev, v, env)
	if err != nil {
		return nil, err
	}
	if _, ok := whnf.(ast.Str); !ok {
		return nil, blame(l, "expected a Str, found %s", describe(whnf))
	}
	return whnf, nil
}

// ListC checks the value is a List, then wraps each element with a
// Deferred so that elements are only checked against Elem when
// individually demanded.
type ListC struct{ Elem Contract }

func (l ListC) ContractString() string { return fmt.Sprintf("List %s", l.Elem.ContractString()) }
func (lc ListC) Assume(ev EvalOps, l label.Label, v ast.Term, env *runtime.Env) (ast.Term, error) {
	whnf, err := forceShallow(ev, v, env)
	if err != nil {
		return nil, err
	}
	lst, ok := whnf.(ast.List)
	if !ok {
		return nil, blame(l, "expected a List, found %s", describe(whnf))
	}
	elemLabel := l.EnterList()
	elems := make([]ast.Term, len(lst.Elems))
	for i, e := range lst.Elems {
		elems[i] = Deferred{PosVal: e.Position(), Orig: e, Ctr: lc.Elem, Label: elemLabel, Env: env}
	}
	return ast.List{Elems: elems}, nil
}

// ArrowC checks the value is callable, then returns a WrappedArrow that
// defers domain/codomain checks to each individual call.
type ArrowC struct{ Dom, Codom Contract }

func (a ArrowC) ContractString() string {
	return fmt.Sprintf("(%s -> %s)", a.Dom.ContractString(), a.Codom.ContractString())
}
func (a ArrowC) Assume(ev EvalOps, l label.Label, v ast.Term, env *runtime.Env) (ast.Term, error) {
	whnf, err := forceShallow(ev, v, env)
	if err != nil {
		return nil, err
	}
	if !isCallable(whnf) {
		return nil, blame(l, "expected a function, found %s", describe(whnf))
	}
	return WrappedArrow{PosVal: v.Position(), Inner: whnf, Dom: a.Dom, Codom: a.Codom, Label: l}, nil
}

// WrappedArrow is the weak-head-normal-form of a value assumed against an
// ArrowC: a callable wrapped so that internal/eval's App case can apply
// the domain contract to the argument (negative polarity) and the
// codomain contract to the result (positive polarity) on every call.
type WrappedArrow struct {
	PosVal     ident.Pos
	Inner      ast.Term
	Dom, Codom Contract
	Label      label.Label
}

func (w WrappedArrow) Position() ident.Pos { return w.PosVal }

// isCallable reports whether whnf is something internal/eval's App case
// knows how to invoke: a Closure over Fun/FunPattern, or another
// WrappedArrow.
func isCallable(whnf ast.Term) bool {
	switch whnf.(type) {
	case ast.Closure, WrappedArrow:
		return true
	default:
		return false
	}
}

// ForallC substitutes a fresh sealing symbol for its bound variable in
// Body and delegates. The substitution happens once per
// Assume call, each call minting its own symbol, so that two different
// instantiations of the same `forall a. ...` (e.g. two calls to the same
// polymorphic function) seal independently.
type ForallC struct {
	Var  string
	Body Contract
}

func (f ForallC) ContractString() string {
	return fmt.Sprintf("forall %s. %s", f.Var, f.Body.ContractString())
}
func (f ForallC) Assume(ev EvalOps, l label.Label, v ast.Term, env *runtime.Env) (ast.Term, error) {
	sym := ev.NewSealSymbol()
	substituted := substituteVar(f.Body, f.Var, ForallVarC{Sym: sym, Captured: label.Positive})
	return substituted.Assume(ev, l, v, env)
}

// ForallVarC is the sentinel a ForallC instantiation substitutes in place
// of its bound variable everywhere it occurs in Body. Captured is always
// label.Positive; whether a
// given Assume call wraps or unwraps depends on comparing the label's
// *current* polarity against Captured.
type ForallVarC struct {
	Sym      int
	Captured label.Polarity
}

func (f ForallVarC) ContractString() string { return "<sealed>" }
func (f ForallVarC) Assume(_ EvalOps, l label.Label, v ast.Term, _ *runtime.Env) (ast.Term, error) {
	if l.Polarity == f.Captured {
		// Unwrap: the value must already be sealed under this exact
		// symbol. This is the one shallow check that forces — wrapping
		// must stay lazy (see the other branch), but checking "is this a
		// Wrapped" requires the value already be at WHNF, which it is:
		// whatever produced it (a prior wrap, or the function's own
		// return) already reduced it that far.
		w, ok := v.(ast.Wrapped)
		if !ok || w.Sym != f.Sym {
			return nil, blame(l, "polymorphic value escaped its abstraction boundary")
		}
		return w.Inner, nil
	}
	// Wrap: seal the raw (possibly still unevaluated) value without
	// forcing it, so that a polymorphic identity function stays lazy in
	// its argument.
	return ast.Wrapped{Sym: f.Sym, Inner: v, Label: l}, nil
}

func substituteVar(c Contract, name string, repl Contract) Contract {
	switch t := c.(type) {
	case VarRefC:
		if t.Name == name {
			return repl
		}
		return t
	case ArrowC:
		return ArrowC{Dom: substituteVar(t.Dom, name, repl), Codom: substituteVar(t.Codom, name, repl)}
	case ListC:
		return ListC{Elem: substituteVar(t.Elem, name, repl)}
	case ForallC:
		if t.Var == name {
			return t // shadowed, stop here
		}
		return ForallC{Var: t.Var, Body: substituteVar(t.Body, name, repl)}
	case StaticRecordC:
		return StaticRecordC{Row: substituteRow(t.Row, name, repl)}
	case DynRecordC:
		return DynRecordC{Elem: substituteVar(t.Elem, name, repl)}
	default:
		return c
	}
}

func substituteRow(r RowC, name string, repl Contract) RowC {
	switch t := r.(type) {
	case RowExtendC:
		var ty Contract
		if t.Ty != nil {
			ty = substituteVar(t.Ty, name, repl)
		}
		return RowExtendC{Field: t.Field, Ty: ty, Tail: substituteRow(t.Tail, name, repl)}
	default:
		return r
	}
}

// VarRefC is FromType's translation of types.Var before a ForallC
// substitutes it away. A VarRefC reaching Assume (i.e. never bound by an
// enclosing forall) is an internal-invariant failure: internal/types.
// CheckUnbound is responsible for rejecting that case before elaboration.
type VarRefC struct{ Name string }

func (v VarRefC) ContractString() string { return v.Name }
func (v VarRefC) Assume(_ EvalOps, l label.Label, _ ast.Term, _ *runtime.Env) (ast.Term, error) {
	return nil, blame(l, "internal error: unbound type variable %q reached contract application", v.Name)
}

// RowC mirrors internal/types.Row, translated to contracts.
type RowC interface{ rowC() }

type RowEmptyC struct{}

func (RowEmptyC) rowC() {}

type RowExtendC struct {
	Field string
	Ty    Contract // nil means presence-only
	Tail  RowC
}

func (RowExtendC) rowC() {}

type RowVarC struct{ Name string }

func (RowVarC) rowC() {}

// StaticRecordC requires the value be a record matching Row exactly
// (modulo a trailing RowVarC, which tolerates extra fields).
type StaticRecordC struct{ Row RowC }

func (s StaticRecordC) ContractString() string { return "{ ... }" }
func (s StaticRecordC) Assume(ev EvalOps, l label.Label, v ast.Term, env *runtime.Env) (ast.Term, error) {
	whnf, err := forceShallow(ev, v, env)
	if err != nil {
		return nil, err
	}
	rec, ok := whnf.(ast.Record)
	if !ok {
		return nil, blame(l, "expected a record, found %s", describe(whnf))
	}
	fields := make(map[string]ast.Term, len(rec.Fields))
	for k, t := range rec.Fields {
		fields[k] = t
	}
	seen := map[string]bool{}
	row := s.Row
	for {
		switch r := row.(type) {
		case RowEmptyC:
			if len(seen) != len(fields) && !rec.Attrs.Open {
				for k := range fields {
					if !seen[k] {
						return nil, blame(l, "unexpected field %q", k)
					}
				}
			}
			return ast.Record{Fields: fields, Attrs: rec.Attrs}, nil
		case RowVarC:
			// Open tail: extras pass through untouched.
			return ast.Record{Fields: fields, Attrs: rec.Attrs}, nil
		case RowExtendC:
			term, ok := fields[r.Field]
			if !ok {
				return nil, blame(l, "missing field %q", r.Field)
			}
			seen[r.Field] = true
			fieldLabel := l.EnterField(r.Field)
			if r.Ty != nil {
				fields[r.Field] = Deferred{PosVal: term.Position(), Orig: term, Ctr: r.Ty, Label: fieldLabel, Env: env}
			}
			row = r.Tail
		default:
			return nil, blame(l, "internal error: unknown row shape")
		}
	}
}

// DynRecordC requires the value be a record and applies Elem to every
// field, however many there are, lazily per field.
type DynRecordC struct{ Elem Contract }

func (d DynRecordC) ContractString() string {
	return fmt.Sprintf("{ _ : %s }", d.Elem.ContractString())
}
func (d DynRecordC) Assume(ev EvalOps, l label.Label, v ast.Term, env *runtime.Env) (ast.Term, error) {
	whnf, err := forceShallow(ev, v, env)
	if err != nil {
		return nil, err
	}
	rec, ok := whnf.(ast.Record)
	if !ok {
		return nil, blame(l, "expected a record, found %s", describe(whnf))
	}
	fields := make(map[string]ast.Term, len(rec.Fields))
	for k, t := range rec.Fields {
		fieldLabel := l.EnterField(k)
		fields[k] = Deferred{PosVal: t.Position(), Orig: t, Ctr: d.Elem, Label: fieldLabel, Env: env}
	}
	return ast.Record{Fields: fields, Attrs: rec.Attrs}, nil
}

// EnumC requires the value be an Enum(tag) with tag one of Tags.
type EnumC struct{ Tags []string }

func (e EnumC) ContractString() string {
	sorted := append([]string(nil), e.Tags...)
	sort.Strings(sorted)
	parts := make([]string, len(sorted))
	for i, t := range sorted {
		parts[i] = "`" + t
	}
	return strings.Join(parts, " | ")
}
func (e EnumC) Assume(ev EvalOps, l label.Label, v ast.Term, env *runtime.Env) (ast.Term, error) {
	whnf, err := forceShallow(ev, v, env)
	if err != nil {
		return nil, err
	}
	en, ok := whnf.(ast.Enum)
	if !ok {
		return nil, blame(l, "expected an enum tag, found %s", describe(whnf))
	}
	for _, t := range e.Tags {
		if t == en.Tag {
			return whnf, nil
		}
	}
	return nil, blame(l, "tag `%s is not one of %s", en.Tag, e.ContractString())
}

// FlatC lifts an arbitrary user expression (expected to reduce to a
// two-argument function) into a contract: reduce the expression to a
// function, then apply it to the label and the value, in that order.
// Expr is applied first to the current Label
// (lifted to a lucid value via ast.LabelVal) and then to the value under
// check; the function either returns a value (success — possibly the
// same value, possibly a coerced one) or calls the `blame`/`blame_with`
// primitive, which fails with a *BlameError that propagates straight out
// of ev.Apply. There is no implicit boolean check here: raising blame is
// the function's own job, which is what lets a user contract customize
// its failure message or transform the value on success.
type FlatC struct{ Expr ast.Term }

func (f FlatC) ContractString() string { return "<user contract>" }
func (f FlatC) Assume(ev EvalOps, l label.Label, v ast.Term, env *runtime.Env) (ast.Term, error) {
	pred, err := ev.Force(f.Expr, env)
	if err != nil {
		return nil, err
	}
	labelArg := runtime.Done(ast.LabelVal{Label: l})
	partial, err := ev.Apply(pred, labelArg)
	if err != nil {
		return nil, err
	}
	arg := runtime.NewThunk(v, env)
	result, err := ev.Apply(partial, arg)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// FromType elaborates a internal/types.Type into its Contract tree
//. Type
// variables are translated to VarRefC; only an enclosing ForallC's
// Assume call ever substitutes them away.
func FromType(t types.Type) Contract {
	switch t := t.(type) {
	case types.Dyn:
		return DynC{}
	case types.Num:
		return NumC{}
	case types.Bool:
		return BoolC{}
	case types.Str:
		return StrC{}
	case types.Var:
		return VarRefC{Name: t.Name}
	case types.Arrow:
		return ArrowC{Dom: FromType(t.Dom), Codom: FromType(t.Codom)}
	case types.List:
		return ListC{Elem: FromType(t.Elem)}
	case types.Forall:
		return ForallC{Var: t.Var, Body: FromType(t.Body)}
	case types.StaticRecord:
		return StaticRecordC{Row: fromRow(t.Row)}
	case types.DynRecord:
		return DynRecordC{Elem: FromType(t.Elem)}
	case types.Enum:
		return EnumC{Tags: t.Tags}
	case types.Flat:
		return FlatC{Expr: t.Expr}
	default:
		return DynC{}
	}
}

func fromRow(r types.Row) RowC {
	switch r := r.(type) {
	case types.RowEmpty:
		return RowEmptyC{}
	case types.RowExtend:
		var ty Contract
		if r.Ty != nil {
			ty = FromType(r.Ty)
		}
		return RowExtendC{Field: r.Field, Ty: ty, Tail: fromRow(r.Tail)}
	case types.RowVar:
		return RowVarC{Name: r.Name}
	default:
		return RowEmptyC{}
	}
}

func describe(t ast.Term) string {
	switch t.(type) {
	case ast.Null:
		return "Null"
	case ast.Bool:
		return "a Bool"
	case ast.Num:
		return "a Num"
	case ast.Str:
		return "a Str"
	case ast.Enum:
		return "an enum tag"
	case ast.List:
		return "a List"
	case ast.Record:
		return "a Record"
	case ast.Closure, WrappedArrow:
		return "a function"
	case ast.Wrapped:
		return "a sealed polymorphic value"
	case ast.LabelVal:
		return "a label"
	default:
		return fmt.Sprintf("%T", t)
	}
}
