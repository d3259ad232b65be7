package eval

import (
	"github.com/lucid-lang/lucid/internal/ast"
	"github.com/lucid-lang/lucid/internal/contracts"
	"github.com/lucid-lang/lucid/internal/diag"
	"github.com/lucid-lang/lucid/internal/runtime"
)

// Apply applies a forced callable value fn to arg, which is not yet
// forced. fn must already be an ast.Closure or a
// contracts.WrappedArrow; anything else is a runtime error. Apply is
// exported so internal/contracts can call back into it through the
// EvalOps interface (e.g. FlatC applying a user predicate).
func (ev *Evaluator) Apply(fn ast.Term, arg *runtime.Thunk) (ast.Term, error) {
	switch f := fn.(type) {
	case ast.Closure:
		env, ok := f.Env.Self().(*runtime.Env)
		if !ok {
			return nil, runtimeErr(f.Position(), "internal error: closure environment of unexpected type")
		}
		switch term := f.Term.(type) {
		case ast.Fun:
			return ev.Force(term.Body, env.Bind(term.Param, arg))
		case ast.FunPattern:
			return ev.applyFunPattern(term, env, arg)
		default:
			return nil, runtimeErr(f.Position(), "internal error: closure over non-function term")
		}

	case contracts.WrappedArrow:
		domLabel := f.Label.EnterDom().FlipPolarity()
		wrappedArg := contracts.Deferred{
			PosVal: arg.Position(),
			Orig:   arg,
			Ctr:    f.Dom,
			Label:  domLabel,
		}
		result, err := ev.Apply(f.Inner, runtime.Done(wrappedArg))
		if err != nil {
			return nil, err
		}
		codomLabel := f.Label.EnterCodom()
		deferred := contracts.Deferred{
			PosVal: result.Position(),
			Orig:   result,
			Ctr:    f.Codom,
			Label:  codomLabel,
		}
		return deferred.Resolve(ev)

	case Builtin:
		return ev.applyBuiltin(f, arg)

	default:
		return nil, runtimeErr(fn.Position(), "runtime error: application of a non-function value")
	}
}

// applyFunPattern destructures arg against a FunPattern's Pattern,
// binding every field (and, if Name is set, the whole argument) before
// evaluating Body.
func (ev *Evaluator) applyFunPattern(fp ast.FunPattern, env *runtime.Env, arg *runtime.Thunk) (ast.Term, error) {
	bindings := map[string]*runtime.Thunk{}
	if fp.Name != nil {
		bindings[*fp.Name] = arg
	}
	if fp.Pattern != nil {
		whnf, err := ev.Force(arg, env)
		if err != nil {
			return nil, err
		}
		rec, ok := whnf.(ast.Record)
		if !ok {
			return nil, runtimeErr(fp.Position(), "function parameter pattern expected a record")
		}
		if err := ev.destructureInto(fp.Pattern, rec, env, bindings); err != nil {
			return nil, err
		}
	}
	newEnv := env.BindAll(bindings)
	return ev.Force(fp.Body, newEnv)
}

// destructureInto matches pat against rec, writing every bound name into
// bindings (shared across the whole pattern so sibling destructures and
// the enclosing function body see a single flat scope).
func (ev *Evaluator) destructureInto(pat *ast.Pattern, rec ast.Record, env *runtime.Env, bindings map[string]*runtime.Thunk) error {
	used := map[string]bool{}
	for _, mf := range pat.Fields {
		fieldTerm, present := rec.Fields[mf.FieldName]
		used[mf.FieldName] = true

		var fieldThunk *runtime.Thunk
		switch {
		case present:
			fieldThunk = toThunk(fieldTerm, env)
		case mf.Meta.Default != nil:
			fieldThunk = runtime.NewThunk(mf.Meta.Default, env)
		default:
			return runtimeErr(rec.Position(), "missing field %q in destructured argument", mf.FieldName)
		}

		if mf.Meta.Type != nil {
			ctr, err := contractFromAnnotation(mf.Meta.Type)
			if err != nil {
				return kindErr(diag.KindTypeVariable, rec.Position(), "%s", err)
			}
			l := contracts.NewLabel(rec.Position(), "pattern field "+mf.FieldName)
			fieldThunk = runtime.Done(contracts.Deferred{PosVal: rec.Position(), Orig: fieldThunk, Ctr: ctr, Label: l, Env: env})
		}

		switch mf.Kind {
		case ast.MatchSimple:
			bindings[mf.BindName] = fieldThunk
		case ast.MatchAssign:
			if mf.Nested != nil {
				nestedWHNF, err := ev.Force(fieldThunk, env)
				if err != nil {
					return err
				}
				nestedRec, ok := nestedWHNF.(ast.Record)
				if !ok {
					return runtimeErr(rec.Position(), "nested pattern for field %q expected a record", mf.FieldName)
				}
				if err := ev.destructureInto(mf.Nested, nestedRec, env, bindings); err != nil {
					return err
				}
			}
			if mf.BindName != "" {
				bindings[mf.BindName] = fieldThunk
			}
		}
	}
	if pat.Rest != "" {
		rest := map[string]ast.Term{}
		for k, v := range rec.Fields {
			if !used[k] {
				rest[k] = v
			}
		}
		bindings[pat.Rest] = runtime.Done(ast.Record{Fields: rest, Attrs: ast.RecordAttrs{Open: true}})
	} else if !pat.Open {
		for k := range rec.Fields {
			if !used[k] {
				return runtimeErr(rec.Position(), "unexpected field %q in destructured argument", k)
			}
		}
	}
	return nil
}

func toThunk(t ast.Term, env *runtime.Env) *runtime.Thunk {
	if th, ok := t.(*runtime.Thunk); ok {
		return th
	}
	return runtime.NewThunk(t, env)
}
