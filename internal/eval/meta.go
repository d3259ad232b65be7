package eval

import (
	"github.com/lucid-lang/lucid/internal/ast"
	"github.com/lucid-lang/lucid/internal/contracts"
	"github.com/lucid-lang/lucid/internal/diag"
	"github.com/lucid-lang/lucid/internal/runtime"
	"github.com/lucid-lang/lucid/internal/types"
)

// reduceMetaValue elaborates a MetaValue's Type and Contracts into a
// chain of contract applications over Value. The type annotation, if
// present, is checked first (innermost), then each user contract in
// written order wraps the previous result.
func (ev *Evaluator) reduceMetaValue(mv ast.MetaValue, env *runtime.Env) (ast.Term, error) {
	cur := toThunk(mv.Value, env)
	var curTerm ast.Term = cur

	if mv.Type != nil {
		ctr, err := contractFromAnnotation(mv.Type)
		if err != nil {
			return nil, kindErr(diag.KindTypeVariable, mv.Position(), "%s", err)
		}
		l := contracts.NewLabel(mv.Position(), "type annotation")
		curTerm = contracts.Deferred{PosVal: mv.Position(), Orig: curTerm, Ctr: ctr, Label: l, Env: env}
	}
	for _, c := range mv.Contracts {
		ctr := contractFromTerm(c)
		l := contracts.NewLabel(mv.Position(), ctr.ContractString())
		curTerm = contracts.Deferred{PosVal: mv.Position(), Orig: curTerm, Ctr: ctr, Label: l, Env: env}
	}
	return ev.Force(curTerm, env)
}

// contractFromAnnotation recovers the internal/types.Type a
// ast.TypeAnnotation was constructed from (every concrete
// internal/types.Type implementor already satisfies the narrower
// TypeAnnotation interface, so the type assertion below always succeeds
// for values produced by internal/parser), runs the CheckUnbound pass
// over it, and elaborates it.
func contractFromAnnotation(ta ast.TypeAnnotation) (contracts.Contract, error) {
	if ta == nil {
		return contracts.DynC{}, nil
	}
	if t, ok := ta.(types.Type); ok {
		if err := types.CheckAnnotation(t); err != nil {
			return nil, err
		}
		return contracts.FromType(t), nil
	}
	return contracts.DynC{}, nil
}

// contractFromTerm recovers the internal/contracts.Contract a
// ast.Contract was constructed from.
func contractFromTerm(c ast.Contract) contracts.Contract {
	if ctr, ok := c.(contracts.Contract); ok {
		return ctr
	}
	return contracts.DynC{}
}
