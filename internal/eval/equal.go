package eval

import (
	"github.com/lucid-lang/lucid/internal/ast"
	"github.com/lucid-lang/lucid/internal/ident"
)

// Equal implements structural equality: literals, lists, and records
// compare by value (lists elementwise, records by key set plus per-key
// forced equality); functions, closures, and thunks are not equatable
// and produce a runtime error on `==`.
func (ev *Evaluator) Equal(a, b ast.Term) (bool, error) {
	leave, err := ev.enter(a.Position())
	if err != nil {
		return false, err
	}
	defer leave()
	switch av := a.(type) {
	case ast.Null:
		_, ok := b.(ast.Null)
		return ok, nil
	case ast.Bool:
		bv, ok := b.(ast.Bool)
		return ok && av.Value == bv.Value, nil
	case ast.Num:
		bv, ok := b.(ast.Num)
		return ok && av.Value == bv.Value, nil
	case ast.Str:
		bv, ok := b.(ast.Str)
		return ok && av.Value == bv.Value, nil
	case ast.Enum:
		bv, ok := b.(ast.Enum)
		return ok && av.Tag == bv.Tag, nil
	case ast.List:
		bv, ok := b.(ast.List)
		if !ok || len(av.Elems) != len(bv.Elems) {
			return false, nil
		}
		for i := range av.Elems {
			ae, err := ev.Force(av.Elems[i], nil)
			if err != nil {
				return false, err
			}
			be, err := ev.Force(bv.Elems[i], nil)
			if err != nil {
				return false, err
			}
			eq, err := ev.Equal(ae, be)
			if err != nil || !eq {
				return false, err
			}
		}
		return true, nil
	case ast.Record:
		bv, ok := b.(ast.Record)
		if !ok || len(av.Fields) != len(bv.Fields) {
			return false, nil
		}
		for k, at := range av.Fields {
			bt, ok := bv.Fields[k]
			if !ok {
				return false, nil
			}
			af, err := ev.Force(at, nil)
			if err != nil {
				return false, err
			}
			bf, err := ev.Force(bt, nil)
			if err != nil {
				return false, err
			}
			eq, err := ev.Equal(af, bf)
			if err != nil || !eq {
				return false, err
			}
		}
		return true, nil
	default:
		return false, runtimeErr(ident.NoPos, "`==` is not defined on functions or closures")
	}
}
