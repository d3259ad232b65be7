package eval

import "github.com/lucid-lang/lucid/internal/ast"

// DeepForce forces term and, recursively, every list element and record
// field reachable from it, producing a value tree with no remaining
// thunks or deferred contract checks — the shape internal/serialize
// needs before export, and the behavior behind `deep_seq`. Each level of
// the walk counts against the depth guard, like Force itself.
func (ev *Evaluator) DeepForce(term ast.Term) (ast.Term, error) {
	leave, err := ev.enter(term.Position())
	if err != nil {
		return nil, err
	}
	defer leave()
	whnf, err := ev.Force(term, nil)
	if err != nil {
		return nil, err
	}
	switch t := whnf.(type) {
	case ast.List:
		elems := make([]ast.Term, len(t.Elems))
		for i, e := range t.Elems {
			v, err := ev.DeepForce(e)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return ast.List{Elems: elems}, nil
	case ast.Record:
		fields := make(map[string]ast.Term, len(t.Fields))
		for k, f := range t.Fields {
			v, err := ev.DeepForce(f)
			if err != nil {
				return nil, err
			}
			fields[k] = v
		}
		return ast.Record{Fields: fields, Attrs: t.Attrs}, nil
	default:
		return whnf, nil
	}
}
