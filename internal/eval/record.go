package eval

import (
	"errors"
	"strings"

	"github.com/lucid-lang/lucid/internal/ast"
	"github.com/lucid-lang/lucid/internal/diag"
	"github.com/lucid-lang/lucid/internal/ident"
	"github.com/lucid-lang/lucid/internal/runtime"
)

// reduceRecord evaluates a record literal to WHNF: every field becomes a
// thunk bound in a single shared frame, so fields can reference each
// other (and themselves) for mutual recursion.
func (ev *Evaluator) reduceRecord(t ast.Record, env *runtime.Env) (ast.Term, error) {
	placeholders := make(map[string]*runtime.Thunk, len(t.Fields))
	for name := range t.Fields {
		placeholders[name] = runtime.NewPlaceholder()
	}
	newEnv := env.BindAll(placeholders)
	for name, term := range t.Fields {
		placeholders[name].Bind(term, newEnv)
	}
	fields := make(map[string]ast.Term, len(placeholders))
	for name, th := range placeholders {
		fields[name] = th
	}
	return ast.Record{Fields: fields, Attrs: t.Attrs}, nil
}

// reduceStrChunks un-reverses Chunks (stored reversed by the parser)
// and concatenates literal text with the string value of each
// interpolated expression.
func (ev *Evaluator) reduceStrChunks(t ast.StrChunks, env *runtime.Env) (ast.Term, error) {
	var b strings.Builder
	for i := len(t.Chunks) - 1; i >= 0; i-- {
		c := t.Chunks[i]
		if c.Kind == ast.ChunkLiteral {
			b.WriteString(c.Text)
			continue
		}
		v, err := ev.Force(c.Expr, env)
		if err != nil {
			return nil, err
		}
		s, ok := v.(ast.Str)
		if !ok {
			return nil, runtimeErr(t.Position(), "interpolated expression must evaluate to a Str")
		}
		b.WriteString(s.Value)
	}
	return ast.Str{Value: b.String()}, nil
}

// reduceImport resolves t.Path through the configured resolver and
// forces the memoized thunk it hands back. The
// resolver returns one thunk per canonical path, so a cyclic import
// chain re-demands a thunk that is still being forced; the blackhole
// error that produces is reported as a cycle rather than left to
// diverge.
func (ev *Evaluator) reduceImport(t ast.Import, env *runtime.Env) (ast.Term, error) {
	if ev.resolver == nil {
		return nil, kindErr(diag.KindImportIO, t.Position(), "import of %q: no resolver configured", t.Path)
	}
	th, err := ev.resolver.Resolve(t.Path, t.Position())
	if err != nil {
		return nil, err
	}
	v, err := th.Force(ev.Force)
	if errors.Is(err, runtime.ErrBlackhole) {
		return nil, kindErr(diag.KindImportCycle, t.Position(), "import cycle detected evaluating %q", t.Path)
	}
	if err != nil {
		return nil, err
	}
	return ev.Force(v, env)
}

// MergeRecords implements `&`: fields present in only one operand pass
// through; fields present in both are merged recursively if both sides
// are records, otherwise it is a merge conflict unless one side carries
// Priority default.
func (ev *Evaluator) MergeRecords(pos ident.Pos, a, b ast.Record) (ast.Term, error) {
	out := make(map[string]ast.Term, len(a.Fields)+len(b.Fields))
	for k, v := range a.Fields {
		out[k] = v
	}
	for k, bv := range b.Fields {
		av, ok := out[k]
		if !ok {
			out[k] = bv
			continue
		}
		merged, err := ev.mergeField(pos, av, bv)
		if err != nil {
			return nil, err
		}
		out[k] = merged
	}
	return ast.Record{Fields: out, Attrs: ast.RecordAttrs{Open: a.Attrs.Open || b.Attrs.Open}}, nil
}

func (ev *Evaluator) mergeField(pos ident.Pos, av, bv ast.Term) (ast.Term, error) {
	aMeta, aEnv, aIsMeta := peekMeta(av)
	bMeta, bEnv, bIsMeta := peekMeta(bv)

	// Default values yield to any concrete value from the other side.
	if aIsMeta && aMeta.Priority == ast.PriorityDefault && !(bIsMeta && bMeta.Priority == ast.PriorityDefault) {
		return bv, nil
	}
	if bIsMeta && bMeta.Priority == ast.PriorityDefault && !(aIsMeta && aMeta.Priority == ast.PriorityDefault) {
		return av, nil
	}

	if aIsMeta || bIsMeta {
		merged := ast.MetaValue{}
		av2, bv2 := av, bv
		if aIsMeta {
			merged = aMeta
			av2 = toThunk(aMeta.Value, aEnv)
		}
		if bIsMeta {
			if merged.Doc == nil {
				merged.Doc = bMeta.Doc
			}
			if merged.Type == nil {
				merged.Type = bMeta.Type
			}
			merged.Contracts = append(append([]ast.Contract{}, merged.Contracts...), bMeta.Contracts...)
			if bMeta.Priority == ast.PriorityDefault && merged.Priority != ast.PriorityDefault {
				merged.Priority = bMeta.Priority
			}
			bv2 = toThunk(bMeta.Value, bEnv)
		}
		inner, err := ev.mergeFieldValues(pos, av2, bv2)
		if err != nil {
			return nil, err
		}
		merged.Value = inner
		return merged, nil
	}

	return ev.mergeFieldValues(pos, av, bv)
}

// peekMeta recovers a record field's raw MetaValue shape (if any) from
// its thunk without forcing it. Every field on a reduced ast.Record is a
// *runtime.Thunk (reduceRecord always wraps fields in placeholders), so
// this is the only way mergeField can see Priority/Doc/Type ahead of
// evaluation.
func peekMeta(t ast.Term) (ast.MetaValue, *runtime.Env, bool) {
	th, ok := t.(*runtime.Thunk)
	if !ok {
		return ast.MetaValue{}, nil, false
	}
	return th.PeekMeta()
}

func (ev *Evaluator) mergeFieldValues(pos ident.Pos, av, bv ast.Term) (ast.Term, error) {
	aForced, err := ev.Force(av, nil)
	if err != nil {
		return nil, err
	}
	bForced, err := ev.Force(bv, nil)
	if err != nil {
		return nil, err
	}
	aRec, aOK := aForced.(ast.Record)
	bRec, bOK := bForced.(ast.Record)
	if aOK && bOK {
		return ev.MergeRecords(pos, aRec, bRec)
	}
	// Merge is idempotent on equal records, which in turn requires
	// idempotence at every leaf field — `{ a = 1 } & { a = 1 }`
	// must not be a conflict. Equal returns an error for incomparable
	// values (functions, closures); that's still a conflict, not a crash.
	if eq, err := ev.Equal(aForced, bForced); err == nil && eq {
		return aForced, nil
	}
	return nil, kindErr(diag.KindMergeConflict, pos, "merge conflict: field defined on both sides with non-mergeable values")
}

