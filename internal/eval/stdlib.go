package eval

import (
	"sort"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/lucid-lang/lucid/internal/ast"
	"github.com/lucid-lang/lucid/internal/runtime"
	"github.com/lucid-lang/lucid/internal/serialize"
)

// Prelude returns the root environment every top-level program and every
// import is evaluated under: one frame binding every standard-library
// namespace (`list`, `record`, `string`, `serialize`, `hash`) to a record
// of Builtins, plus a handful of bare top-level names (`seq`,
// `deep_seq`, `tag`, `blame`) that are language primitives rather than
// library functions. One function per primitive, registered into a
// single table and regrouped into dotted-namespace records, so that user
// source reaches a primitive the same way it reaches any other record
// field (`list.map`, via ordinary FieldAccess), rather than the lexer
// needing dots inside identifiers.
func Prelude() *runtime.Env {
	entries := map[string]*runtime.Thunk{}
	reg := func(name string, arity int, fn BuiltinFn) {
		entries[name] = runtime.Done(NewBuiltin(name, arity, fn))
	}

	registerListBuiltins(reg)
	registerRecordBuiltins(reg)
	registerStringBuiltins(reg)
	registerSerializeBuiltins(reg)
	registerHashBuiltins(reg)
	registerRegexBuiltins(reg)
	registerStrictnessBuiltins(reg)
	registerContractBuiltins(reg)
	registerMiscBuiltins(reg)

	return runtime.NewEnv().BindAll(namespace(entries))
}

// namespace regroups dot-qualified entries ("list.map") into nested
// records bound under their prefix ("list"), leaving bare names (e.g.
// "seq") bound directly. Only one level of nesting is needed: no
// standard-library primitive is qualified more than once.
func namespace(entries map[string]*runtime.Thunk) map[string]*runtime.Thunk {
	top := map[string]*runtime.Thunk{}
	groups := map[string]map[string]ast.Term{}
	for name, th := range entries {
		ns, rest, dotted := strings.Cut(name, ".")
		if !dotted {
			top[name] = th
			continue
		}
		if groups[ns] == nil {
			groups[ns] = map[string]ast.Term{}
		}
		groups[ns][rest] = th
	}
	for ns, fields := range groups {
		top[ns] = runtime.Done(ast.Record{Fields: fields})
	}
	return top
}

type registerFn func(name string, arity int, fn BuiltinFn)

func registerListBuiltins(reg registerFn) {
	reg("list.length", 1, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		lst, err := forceList(ev, args[0])
		if err != nil {
			return nil, err
		}
		return ast.Num{Value: float64(len(lst.Elems))}, nil
	})

	reg("list.elem_at", 2, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		lst, err := forceList(ev, args[0])
		if err != nil {
			return nil, err
		}
		idx, err := forceNum(ev, args[1])
		if err != nil {
			return nil, err
		}
		i := int(idx.Value)
		if i < 0 || i >= len(lst.Elems) {
			return nil, runtimeErr(lst.Position(), "list.elem_at: index %d out of range (length %d)", i, len(lst.Elems))
		}
		return ev.Force(lst.Elems[i], nil)
	})

	reg("list.reverse", 1, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		lst, err := forceList(ev, args[0])
		if err != nil {
			return nil, err
		}
		out := make([]ast.Term, len(lst.Elems))
		for i, e := range lst.Elems {
			out[len(out)-1-i] = e
		}
		return ast.List{Elems: out}, nil
	})

	// list.map is lazy in every element:
	// the output list is built immediately, but fn only runs on an
	// element when that element is demanded.
	reg("list.map", 2, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		fn, err := ev.Force(args[0], nil)
		if err != nil {
			return nil, err
		}
		lst, err := forceList(ev, args[1])
		if err != nil {
			return nil, err
		}
		out := make([]ast.Term, len(lst.Elems))
		for i, e := range lst.Elems {
			elemThunk := toThunk(e, nil)
			out[i] = runtime.NewLazyThunk(func() (ast.Term, error) {
				return ev.Apply(fn, elemThunk)
			})
		}
		return ast.List{Elems: out}, nil
	})

	reg("list.filter", 2, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		fn, err := ev.Force(args[0], nil)
		if err != nil {
			return nil, err
		}
		lst, err := forceList(ev, args[1])
		if err != nil {
			return nil, err
		}
		var out []ast.Term
		for _, e := range lst.Elems {
			elemThunk := toThunk(e, nil)
			keep, err := ev.Apply(fn, elemThunk)
			if err != nil {
				return nil, err
			}
			b, ok := keep.(ast.Bool)
			if !ok {
				return nil, runtimeErr(lst.Position(), "list.filter: predicate must return a Bool")
			}
			if b.Value {
				out = append(out, elemThunk)
			}
		}
		return ast.List{Elems: out}, nil
	})

	reg("list.head", 1, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		lst, err := forceList(ev, args[0])
		if err != nil {
			return nil, err
		}
		if len(lst.Elems) == 0 {
			return nil, runtimeErr(lst.Position(), "list.head: empty list")
		}
		return ev.Force(lst.Elems[0], nil)
	})

	reg("list.tail", 1, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		lst, err := forceList(ev, args[0])
		if err != nil {
			return nil, err
		}
		if len(lst.Elems) == 0 {
			return nil, runtimeErr(lst.Position(), "list.tail: empty list")
		}
		return ast.List{Elems: append([]ast.Term(nil), lst.Elems[1:]...)}, nil
	})

	// list.generate is strict in its count argument: it builds the
	// whole output length eagerly, but each element thunk remains
	// individually lazy.
	reg("list.generate", 2, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		fn, err := ev.Force(args[0], nil)
		if err != nil {
			return nil, err
		}
		n, err := forceNum(ev, args[1])
		if err != nil {
			return nil, err
		}
		count := int(n.Value)
		if count < 0 {
			return nil, runtimeErr(n.Position(), "list.generate: negative length %d", count)
		}
		elems := make([]ast.Term, count)
		for i := 0; i < count; i++ {
			idxThunk := runtime.Done(ast.Num{Value: float64(i)})
			elems[i] = runtime.NewLazyThunk(func() (ast.Term, error) {
				return ev.Apply(fn, idxThunk)
			})
		}
		return ast.List{Elems: elems}, nil
	})

	reg("list.flatten", 1, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		outer, err := forceList(ev, args[0])
		if err != nil {
			return nil, err
		}
		var elems []ast.Term
		for _, e := range outer.Elems {
			inner, err := forceList(ev, toThunk(e, nil))
			if err != nil {
				return nil, err
			}
			elems = append(elems, inner.Elems...)
		}
		return ast.List{Elems: elems}, nil
	})

	reg("list.concat", 2, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		a, err := forceList(ev, args[0])
		if err != nil {
			return nil, err
		}
		b, err := forceList(ev, args[1])
		if err != nil {
			return nil, err
		}
		elems := make([]ast.Term, 0, len(a.Elems)+len(b.Elems))
		elems = append(elems, a.Elems...)
		elems = append(elems, b.Elems...)
		return ast.List{Elems: elems}, nil
	})

	reg("list.fold", 3, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		fn, err := ev.Force(args[0], nil)
		if err != nil {
			return nil, err
		}
		acc, err := ev.Force(args[1], nil)
		if err != nil {
			return nil, err
		}
		lst, err := forceList(ev, args[2])
		if err != nil {
			return nil, err
		}
		for _, e := range lst.Elems {
			partial, err := ev.Apply(fn, runtime.Done(acc))
			if err != nil {
				return nil, err
			}
			result, err := ev.Apply(partial, toThunk(e, nil))
			if err != nil {
				return nil, err
			}
			acc = result
		}
		return acc, nil
	})

	// list.elem reports membership by forced structural equality
	//, not by identity.
	reg("list.elem", 2, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		target, err := ev.Force(args[0], nil)
		if err != nil {
			return nil, err
		}
		lst, err := forceList(ev, args[1])
		if err != nil {
			return nil, err
		}
		for _, e := range lst.Elems {
			v, err := ev.Force(e, nil)
			if err != nil {
				return nil, err
			}
			eq, err := ev.Equal(target, v)
			if err != nil {
				return nil, err
			}
			if eq {
				return ast.Bool{Value: true}, nil
			}
		}
		return ast.Bool{Value: false}, nil
	})

	// list.sort takes a curried `less-than` comparator, applied the same
	// two-argument way list.fold applies its accumulator function: first
	// to the left element, then the partial result to the right element.
	reg("list.sort", 2, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		fn, err := ev.Force(args[0], nil)
		if err != nil {
			return nil, err
		}
		lst, err := forceList(ev, args[1])
		if err != nil {
			return nil, err
		}
		elems := append([]ast.Term(nil), lst.Elems...)
		var sortErr error
		sort.SliceStable(elems, func(i, j int) bool {
			if sortErr != nil {
				return false
			}
			partial, err := ev.Apply(fn, toThunk(elems[i], nil))
			if err != nil {
				sortErr = err
				return false
			}
			result, err := ev.Apply(partial, toThunk(elems[j], nil))
			if err != nil {
				sortErr = err
				return false
			}
			b, ok := result.(ast.Bool)
			if !ok {
				sortErr = runtimeErr(lst.Position(), "list.sort: comparator must return a Bool")
				return false
			}
			return b.Value
		})
		if sortErr != nil {
			return nil, sortErr
		}
		return ast.List{Elems: elems}, nil
	})
}

func registerRecordBuiltins(reg registerFn) {
	reg("record.fields", 1, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		rec, err := forceRecord(ev, args[0])
		if err != nil {
			return nil, err
		}
		names := sortedKeys(rec.Fields)
		elems := make([]ast.Term, len(names))
		for i, n := range names {
			elems[i] = ast.Str{Value: n}
		}
		return ast.List{Elems: elems}, nil
	})

	reg("record.values", 1, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		rec, err := forceRecord(ev, args[0])
		if err != nil {
			return nil, err
		}
		names := sortedKeys(rec.Fields)
		elems := make([]ast.Term, len(names))
		for i, n := range names {
			elems[i] = rec.Fields[n]
		}
		return ast.List{Elems: elems}, nil
	})

	reg("record.has_field", 2, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		rec, err := forceRecord(ev, args[0])
		if err != nil {
			return nil, err
		}
		name, err := forceStr(ev, args[1])
		if err != nil {
			return nil, err
		}
		_, ok := rec.Fields[name.Value]
		return ast.Bool{Value: ok}, nil
	})

	// record.map is lazy over values, passing each field's name to fn
	// alongside its (unforced) value.
	reg("record.map", 2, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		fn, err := ev.Force(args[0], nil)
		if err != nil {
			return nil, err
		}
		rec, err := forceRecord(ev, args[1])
		if err != nil {
			return nil, err
		}
		out := make(map[string]ast.Term, len(rec.Fields))
		for name, v := range rec.Fields {
			name, v := name, v
			out[name] = runtime.NewLazyThunk(func() (ast.Term, error) {
				withName, err := ev.Apply(fn, runtime.Done(ast.Str{Value: name}))
				if err != nil {
					return nil, err
				}
				return ev.Apply(withName, toThunk(v, nil))
			})
		}
		return ast.Record{Fields: out, Attrs: rec.Attrs}, nil
	})

	// record.extend implements `$[k = v]`: k is computed at run time
	// rather than known at parse time, which is why this is a builtin
	// rather than record-literal syntax.
	reg("record.extend", 3, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		key, err := forceStr(ev, args[0])
		if err != nil {
			return nil, err
		}
		rec, err := forceRecord(ev, args[2])
		if err != nil {
			return nil, err
		}
		out := make(map[string]ast.Term, len(rec.Fields)+1)
		for k, v := range rec.Fields {
			out[k] = v
		}
		out[key.Value] = args[1]
		return ast.Record{Fields: out, Attrs: rec.Attrs}, nil
	})

	// record.remove implements `-$ k`.
	reg("record.remove", 2, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		key, err := forceStr(ev, args[0])
		if err != nil {
			return nil, err
		}
		rec, err := forceRecord(ev, args[1])
		if err != nil {
			return nil, err
		}
		out := make(map[string]ast.Term, len(rec.Fields))
		for k, v := range rec.Fields {
			if k != key.Value {
				out[k] = v
			}
		}
		return ast.Record{Fields: out, Attrs: rec.Attrs}, nil
	})

	// record.to_list renders a record as `[{ field, value }, ...]` pairs
	// in lexicographic field order, the iteration-friendly dual of
	// record.from_list below. Values stay unforced.
	reg("record.to_list", 1, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		rec, err := forceRecord(ev, args[0])
		if err != nil {
			return nil, err
		}
		names := sortedKeys(rec.Fields)
		elems := make([]ast.Term, len(names))
		for i, n := range names {
			elems[i] = ast.Record{Fields: map[string]ast.Term{
				"field": ast.Str{Value: n},
				"value": rec.Fields[n],
			}}
		}
		return ast.List{Elems: elems}, nil
	})

	reg("record.from_list", 1, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		lst, err := forceList(ev, args[0])
		if err != nil {
			return nil, err
		}
		out := make(map[string]ast.Term, len(lst.Elems))
		for _, e := range lst.Elems {
			pair, err := forceRecord(ev, toThunk(e, nil))
			if err != nil {
				return nil, err
			}
			nameTerm, ok := pair.Fields["field"]
			if !ok {
				return nil, runtimeErr(lst.Position(), "record.from_list: each pair needs a `field` entry")
			}
			name, err := forceStr(ev, toThunk(nameTerm, nil))
			if err != nil {
				return nil, err
			}
			value, ok := pair.Fields["value"]
			if !ok {
				return nil, runtimeErr(lst.Position(), "record.from_list: each pair needs a `value` entry")
			}
			out[name.Value] = value
		}
		return ast.Record{Fields: out}, nil
	})

	reg("record.merge", 2, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		a, err := forceRecord(ev, args[0])
		if err != nil {
			return nil, err
		}
		b, err := forceRecord(ev, args[1])
		if err != nil {
			return nil, err
		}
		return ev.MergeRecords(a.Position(), a, b)
	})
}

func registerStringBuiltins(reg registerFn) {
	reg("string.length", 1, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		s, err := forceStr(ev, args[0])
		if err != nil {
			return nil, err
		}
		return ast.Num{Value: float64(len([]rune(s.Value)))}, nil
	})

	reg("string.to_upper", 1, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		s, err := forceStr(ev, args[0])
		if err != nil {
			return nil, err
		}
		return ast.Str{Value: strings.ToUpper(s.Value)}, nil
	})

	reg("string.to_lower", 1, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		s, err := forceStr(ev, args[0])
		if err != nil {
			return nil, err
		}
		return ast.Str{Value: strings.ToLower(s.Value)}, nil
	})

	reg("string.split", 2, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		sep, err := forceStr(ev, args[0])
		if err != nil {
			return nil, err
		}
		s, err := forceStr(ev, args[1])
		if err != nil {
			return nil, err
		}
		parts := strings.Split(s.Value, sep.Value)
		elems := make([]ast.Term, len(parts))
		for i, p := range parts {
			elems[i] = ast.Str{Value: p}
		}
		return ast.List{Elems: elems}, nil
	})

	reg("string.join", 2, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		sep, err := forceStr(ev, args[0])
		if err != nil {
			return nil, err
		}
		lst, err := forceList(ev, args[1])
		if err != nil {
			return nil, err
		}
		parts := make([]string, len(lst.Elems))
		for i, e := range lst.Elems {
			s, err := ev.Force(e, nil)
			if err != nil {
				return nil, err
			}
			str, ok := s.(ast.Str)
			if !ok {
				return nil, runtimeErr(lst.Position(), "string.join: every element must be a Str")
			}
			parts[i] = str.Value
		}
		return ast.Str{Value: strings.Join(parts, sep.Value)}, nil
	})

	// string.is_match uses dlclark/regexp2 for .NET-flavored regex
	// syntax (lookaround, balancing groups), richer than the stdlib
	// regexp package's RE2 subset.
	reg("string.is_match", 2, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		pattern, err := forceStr(ev, args[0])
		if err != nil {
			return nil, err
		}
		s, err := forceStr(ev, args[1])
		if err != nil {
			return nil, err
		}
		re, err := regexp2.Compile(pattern.Value, regexp2.None)
		if err != nil {
			return nil, runtimeErr(pattern.Position(), "string.is_match: invalid pattern: %s", err)
		}
		m, err := re.MatchString(s.Value)
		if err != nil {
			return nil, runtimeErr(s.Position(), "string.is_match: %s", err)
		}
		return ast.Bool{Value: m}, nil
	})

	reg("string.replace", 3, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		old, err := forceStr(ev, args[0])
		if err != nil {
			return nil, err
		}
		newS, err := forceStr(ev, args[1])
		if err != nil {
			return nil, err
		}
		s, err := forceStr(ev, args[2])
		if err != nil {
			return nil, err
		}
		return ast.Str{Value: strings.ReplaceAll(s.Value, old.Value, newS.Value)}, nil
	})

	reg("string.trim", 1, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		s, err := forceStr(ev, args[0])
		if err != nil {
			return nil, err
		}
		return ast.Str{Value: strings.TrimSpace(s.Value)}, nil
	})

	reg("string.contains", 2, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		needle, err := forceStr(ev, args[0])
		if err != nil {
			return nil, err
		}
		s, err := forceStr(ev, args[1])
		if err != nil {
			return nil, err
		}
		return ast.Bool{Value: strings.Contains(s.Value, needle.Value)}, nil
	})

	// string.chars splits s into a List of single-rune Strs.
	reg("string.chars", 1, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		s, err := forceStr(ev, args[0])
		if err != nil {
			return nil, err
		}
		runes := []rune(s.Value)
		elems := make([]ast.Term, len(runes))
		for i, r := range runes {
			elems[i] = ast.Str{Value: string(r)}
		}
		return ast.List{Elems: elems}, nil
	})

	// string.substring(start, end, s) errors when indices are out of
	// range, rather than clamping.
	reg("string.substring", 3, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		startN, err := forceNum(ev, args[0])
		if err != nil {
			return nil, err
		}
		endN, err := forceNum(ev, args[1])
		if err != nil {
			return nil, err
		}
		s, err := forceStr(ev, args[2])
		if err != nil {
			return nil, err
		}
		runes := []rune(s.Value)
		start, end := int(startN.Value), int(endN.Value)
		if start < 0 || end > len(runes) || start > end {
			return nil, runtimeErr(s.Position(), "string.substring: range [%d, %d) out of bounds for length %d", start, end, len(runes))
		}
		return ast.Str{Value: string(runes[start:end])}, nil
	})

	// string.char_code converts a single-character Str to its ASCII
	// code, erroring outside 0-127.
	reg("string.char_code", 1, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		s, err := forceStr(ev, args[0])
		if err != nil {
			return nil, err
		}
		runes := []rune(s.Value)
		if len(runes) != 1 {
			return nil, runtimeErr(s.Position(), "string.char_code: expected a single character")
		}
		code := runes[0]
		if code > 127 {
			return nil, runtimeErr(s.Position(), "string.char_code: %d is outside the ASCII range 0-127", code)
		}
		return ast.Num{Value: float64(code)}, nil
	})

	reg("string.from_char_code", 1, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		n, err := forceNum(ev, args[0])
		if err != nil {
			return nil, err
		}
		code := int(n.Value)
		if code < 0 || code > 127 {
			return nil, runtimeErr(n.Position(), "string.from_char_code: %d is outside the ASCII range 0-127", code)
		}
		return ast.Str{Value: string(rune(code))}, nil
	})
}

func registerSerializeBuiltins(reg registerFn) {
	reg("serialize.to_json", 1, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		return serializeTo(ev, args[0], serialize.JSON)
	})
	reg("serialize.to_yaml", 1, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		return serializeTo(ev, args[0], serialize.YAML)
	})
	reg("serialize.to_toml", 1, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		return serializeTo(ev, args[0], serialize.TOML)
	})
	reg("serialize.from_json", 1, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		return serializeFrom(ev, args[0], serialize.JSON)
	})
	reg("serialize.from_yaml", 1, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		return serializeFrom(ev, args[0], serialize.YAML)
	})
	reg("serialize.from_toml", 1, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		return serializeFrom(ev, args[0], serialize.TOML)
	})

	// serialize.json_get/json_set expose gjson/sjson's path-addressed
	// access directly on JSON text, for callers that want to patch a
	// single field of a document without a full marshal/unmarshal round
	// trip through a lucid record.
	reg("serialize.json_get", 2, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		doc, err := forceStr(ev, args[0])
		if err != nil {
			return nil, err
		}
		path, err := forceStr(ev, args[1])
		if err != nil {
			return nil, err
		}
		raw, ok := serialize.JSONGet(doc.Value, path.Value)
		if !ok {
			return ast.Null{}, nil
		}
		v, err := serialize.Unmarshal(raw, serialize.JSON)
		if err != nil {
			return nil, runtimeErr(path.Position(), "serialize.json_get: %s", err)
		}
		return v, nil
	})

	reg("serialize.json_set", 3, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		doc, err := forceStr(ev, args[0])
		if err != nil {
			return nil, err
		}
		path, err := forceStr(ev, args[1])
		if err != nil {
			return nil, err
		}
		value, err := ev.DeepForce(args[2])
		if err != nil {
			return nil, err
		}
		valueJSON, err := serialize.Marshal(value, serialize.JSON)
		if err != nil {
			return nil, runtimeErr(path.Position(), "serialize.json_set: %s", err)
		}
		out, err := serialize.JSONSet(doc.Value, path.Value, valueJSON)
		if err != nil {
			return nil, runtimeErr(path.Position(), "serialize.json_set: %s", err)
		}
		return ast.Str{Value: out}, nil
	})
}

func serializeTo(ev *Evaluator, th *runtime.Thunk, format serialize.Format) (ast.Term, error) {
	v, err := ev.DeepForce(th)
	if err != nil {
		return nil, err
	}
	text, err := serialize.Marshal(v, format)
	if err != nil {
		return nil, runtimeErr(v.Position(), "%s", err)
	}
	return ast.Str{Value: text}, nil
}

func serializeFrom(ev *Evaluator, th *runtime.Thunk, format serialize.Format) (ast.Term, error) {
	s, err := forceStr(ev, th)
	if err != nil {
		return nil, err
	}
	v, err := serialize.Unmarshal(s.Value, format)
	if err != nil {
		return nil, runtimeErr(s.Position(), "%s", err)
	}
	return v, nil
}

func forceList(ev *Evaluator, th *runtime.Thunk) (ast.List, error) {
	v, err := ev.Force(th, nil)
	if err != nil {
		return ast.List{}, err
	}
	lst, ok := v.(ast.List)
	if !ok {
		return ast.List{}, runtimeErr(v.Position(), "expected a List")
	}
	return lst, nil
}

func forceRecord(ev *Evaluator, th *runtime.Thunk) (ast.Record, error) {
	v, err := ev.Force(th, nil)
	if err != nil {
		return ast.Record{}, err
	}
	rec, ok := v.(ast.Record)
	if !ok {
		return ast.Record{}, runtimeErr(v.Position(), "expected a Record")
	}
	return rec, nil
}

func forceStr(ev *Evaluator, th *runtime.Thunk) (ast.Str, error) {
	v, err := ev.Force(th, nil)
	if err != nil {
		return ast.Str{}, err
	}
	s, ok := v.(ast.Str)
	if !ok {
		return ast.Str{}, runtimeErr(v.Position(), "expected a Str")
	}
	return s, nil
}

func forceNum(ev *Evaluator, th *runtime.Thunk) (ast.Num, error) {
	v, err := ev.Force(th, nil)
	if err != nil {
		return ast.Num{}, err
	}
	n, ok := v.(ast.Num)
	if !ok {
		return ast.Num{}, runtimeErr(v.Position(), "expected a Num")
	}
	return n, nil
}

func forceLabel(ev *Evaluator, th *runtime.Thunk) (ast.LabelVal, error) {
	v, err := ev.Force(th, nil)
	if err != nil {
		return ast.LabelVal{}, err
	}
	l, ok := v.(ast.LabelVal)
	if !ok {
		return ast.LabelVal{}, runtimeErr(v.Position(), "expected a Label")
	}
	return l, nil
}

func sortedKeys(m map[string]ast.Term) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
