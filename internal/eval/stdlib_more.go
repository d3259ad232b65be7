package eval

import (
	"github.com/google/uuid"

	"github.com/lucid-lang/lucid/internal/ast"
	"github.com/lucid-lang/lucid/internal/contracts"
	"github.com/lucid-lang/lucid/internal/ops"
	"github.com/lucid-lang/lucid/internal/runtime"
)

// registerHashBuiltins wires the hashing primitives as one entry per
// algorithm name, exposing each algorithm as its own prelude binding
// rather than a single function taking an enum value (lucid has no
// enum-typed arguments in the prelude itself; `Enum` values only ever
// come from user source).
func registerHashBuiltins(reg registerFn) {
	for _, algo := range []string{"md5", "sha1", "sha256", "sha512"} {
		algo := algo
		reg("hash."+algo, 1, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
			s, err := forceStr(ev, args[0])
			if err != nil {
				return nil, err
			}
			digest, err := ops.Hash(s.Position(), algo, s.Value)
			if err != nil {
				return nil, err
			}
			return ast.Str{Value: digest}, nil
		})
	}
}

// registerRegexBuiltins wires the regex surface: match
// (returning {match, index, groups}), a boolean test, and regex replace,
// layered on internal/ops's dlclark/regexp2 wrappers.
func registerRegexBuiltins(reg registerFn) {
	reg("string.is_match_re", 2, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		pattern, err := forceStr(ev, args[0])
		if err != nil {
			return nil, err
		}
		s, err := forceStr(ev, args[1])
		if err != nil {
			return nil, err
		}
		ok, err := ops.IsMatch(pattern.Position(), pattern.Value, s.Value)
		if err != nil {
			return nil, err
		}
		return ast.Bool{Value: ok}, nil
	})

	// string.match returns `{ match, index, groups }` on success, or
	// Null on no match.
	reg("string.match", 2, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		pattern, err := forceStr(ev, args[0])
		if err != nil {
			return nil, err
		}
		s, err := forceStr(ev, args[1])
		if err != nil {
			return nil, err
		}
		m, found, err := ops.FindFirst(pattern.Position(), pattern.Value, s.Value)
		if err != nil {
			return nil, err
		}
		if !found {
			return ast.Null{}, nil
		}
		groups := make([]ast.Term, len(m.Groups))
		for i, g := range m.Groups {
			groups[i] = ast.Str{Value: g}
		}
		return ast.Record{Fields: map[string]ast.Term{
			"match":  ast.Str{Value: m.Text},
			"index":  ast.Num{Value: float64(m.Index)},
			"groups": ast.List{Elems: groups},
		}}, nil
	})

	reg("string.replace_regex", 3, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		pattern, err := forceStr(ev, args[0])
		if err != nil {
			return nil, err
		}
		repl, err := forceStr(ev, args[1])
		if err != nil {
			return nil, err
		}
		s, err := forceStr(ev, args[2])
		if err != nil {
			return nil, err
		}
		out, err := ops.ReplaceAllRegex(pattern.Position(), pattern.Value, repl.Value, s.Value)
		if err != nil {
			return nil, err
		}
		return ast.Str{Value: out}, nil
	})
}

// registerStrictnessBuiltins wires seq and deep_seq: `seq x y`
// forces x to WHNF and then returns y; `deep_seq x y` recursively forces
// every thunk reachable from x first.
func registerStrictnessBuiltins(reg registerFn) {
	reg("seq", 2, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		if _, err := ev.Force(args[0], nil); err != nil {
			return nil, err
		}
		return ev.Force(args[1], nil)
	})

	reg("deep_seq", 2, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		if _, err := ev.DeepForce(args[0]); err != nil {
			return nil, err
		}
		return ev.Force(args[1], nil)
	})
}

// registerContractBuiltins wires the label-navigation
// primitives a user-defined (Flat) contract uses to customize blame:
// `tag msg label` re-tags a label, `blame label` fails with it, and
// `blame_with msg label` is sugar for `blame (tag msg label)`. Bare
// top-level names, like seq/deep_seq, since they're language primitives
// rather than members of a `list`/`record`/`string` namespace.
func registerContractBuiltins(reg registerFn) {
	reg("tag", 2, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		msg, err := forceStr(ev, args[0])
		if err != nil {
			return nil, err
		}
		l, err := forceLabel(ev, args[1])
		if err != nil {
			return nil, err
		}
		return ast.LabelVal{Label: l.Label.WithTag(msg.Value)}, nil
	})

	reg("blame", 1, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		l, err := forceLabel(ev, args[0])
		if err != nil {
			return nil, err
		}
		return nil, contracts.Blame(l.Label, l.Label.Tag)
	})

	reg("blame_with", 2, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		msg, err := forceStr(ev, args[0])
		if err != nil {
			return nil, err
		}
		l, err := forceLabel(ev, args[1])
		if err != nil {
			return nil, err
		}
		tagged := l.Label.WithTag(msg.Value)
		return nil, contracts.Blame(tagged, msg.Value)
	})
}

// registerMiscBuiltins wires the remaining stdlib surface that doesn't
// belong to list/record/string: the uuid generator the CLI and generated
// configs use to mint unique resource names. It is the one deliberately
// non-deterministic primitive in the prelude.
func registerMiscBuiltins(reg registerFn) {
	reg("string.uuid", 1, func(ev *Evaluator, args []*runtime.Thunk) (ast.Term, error) {
		// Takes a dummy Null argument so it composes as an ordinary
		// prelude value under call-by-need rather than being evaluated
		// eagerly at prelude-construction time.
		if _, err := ev.Force(args[0], nil); err != nil {
			return nil, err
		}
		return ast.Str{Value: uuid.NewString()}, nil
	})
}
