// Package runtime implements the persistent environment of lazy thunks
// with memoization and update-on-force, as an immutable frame chain. A
// frame is never mutated after construction — binding more names always
// allocates a new frame on top of the old one — so that two closures
// that captured the same environment before a further `let` can never
// observe each other's bindings: environments grow monotonically within
// a closure and are shared structurally.
//
// Only a Thunk's own internal state mutates (Unevaluated -> Evaluated),
// exactly once, which is why Env itself needs no locking: concurrent
// readers of an Env frame never race on the frame map, only (safely) on
// the Thunk.Force memoization below.
package runtime

// Env is one frame of bindings plus a pointer to the enclosing frame.
type Env struct {
	frame map[string]*Thunk
	outer *Env
}

// Self satisfies ast.Environment so *Env can be stored inside an
// ast.Closure without internal/ast importing internal/runtime.
func (e *Env) Self() any { return e }

// NewEnv returns the empty root environment (the scope import resolution
// and the standard library prelude are bound into).
func NewEnv() *Env {
	return &Env{}
}

// Bind returns a new environment extending e with a single name->thunk
// binding. e itself is left untouched, so any closure that already
// captured e is unaffected.
func (e *Env) Bind(name string, th *Thunk) *Env {
	return &Env{frame: map[string]*Thunk{name: th}, outer: e}
}

// BindAll returns a new environment extending e with every entry of
// bindings at once, in a single frame. This is what makes sibling record
// fields able to see each other (and themselves, for recursion): every
// field's thunk is built against the *same* new frame before that frame
// is attached to anything, which is also how recursive let works: the
// thunk references the enclosing environment, which contains the thunk
// itself.
func (e *Env) BindAll(bindings map[string]*Thunk) *Env {
	frame := make(map[string]*Thunk, len(bindings))
	for k, v := range bindings {
		frame[k] = v
	}
	return &Env{frame: frame, outer: e}
}

// Lookup resolves name to its thunk, searching outward through enclosing
// frames. The second result is false when no binding exists anywhere in
// the chain (an unbound identifier).
func (e *Env) Lookup(name string) (*Thunk, bool) {
	for env := e; env != nil; env = env.outer {
		if env.frame == nil {
			continue
		}
		if th, ok := env.frame[name]; ok {
			return th, true
		}
	}
	return nil, false
}
