package runtime

import (
	"errors"
	"sync"
	"testing"

	"github.com/lucid-lang/lucid/internal/ast"
)

func TestForceMemoizesResult(t *testing.T) {
	calls := 0
	reduce := func(term ast.Term, env *Env) (ast.Term, error) {
		calls++
		return ast.Num{Value: 42}, nil
	}
	th := NewThunk(ast.Num{Value: 0}, nil)
	v1, err := th.Force(reduce)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v2, err := th.Force(reduce)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v1 != v2 {
		t.Fatalf("expected idempotent Force to return the same WHNF")
	}
	if calls != 1 {
		t.Fatalf("expected reduce to run exactly once, ran %d times", calls)
	}
}

func TestForceMemoizesErrors(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	reduce := func(term ast.Term, env *Env) (ast.Term, error) {
		calls++
		return nil, boom
	}
	th := NewThunk(ast.Num{Value: 0}, nil)
	_, err1 := th.Force(reduce)
	_, err2 := th.Force(reduce)
	if err1 != boom || err2 != boom {
		t.Fatalf("expected the same error on every subsequent Force")
	}
	if calls != 1 {
		t.Fatalf("expected reduce to run exactly once even on error, ran %d times", calls)
	}
}

func TestForceDetectsBlackhole(t *testing.T) {
	th := NewThunk(ast.Num{Value: 0}, nil)
	var reduce Reducer
	reentered := false
	reduce = func(term ast.Term, env *Env) (ast.Term, error) {
		// Simulate a self-referential thunk forcing itself before
		// completing: `let x = x in x`.
		_, err := th.Force(reduce)
		reentered = true
		if !errors.Is(err, ErrBlackhole) {
			t.Errorf("expected ErrBlackhole on reentrant force, got %v", err)
		}
		return ast.Num{Value: 1}, nil
	}
	_, err := th.Force(reduce)
	if err != nil {
		t.Fatalf("outer force should succeed once the inner one detects the blackhole: %v", err)
	}
	if !reentered {
		t.Fatalf("expected the reentrant force to actually run")
	}
}

// Once a thunk has reached WHNF, Force is a mutex-guarded read of the
// memoized value, so a host program may read an already-evaluated
// configuration value from multiple goroutines.
func TestForceSupportsConcurrentReadsOnceEvaluated(t *testing.T) {
	th := NewThunk(ast.Num{Value: 0}, nil)
	if _, err := th.Force(func(term ast.Term, env *Env) (ast.Term, error) {
		return ast.Num{Value: 7}, nil
	}); err != nil {
		t.Fatalf("unexpected error on first force: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := th.Force(nil)
			if err != nil {
				t.Errorf("unexpected error on concurrent read: %v", err)
				return
			}
			if n, ok := v.(ast.Num); !ok || n.Value != 7 {
				t.Errorf("expected the memoized value, got %#v", v)
			}
		}()
	}
	wg.Wait()
}

func TestDoneIsAlreadyForced(t *testing.T) {
	th := Done(ast.Bool{Value: true})
	if !th.IsForced() {
		t.Fatalf("Done thunk must report itself as already forced")
	}
	v, err := th.Force(nil)
	if err != nil {
		t.Fatalf("forcing a Done thunk must never call reduce: %v", err)
	}
	if b, ok := v.(ast.Bool); !ok || !b.Value {
		t.Fatalf("expected the wrapped value back, got %#v", v)
	}
}

func TestPlaceholderBindTwicePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected Bind on an already-bound thunk to panic")
		}
	}()
	ph := NewPlaceholder()
	ph.Bind(ast.Num{Value: 1}, nil)
	ph.Bind(ast.Num{Value: 2}, nil)
}

func TestPeekMetaDoesNotForce(t *testing.T) {
	mv := ast.MetaValue{Value: ast.Num{Value: 1}, Priority: ast.PriorityDefault}
	th := NewThunk(mv, NewEnv())
	peeked, _, ok := th.PeekMeta()
	if !ok {
		t.Fatalf("expected PeekMeta to recognize an unevaluated MetaValue term")
	}
	if peeked.Priority != ast.PriorityDefault {
		t.Fatalf("expected the peeked MetaValue's priority to survive")
	}
	if th.IsForced() {
		t.Fatalf("PeekMeta must not force the thunk")
	}
}
