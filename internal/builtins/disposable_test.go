package builtins

import (
	"testing"

	"github.com/cwbudde/go-ecma/internal/errors"
	"github.com/cwbudde/go-ecma/internal/evaluator"
	"github.com/cwbudde/go-ecma/internal/heap"
	"github.com/cwbudde/go-ecma/internal/runtime"
	"github.com/cwbudde/go-ecma/internal/value"
)

func newResourceWithDisposer(t *testing.T, ev *evaluator.Evaluator, fn func(rt *runtime.Runtime, this value.Value, args []value.Value) (value.Value, error)) value.Value {
	t.Helper()
	objProto, hasProto := ev.RT.Prototypes["Object"]
	id := ev.RT.Heap.NewPlainObject(objProto, hasProto, "Object")
	defineSymbolMethod(ev, id, heap.SymDispose, "[Symbol.dispose]", 0, fn)
	return value.Object{Ref: id}
}

func TestDisposableStackUseThenDispose(t *testing.T) {
	ev := newTestEvaluator()
	ctor := globalCtor(t, ev, "DisposableStack")

	stack, err := ev.Construct(ctor, nil)
	if err != nil {
		t.Fatalf("new DisposableStack() error: %v", err)
	}

	var disposed bool
	var seenThis value.Value
	resource := newResourceWithDisposer(t, ev, func(rt *runtime.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		disposed = true
		seenThis = this
		return value.Undef, nil
	})

	useFn := methodOf(t, ev, stack, "use")
	if _, err := ev.Invoke(useFn, stack, []value.Value{resource}); err != nil {
		t.Fatalf("stack.use error: %v", err)
	}

	disposeFn := methodOf(t, ev, stack, "dispose")
	if _, err := ev.Invoke(disposeFn, stack, nil); err != nil {
		t.Fatalf("stack.dispose error: %v", err)
	}
	if !disposed {
		t.Fatal("resource's Symbol.dispose method was never invoked")
	}
	seenObj, ok := seenThis.(value.Object)
	resourceObj, _ := resource.(value.Object)
	if !ok || seenObj.Ref != resourceObj.Ref {
		t.Fatalf("disposer ran with this=%v, want the resource itself", seenThis)
	}

	// A second dispose() call must be a no-op, not a second round of
	// disposer invocations.
	disposed = false
	if _, err := ev.Invoke(disposeFn, stack, nil); err != nil {
		t.Fatalf("second stack.dispose error: %v", err)
	}
	if disposed {
		t.Fatal("dispose() is not idempotent")
	}
}

func TestDisposableStackAggregatesDisposerErrors(t *testing.T) {
	ev := newTestEvaluator()
	ctor := globalCtor(t, ev, "DisposableStack")
	stack, err := ev.Construct(ctor, nil)
	if err != nil {
		t.Fatalf("new DisposableStack() error: %v", err)
	}

	deferFn := methodOf(t, ev, stack, "defer")
	failing := ev.NativeFunctionValue("", 0, func(rt *runtime.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		return value.Undef, errors.NewTypeError(nil, "disposer failed")
	})
	if _, err := ev.Invoke(deferFn, stack, []value.Value{failing}); err != nil {
		t.Fatalf("stack.defer error: %v", err)
	}
	if _, err := ev.Invoke(deferFn, stack, []value.Value{failing}); err != nil {
		t.Fatalf("stack.defer error: %v", err)
	}

	disposeFn := methodOf(t, ev, stack, "dispose")
	_, err = ev.Invoke(disposeFn, stack, nil)
	if err == nil {
		t.Fatal("expected dispose() to surface the aggregated disposer errors")
	}
	ie, ok := err.(*errors.InterpreterError)
	if !ok {
		t.Fatalf("expected an *errors.InterpreterError, got %T", err)
	}
	if ie.Category != errors.CategoryAggregate {
		t.Fatalf("expected CategoryAggregate, got %v", ie.Category)
	}
	if len(ie.Errors) != 2 {
		t.Fatalf("expected 2 aggregated errors, got %d", len(ie.Errors))
	}
}

func globalCtor(t *testing.T, ev *evaluator.Evaluator, name string) value.Value {
	t.Helper()
	v, err := ev.RT.Global.Get(name)
	if err != nil {
		t.Fatalf("global %s not defined: %v", name, err)
	}
	return v
}

func methodOf(t *testing.T, ev *evaluator.Evaluator, obj value.Value, name string) value.Value {
	t.Helper()
	o, ok := obj.(value.Object)
	if !ok {
		t.Fatalf("%v is not an object", obj)
	}
	fn, err := ev.RT.Heap.Get(o.Ref, heap.StringKey(name), obj, ev)
	if err != nil {
		t.Fatalf("method %s not found: %v", name, err)
	}
	return fn
}
