package builtins

import (
	"github.com/cwbudde/go-ecma/internal/errors"
	"github.com/cwbudde/go-ecma/internal/evaluator"
	"github.com/cwbudde/go-ecma/internal/heap"
	"github.com/cwbudde/go-ecma/internal/runtime"
	"github.com/cwbudde/go-ecma/internal/value"
)

// installDisposable wires DisposableStack and AsyncDisposableStack
// (spec.md §8's explicit-resource-management scenario, supplemented
// from original_source/ per the system prompt's rule that the
// distillation's silence on a feature is an invitation, not a
// prohibition): a LIFO stack of disposer callables, exposing
// use/adopt/defer/dispose (disposeAsync for the async stack) and the
// Symbol.dispose/Symbol.asyncDispose protocol a `using`/`await using`
// declaration invokes on scope exit.
//
// Constructed objects are native-constructor self-allocated (see
// disposableConstructor): Construct (internal/evaluator/call.go) calls
// a Closure.Native function directly with this=Undefined and never
// pre-allocates an instance the way it does for user-defined
// constructors, so the constructor itself must build and return the
// heap object.
func installDisposable(ev *evaluator.Evaluator) {
	installDisposableClass(ev, "DisposableStack", false)
	installDisposableClass(ev, "AsyncDisposableStack", true)
}

func installDisposableClass(ev *evaluator.Evaluator, className string, async bool) {
	rt := ev.RT
	h := rt.Heap

	objProto, hasObjProto := rt.Prototypes["Object"]
	proto := h.NewPlainObject(objProto, hasObjProto, className)
	rt.Prototypes[className] = proto

	defineMethod(ev, proto, "use", 1, disposableUse(ev, async))
	defineMethod(ev, proto, "adopt", 2, disposableAdopt(ev, async))
	defineMethod(ev, proto, "defer", 1, disposableDefer(ev, async))
	defineAccessor(ev, proto, "disposed", disposableDisposedGetter, nil)

	disposeName, disposeSym := "dispose", heap.SymDispose
	if async {
		disposeName, disposeSym = "disposeAsync", heap.SymAsyncDispose
	}
	disposeFn := disposableDispose(ev, async)
	defineMethod(ev, proto, disposeName, 0, disposeFn)
	defineSymbolMethod(ev, proto, disposeSym, disposeName, 0, disposeFn)

	ctor := ev.NativeFunctionValue(className, 0, disposableConstructor(className, async))
	ctorObj := ctor.(value.Object)
	h.DefineOwnProperty(ctorObj.Ref, heap.StringKey("prototype"), heap.DataDescriptor(value.Object{Ref: proto}, false, false, false))
	h.DefineOwnProperty(proto, heap.StringKey("constructor"), heap.DataDescriptor(ctor, true, false, true))
	rt.Global.DefineGlobal(className, ctor)
}

// disposableConstructor allocates the DisposableStack/AsyncDisposableStack
// instance itself: a plain object chained to the class's installed
// prototype, carrying a fresh DisposableStackSlot.
func disposableConstructor(className string, async bool) evaluator.NativeFunc {
	return func(rt *runtime.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		proto, hasProto := rt.Prototypes[className]
		id := rt.Heap.NewPlainObject(proto, hasProto, className)
		rt.Heap.MustDeref(id).Slot = &heap.DisposableStackSlot{Async: async}
		return value.Object{Ref: id}, nil
	}
}

func disposableSlot(rt *runtime.Runtime, this value.Value, async bool) (*heap.DisposableStackSlot, error) {
	obj, ok := this.(value.Object)
	if !ok {
		return nil, errors.NewTypeError(nil, "not a DisposableStack")
	}
	o, ok := rt.Heap.Deref(obj.Ref)
	if !ok {
		return nil, errors.NewTypeError(nil, "not a DisposableStack")
	}
	slot, ok := o.Slot.(*heap.DisposableStackSlot)
	if !ok || slot.Async != async {
		return nil, errors.NewTypeError(nil, "not a DisposableStack")
	}
	return slot, nil
}

// disposerKeyFor picks the resource's Symbol.dispose or
// Symbol.asyncDispose method, per whichever stack kind is using it.
func disposerKeyFor(async bool) heap.Key {
	if async {
		return heap.SymbolKey(heap.SymAsyncDispose)
	}
	return heap.SymbolKey(heap.SymDispose)
}

// disposableUse implements DisposableStack.prototype.use(resource):
// registers resource's own Symbol.dispose (or Symbol.asyncDispose)
// method and returns resource unchanged, so `use` can sit inline in an
// initializer.
func disposableUse(ev *evaluator.Evaluator, async bool) evaluator.NativeFunc {
	return func(rt *runtime.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		slot, err := disposableSlot(rt, this, async)
		if err != nil {
			return value.Undef, err
		}
		if slot.Disposed {
			return value.Undef, errors.NewTypeError(nil, "DisposableStack has already been disposed")
		}
		resource := arg(args, 0)
		if ro, ok := resource.(value.Object); ok {
			disposer, err := rt.Heap.Get(ro.Ref, disposerKeyFor(async), resource, ev)
			if err == nil && isCallableValue(rt, disposer) {
				// Bind this=resource: dispose() later invokes every
				// registered disposer with this=Undefined, so wrap
				// here to keep resource[Symbol.dispose]'s receiver the
				// way calling it directly would.
				bound := ev.NativeFunctionValue("", 0, func(rt *runtime.Runtime, _ value.Value, _ []value.Value) (value.Value, error) {
					return ev.Invoke(disposer, resource, nil)
				})
				slot.Disposers = append(slot.Disposers, bound)
			}
		}
		return resource, nil
	}
}

// disposableAdopt implements DisposableStack.prototype.adopt(value,
// onDispose): registers a disposer that calls onDispose(value) when
// the stack unwinds, for resources with no Symbol.dispose method of
// their own.
func disposableAdopt(ev *evaluator.Evaluator, async bool) evaluator.NativeFunc {
	return func(rt *runtime.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		slot, err := disposableSlot(rt, this, async)
		if err != nil {
			return value.Undef, err
		}
		if slot.Disposed {
			return value.Undef, errors.NewTypeError(nil, "DisposableStack has already been disposed")
		}
		resource := arg(args, 0)
		onDispose := arg(args, 1)
		disposer := ev.NativeFunctionValue("", 0, func(rt *runtime.Runtime, this value.Value, args []value.Value) (value.Value, error) {
			return ev.Invoke(onDispose, value.Undef, []value.Value{resource})
		})
		slot.Disposers = append(slot.Disposers, disposer)
		return resource, nil
	}
}

// disposableDefer implements DisposableStack.prototype.defer(onDispose):
// registers a zero-argument disposer called when the stack unwinds.
func disposableDefer(ev *evaluator.Evaluator, async bool) evaluator.NativeFunc {
	return func(rt *runtime.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		slot, err := disposableSlot(rt, this, async)
		if err != nil {
			return value.Undef, err
		}
		if slot.Disposed {
			return value.Undef, errors.NewTypeError(nil, "DisposableStack has already been disposed")
		}
		onDispose := arg(args, 0)
		slot.Disposers = append(slot.Disposers, onDispose)
		return value.Undef, nil
	}
}

// disposableDispose implements dispose()/disposeAsync(): marks the stack
// disposed, then runs every registered disposer in LIFO order.
// Calling dispose on an already-disposed stack is a no-op, per the
// explicit-resource-management proposal's idempotency requirement.
func disposableDispose(ev *evaluator.Evaluator, async bool) evaluator.NativeFunc {
	return func(rt *runtime.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		slot, err := disposableSlot(rt, this, async)
		if err != nil {
			return value.Undef, err
		}
		if slot.Disposed {
			return value.Undef, nil
		}
		slot.Disposed = true
		var subErrors []error
		for i := len(slot.Disposers) - 1; i >= 0; i-- {
			if _, err := ev.Invoke(slot.Disposers[i], value.Undef, nil); err != nil {
				subErrors = append(subErrors, err)
			}
		}
		slot.Disposers = nil
		if len(subErrors) == 1 {
			return value.Undef, subErrors[0]
		}
		if len(subErrors) > 1 {
			return value.Undef, errors.NewAggregateError(nil, "errors occurred during disposal", subErrors)
		}
		return value.Undef, nil
	}
}

func disposableDisposedGetter(rt *runtime.Runtime, this value.Value, args []value.Value) (value.Value, error) {
	obj, ok := this.(value.Object)
	if !ok {
		return value.Undef, errors.NewTypeError(nil, "not a DisposableStack")
	}
	o, ok := rt.Heap.Deref(obj.Ref)
	if !ok {
		return value.Undef, errors.NewTypeError(nil, "not a DisposableStack")
	}
	slot, ok := o.Slot.(*heap.DisposableStackSlot)
	if !ok {
		return value.Undef, errors.NewTypeError(nil, "not a DisposableStack")
	}
	return value.Boolean(slot.Disposed), nil
}
