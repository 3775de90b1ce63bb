package evaluator

import (
	"github.com/cwbudde/go-ecma/internal/errors"
	"github.com/cwbudde/go-ecma/internal/heap"
	"github.com/cwbudde/go-ecma/internal/promise"
	"github.com/cwbudde/go-ecma/internal/runtime"
	"github.com/cwbudde/go-ecma/internal/value"
	"github.com/cwbudde/go-ecma/pkg/ast"
)

// Evaluator is the AST-walking engine bound to one Runtime. It
// implements heap.Invoker (so property-machinery accessor/proxy-trap
// dispatch can call back into user code) and gc.ClosureTracer (so the
// collector can trace closure/generator captures it cannot see inside
// directly), keeping both the heap and gc packages free of an import
// back onto this one.
type Evaluator struct {
	RT *runtime.Runtime
}

// New builds an Evaluator and wires it into a fresh Runtime as both the
// heap.Invoker and the gc.ClosureTracer, then installs it as the
// runtime's promise Invoker too (they are the same Invoke method).
func New(opts ...runtime.Option) *Evaluator {
	ev := &Evaluator{}
	ev.RT = runtime.New(ev, ev, opts...)
	return ev
}

// Invoke implements heap.Invoker (and is used directly by
// internal/promise as the Controller's Inv): it calls callee with this
// and args, special-casing the promise package's internal
// NativeResolver/NativeRejecter markers before falling through to
// ordinary Function dispatch.
func (ev *Evaluator) Invoke(callee value.Value, this value.Value, args []value.Value) (value.Value, error) {
	switch c := callee.(type) {
	case promise.NativeResolver:
		c.Ctrl.Resolve(c.ID, arg(args, 0))
		return value.Undef, nil
	case promise.NativeRejecter:
		c.Ctrl.Reject(c.ID, arg(args, 0))
		return value.Undef, nil
	case promise.NativeCallback:
		return c(args)
	}
	return ev.Call(callee, this, args)
}

// ProxyTrap implements heap.Invoker's trap lookup: it reads `handler[trap]`
// and, if callable, invokes it with args; ok=false tells the caller to
// forward to Target (spec.md §4.3).
func (ev *Evaluator) ProxyTrap(handlerID heap.Ref, trap string, args []value.Value) (value.Value, bool, error) {
	fn, err := ev.RT.Heap.Get(handlerID, heap.StringKey(trap), value.Object{Ref: handlerID}, ev)
	if err != nil {
		return value.Undef, false, err
	}
	if !ev.isCallable(fn) {
		return value.Undef, false, nil
	}
	res, err := ev.Call(fn, value.Object{Ref: handlerID}, args)
	return res, true, err
}

func arg(args []value.Value, i int) value.Value {
	if i < len(args) {
		return args[i]
	}
	return value.Undef
}

func (ev *Evaluator) isCallable(v value.Value) bool {
	obj, ok := v.(value.Object)
	if !ok {
		return false
	}
	o, ok := ev.RT.Heap.Deref(obj.Ref)
	if !ok {
		return false
	}
	_, ok = o.Slot.(*heap.FunctionSlot)
	return ok
}

// throwFromErr converts a Go error raised by a lower-level package
// (typically an *errors.InterpreterError from internal/value,
// internal/heap, or internal/runtime) into a JS-observable
// ThrowCompletion: an *errors.InterpreterError becomes an Error-like
// heap object via makeErrorObject (prototype-less when no matching
// prototype is registered), and any other error becomes a plain string
// value (spec.md §7).
func (ev *Evaluator) throwFromErr(err error) *ThrowCompletion {
	if tc, ok := asThrow(err); ok {
		return tc
	}
	ie, ok := err.(*errors.InterpreterError)
	if !ok {
		return NewThrow(value.String(err.Error()))
	}
	return NewThrow(ev.makeErrorObject(string(ie.Category), ie.Message, ie.Errors))
}

// makeErrorObject builds a heap object tagged with the given error-kind
// class name, message property, and (for AggregateError) an `errors`
// array property, using the matching prototype from RT.Prototypes when
// the host has installed one (internal/builtins wires these at startup;
// a bare core runtime with no builtins installed still produces a valid,
// if prototype-less, error object).
func (ev *Evaluator) makeErrorObject(kind, message string, subErrors []error) value.Value {
	proto, hasProto := ev.RT.Prototypes[kind]
	id := ev.RT.Heap.NewPlainObject(proto, hasProto, kind)
	ev.RT.Heap.DefineOwnProperty(id, heap.StringKey("message"), heap.DataDescriptor(value.String(message), true, false, true))
	ev.RT.Heap.DefineOwnProperty(id, heap.StringKey("name"), heap.DataDescriptor(value.String(kind), true, false, true))
	if len(subErrors) > 0 {
		vals := make([]value.Value, len(subErrors))
		for i, e := range subErrors {
			if ie, ok := e.(*errors.InterpreterError); ok {
				vals[i] = ev.makeErrorObject(string(ie.Category), ie.Message, ie.Errors)
			} else {
				vals[i] = value.String(e.Error())
			}
		}
		arrProto, hasArrProto := ev.RT.Prototypes["Array"]
		arrID := ev.RT.Heap.NewArray(arrProto, hasArrProto, vals)
		ev.RT.Heap.DefineOwnProperty(id, heap.StringKey("errors"), heap.DataDescriptor(value.Object{Ref: arrID}, true, false, true))
	}
	return value.Object{Ref: id}
}

// RunProgram implements spec.md §6's program lifecycle: declaration
// instantiation over the global environment, evaluation of the
// top-level statements, a microtask drain, and a single Normal/Throw
// outcome returned to the host.
func (ev *Evaluator) RunProgram(prog *ast.Program) (value.Value, error) {
	ev.hoist(prog.Statements, ev.RT.Global, true)
	var last value.Value = value.Undef
	var runErr error
	for _, stmt := range prog.Statements {
		v, err := ev.evalStatement(stmt, ev.RT.Global)
		if err != nil {
			runErr = err
			break
		}
		if v != nil {
			last = v
		}
	}
	if err := ev.disposeUsingBindings(ev.RT.Global, runErr); err != nil {
		if tc, ok := asThrow(err); ok {
			ev.RT.DrainMicrotasks()
			return value.Undef, tc
		}
		return value.Undef, err
	}
	ev.RT.DrainMicrotasks()
	return last, nil
}
