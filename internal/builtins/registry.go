// Package builtins installs the host-provided intrinsics spec.md §2
// calls "Built-in hooks": the well-known prototype objects every
// internal/evaluator file looks up through Runtime.Prototypes, plus the
// native (Go-backed) methods and globals layered onto them. The
// evaluator core never imports this package — it only reads
// RT.Prototypes and dispatches through the NativeFunc ABI
// (evaluator.NativeFunc) that Install's closures are built from —
// mirroring the teacher's split between internal/interp (the walker)
// and internal/interp/builtins (the standard-library registration unit
// invoked once at interpreter construction, see
// internal/interp/interpreter.go's registerBuiltins call).
//
// Install only wires the surface this repo's domain stack exercises
// end to end (JSON, locale-aware string comparison/normalization, and
// the explicit-resource-management disposable stack); a full ECMAScript
// standard library (Array.prototype.map, Object.keys, and so on) is
// out of scope for this pass (see DESIGN.md).
package builtins

import (
	"fmt"

	"github.com/cwbudde/go-ecma/internal/errors"
	"github.com/cwbudde/go-ecma/internal/evaluator"
	"github.com/cwbudde/go-ecma/internal/heap"
	"github.com/cwbudde/go-ecma/internal/runtime"
	"github.com/cwbudde/go-ecma/internal/value"
)

// errorKinds lists the Error subclass tags makeErrorObject
// (internal/evaluator/evaluator.go) looks up by category, plus the base
// "Error" tag every subclass prototype chains to.
var errorKinds = []string{
	"Error",
	"TypeError",
	"RangeError",
	"ReferenceError",
	"SyntaxError",
	"URIError",
	"EvalError",
	"AggregateError",
	"InternalError",
}

// Install bootstraps ev.RT.Prototypes and the global bindings this
// package owns. Call it once, immediately after evaluator.New, before
// running any program.
func Install(ev *evaluator.Evaluator) {
	installCorePrototypes(ev)
	installErrorPrototypes(ev)
	installJSON(ev)
	installStringCase(ev)
	installDisposable(ev)
}

// installCorePrototypes gives Object/Array/Function/String/Generator a
// real prototype object so every NewPlainObject/NewArray call elsewhere
// in the evaluator chains to something, instead of the Undefined proto
// a fresh Runtime starts with.
func installCorePrototypes(ev *evaluator.Evaluator) {
	rt := ev.RT
	h := rt.Heap

	objProto := h.NewPlainObject(heap.Ref(0), false, "Object")
	rt.Prototypes["Object"] = objProto

	funcProto := h.NewPlainObject(objProto, true, "Function")
	rt.Prototypes["Function"] = funcProto

	arrayProto := h.NewPlainObject(objProto, true, "Array")
	rt.Prototypes["Array"] = arrayProto

	stringProto := h.NewPlainObject(objProto, true, "String")
	rt.Prototypes["String"] = stringProto

	numberProto := h.NewPlainObject(objProto, true, "Number")
	rt.Prototypes["Number"] = numberProto

	bigintProto := h.NewPlainObject(objProto, true, "BigInt")
	rt.Prototypes["BigInt"] = bigintProto

	booleanProto := h.NewPlainObject(objProto, true, "Boolean")
	rt.Prototypes["Boolean"] = booleanProto

	generatorProto := h.NewPlainObject(objProto, true, "Generator")
	rt.Prototypes["Generator"] = generatorProto
}

// installErrorPrototypes chains every error kind's prototype onto the
// base Error prototype and gives each a `name`/`toString`, matching the
// shape makeErrorObject's DefineOwnProperty calls expect to find.
func installErrorPrototypes(ev *evaluator.Evaluator) {
	rt := ev.RT
	h := rt.Heap
	objProto := rt.Prototypes["Object"]

	baseProto := h.NewPlainObject(objProto, true, "Error")
	rt.Prototypes["Error"] = baseProto
	h.DefineOwnProperty(baseProto, heap.StringKey("name"), heap.DataDescriptor(value.String("Error"), true, false, true))
	h.DefineOwnProperty(baseProto, heap.StringKey("message"), heap.DataDescriptor(value.String(""), true, false, true))
	defineMethod(ev, baseProto, "toString", 0, errorToString(ev))

	for _, kind := range errorKinds {
		if kind == "Error" {
			continue
		}
		proto := h.NewPlainObject(baseProto, true, kind)
		h.DefineOwnProperty(proto, heap.StringKey("name"), heap.DataDescriptor(value.String(kind), true, false, true))
		rt.Prototypes[kind] = proto
	}
}

// errorToString implements Error.prototype.toString: "name: message", or
// bare "name" when message is empty, per the ECMA-262 NativeError shape.
func errorToString(ev *evaluator.Evaluator) evaluator.NativeFunc {
	return func(rt *runtime.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		obj, ok := this.(value.Object)
		if !ok {
			return value.Undef, typeErrorf(errors.ErrMsgNotAnObject, "this")
		}
		nameVal, err := rt.Heap.Get(obj.Ref, heap.StringKey("name"), this, ev)
		if err != nil {
			return value.Undef, err
		}
		name, _ := value.ToStringPrimitive(nameVal)
		msgVal, err := rt.Heap.Get(obj.Ref, heap.StringKey("message"), this, ev)
		if err != nil {
			return value.Undef, err
		}
		message, _ := value.ToStringPrimitive(msgVal)
		if message == "" {
			return value.String(name), nil
		}
		return value.String(fmt.Sprintf("%s: %s", name, message)), nil
	}
}

// arg returns args[i], or Undefined when the call was made with fewer
// arguments (the evaluator package's own unexported helper of the same
// name is not reachable from here, so native functions in this package
// keep a local copy — see DESIGN.md).
func arg(args []value.Value, i int) value.Value {
	if i < len(args) {
		return args[i]
	}
	return value.Undef
}

// defineMethod installs a native data method, non-enumerable and
// writable/configurable, the shape every Function.prototype method
// spec.md §4.5 describes uses.
func defineMethod(ev *evaluator.Evaluator, target heap.Ref, name string, length int, fn evaluator.NativeFunc) {
	fnVal := ev.NativeFunctionValue(name, length, fn)
	ev.RT.Heap.DefineOwnProperty(target, heap.StringKey(name), heap.DataDescriptor(fnVal, true, false, true))
}

// defineSymbolMethod is defineMethod for a well-known-symbol key (used
// by Symbol.dispose/Symbol.asyncDispose in disposable.go).
func defineSymbolMethod(ev *evaluator.Evaluator, target heap.Ref, sym *value.Symbol, name string, length int, fn evaluator.NativeFunc) {
	fnVal := ev.NativeFunctionValue(name, length, fn)
	ev.RT.Heap.DefineOwnProperty(target, heap.SymbolKey(sym), heap.DataDescriptor(fnVal, true, false, true))
}

// defineAccessor installs a getter/setter pair (either may be nil).
func defineAccessor(ev *evaluator.Evaluator, target heap.Ref, name string, get, set evaluator.NativeFunc) {
	var getVal, setVal value.Value = value.Undef, value.Undef
	if get != nil {
		getVal = ev.NativeFunctionValue("get "+name, 0, get)
	}
	if set != nil {
		setVal = ev.NativeFunctionValue("set "+name, 1, set)
	}
	ev.RT.Heap.DefineOwnProperty(target, heap.StringKey(name), heap.AccessorDescriptor(getVal, setVal, false, true))
}

// isCallableValue reports whether v is a heap object carrying a
// FunctionSlot. The evaluator package has an unexported isCallable of
// its own that this duplicates in miniature, since that one is not
// reachable from here (see DESIGN.md).
func isCallableValue(rt *runtime.Runtime, v value.Value) bool {
	obj, ok := v.(value.Object)
	if !ok {
		return false
	}
	o, ok := rt.Heap.Deref(obj.Ref)
	if !ok {
		return false
	}
	_, ok = o.Slot.(*heap.FunctionSlot)
	return ok
}

// typeErrorf is a small convenience wrapper so native functions in this
// package read the same as the evaluator's own error sites.
func typeErrorf(format string, args ...any) error {
	return errors.NewTypeErrorf(nil, format, args...)
}
