// Package heap implements the object heap of spec.md §3/§4.2: a
// slot-indexed object store, allocation, and the data layout (ordered
// property map, prototype, class tag, and the specialized slots for
// arrays, functions, promises, iterators, and the various collection
// types). It is grounded on the teacher's runtime.ObjectInstance
// (internal/interp/runtime/object.go) — a class-instance record with a
// Fields map and a Class pointer — generalized from "single fixed field
// set keyed by class metadata" to "ordered PropertyDescriptor map plus an
// optional typed slot union", since ECMAScript objects are open-ended
// property bags rather than fixed-layout class instances.
package heap

import "github.com/cwbudde/go-ecma/internal/value"

// Ref re-exports value.Ref so callers that only need the heap don't also
// need to import the value package for object identity.
type Ref = value.Ref

// PrivateEntry is one slot of an object's private-field side table: a
// field value, a method, or an accessor pair. Private members are never
// reachable through the property map or through enumeration (spec.md
// §4.3); they are only visible to lexically-scoped `#name` references
// the host's parser already validated.
type PrivateEntry struct {
	Value value.Value
	Get   value.Value
	Set   value.Value
	IsAccessor bool
	// IsMethod marks a private method, which (unlike a private field) is
	// shared by all instances and installed once on the class rather
	// than copied per instance.
	IsMethod bool
}

// Object is one heap record. Its id is assigned once by Heap.Allocate
// and is stable for the object's lifetime (spec.md invariant).
type Object struct {
	id Ref

	Proto    Ref
	HasProto bool
	Class    string // descriptive tag used for toString tagging & dispatch

	Extensible bool
	props      *PropertyMap

	// Private holds the object's private-field/method/accessor table,
	// keyed by field name without the leading '#'.
	Private map[string]*PrivateEntry

	// Slot is exactly one of the specialized payloads below, or nil for
	// a plain object/class instance. Using a single interface field
	// (rather than one pointer field per kind) keeps Object small for
	// the common plain-object case while still letting the GC and the
	// evaluator type-switch on what's present.
	Slot any
}

// ID returns the object's stable heap id.
func (o *Object) ID() Ref { return o.id }

// Props returns the object's own-property map.
func (o *Object) Props() *PropertyMap { return o.props }

// ArraySlot is the dense-vector payload for Array instances.
type ArraySlot struct {
	Elements []value.Value // a nil entry is a hole
}

// FunctionKind distinguishes the callable forms a FunctionSlot may hold.
type FunctionKind int

const (
	FunctionNative FunctionKind = iota
	FunctionUser
	FunctionArrow
	FunctionGenerator
	FunctionAsync
	FunctionAsyncGenerator
	FunctionClassConstructor
)

// FunctionSlot is the callable payload for Function instances. The
// evaluator package owns the concrete Body/Params/Environment types (to
// avoid an import cycle from heap -> ast/runtime); they are carried here
// as an opaque `any` set by the evaluator at closure-creation time.
type FunctionSlot struct {
	Kind         FunctionKind
	Name         string
	Length       int // declared parameter count (arity), excluding defaults/rest
	HomeObject   Ref
	HasHomeObject bool
	// Closure is the evaluator-owned closure record (captured
	// environment, parameter patterns, body, strict/arrow flags, native
	// Go function, etc); the function's kind is recorded in Kind.
	Closure any
	// Fields, for a class constructor function, holds the ordered
	// instance-field initializers to run before the constructor body,
	// as *ast.ClassMember via an opaque slice (evaluator-owned).
	Fields any
	// BoundThis/BoundArgs/BoundTarget implement Function.prototype.bind.
	IsBound     bool
	BoundThis   value.Value
	BoundArgs   []value.Value
	BoundTarget Ref
}

// PromiseState enumerates a promise's three-state lifecycle (spec.md §4.7).
type PromiseState int

const (
	PromisePending PromiseState = iota
	PromiseFulfilled
	PromiseRejected
)

// PromiseReaction is one entry of a promise's fulfill/reject reaction
// queue, carrying the handler and the derived promise to settle.
type PromiseReaction struct {
	OnFulfilled value.Value // callable, or value.Undef
	OnRejected  value.Value
	Derived     Ref // the promise returned by .then()
}

// PromiseSlot is the state-machine payload for Promise instances.
type PromiseSlot struct {
	State    PromiseState
	Result   value.Value // the fulfillment value or rejection reason, once settled
	Handled  bool
	Fulfill  []PromiseReaction
	Reject   []PromiseReaction
}

// IteratorSlot is the payload for native iterator objects (array/string/
// map/set iterators and generator-object-backed iterators).
type IteratorSlot struct {
	// Next is invoked by the evaluator's iterator-protocol helper; it is
	// evaluator-owned (a closure over generator/collection state).
	Next any
	Done bool
}

// MapEntry is one key/value pair of a Map, or one key of a Set (Value
// unused). A nil Key marks a tombstone left by deletion.
type MapEntry struct {
	Key   value.Value
	Value value.Value
}

// CollectionSlot backs Map and Set (ordered, strongly-held entries).
type CollectionSlot struct {
	Entries []*MapEntry
	IsSet   bool
}

// WeakEntry is one WeakMap/WeakSet entry. HasKey is false (and Value
// nil) once the GC has reclaimed the key (spec.md §4.8 sweep step);
// individually-clearable entries
// let the collection keep its slice stable across reclamation.
type WeakEntry struct {
	Key   Ref
	HasKey bool
	Value value.Value
}

// WeakCollectionSlot backs WeakMap and WeakSet. Entries are not traced by
// the ordinary mark phase; see internal/gc's ephemeron fixpoint.
type WeakCollectionSlot struct {
	Entries []*WeakEntry
	IsSet   bool
}

// ProxySlot backs Proxy instances. Heap.Get and Heap.Set consult the
// handler's get/set trap and fall back to Target when it is absent;
// ProxyHas and ProxyDeleteProperty do the same for has/deleteProperty.
// Heap.Has and Heap.Delete do not consult the handler, and no other trap
// is dispatched.
type ProxySlot struct {
	Target  Ref
	Handler Ref
	Revoked bool
}

// GeneratorSlot is the suspended-execution payload for generator and
// async-generator objects; the concrete resumable state is owned by the
// evaluator/generator packages to avoid a heap -> evaluator import
// cycle.
type GeneratorSlot struct {
	State any
	Done  bool
}

// DisposableStackSlot backs the DisposableStack/AsyncDisposableStack
// builtin classes (spec.md §8 supplemented feature): a LIFO list of
// disposer callables, whether the stack has been disposed, and whether
// it is the async variant.
type DisposableStackSlot struct {
	Disposers []value.Value
	Disposed  bool
	Async     bool
}
