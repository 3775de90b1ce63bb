package heap

import "github.com/cwbudde/go-ecma/internal/value"

// Heap is the slot-indexed object arena of spec.md §4.2: a vector of
// object slots indexed by id, with a free-list of reclaimed slots so
// that allocation can reuse space without ever reusing a *live*
// reference's id. Every read/write goes through an id, so cyclic object
// graphs are representable without ownership knots — the same rationale
// the teacher documents for its ObjectInstance/ClassInfo split, just
// taken one step further (the teacher mutates instances through Go
// pointers held directly by other instances, which works for DWScript's
// ref-counted objects but not for a tracing collector with arbitrary
// cycles, hence the indirection here).
type Heap struct {
	slots    []*Object
	freeList []Ref
	// generation increments each time a slot is reused, purely for
	// diagnostics (e.g. detecting a stale cached id in test assertions);
	// it does not participate in any GC invariant.
	generation []uint32
	allocCount int
}

// NewHeap builds an empty heap.
func NewHeap() *Heap {
	return &Heap{}
}

// Allocate reserves a fresh (or recycled) id and installs obj there. obj
// must not already carry an id; Allocate assigns one.
func (h *Heap) Allocate(obj *Object) Ref {
	h.allocCount++
	if n := len(h.freeList); n > 0 {
		id := h.freeList[n-1]
		h.freeList = h.freeList[:n-1]
		h.generation[id]++
		obj.id = id
		h.slots[id] = obj
		return id
	}
	id := Ref(len(h.slots))
	obj.id = id
	h.slots = append(h.slots, obj)
	h.generation = append(h.generation, 0)
	return id
}

// Deref dereferences id to its raw Object slot. ok is false if id was
// never allocated or has since been freed by the GC — dereferencing a
// freed id is a bug per spec.md's identity invariant; callers that can
// legitimately observe a freed id (none should, by construction) must
// check ok. Property-algorithm reads/writes go through Get/Set/Has/
// Delete below instead, which walk the prototype chain.
func (h *Heap) Deref(id Ref) (*Object, bool) {
	if int(id) >= len(h.slots) {
		return nil, false
	}
	o := h.slots[id]
	return o, o != nil
}

// MustDeref dereferences id, panicking with an internal-error style
// message if it has been freed. Used at call sites that hold an id
// proven live by the caller (e.g. an id read directly off the call
// stack's environment chain during evaluation, between GC safe points).
func (h *Heap) MustDeref(id Ref) *Object {
	o, ok := h.Deref(id)
	if !ok {
		panic("heap: dereference of freed object id")
	}
	return o
}

// Free clears slot id and returns it to the free list. Only the GC
// sweep phase should call this, and only for ids it proved unreachable.
func (h *Heap) Free(id Ref) {
	if int(id) >= len(h.slots) || h.slots[id] == nil {
		return
	}
	h.slots[id] = nil
	h.freeList = append(h.freeList, id)
}

// Len returns the highest-water-mark slot count (including freed,
// not-yet-reused slots); used by the GC to size its mark bitmap.
func (h *Heap) Len() int { return len(h.slots) }

// AllocCount returns the number of allocations since the heap was
// created, monotonically increasing; the GC uses this against a
// threshold to decide when to run a collection cycle (spec.md §4.8,
// "allocation counter triggers a mark-sweep cycle").
func (h *Heap) AllocCount() int { return h.allocCount }

// Slots exposes the raw backing slice for GC mark/sweep traversal. The
// slice may contain nils for freed slots.
func (h *Heap) Slots() []*Object { return h.slots }

// NewPlainObject allocates an ordinary object with the given prototype
// (hasProto=false for none) and class tag.
func (h *Heap) NewPlainObject(proto Ref, hasProto bool, class string) Ref {
	o := &Object{
		Proto:      proto,
		HasProto:   hasProto,
		Class:      class,
		Extensible: true,
		props:      NewPropertyMap(),
	}
	return h.Allocate(o)
}

// NewArray allocates an Array instance with the given initial elements.
func (h *Heap) NewArray(proto Ref, hasProto bool, elements []value.Value) Ref {
	o := &Object{
		Proto:      proto,
		HasProto:   hasProto,
		Class:      "Array",
		Extensible: true,
		props:      NewPropertyMap(),
		Slot:       &ArraySlot{Elements: elements},
	}
	return h.Allocate(o)
}
