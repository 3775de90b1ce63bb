// Package gc implements the mark-sweep collector of spec.md §4.8: a
// worklist BFS mark phase over the object heap, an ephemeron fixpoint
// pass that marks WeakMap values whose keys turn out reachable, a sweep
// that frees unmarked slots back to the heap's free list, and a
// post-sweep pass that tombstones dead WeakMap/WeakSet entries.
//
// It is grounded on original_source/src/interpreter/gc.rs, the reference
// implementation's allocate_object_slot/maybe_gc — translated from a
// single monolithic method over Rc<RefCell<..>> into a Collector that
// walks the same id-indexed heap.Heap the rest of this module already
// uses, with environment/closure tracing delegated to a ClosureTracer
// the evaluator supplies through runtime.New (gc cannot import runtime without an
// import cycle: runtime -> heap, runtime -> gc).
package gc

import (
	"github.com/cwbudde/go-ecma/internal/heap"
	"github.com/cwbudde/go-ecma/internal/value"
)

// DefaultThreshold is the allocation-count trigger for an automatic
// collection cycle, mirroring the reference implementation's
// GC_THRESHOLD.
const DefaultThreshold = 4096

// ClosureTracer lets the collector walk evaluator-owned opaque payloads
// (closures captured by FunctionSlot.Closure, suspended generator state
// in GeneratorSlot.State) without the gc package depending on the
// evaluator/runtime packages.
type ClosureTracer interface {
	// TraceClosure pushes every heap.Ref reachable from an evaluator
	// closure record (its captured environment chain's bound values)
	// onto the worklist via push.
	TraceClosure(closure any, push func(heap.Ref))
	// TraceGeneratorState pushes every heap.Ref reachable from a
	// suspended generator/async-generator state (its captured closure,
	// pending arguments, and `this`).
	TraceGeneratorState(state any, push func(heap.Ref))
}

// Collector owns the mark bitmap and worklist for one heap.
type Collector struct {
	h         *heap.Heap
	tracer    ClosureTracer
	Threshold int

	// ExtraRoots are ids that must survive every cycle in addition to
	// whatever the caller passes to Collect (e.g. a pinned `new.target`
	// or an in-flight exception value held outside the heap).
	ExtraRoots []heap.Ref
}

// NewCollector builds a Collector over h. tracer may be nil for tests
// that exercise the heap without closures.
func NewCollector(h *heap.Heap, tracer ClosureTracer) *Collector {
	return &Collector{h: h, tracer: tracer, Threshold: DefaultThreshold}
}

// ShouldCollect reports whether the heap's allocation counter has
// reached Threshold. The counter totals every allocation since the heap
// was created and is not reset by a cycle, so once it has reached
// Threshold every later call reports true. Runtime.MaybeCollect calls
// this before collecting.
func (c *Collector) ShouldCollect() bool {
	return c.h.AllocCount() >= c.Threshold
}

// Stats summarizes one completed collection cycle.
type Stats struct {
	Scanned int
	Marked  int
	Freed   int
}

// Collect runs one full mark-sweep-ephemeron-tombstone cycle. roots is
// the set of ids reachable directly from outside the heap (the global
// object, the environment tree's bound values, registered prototypes,
// any pinned new.target/exception value).
func (c *Collector) Collect(roots []heap.Ref) Stats {
	n := c.h.Len()
	marks := make([]bool, n)
	slots := c.h.Slots()

	var worklist []heap.Ref
	push := func(id heap.Ref) {
		if int(id) < n {
			worklist = append(worklist, id)
		}
	}

	for _, r := range roots {
		push(r)
	}
	for _, r := range c.ExtraRoots {
		push(r)
	}

	c.drain(&worklist, marks, slots, push)
	c.ephemeronFixpoint(marks, slots)

	freed := c.sweep(marks, slots)
	c.tombstoneWeakEntries(marks, slots)

	marked := 0
	for _, m := range marks {
		if m {
			marked++
		}
	}
	return Stats{Scanned: n, Marked: marked, Freed: freed}
}

// drain runs the BFS mark loop until the worklist empties, tracing each
// newly-marked object's reachable ids back into the same worklist via
// push.
func (c *Collector) drain(worklist *[]heap.Ref, marks []bool, slots []*heap.Object, push func(heap.Ref)) {
	for len(*worklist) > 0 {
		id := (*worklist)[0]
		*worklist = (*worklist)[1:]
		idx := int(id)
		if idx >= len(slots) || marks[idx] {
			continue
		}
		marks[idx] = true
		obj := slots[idx]
		if obj == nil {
			continue
		}
		c.traceObject(obj, push)
	}
}

func (c *Collector) traceObject(obj *heap.Object, push func(heap.Ref)) {
	if obj.HasProto {
		push(obj.Proto)
	}
	obj.Props().Range(func(_ heap.Key, d heap.Descriptor) bool {
		traceValue(d.Value, push)
		traceValue(d.Get, push)
		traceValue(d.Set, push)
		return true
	})
	for _, pe := range obj.Private {
		traceValue(pe.Value, push)
		traceValue(pe.Get, push)
		traceValue(pe.Set, push)
	}

	switch slot := obj.Slot.(type) {
	case *heap.ArraySlot:
		for _, v := range slot.Elements {
			traceValue(v, push)
		}
	case *heap.FunctionSlot:
		if slot.HasHomeObject {
			push(slot.HomeObject)
		}
		if slot.IsBound {
			push(slot.BoundTarget)
			traceValue(slot.BoundThis, push)
			for _, v := range slot.BoundArgs {
				traceValue(v, push)
			}
		}
		if c.tracer != nil && slot.Closure != nil {
			c.tracer.TraceClosure(slot.Closure, push)
		}
	case *heap.PromiseSlot:
		traceValue(slot.Result, push)
		for _, r := range slot.Fulfill {
			traceValue(r.OnFulfilled, push)
			traceValue(r.OnRejected, push)
			push(r.Derived)
		}
		for _, r := range slot.Reject {
			traceValue(r.OnFulfilled, push)
			traceValue(r.OnRejected, push)
			push(r.Derived)
		}
	case *heap.CollectionSlot:
		// Map/Set: strongly-held entries are always traced. WeakMap/
		// WeakSet use WeakCollectionSlot instead and are excluded here
		// (handled by the ephemeron pass and the tombstone pass).
		for _, e := range slot.Entries {
			if e == nil {
				continue
			}
			traceValue(e.Key, push)
			traceValue(e.Value, push)
		}
	case *heap.ProxySlot:
		push(slot.Target)
		push(slot.Handler)
	case *heap.GeneratorSlot:
		if c.tracer != nil && slot.State != nil {
			c.tracer.TraceGeneratorState(slot.State, push)
		}
	case *heap.DisposableStackSlot:
		for _, d := range slot.Disposers {
			traceValue(d, push)
		}
	}
}

func traceValue(v value.Value, push func(heap.Ref)) {
	if v == nil {
		return
	}
	if obj, ok := v.(value.Object); ok {
		push(obj.Ref)
	}
}

// ephemeronFixpoint repeatedly marks WeakMap values whose keys have
// become reachable, then re-traces anything newly marked, until a full
// pass adds nothing new. WeakSet has no values to propagate into, so it
// only participates in the post-sweep tombstone pass.
func (c *Collector) ephemeronFixpoint(marks []bool, slots []*heap.Object) {
	for {
		var worklist []heap.Ref
		push := func(id heap.Ref) {
			if int(id) < len(slots) {
				worklist = append(worklist, id)
			}
		}
		newMarks := false
		for i, obj := range slots {
			if !marks[i] || obj == nil {
				continue
			}
			ws, ok := obj.Slot.(*heap.WeakCollectionSlot)
			if !ok || ws.IsSet {
				continue
			}
			for _, e := range ws.Entries {
				if e == nil || !e.HasKey {
					continue
				}
				kid := int(e.Key)
				if kid >= len(marks) || !marks[kid] {
					continue
				}
				vObj, isObj := e.Value.(value.Object)
				if !isObj {
					continue
				}
				vid := int(vObj.Ref)
				if vid < len(marks) && !marks[vid] {
					newMarks = true
					push(vObj.Ref)
				}
			}
		}
		if len(worklist) > 0 {
			c.drain(&worklist, marks, slots, push)
		}
		if !newMarks {
			return
		}
	}
}

func (c *Collector) sweep(marks []bool, slots []*heap.Object) int {
	freed := 0
	for i, obj := range slots {
		if obj != nil && !marks[i] {
			c.h.Free(heap.Ref(i))
			freed++
		}
	}
	return freed
}

// tombstoneWeakEntries clears WeakMap/WeakSet entries whose key was not
// marked, i.e. was reclaimed by this cycle (spec.md §4.8's weak
// reference semantics: a dead key's entry silently disappears, it never
// surfaces a stale reference).
func (c *Collector) tombstoneWeakEntries(marks []bool, slots []*heap.Object) {
	for i, obj := range slots {
		if obj == nil || !marks[i] {
			continue
		}
		ws, ok := obj.Slot.(*heap.WeakCollectionSlot)
		if !ok {
			continue
		}
		for _, e := range ws.Entries {
			if e == nil || !e.HasKey {
				continue
			}
			kid := int(e.Key)
			if kid >= len(marks) || !marks[kid] {
				e.HasKey = false
				e.Value = nil
			}
		}
	}
}
