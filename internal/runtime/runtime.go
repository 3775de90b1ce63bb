// Package runtime additionally defines the single Runtime handle
// (spec.md §9: "the object heap, environment tree, microtask queue, and
// built-in prototype registry are all fields of one runtime handle
// passed by reference; there is no ambient singleton"), grounded on the
// teacher's Interpreter struct (internal/interp/interpreter.go) which
// bundles its Environment/CallStack/output writer behind one value
// passed to every evaluator method.
package runtime

import (
	"github.com/cwbudde/go-ecma/internal/gc"
	"github.com/cwbudde/go-ecma/internal/heap"
	"github.com/cwbudde/go-ecma/internal/promise"
	"github.com/cwbudde/go-ecma/internal/value"
)

// RunOptions configures a Runtime at construction time the way the
// teacher's internal/interp/options.go configures its interpreter via
// functional options rather than a telescoping constructor.
type RunOptions struct {
	GCThreshold         int
	MaxCallDepth        int
	MicrotaskDrainLimit int // cap on Queue.Drain passes per DrainMicrotasks call; 0 = unbounded
}

// Option mutates a RunOptions.
type Option func(*RunOptions)

// WithGCThreshold overrides the allocation-count GC trigger (default
// gc.DefaultThreshold).
func WithGCThreshold(n int) Option { return func(o *RunOptions) { o.GCThreshold = n } }

// WithMaxCallDepth overrides the call-stack depth limit (default
// DefaultMaxCallDepth).
func WithMaxCallDepth(n int) Option { return func(o *RunOptions) { o.MaxCallDepth = n } }

// WithMicrotaskDrainLimit caps how many Queue.Drain passes a single
// DrainMicrotasks call makes (0 = unbounded). Each pass runs until the
// queue is empty, including tasks enqueued during it, so the cap does
// not bound the number of microtasks run.
func WithMicrotaskDrainLimit(n int) Option { return func(o *RunOptions) { o.MicrotaskDrainLimit = n } }

func defaultOptions() RunOptions {
	return RunOptions{
		GCThreshold:  gc.DefaultThreshold,
		MaxCallDepth: DefaultMaxCallDepth,
	}
}

// Runtime is the one handle threaded through every evaluator call: the
// heap, the global environment, the call stack, the GC, the promise
// controller/microtask queue, and the well-known prototype registry.
type Runtime struct {
	Heap    *heap.Heap
	Global  *Environment
	Stack   *CallStack
	GC      *gc.Collector
	Promise *promise.Controller

	// Prototypes maps a well-known class tag ("Object", "Array",
	// "Function", "Error", "Promise", "Map", "Set", "WeakMap", "WeakSet",
	// "Symbol", "GeneratorFunction", ...) to its installed prototype
	// object, mirroring the GC's root list in
	// original_source/gc.rs (the flat list of *_prototype fields).
	Prototypes map[string]heap.Ref

	Options RunOptions

	unhandled []UnhandledRejection
}

// UnhandledRejection records a promise that settled Rejected and was
// still unobserved by a catch/then-with-reject when the microtask queued
// at its rejection ran (spec.md §7's "unhandled-rejection channel").
type UnhandledRejection struct {
	PromiseID heap.Ref
	Reason    value.Value
}

// New builds a Runtime with a fresh heap and global environment. tracer
// may be nil if the host never installs closures that capture heap
// objects (unrealistic for a real program, but kept optional so the gc
// package's tests can build a Runtime without an evaluator).
func New(tracer gc.ClosureTracer, inv heap.Invoker, opts ...Option) *Runtime {
	o := defaultOptions()
	for _, apply := range opts {
		apply(&o)
	}
	h := heap.NewHeap()
	rt := &Runtime{
		Heap:       h,
		Global:     NewGlobalEnvironment(),
		Stack:      NewCallStack(o.MaxCallDepth),
		GC:         gc.NewCollector(h, tracer),
		Prototypes: make(map[string]heap.Ref),
		Options:    o,
	}
	rt.GC.Threshold = o.GCThreshold
	q := promise.NewQueue()
	rt.Promise = &promise.Controller{H: h, Inv: inv, Q: q}
	rt.Promise.OnUnhandledRejection = func(id heap.Ref, reason value.Value) {
		rt.unhandled = append(rt.unhandled, UnhandledRejection{PromiseID: id, Reason: reason})
	}
	rt.Global.SetThis(value.Undef)
	return rt
}

// DrainMicrotasks runs the microtask queue to empty. With
// MicrotaskDrainLimit set, it makes at most that many Queue.Drain passes.
func (rt *Runtime) DrainMicrotasks() {
	if rt.Options.MicrotaskDrainLimit <= 0 {
		rt.Promise.Q.Drain()
		return
	}
	n := 0
	for rt.Promise.Q.Len() > 0 && n < rt.Options.MicrotaskDrainLimit {
		rt.Promise.Q.Drain()
		n++
	}
}

// UnhandledRejections returns (and clears) every unhandled rejection
// observed since the last call.
func (rt *Runtime) UnhandledRejections() []UnhandledRejection {
	out := rt.unhandled
	rt.unhandled = nil
	return out
}

// MaybeCollect runs a GC cycle if the allocation threshold has been
// crossed, using roots gathered from the global environment chain and
// the registered prototypes (spec.md §4.8).
func (rt *Runtime) MaybeCollect() gc.Stats {
	if !rt.GC.ShouldCollect() {
		return gc.Stats{}
	}
	return rt.Collect()
}

// Collect forces a GC cycle regardless of the allocation threshold.
func (rt *Runtime) Collect() gc.Stats {
	roots := collectEnvRoots(rt.Global, nil)
	for _, id := range rt.Prototypes {
		roots = append(roots, id)
	}
	nt := rt.Global.NewTarget()
	if obj, ok := nt.(value.Object); ok {
		roots = append(roots, obj.Ref)
	}
	return rt.GC.Collect(roots)
}

// collectEnvRoots walks env and every ancestor/this/environment
// reachable from the *active* call-stack chain is already covered
// because live environments are only reachable through Global or
// through closures the GC's ClosureTracer walks; this helper handles
// the one part GC cannot: Global's own binding chain (spec.md §4.8's
// "global environment chain" root).
func collectEnvRoots(env *Environment, push []heap.Ref) []heap.Ref {
	seen := map[*Environment]bool{}
	for e := env; e != nil && !seen[e]; e = e.parent {
		seen[e] = true
		e.Range(func(_ string, b *Binding) bool {
			if obj, ok := b.Value.(value.Object); ok {
				push = append(push, obj.Ref)
			}
			return true
		})
		if obj, ok := e.thisVal.(value.Object); ok && e.hasThis {
			push = append(push, obj.Ref)
		}
	}
	return push
}
