package evaluator

import (
	"github.com/cwbudde/go-ecma/internal/heap"
	"github.com/cwbudde/go-ecma/internal/runtime"
	"github.com/cwbudde/go-ecma/internal/value"
)

// TraceClosure and TraceGeneratorState satisfy gc.ClosureTracer, letting
// the collector reach into the opaque Closure/GeneratorState payloads
// this package stashes on FunctionSlot.Closure/GeneratorSlot.State (the
// gc package cannot import evaluator's types directly, since gc sits
// below runtime which sits below evaluator).

// TraceClosure pushes every heap.Ref a Closure keeps alive: its captured
// environment chain's bound values, this, home object, new.target and
// with-statement target objects.
func (ev *Evaluator) TraceClosure(closure any, push func(heap.Ref)) {
	c, ok := closure.(*Closure)
	if !ok || c == nil {
		return
	}
	ev.traceEnvChain(c.Env, push)
}

// TraceGeneratorState pushes everything reachable from a suspended
// generator/async-generator: the closure it resumes into, the `this`
// and arguments it was invoked with.
func (ev *Evaluator) TraceGeneratorState(state any, push func(heap.Ref)) {
	gs, ok := state.(*GeneratorState)
	if !ok || gs == nil {
		return
	}
	ev.traceEnvChain(gs.Closure.Env, push)
	traceVal(gs.This, push)
	for _, a := range gs.Args {
		traceVal(a, push)
	}
}

func (ev *Evaluator) traceEnvChain(env *runtime.Environment, push func(heap.Ref)) {
	for e := env; e != nil; e = e.Parent() {
		e.Range(func(_ string, b *runtime.Binding) bool {
			traceVal(b.Value, push)
			return true
		})
		if this := e.ThisValue(); this != nil {
			traceVal(this, push)
		}
		if home, ok := e.HomeObject(); ok {
			traceVal(home, push)
		}
		if nt := e.NewTarget(); nt != nil {
			traceVal(nt, push)
		}
		if e.WithTarget != nil {
			traceVal(e.WithTarget, push)
		}
	}
}

func traceVal(v value.Value, push func(heap.Ref)) {
	if obj, ok := v.(value.Object); ok {
		push(obj.Ref)
	}
}
