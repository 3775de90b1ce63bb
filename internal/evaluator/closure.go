package evaluator

import (
	"github.com/cwbudde/go-ecma/internal/generator"
	"github.com/cwbudde/go-ecma/internal/runtime"
	"github.com/cwbudde/go-ecma/internal/value"
	"github.com/cwbudde/go-ecma/pkg/ast"
)

// Closure is the evaluator-owned payload behind heap.FunctionSlot.Closure
// (an `any` field so the heap package never imports this one). It
// carries everything needed to invoke a user function: its captured
// environment, parameter patterns, body, and the strict/arrow flags; the
// function's kind on heap.FunctionSlot selects which of callUser,
// newGeneratorObject or callAsync drives it.
type Closure struct {
	Params         []ast.Pattern
	Body           []ast.Statement
	ExpressionBody ast.Expression // set for concise-body arrow functions
	Env            *runtime.Environment
	Strict         bool
	IsArrow        bool
	Source         string

	// ClassFields is not populated by evalClass: a class's ordered
	// instance-field initializers (*ast.ClassMember) are kept on the
	// constructor's heap.FunctionSlot.Fields, where Construct reads them.
	ClassFields []*ast.ClassMember

	// Native, when non-nil, makes this a native (host-provided) callable
	// instead of a user one; Closure.Body/Params/Env are unused.
	Native NativeFunc
}

// NativeFunc is the native callable ABI of spec.md §6: a host function
// receiving the runtime handle, `this`, and the argument slice, and
// returning a result or an error (a Go error is translated to a Throw by
// the caller exactly like any evaluator-internal failure).
type NativeFunc func(rt *runtime.Runtime, this value.Value, args []value.Value) (value.Value, error)

// GeneratorState is the evaluator-owned payload behind
// heap.GeneratorSlot.State: the live generator.Generator instance plus
// enough context for the GC's ClosureTracer to find what it captured.
type GeneratorState struct {
	Gen     *generator.Generator
	Closure *Closure
	This    value.Value
	Args    []value.Value
}
