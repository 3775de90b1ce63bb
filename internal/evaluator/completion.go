// Package evaluator implements spec.md §4.4's tree-walking evaluator: a
// direct recursive traversal of pkg/ast producing Completions, grounded
// on the teacher's internal/interp/evaluator visitor split
// (core_evaluator.go / call_helpers.go / member_assignment.go /
// exception_manager.go, one file per concern) generalized from
// DWScript's panic-based exception flow to ECMAScript's
// Completion-as-return-value discipline (spec.md §3's Completion
// variant: Normal/Return/Break/Continue/Throw).
//
// Rather than threading a five-way Completion struct through every
// call, statement/expression evaluation here returns (value.Value,
// error), where a non-nil error is one of:
//   - *ThrowCompletion: a JS-level throw, carrying the thrown value.
//   - *controlSignal: an internal Return/Break/Continue unwind signal,
//     caught and resolved by the enclosing function/loop/labeled
//     statement and never observed outside this package.
//   - *generator.ThrownSignal / *generator.ReturnSignal: raised by
//     Yielder.Yield at a suspended `yield` expression; converted to a
//     ThrowCompletion or a Return controlSignal at the yield
//     expression's evaluation site (evalYieldExpression).
// This keeps ordinary successful evaluation as the zero-cost common
// case (a plain value.Value and nil error) while still letting `return`/
// `break`/`continue`/`throw` unwind through Go's own error-propagation
// idiom, the same way context.Canceled/io.EOF are sentinel errors
// rather than a tagged result type in idiomatic Go.
package evaluator

import "github.com/cwbudde/go-ecma/internal/value"

// ThrowCompletion represents a JS throw propagating through the Go call
// stack; Value is the thrown JS value (usually an Error instance, but
// `throw 42` is equally legal).
type ThrowCompletion struct {
	Value value.Value
}

func (t *ThrowCompletion) Error() string { return "uncaught exception" }

// NewThrow wraps v as a ThrowCompletion.
func NewThrow(v value.Value) *ThrowCompletion { return &ThrowCompletion{Value: v} }

type sigKind int

const (
	sigReturn sigKind = iota
	sigBreak
	sigContinue
)

// controlSignal is an internal, package-private unwind signal for
// return/break/continue; it never escapes RunProgram or a function call
// (callUser, Construct, callAsync, a generator body).
type controlSignal struct {
	kind  sigKind
	value value.Value
	label string // "" = unlabeled break/continue
}

func (c *controlSignal) Error() string { return "internal control-flow signal" }

func returnSignal(v value.Value) *controlSignal { return &controlSignal{kind: sigReturn, value: v} }
func breakSignal(label string) *controlSignal   { return &controlSignal{kind: sigBreak, label: label} }
func continueSignal(label string) *controlSignal {
	return &controlSignal{kind: sigContinue, label: label}
}

// asControlSignal type-asserts err as a *controlSignal, if any.
func asControlSignal(err error) (*controlSignal, bool) {
	cs, ok := err.(*controlSignal)
	return cs, ok
}

// asThrow type-asserts err as a *ThrowCompletion, if any.
func asThrow(err error) (*ThrowCompletion, bool) {
	tc, ok := err.(*ThrowCompletion)
	return tc, ok
}
