package errors

import (
	"fmt"

	"github.com/cwbudde/go-ecma/pkg/token"
)

// ErrorCategory names the user-observable JS error kind (spec.md §7).
type ErrorCategory string

const (
	CategoryType      ErrorCategory = "TypeError"
	CategoryRange     ErrorCategory = "RangeError"
	CategoryReference ErrorCategory = "ReferenceError"
	CategorySyntax    ErrorCategory = "SyntaxError"
	CategoryURI       ErrorCategory = "URIError"
	CategoryEval      ErrorCategory = "EvalError"
	CategoryAggregate ErrorCategory = "AggregateError"
	CategoryInternal  ErrorCategory = "InternalError"
)

// InterpreterError is the Go-level error carried alongside a Throw
// completion before it is materialized into a heap error object. It
// mirrors the teacher's InterpreterError: a category, a message, an
// optional position, and (for AggregateError) the ordered sub-errors.
type InterpreterError struct {
	Err      error
	Pos      *token.Position
	Category ErrorCategory
	Message  string
	Cause    error
	// Errors holds ordered sub-reasons for an AggregateError (e.g. from
	// Promise.any or a `using` suppressed-error chain).
	Errors []error
	Stack  StackTrace
}

func (e *InterpreterError) Error() string {
	if e.Pos != nil {
		return fmt.Sprintf("%s at line %d, column %d: %s", e.Category, e.Pos.Line, e.Pos.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

func (e *InterpreterError) Unwrap() error { return e.Err }

func newError(category ErrorCategory, pos *token.Position, message string) *InterpreterError {
	return &InterpreterError{Category: category, Pos: pos, Message: message}
}

// NewTypeError builds a TypeError.
func NewTypeError(pos *token.Position, message string) *InterpreterError {
	return newError(CategoryType, pos, message)
}

// NewTypeErrorf builds a formatted TypeError.
func NewTypeErrorf(pos *token.Position, format string, args ...any) *InterpreterError {
	return newError(CategoryType, pos, fmt.Sprintf(format, args...))
}

// NewRangeError builds a RangeError.
func NewRangeError(pos *token.Position, message string) *InterpreterError {
	return newError(CategoryRange, pos, message)
}

// NewRangeErrorf builds a formatted RangeError.
func NewRangeErrorf(pos *token.Position, format string, args ...any) *InterpreterError {
	return newError(CategoryRange, pos, fmt.Sprintf(format, args...))
}

// NewReferenceError builds a ReferenceError (unresolved binding, or a
// `let`/`const` read inside the temporal dead zone).
func NewReferenceError(pos *token.Position, message string) *InterpreterError {
	return newError(CategoryReference, pos, message)
}

// NewReferenceErrorf builds a formatted ReferenceError.
func NewReferenceErrorf(pos *token.Position, format string, args ...any) *InterpreterError {
	return newError(CategoryReference, pos, fmt.Sprintf(format, args...))
}

// NewSyntaxError builds a SyntaxError (used by runtime-generated
// eval/new Function paths, should the host wire one up).
func NewSyntaxError(pos *token.Position, message string) *InterpreterError {
	return newError(CategorySyntax, pos, message)
}

// NewURIError builds a URIError.
func NewURIError(pos *token.Position, message string) *InterpreterError {
	return newError(CategoryURI, pos, message)
}

// NewAggregateError builds an AggregateError from ordered sub-reasons,
// as produced by Promise.any and the `using` suppressed-error chain.
func NewAggregateError(pos *token.Position, message string, errs []error) *InterpreterError {
	e := newError(CategoryAggregate, pos, message)
	e.Errors = errs
	return e
}

// NewInternalError builds an error for invariant violations that should
// never occur in a correct evaluator (an unknown AST node kind, a freed
// object id dereferenced, a borrow-conflict reentrancy violation).
func NewInternalError(message string) *InterpreterError {
	return newError(CategoryInternal, nil, message)
}

// NewInternalErrorf builds a formatted internal error.
func NewInternalErrorf(format string, args ...any) *InterpreterError {
	return newError(CategoryInternal, nil, fmt.Sprintf(format, args...))
}

// WithStack attaches a call-stack snapshot and returns the receiver for
// chaining.
func (e *InterpreterError) WithStack(st StackTrace) *InterpreterError {
	e.Stack = st
	return e
}
