// Package ast nodes are the sole external interface between a host (a
// parser, a transpiler, or a test) and the evaluator core: §6 of the
// design spec enumerates every statement, expression, and pattern form
// the evaluator accepts. This package intentionally has no lexer or
// parser; nodes are constructed directly, as in the *_test.go files
// throughout this repository.
package ast
