// Package errors provides the error catalog and categorized interpreter
// error type shared by the runtime, the evaluator, and the builtins.
package errors

import (
	"fmt"
	"strings"

	"github.com/cwbudde/go-ecma/pkg/token"
)

// StackFrame captures one call-stack entry: the function executing and
// its position at the moment of the call.
type StackFrame struct {
	Position     *token.Position
	FunctionName string
	FileName     string
}

// String renders "FunctionName [line: N, column: M]", or just the
// function name if no position is known.
func (sf StackFrame) String() string {
	if sf.Position == nil {
		return sf.FunctionName
	}
	return fmt.Sprintf("%s [line: %d, column: %d]", sf.FunctionName, sf.Position.Line, sf.Position.Column)
}

// StackTrace is a call stack, ordered oldest (bottom) to newest (top).
type StackTrace []StackFrame

// String prints newest frame first, one per line.
func (st StackTrace) String() string {
	if len(st) == 0 {
		return ""
	}
	var sb strings.Builder
	for i := len(st) - 1; i >= 0; i-- {
		sb.WriteString(st[i].String())
		if i > 0 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// Top returns the most recent frame, or nil if the stack is empty.
func (st StackTrace) Top() *StackFrame {
	if len(st) == 0 {
		return nil
	}
	return &st[len(st)-1]
}

// Depth returns the number of frames.
func (st StackTrace) Depth() int { return len(st) }

// NewStackFrame builds a StackFrame.
func NewStackFrame(functionName, fileName string, pos *token.Position) StackFrame {
	return StackFrame{FunctionName: functionName, FileName: fileName, Position: pos}
}

// NewStackTrace builds an empty StackTrace.
func NewStackTrace() StackTrace { return make(StackTrace, 0) }
