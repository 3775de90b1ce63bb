package runtime

import (
	"github.com/cwbudde/go-ecma/internal/errors"
	"github.com/cwbudde/go-ecma/pkg/token"
)

// CallStack tracks active call frames for stack-overflow detection and
// StackTrace construction, grounded on the teacher's
// internal/interp/runtime/callstack.go (a depth-bounded
// errors.StackTrace with Push/Pop/Current).
type CallStack struct {
	frames   errors.StackTrace
	maxDepth int
}

// DefaultMaxCallDepth mirrors the teacher's CallStack default.
const DefaultMaxCallDepth = 1024

// NewCallStack builds a CallStack bounded at maxDepth (DefaultMaxCallDepth
// if maxDepth <= 0).
func NewCallStack(maxDepth int) *CallStack {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxCallDepth
	}
	return &CallStack{frames: errors.NewStackTrace(), maxDepth: maxDepth}
}

// Push records entry into a new function's name, source, and call-site
// position. It returns a RangeError ("Maximum call stack size exceeded")
// if the stack is already at MaxCallDepth.
func (cs *CallStack) Push(functionName, sourceFile string, pos *token.Position) error {
	if len(cs.frames) >= cs.maxDepth {
		return errors.NewRangeError(pos, errors.ErrMsgStackOverflow)
	}
	cs.frames = append(cs.frames, errors.NewStackFrame(functionName, sourceFile, pos))
	return nil
}

// Pop removes the most recent frame; a no-op on an empty stack.
func (cs *CallStack) Pop() {
	if len(cs.frames) > 0 {
		cs.frames = cs.frames[:len(cs.frames)-1]
	}
}

// Current returns the innermost frame, or nil if the stack is empty.
func (cs *CallStack) Current() *errors.StackFrame {
	if len(cs.frames) == 0 {
		return nil
	}
	return &cs.frames[len(cs.frames)-1]
}

// Depth returns the current call depth.
func (cs *CallStack) Depth() int { return len(cs.frames) }

// Snapshot returns a copy of the current frames, oldest first, suitable
// for attaching to an InterpreterError.
func (cs *CallStack) Snapshot() errors.StackTrace {
	out := make(errors.StackTrace, len(cs.frames))
	copy(out, cs.frames)
	return out
}

// WillOverflow reports whether one more Push would exceed maxDepth.
func (cs *CallStack) WillOverflow() bool {
	return len(cs.frames) >= cs.maxDepth
}
