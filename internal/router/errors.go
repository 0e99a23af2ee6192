package router

import (
	"fmt"

	"github.com/AmauryD/garden/internal/action"
)

// UnsupportedActionTypeError reports that no handler is registered for an
// action's (kind, type) pair. This is a configuration-time class of error,
// but it is surfaced per node so the scheduler's contract stays uniform.
type UnsupportedActionTypeError struct {
	Kind action.Kind
	Type string
}

func (e *UnsupportedActionTypeError) Error() string {
	return fmt.Sprintf("no handler registered for %s actions of type %q", e.Kind, e.Type)
}

// HandlerExecutionError wraps any error raised inside a handler invocation,
// preserving the original cause and naming the action.
type HandlerExecutionError struct {
	Ref action.Ref
	// Op is the handler operation that failed: "getStatus" or "execute".
	Op    string
	Cause error
}

func (e *HandlerExecutionError) Error() string {
	return fmt.Sprintf("handler %s failed for action %s: %v", e.Op, e.Ref, e.Cause)
}

func (e *HandlerExecutionError) Unwrap() error {
	return e.Cause
}
