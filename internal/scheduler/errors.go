package scheduler

import (
	"fmt"
	"time"

	"github.com/AmauryD/garden/internal/action"
)

// TimeoutError reports that a node's handler invocation exceeded the
// action's declared maximum duration and was cancelled. Siblings are
// unaffected.
type TimeoutError struct {
	Ref   action.Ref
	Limit time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("action %s timed out after %s", e.Ref, e.Limit)
}

// SkippedError explains why a node was never attempted.
type SkippedError struct {
	Ref action.Ref
	// Dependency is the direct dependency whose failure (or skip) cascaded
	// here. It is zero when the run was cancelled instead.
	Dependency action.Ref
	Cause      error
}

func (e *SkippedError) Error() string {
	if e.Dependency == (action.Ref{}) {
		return fmt.Sprintf("action %s skipped: %v", e.Ref, e.Cause)
	}
	return fmt.Sprintf("action %s skipped: dependency %s did not succeed", e.Ref, e.Dependency)
}

func (e *SkippedError) Unwrap() error {
	return e.Cause
}
