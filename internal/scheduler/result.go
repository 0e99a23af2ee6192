package scheduler

import (
	"errors"
	"fmt"
	"sort"

	"github.com/AmauryD/garden/internal/action"
	"github.com/AmauryD/garden/internal/version"
)

// Result is the per-node outcome of one run.
type Result struct {
	// Ref identifies the action.
	Ref action.Ref
	// State is the node's terminal state.
	State NodeState
	// Version is the node's resolved content version, when one could be
	// computed.
	Version version.Version
	// Outputs is the node's output payload, if any.
	Outputs map[string]any
	// Err is the node's error, if any.
	Err error
	// Dependencies points at the results of this node's direct dependencies
	// within the same result map, for recursive inspection by callers. The
	// entries are shared lookups, not copies.
	Dependencies map[action.Ref]*Result
}

// ResultMap is the aggregate outcome of a run, covering every node of the
// graph regardless of how its branch fared.
type ResultMap map[action.Ref]*Result

// Failed returns the refs of all failed nodes, sorted by key.
func (m ResultMap) Failed() []action.Ref {
	var out []action.Ref
	for ref, res := range m {
		if res.State == Failed {
			out = append(out, ref)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Err aggregates the errors of all failed nodes into a single error, or nil
// when nothing failed. Dependency-failure skips do not contribute, their
// cause is already reported by the failed node they descend from — but a run
// interrupted by cancellation surfaces the context error even when no node
// failed outright, so callers never mistake an interrupted run for a clean
// one.
func (m ResultMap) Err() error {
	var errs []error
	for _, ref := range m.Failed() {
		errs = append(errs, fmt.Errorf("%s: %w", ref, m[ref].Err))
	}
	if cause := m.cancellationCause(); cause != nil {
		errs = append(errs, fmt.Errorf("run interrupted: %w", cause))
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}

// cancellationCause returns the context error behind cancellation skips, if
// any node carries one. A zero Dependency on a SkippedError distinguishes
// cancellation from a dependency-failure cascade.
func (m ResultMap) cancellationCause() error {
	for _, res := range m {
		var skipErr *SkippedError
		if errors.As(res.Err, &skipErr) && skipErr.Dependency == (action.Ref{}) {
			return skipErr.Cause
		}
	}
	return nil
}
