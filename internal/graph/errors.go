package graph

import (
	"fmt"
	"strings"

	"github.com/AmauryD/garden/internal/action"
)

// DuplicateActionError reports two declared actions sharing the same
// (kind, name) identity. Indices refer to declaration order.
type DuplicateActionError struct {
	Ref         action.Ref
	FirstIndex  int
	SecondIndex int
}

func (e *DuplicateActionError) Error() string {
	return fmt.Sprintf("duplicate action %s: declared at positions %d and %d",
		e.Ref, e.FirstIndex+1, e.SecondIndex+1)
}

// UnresolvedDependencyError reports a dependency reference that does not
// match any declared action.
type UnresolvedDependencyError struct {
	// Referrer is the action declaring the dependency.
	Referrer action.Ref
	// Missing is the reference that could not be resolved.
	Missing action.Ref
}

func (e *UnresolvedDependencyError) Error() string {
	return fmt.Sprintf("action %s depends on %s, which is not declared", e.Referrer, e.Missing)
}

// CyclicDependencyError reports a dependency cycle. Cycle holds the members
// in traversal order, starting and ending at the same action.
type CyclicDependencyError struct {
	Cycle []action.Ref
}

func (e *CyclicDependencyError) Error() string {
	keys := make([]string, 0, len(e.Cycle))
	for _, ref := range e.Cycle {
		keys = append(keys, ref.String())
	}
	return "dependency cycle detected: " + strings.Join(keys, " -> ")
}
