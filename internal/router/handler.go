package router

import (
	"context"

	"github.com/AmauryD/garden/internal/action"
	"github.com/AmauryD/garden/internal/version"
)

// Request carries everything a handler may need for one invocation.
type Request struct {
	// Action is the declared action being processed.
	Action *action.Action
	// Version is the action's resolved content version.
	Version version.Version
	// DependencyOutputs holds the output payloads of the dependencies that
	// were declared with needs_outputs, keyed by dependency key. Handlers
	// must tolerate a partial or empty map.
	DependencyOutputs map[string]map[string]any
}

// Status is the result of an idempotent, side-effect-free check of the
// real-world state an action manages.
type Status struct {
	// UpToDate is true when the action's desired state is already satisfied
	// and execution can be short-circuited.
	UpToDate bool
	// Outputs are the current output values, when the handler can report
	// them without executing.
	Outputs map[string]any
}

// Result is the outcome of executing an action.
type Result struct {
	Outputs map[string]any
}

// Handler is the contract every provider implementation satisfies for one
// (kind, type) pair.
type Handler interface {
	// GetStatus checks current real-world state without side effects.
	GetStatus(ctx context.Context, req *Request) (*Status, error)
	// Execute performs the actual build/deploy/run/test.
	Execute(ctx context.Context, req *Request) (*Result, error)
}
