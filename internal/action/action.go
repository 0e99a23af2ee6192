package action

import (
	"time"

	"github.com/zclconf/go-cty/cty"
)

// Action is a single declared unit of work. It is created by the config
// loader and is immutable once a graph has been built from it.
type Action struct {
	// Kind is the pipeline phase this action belongs to.
	Kind Kind
	// Type selects the provider handler implementation, e.g. "exec".
	Type string
	// Name is the unique (per kind) instance name from the configuration.
	Name string

	// Dependencies lists the actions this one depends on.
	Dependencies []Dependency

	// Disabled actions stay in the graph for dependency linking but are
	// treated as trivially succeeded with empty outputs, without dispatch.
	Disabled bool

	// Timeout bounds a single handler invocation. Zero means no limit.
	Timeout time.Duration

	// Source is the path to the action's source tree, relative to the
	// project root. Empty when the action has no on-disk inputs.
	Source string

	// Spec is the provider-specific payload. The engine never interprets it
	// beyond serializing it deterministically for fingerprinting.
	Spec cty.Value
}

// Ref returns the action's structured identity.
func (a *Action) Ref() Ref {
	return Ref{Kind: a.Kind, Name: a.Name}
}

// Key returns the canonical "kind.name" key of the action.
func (a *Action) Key() string {
	return a.Ref().String()
}
