// Package testutil provides shared helpers for engine tests: compact action
// constructors, graph building with failures reported through testing.T, and
// a configurable fake handler with invocation counters.
package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AmauryD/garden/internal/action"
	"github.com/AmauryD/garden/internal/fingerprint"
	"github.com/AmauryD/garden/internal/graph"
	"github.com/AmauryD/garden/internal/router"
	"github.com/AmauryD/garden/internal/version"
)

// NewAction builds a test action of the given kind and name with handler
// type "test".
func NewAction(kind action.Kind, name string, deps ...action.Dependency) *action.Action {
	return &action.Action{
		Kind:         kind,
		Type:         "test",
		Name:         name,
		Dependencies: deps,
	}
}

// Dep declares a completion-only dependency.
func Dep(kind action.Kind, name string) action.Dependency {
	return action.Dependency{Ref: action.NewRef(kind, name)}
}

// DepOutputs declares a dependency whose outputs the consumer requires.
func DepOutputs(kind action.Kind, name string) action.Dependency {
	return action.Dependency{Ref: action.NewRef(kind, name), NeedsOutputs: true}
}

// MustBuildGraph builds a graph and fails the test on any validation error.
func MustBuildGraph(t *testing.T, actions ...*action.Action) *graph.Graph {
	t.Helper()
	g, err := graph.Build(context.Background(), actions)
	require.NoError(t, err)
	return g
}

// StaticFingerprints returns a static provider assigning "fp-<key>" to every
// node of the graph.
func StaticFingerprints(g *graph.Graph) *fingerprint.Static {
	fingerprints := make(map[action.Ref]string, g.Len())
	for _, n := range g.Nodes() {
		fingerprints[n.Ref()] = "fp-" + n.Ref().String()
	}
	return fingerprint.NewStatic(fingerprints)
}

// ResolveVersions resolves the graph's versions with static fingerprints.
func ResolveVersions(t *testing.T, g *graph.Graph) *version.Versions {
	t.Helper()
	return version.NewResolver(StaticFingerprints(g)).Resolve(context.Background(), g)
}

// NewTestRouter wires a single handler under type "test" for every kind.
func NewTestRouter(h router.Handler) *router.Router {
	reg := router.NewRegistry()
	for _, kind := range action.Kinds() {
		reg.Register(kind, "test", h)
	}
	return router.New(reg)
}
