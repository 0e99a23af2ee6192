package graph

import (
	"context"

	"github.com/AmauryD/garden/internal/action"
	"github.com/AmauryD/garden/internal/ctxlog"
)

// Build constructs a complete, validated dependency graph from the ordered
// list of declared actions.
func Build(ctx context.Context, actions []*action.Action) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: starting graph construction.", "action_count", len(actions))

	graph := &Graph{nodes: make(map[action.Ref]*Node, len(actions))}

	// First pass: create all nodes, rejecting duplicate identities.
	if err := createNodes(actions, graph); err != nil {
		return nil, err
	}
	logger.Debug("Build: node creation complete.", "node_count", graph.Len())

	// Second pass: link declared dependencies into edges.
	if err := linkNodes(graph); err != nil {
		return nil, err
	}
	logger.Debug("Build: node linking complete.")

	// Final validation: cycle detection.
	if err := graph.detectCycles(); err != nil {
		return nil, err
	}
	logger.Debug("Build: cycle detection passed.")

	return graph, nil
}

// createNodes performs the first pass, populating the graph with one node per
// declared action.
func createNodes(actions []*action.Action, graph *Graph) error {
	for i, a := range actions {
		ref := a.Ref()
		if existing, ok := graph.nodes[ref]; ok {
			return &DuplicateActionError{
				Ref:         ref,
				FirstIndex:  existing.Order,
				SecondIndex: i,
			}
		}
		n := &Node{
			Action:       a,
			Order:        i,
			deps:         make(map[action.Ref]*Node),
			dependents:   make(map[action.Ref]*Node),
			needsOutputs: make(map[action.Ref]bool),
		}
		graph.nodes[ref] = n
		graph.order = append(graph.order, n)
	}
	return nil
}

// linkNodes performs the second pass, resolving every declared dependency
// reference to a concrete node and wiring the edges in both directions.
func linkNodes(graph *Graph) error {
	for _, n := range graph.order {
		for _, dep := range n.Action.Dependencies {
			target, ok := graph.nodes[dep.Ref]
			if !ok {
				return &UnresolvedDependencyError{
					Referrer: n.Ref(),
					Missing:  dep.Ref,
				}
			}
			n.deps[dep.Ref] = target
			target.dependents[n.Ref()] = n
			if dep.NeedsOutputs {
				n.needsOutputs[dep.Ref] = true
			}
		}
	}
	return nil
}
