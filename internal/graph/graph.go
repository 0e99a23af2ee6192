package graph

import (
	"sort"

	"github.com/AmauryD/garden/internal/action"
)

// Node is a single vertex in the dependency graph, wrapping one declared
// action together with its resolved edges.
type Node struct {
	// Action is the declared action this node represents.
	Action *action.Action
	// Order is the node's position in declaration order. It is used as the
	// deterministic tie-breaker wherever ordering otherwise would depend on
	// map iteration.
	Order int

	// deps holds the nodes this node depends on (predecessors).
	deps map[action.Ref]*Node
	// dependents holds the nodes that depend on this node (successors).
	dependents map[action.Ref]*Node
	// needsOutputs marks dependency edges whose executed outputs the
	// consumer requires, keyed by the dependency's ref.
	needsOutputs map[action.Ref]bool
}

// Ref returns the identity of the node's action.
func (n *Node) Ref() action.Ref {
	return n.Action.Ref()
}

// NeedsOutputsOf reports whether this node requires the executed outputs of
// the given dependency, not merely its completion.
func (n *Node) NeedsOutputsOf(dep action.Ref) bool {
	return n.needsOutputs[dep]
}

// Graph is the complete, validated DAG for one resolution pass. It is
// immutable after Build returns it.
type Graph struct {
	nodes map[action.Ref]*Node
	// order preserves the declaration order of all nodes.
	order []*Node
}

// Node looks up a node by its ref.
func (g *Graph) Node(ref action.Ref) (*Node, bool) {
	n, ok := g.nodes[ref]
	return n, ok
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Nodes returns all nodes in declaration order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.order))
	copy(out, g.order)
	return out
}

// Dependencies returns the refs of the nodes the given node depends on,
// sorted lexicographically by key.
func (g *Graph) Dependencies(ref action.Ref) []action.Ref {
	n, ok := g.nodes[ref]
	if !ok {
		return nil
	}
	return sortedRefs(n.deps)
}

// Dependents returns the refs of the nodes depending on the given node,
// sorted lexicographically by key.
func (g *Graph) Dependents(ref action.Ref) []action.Ref {
	n, ok := g.nodes[ref]
	if !ok {
		return nil
	}
	return sortedRefs(n.dependents)
}

func sortedRefs(m map[action.Ref]*Node) []action.Ref {
	out := make([]action.Ref, 0, len(m))
	for ref := range m {
		out = append(out, ref)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}
