package graph

import (
	"sort"

	"github.com/AmauryD/garden/internal/action"
)

// TopologicalOrder returns the nodes sorted so that every dependency precedes
// its dependents. Among nodes with no ordering constraint, declaration order
// wins, keeping the result stable across runs.
//
// The graph is validated acyclic at build time, so the sort always covers
// every node.
func (g *Graph) TopologicalOrder() []*Node {
	indegree := make(map[action.Ref]int, len(g.nodes))
	for ref, n := range g.nodes {
		indegree[ref] = len(n.deps)
	}

	// ready is kept sorted by declaration order.
	var ready []*Node
	for _, n := range g.order {
		if indegree[n.Ref()] == 0 {
			ready = append(ready, n)
		}
	}

	out := make([]*Node, 0, len(g.nodes))
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		out = append(out, n)

		released := make([]*Node, 0, len(n.dependents))
		for _, dep := range n.dependents {
			indegree[dep.Ref()]--
			if indegree[dep.Ref()] == 0 {
				released = append(released, dep)
			}
		}
		sort.Slice(released, func(i, j int) bool { return released[i].Order < released[j].Order })

		// Merge the newly released nodes into the ready list, preserving
		// declaration order.
		ready = append(ready, released...)
		sort.Slice(ready, func(i, j int) bool { return ready[i].Order < ready[j].Order })
	}
	return out
}

// TransitiveDependentCounts returns, for every node, the number of distinct
// nodes that transitively depend on it. The scheduler uses the count as the
// readiness priority: unblocking the largest downstream portion first.
func (g *Graph) TransitiveDependentCounts() map[action.Ref]int {
	counts := make(map[action.Ref]int, len(g.nodes))
	for ref := range g.nodes {
		seen := make(map[action.Ref]bool)
		g.collectDependents(ref, seen)
		counts[ref] = len(seen)
	}
	return counts
}

func (g *Graph) collectDependents(ref action.Ref, seen map[action.Ref]bool) {
	for depRef := range g.nodes[ref].dependents {
		if !seen[depRef] {
			seen[depRef] = true
			g.collectDependents(depRef, seen)
		}
	}
}
