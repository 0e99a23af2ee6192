package graph

import "github.com/AmauryD/garden/internal/action"

// detectCycles runs a depth-first traversal with an explicit recursion stack.
// On the first cycle found it returns a CyclicDependencyError listing the
// cycle's members in traversal order. Nodes and edges are visited in
// deterministic order so the reported cycle is stable across runs.
func (g *Graph) detectCycles() error {
	// permanent: fully explored, known cycle-free.
	// onStack: currently on the recursion stack.
	permanent := make(map[action.Ref]bool, len(g.nodes))
	onStack := make(map[action.Ref]bool)
	var stack []action.Ref

	var visit func(n *Node) *CyclicDependencyError
	visit = func(n *Node) *CyclicDependencyError {
		ref := n.Ref()
		if permanent[ref] {
			return nil
		}
		if onStack[ref] {
			return &CyclicDependencyError{Cycle: extractCycle(stack, ref)}
		}

		onStack[ref] = true
		stack = append(stack, ref)

		for _, depRef := range g.Dependencies(ref) {
			if err := visit(g.nodes[depRef]); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		delete(onStack, ref)
		permanent[ref] = true
		return nil
	}

	for _, n := range g.order {
		if !permanent[n.Ref()] {
			if err := visit(n); err != nil {
				return err
			}
		}
	}
	return nil
}

// extractCycle slices the recursion stack from the first occurrence of start,
// then closes the loop by appending start again.
func extractCycle(stack []action.Ref, start action.Ref) []action.Ref {
	for i, ref := range stack {
		if ref == start {
			cycle := make([]action.Ref, 0, len(stack)-i+1)
			cycle = append(cycle, stack[i:]...)
			cycle = append(cycle, start)
			return cycle
		}
	}
	// start is always on the stack when a cycle is found.
	return []action.Ref{start, start}
}
