// Package scheduler walks a validated, version-annotated graph in dependency
// order and drives every node to a terminal state.
//
// A bounded pool of workers pops ready nodes off a priority queue (most
// transitive dependents first, declaration order as tie-break), consults the
// result cache, short-circuits on an up-to-date status report, and otherwise
// dispatches the node through the action router. A failed node skips its
// transitive dependents; disjoint subtrees keep executing, so one failure
// never aborts the run. The run always returns a complete result map.
package scheduler
