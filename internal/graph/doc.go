// Package graph builds and validates the dependency DAG for one run.
//
// The builder consumes the flat list of declared actions and produces an
// immutable Graph, failing with a typed error when it encounters a duplicate
// identity, an unresolved dependency reference, or a dependency cycle.
// Topological queries (sort order, transitive dependent counts) are provided
// for the version resolver and the scheduler.
package graph
