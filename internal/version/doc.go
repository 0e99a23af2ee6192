// Package version computes the content-derived version of every action in a
// graph.
//
// A version is a stable hash over the action's own input fingerprint and the
// versions of all its direct dependencies, combined in a fixed order. It
// therefore encodes the action's entire transitive input state: any change to
// any transitive dependency's inputs changes the version of every ancestor.
package version
