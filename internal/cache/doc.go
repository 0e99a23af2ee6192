// Package cache implements the result cache keyed by (kind, name, version).
//
// Because a version already encodes the action's entire transitive input
// state, a hit is valid unconditionally: no freshness check accompanies a
// read. Entries are written at most once per key; a key is superseded only
// when the computed version itself changes.
//
// Three backends share the contract: an ephemeral in-memory store, a
// file-backed store for cross-run caching on one machine, and a Redis-backed
// store for sharing results between machines. The Flight group provides the
// at-most-once-per-version execution guarantee for concurrent callers.
package cache
