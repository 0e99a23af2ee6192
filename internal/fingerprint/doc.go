// Package fingerprint implements the input-fingerprint providers consumed by
// the version resolver.
//
// Local hashes an action's source tree through a billy filesystem together
// with the action's canonically serialized spec payload. Only file paths and
// contents participate in the hash; filesystem metadata (timestamps,
// permissions) never does, so the fingerprint is stable across checkouts.
package fingerprint
