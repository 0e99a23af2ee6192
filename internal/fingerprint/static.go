package fingerprint

import (
	"context"
	"fmt"

	"github.com/AmauryD/garden/internal/action"
)

// Static is a map-backed fingerprint provider. It is used by tests to pin
// fingerprints precisely and to simulate unavailable fingerprints.
type Static struct {
	fingerprints map[action.Ref]string
}

// NewStatic creates a Static provider from a fixed map.
func NewStatic(fingerprints map[action.Ref]string) *Static {
	return &Static{fingerprints: fingerprints}
}

// Set overrides the fingerprint for a single action.
func (s *Static) Set(ref action.Ref, fingerprint string) {
	s.fingerprints[ref] = fingerprint
}

// Fingerprint returns the pinned fingerprint, or an error when none was set.
func (s *Static) Fingerprint(_ context.Context, a *action.Action) (string, error) {
	fp, ok := s.fingerprints[a.Ref()]
	if !ok {
		return "", fmt.Errorf("no fingerprint registered for action %s", a.Key())
	}
	return fp, nil
}
