package version

import (
	"fmt"

	"github.com/AmauryD/garden/internal/action"
)

// FingerprintUnavailableError reports that the external fingerprint provider
// could not produce a fingerprint for an action (e.g. a missing source path).
// The affected node and all its ancestors cannot compute an identity.
type FingerprintUnavailableError struct {
	Ref   action.Ref
	Cause error
}

func (e *FingerprintUnavailableError) Error() string {
	return fmt.Sprintf("fingerprint unavailable for action %s: %v", e.Ref, e.Cause)
}

func (e *FingerprintUnavailableError) Unwrap() error {
	return e.Cause
}

// DependencyVersionError reports that an action's version could not be
// computed because one of its dependencies has no version.
type DependencyVersionError struct {
	Ref        action.Ref
	Dependency action.Ref
	Cause      error
}

func (e *DependencyVersionError) Error() string {
	return fmt.Sprintf("cannot compute version of action %s: dependency %s has no version: %v",
		e.Ref, e.Dependency, e.Cause)
}

func (e *DependencyVersionError) Unwrap() error {
	return e.Cause
}
