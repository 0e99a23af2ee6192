package action

import (
	"fmt"
	"strings"
)

// Ref is the structured identity of an action within one graph: its kind plus
// its configured name. Ref is a small comparable value and is used as the map
// key throughout the engine.
type Ref struct {
	Kind Kind
	Name string
}

// NewRef builds a Ref from a kind and a name.
func NewRef(kind Kind, name string) Ref {
	return Ref{Kind: kind, Name: name}
}

// String serializes the Ref into its canonical key form, e.g. "build.web".
func (r Ref) String() string {
	return r.Kind.String() + "." + r.Name
}

// ParseRef parses a canonical "kind.name" key back into a Ref. Names may
// themselves contain dots, so only the first segment is treated as the kind.
func ParseRef(s string) (Ref, error) {
	idx := strings.IndexByte(s, '.')
	if idx <= 0 || idx == len(s)-1 {
		return Ref{}, fmt.Errorf("invalid action reference %q (expected \"kind.name\")", s)
	}
	kind, err := ParseKind(s[:idx])
	if err != nil {
		return Ref{}, fmt.Errorf("invalid action reference %q: %w", s, err)
	}
	return Ref{Kind: kind, Name: s[idx+1:]}, nil
}

// Dependency is a declared edge from a consuming action to the action it
// depends on.
type Dependency struct {
	// Ref addresses the dependency action.
	Ref Ref
	// NeedsOutputs is true when the consumer requires the dependency's
	// executed output values, not merely its completion. The scheduler then
	// retains and forwards the dependency's result payload.
	NeedsOutputs bool
}
