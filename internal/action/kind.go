package action

import "fmt"

// Kind classifies an action by the phase of the delivery pipeline it belongs to.
type Kind int

const (
	// Build produces an artifact (e.g. a container image) from sources.
	Build Kind = iota
	// Deploy pushes an artifact into a runtime environment.
	Deploy
	// Run executes an arbitrary one-off task.
	Run
	// Test verifies a build or a deployment.
	Test
)

// kindNames maps each Kind to its canonical lowercase name as it appears in
// configuration and in node keys.
var kindNames = map[Kind]string{
	Build:  "build",
	Deploy: "deploy",
	Run:    "run",
	Test:   "test",
}

// String returns the canonical lowercase name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind converts a configuration label into a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown action kind %q (expected one of build, deploy, run, test)", s)
}

// Kinds returns all kinds in a fixed order, for deterministic iteration.
func Kinds() []Kind {
	return []Kind{Build, Deploy, Run, Test}
}
