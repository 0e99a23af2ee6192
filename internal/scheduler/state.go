package scheduler

// NodeState is the execution state of a node during and after a run.
type NodeState int32

const (
	// Pending indicates the node is waiting for its dependencies.
	Pending NodeState = iota
	// Ready indicates all dependencies completed successfully and the node
	// is queued for a worker.
	Ready
	// Running indicates a worker is currently processing the node.
	Running
	// Succeeded indicates the node executed (or was verified up to date, or
	// is disabled) without error.
	Succeeded
	// Failed indicates the node's own processing errored.
	Failed
	// Skipped indicates the node was never attempted because a dependency
	// failed or the run was cancelled.
	Skipped
	// Cached indicates the node's version was found in the result cache and
	// execution was skipped.
	Cached
)

var stateNames = map[NodeState]string{
	Pending:   "pending",
	Ready:     "ready",
	Running:   "running",
	Succeeded: "succeeded",
	Failed:    "failed",
	Skipped:   "skipped",
	Cached:    "cached",
}

func (s NodeState) String() string {
	return stateNames[s]
}

// Terminal reports whether the state is final.
func (s NodeState) Terminal() bool {
	switch s {
	case Succeeded, Failed, Skipped, Cached:
		return true
	}
	return false
}

// Successful reports whether the state unblocks dependents.
func (s NodeState) Successful() bool {
	return s == Succeeded || s == Cached
}
