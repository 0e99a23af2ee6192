package scheduler

import "github.com/AmauryD/garden/internal/graph"

// task is the mutable runtime wrapper around one graph node for the duration
// of a run. depCount and done are guarded by the run's mutex; the result's
// terminal fields are written exactly once, before done is set.
type task struct {
	node   *graph.Node
	result *Result
	// priority is the node's transitive dependent count; higher runs first.
	priority int

	// depCount is the number of dependencies not yet successfully terminal.
	depCount int
	// done marks the task terminal; a task never transitions twice.
	done bool
	// index is the task's position in the ready heap, or -1.
	index int
}

// readyQueue is a max-heap over ready tasks: highest transitive-dependent
// count first, declaration order as tie-break. Implements
// container/heap.Interface.
type readyQueue []*task

func (q readyQueue) Len() int { return len(q) }

func (q readyQueue) Less(i, j int) bool {
	if q[i].priority != q[j].priority {
		return q[i].priority > q[j].priority
	}
	return q[i].node.Order < q[j].node.Order
}

func (q readyQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *readyQueue) Push(x any) {
	t := x.(*task)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *readyQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
