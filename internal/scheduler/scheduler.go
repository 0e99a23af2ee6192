package scheduler

import (
	"container/heap"
	"context"
	"sync"

	"github.com/AmauryD/garden/internal/action"
	"github.com/AmauryD/garden/internal/cache"
	"github.com/AmauryD/garden/internal/ctxlog"
	"github.com/AmauryD/garden/internal/graph"
	"github.com/AmauryD/garden/internal/router"
	"github.com/AmauryD/garden/internal/version"
)

// DefaultWorkers is the worker pool size used when none is configured.
const DefaultWorkers = 10

// Options configures a Scheduler.
type Options struct {
	// Workers bounds the number of concurrently processed nodes. Values
	// below 1 fall back to DefaultWorkers.
	Workers int
	// Cache is the result cache consulted before dispatch. Defaults to a
	// fresh in-memory store.
	Cache cache.Store
	// Flight deduplicates concurrent executions of one version. Defaults to
	// a fresh group.
	Flight *cache.Flight
}

// Scheduler drives graphs to completion. It is safe to reuse across runs;
// all per-run state lives in the run type.
type Scheduler struct {
	router  *router.Router
	cache   cache.Store
	flight  *cache.Flight
	workers int
}

// New creates a scheduler dispatching through the given router.
func New(rt *router.Router, opts Options) *Scheduler {
	if opts.Workers < 1 {
		opts.Workers = DefaultWorkers
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewMemory()
	}
	if opts.Flight == nil {
		opts.Flight = cache.NewFlight()
	}
	return &Scheduler{
		router:  rt,
		cache:   opts.Cache,
		flight:  opts.Flight,
		workers: opts.Workers,
	}
}

// run holds the mutable state of one scheduling pass.
type run struct {
	*Scheduler

	graph    *graph.Graph
	versions *version.Versions
	tasks    map[action.Ref]*task

	mu    sync.Mutex
	cond  *sync.Cond
	ready readyQueue
	// remaining counts tasks that have not reached a terminal state.
	remaining int
	// cancelled is set once the run context is done; no node transitions to
	// Running afterwards.
	cancelled bool
}

// Run walks the graph under the concurrency bound and returns a result for
// every node. Node-local errors never escape as a run error: the caller
// inspects the map (or ResultMap.Err) and decides what failure means.
func (s *Scheduler) Run(ctx context.Context, g *graph.Graph, versions *version.Versions) ResultMap {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Run: starting scheduling pass.", "nodes", g.Len(), "workers", s.workers)

	r := &run{
		Scheduler: s,
		graph:     g,
		versions:  versions,
		tasks:     make(map[action.Ref]*task, g.Len()),
		remaining: g.Len(),
	}
	r.cond = sync.NewCond(&r.mu)

	priorities := g.TransitiveDependentCounts()
	for _, n := range g.Nodes() {
		ref := n.Ref()
		t := &task{
			node:     n,
			priority: priorities[ref],
			depCount: len(g.Dependencies(ref)),
			index:    -1,
			result:   &Result{Ref: ref, State: Pending},
		}
		if v, ok := versions.Version(ref); ok {
			t.result.Version = v
		}
		r.tasks[ref] = t
	}

	// Nodes without dependencies are immediately ready.
	r.mu.Lock()
	for _, n := range g.Nodes() {
		t := r.tasks[n.Ref()]
		if t.depCount == 0 {
			t.result.State = Ready
			heap.Push(&r.ready, t)
		}
	}
	r.mu.Unlock()

	// The watcher turns an external cancellation into skip transitions for
	// everything not yet running, then lets in-flight work drain.
	watcherDone := make(chan struct{})
	go r.watchCancellation(ctx, watcherDone)

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			r.worker(ctx, workerID)
		}(i)
	}
	wg.Wait()
	close(watcherDone)

	results := make(ResultMap, len(r.tasks))
	for ref, t := range r.tasks {
		results[ref] = t.result
	}
	// Wire the dependency result pointers now that the arena is complete.
	for ref, res := range results {
		deps := g.Dependencies(ref)
		if len(deps) == 0 {
			continue
		}
		res.Dependencies = make(map[action.Ref]*Result, len(deps))
		for _, depRef := range deps {
			res.Dependencies[depRef] = results[depRef]
		}
	}

	logger.Debug("Run: scheduling pass complete.", "failed", len(results.Failed()))
	return results
}

// watchCancellation reacts to the run context: every node that is neither
// terminal nor running is skipped, preserving already-terminal results and
// leaving in-flight invocations to finish (their handler context is already
// cancelled).
func (r *run) watchCancellation(ctx context.Context, done <-chan struct{}) {
	select {
	case <-done:
		return
	case <-ctx.Done():
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelled = true
	for _, t := range r.tasks {
		if !t.done && t.result.State != Running {
			r.completeLocked(t, Skipped, nil, &SkippedError{Ref: t.node.Ref(), Cause: ctx.Err()})
		}
	}
	r.cond.Broadcast()
}

// completeLocked records a task's terminal state and propagates the
// consequences to its dependents. r.mu must be held. Successful completion
// decrements dependent in-degrees and promotes freshly unblocked nodes to
// Ready; failure and skips cascade Skipped transitively without consuming a
// worker slot.
func (r *run) completeLocked(t *task, state NodeState, outputs map[string]any, err error) {
	if t.done {
		return
	}
	t.done = true
	t.result.State = state
	t.result.Outputs = outputs
	t.result.Err = err
	r.remaining--

	ref := t.node.Ref()
	for _, depRef := range r.graph.Dependents(ref) {
		dt := r.tasks[depRef]
		if dt.done {
			continue
		}
		if state.Successful() {
			dt.depCount--
			if dt.depCount == 0 && !r.cancelled {
				dt.result.State = Ready
				heap.Push(&r.ready, dt)
			}
			continue
		}
		r.completeLocked(dt, Skipped, nil, &SkippedError{
			Ref:        depRef,
			Dependency: ref,
			Cause:      err,
		})
	}
}

// complete is the unlocked entry point for workers finishing a node.
func (r *run) complete(t *task, state NodeState, outputs map[string]any, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completeLocked(t, state, outputs, err)
	r.cond.Broadcast()
}
