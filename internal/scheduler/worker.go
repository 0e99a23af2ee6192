package scheduler

import (
	"container/heap"
	"context"
	"errors"
	"time"

	"github.com/AmauryD/garden/internal/cache"
	"github.com/AmauryD/garden/internal/ctxlog"
	"github.com/AmauryD/garden/internal/router"
)

// worker is the processing loop of a single pool member. It pops the
// highest-priority ready task, drives it to a terminal state, and repeats
// until every node in the run is terminal.
func (r *run) worker(ctx context.Context, workerID int) {
	logger := ctxlog.FromContext(ctx).With("workerID", workerID)
	logger.Debug("Worker started.")

	for {
		r.mu.Lock()
		for r.ready.Len() == 0 && r.remaining > 0 {
			r.cond.Wait()
		}
		if r.remaining == 0 {
			r.mu.Unlock()
			logger.Debug("Worker finished.")
			return
		}
		t := heap.Pop(&r.ready).(*task)
		if t.done {
			// Raced with the cancellation watcher.
			r.mu.Unlock()
			continue
		}
		if r.cancelled {
			r.completeLocked(t, Skipped, nil, &SkippedError{Ref: t.node.Ref(), Cause: ctx.Err()})
			r.cond.Broadcast()
			r.mu.Unlock()
			continue
		}
		t.result.State = Running
		r.mu.Unlock()

		r.process(ctx, t)
	}
}

// process drives one running task to its terminal state.
func (r *run) process(ctx context.Context, t *task) {
	ref := t.node.Ref()
	a := t.node.Action
	logger := ctxlog.FromContext(ctx).With("action", ref.String())

	// A node whose identity could not be computed fails without dispatch,
	// and its dependents are skipped.
	if verr := r.versions.Err(ref); verr != nil {
		logger.Debug("Node failed: version unavailable.", "error", verr)
		r.complete(t, Failed, nil, verr)
		return
	}

	// Disabled nodes are linked in the graph for dependency purposes only.
	if a.Disabled {
		logger.Debug("Node is disabled, completing without dispatch.")
		r.complete(t, Succeeded, map[string]any{}, nil)
		return
	}

	v, _ := r.versions.Version(ref)
	key := cache.NewKey(ref, v)
	req := &router.Request{
		Action:            a,
		Version:           v,
		DependencyOutputs: r.dependencyOutputs(t),
	}

	if entry, ok, err := r.cache.Get(ctx, key); err != nil {
		logger.Warn("Result cache read failed, treating as miss.", "error", err)
	} else if ok {
		logger.Debug("Result cache hit.", "version", string(v))
		r.complete(t, Cached, entry.Outputs, nil)
		return
	}

	// Concurrent requests for the same uncached version collapse to one
	// handler invocation; late callers adopt the first caller's result.
	entry, shared, err := r.flight.Do(key, func() (*cache.Entry, error) {
		return r.invoke(ctx, t, key, req)
	})
	if err != nil {
		logger.Debug("Node failed.", "error", err)
		r.complete(t, Failed, nil, err)
		return
	}
	if shared {
		logger.Debug("Adopted in-flight result for version.", "version", string(v))
	}
	r.complete(t, Succeeded, entry.Outputs, nil)
}

// invoke runs the status check and, when needed, the execute path for one
// node, writing the result cache entry on success.
func (r *run) invoke(ctx context.Context, t *task, key cache.Key, req *router.Request) (*cache.Entry, error) {
	logger := ctxlog.FromContext(ctx).With("action", req.Action.Key())

	// The status check can prove the real-world state already matches
	// (e.g. a deploy that is verifiably running) without any cache entry.
	// Status errors are advisory: the execute path is the authority.
	status, err := r.router.GetStatus(ctx, req)
	if err != nil {
		var unsupported *router.UnsupportedActionTypeError
		if errors.As(err, &unsupported) {
			return nil, err
		}
		logger.Warn("Status check failed, proceeding to execute.", "error", err)
	} else if status.UpToDate {
		logger.Debug("Status reports up to date, skipping execute.")
		entry := &cache.Entry{Outputs: status.Outputs, CompletedAt: time.Now().UTC()}
		r.putCache(ctx, key, entry)
		return entry, nil
	}

	hctx := ctx
	if timeout := req.Action.Timeout; timeout > 0 {
		var cancel context.CancelFunc
		hctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result, err := r.router.Dispatch(hctx, req)
	if err != nil {
		if hctx != ctx && errors.Is(hctx.Err(), context.DeadlineExceeded) {
			return nil, &TimeoutError{Ref: req.Action.Ref(), Limit: req.Action.Timeout}
		}
		return nil, err
	}

	entry := &cache.Entry{Outputs: result.Outputs, CompletedAt: time.Now().UTC()}
	r.putCache(ctx, key, entry)
	return entry, nil
}

// putCache writes a cache entry; failures degrade to a warning because the
// run's correctness never depends on the cache.
func (r *run) putCache(ctx context.Context, key cache.Key, entry *cache.Entry) {
	if err := r.cache.Put(ctx, key, entry); err != nil {
		ctxlog.FromContext(ctx).Warn("Result cache write failed.", "key", key.String(), "error", err)
	}
}

// dependencyOutputs collects the retained output payloads of the
// dependencies declared with needs_outputs. Dependencies that completed
// without outputs, or whose outputs the consumer never asked for, are
// omitted; handlers tolerate a partial map.
func (r *run) dependencyOutputs(t *task) map[string]map[string]any {
	ref := t.node.Ref()
	out := make(map[string]map[string]any)
	for _, depRef := range r.graph.Dependencies(ref) {
		if !t.node.NeedsOutputsOf(depRef) {
			continue
		}
		dep := r.tasks[depRef]
		if dep.result.Outputs != nil {
			out[depRef.String()] = dep.result.Outputs
		}
	}
	return out
}
