package scheduler_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmauryD/garden/internal/action"
	"github.com/AmauryD/garden/internal/cache"
	"github.com/AmauryD/garden/internal/fingerprint"
	"github.com/AmauryD/garden/internal/graph"
	"github.com/AmauryD/garden/internal/router"
	"github.com/AmauryD/garden/internal/scheduler"
	"github.com/AmauryD/garden/internal/testutil"
	"github.com/AmauryD/garden/internal/version"
)

func runGraph(t *testing.T, h router.Handler, opts scheduler.Options, actions ...*action.Action) scheduler.ResultMap {
	t.Helper()
	g := testutil.MustBuildGraph(t, actions...)
	versions := testutil.ResolveVersions(t, g)
	s := scheduler.New(testutil.NewTestRouter(h), opts)
	return s.Run(context.Background(), g, versions)
}

func TestRunLinearChain(t *testing.T) {
	h := &testutil.FakeHandler{Outputs: map[string]any{"ok": true}}
	results := runGraph(t, h, scheduler.Options{},
		testutil.NewAction(action.Build, "web"),
		testutil.NewAction(action.Deploy, "web", testutil.Dep(action.Build, "web")),
		testutil.NewAction(action.Test, "web", testutil.Dep(action.Deploy, "web")),
	)

	require.Len(t, results, 3)
	for ref, res := range results {
		assert.Equal(t, scheduler.Succeeded, res.State, "node %s", ref)
		assert.NotEmpty(t, res.Version)
		assert.NoError(t, res.Err)
	}
	assert.Equal(t, int32(3), h.ExecuteCalls.Load())
	assert.NoError(t, results.Err())
}

func TestRunFailurePropagation(t *testing.T) {
	buildFailed := errors.New("compile error")
	h := &testutil.FakeHandler{
		OnExecute: func(_ context.Context, req *router.Request) (*router.Result, error) {
			if req.Action.Ref() == action.NewRef(action.Build, "web") {
				return nil, buildFailed
			}
			return &router.Result{}, nil
		},
	}

	results := runGraph(t, h, scheduler.Options{},
		testutil.NewAction(action.Build, "web"),
		testutil.NewAction(action.Deploy, "web", testutil.Dep(action.Build, "web")),
		testutil.NewAction(action.Test, "web", testutil.Dep(action.Deploy, "web")),
		testutil.NewAction(action.Build, "docs"),
	)

	assert.Equal(t, scheduler.Failed, results[action.NewRef(action.Build, "web")].State)
	assert.ErrorIs(t, results[action.NewRef(action.Build, "web")].Err, buildFailed)

	deploy := results[action.NewRef(action.Deploy, "web")]
	assert.Equal(t, scheduler.Skipped, deploy.State)
	var skipErr *scheduler.SkippedError
	require.ErrorAs(t, deploy.Err, &skipErr)
	assert.Equal(t, action.NewRef(action.Build, "web"), skipErr.Dependency)

	testRes := results[action.NewRef(action.Test, "web")]
	assert.Equal(t, scheduler.Skipped, testRes.State, "skip cascades transitively")
	require.ErrorAs(t, testRes.Err, &skipErr)
	assert.Equal(t, action.NewRef(action.Deploy, "web"), skipErr.Dependency)

	// The disjoint subtree is unaffected by the failure.
	assert.Equal(t, scheduler.Succeeded, results[action.NewRef(action.Build, "docs")].State)

	require.Error(t, results.Err())
	assert.Equal(t, []action.Ref{action.NewRef(action.Build, "web")}, results.Failed(),
		"skipped nodes are not counted as failures")
}

func TestRunIndependentFailuresBothReported(t *testing.T) {
	h := &testutil.FakeHandler{
		OnExecute: func(_ context.Context, req *router.Request) (*router.Result, error) {
			if req.Action.Kind == action.Build {
				return nil, errors.New("boom")
			}
			return &router.Result{}, nil
		},
	}

	results := runGraph(t, h, scheduler.Options{},
		testutil.NewAction(action.Build, "a"),
		testutil.NewAction(action.Build, "b"),
		testutil.NewAction(action.Run, "svc"),
	)

	assert.Len(t, results.Failed(), 2, "one failure must not abort the other branch")
	assert.Equal(t, scheduler.Succeeded, results[action.NewRef(action.Run, "svc")].State)
}

func TestRunCacheHit(t *testing.T) {
	store := cache.NewMemory()
	g := testutil.MustBuildGraph(t, testutil.NewAction(action.Build, "web"))
	versions := testutil.ResolveVersions(t, g)
	ref := action.NewRef(action.Build, "web")
	v, ok := versions.Version(ref)
	require.True(t, ok)

	entry := &cache.Entry{Outputs: map[string]any{"image": "web:cached"}, CompletedAt: time.Now().UTC()}
	require.NoError(t, store.Put(context.Background(), cache.NewKey(ref, v), entry))

	h := &testutil.FakeHandler{}
	s := scheduler.New(testutil.NewTestRouter(h), scheduler.Options{Cache: store})
	results := s.Run(context.Background(), g, versions)

	res := results[ref]
	assert.Equal(t, scheduler.Cached, res.State)
	assert.Equal(t, "web:cached", res.Outputs["image"])
	assert.Equal(t, int32(0), h.StatusCalls.Load(), "a cache hit bypasses the status check")
	assert.Equal(t, int32(0), h.ExecuteCalls.Load())
}

func TestRunSecondRunIsCached(t *testing.T) {
	store := cache.NewMemory()
	h := &testutil.FakeHandler{Outputs: map[string]any{"image": "web:1"}}
	a := testutil.NewAction(action.Build, "web")

	first := runGraph(t, h, scheduler.Options{Cache: store}, a)
	assert.Equal(t, scheduler.Succeeded, first[a.Ref()].State)

	second := runGraph(t, h, scheduler.Options{Cache: store}, a)
	assert.Equal(t, scheduler.Cached, second[a.Ref()].State)
	assert.Equal(t, "web:1", second[a.Ref()].Outputs["image"])
	assert.Equal(t, int32(1), h.ExecuteCalls.Load(), "the version executes at most once")
}

func TestRunUpToDateStatus(t *testing.T) {
	store := cache.NewMemory()
	h := &testutil.FakeHandler{UpToDate: true, StatusOutputs: map[string]any{"url": "http://web"}}
	a := testutil.NewAction(action.Deploy, "web")

	results := runGraph(t, h, scheduler.Options{Cache: store}, a)

	res := results[a.Ref()]
	assert.Equal(t, scheduler.Succeeded, res.State)
	assert.Equal(t, "http://web", res.Outputs["url"])
	assert.Equal(t, int32(1), h.StatusCalls.Load())
	assert.Equal(t, int32(0), h.ExecuteCalls.Load(), "up-to-date short-circuits execution")

	// The verified state also lands in the cache for later runs.
	second := runGraph(t, h, scheduler.Options{Cache: store}, a)
	assert.Equal(t, scheduler.Cached, second[a.Ref()].State)
	assert.Equal(t, int32(1), h.StatusCalls.Load())
}

func TestRunStatusErrorIsAdvisory(t *testing.T) {
	h := &testutil.FakeHandler{
		StatusErr: errors.New("registry unreachable"),
		Outputs:   map[string]any{"image": "web:1"},
	}
	results := runGraph(t, h, scheduler.Options{}, testutil.NewAction(action.Build, "web"))

	res := results[action.NewRef(action.Build, "web")]
	assert.Equal(t, scheduler.Succeeded, res.State, "a failing status check falls through to execute")
	assert.Equal(t, int32(1), h.ExecuteCalls.Load())
}

func TestRunUnsupportedTypeFailsNode(t *testing.T) {
	a := testutil.NewAction(action.Build, "web")
	a.Type = "docker"
	results := runGraph(t, &testutil.FakeHandler{}, scheduler.Options{},
		a,
		testutil.NewAction(action.Deploy, "web", testutil.Dep(action.Build, "web")),
	)

	var unsupported *router.UnsupportedActionTypeError
	require.ErrorAs(t, results[a.Ref()].Err, &unsupported)
	assert.Equal(t, scheduler.Failed, results[a.Ref()].State)
	assert.Equal(t, scheduler.Skipped, results[action.NewRef(action.Deploy, "web")].State)
}

func TestRunDisabledNode(t *testing.T) {
	h := &testutil.FakeHandler{}
	disabled := testutil.NewAction(action.Build, "base")
	disabled.Disabled = true

	results := runGraph(t, h, scheduler.Options{},
		disabled,
		testutil.NewAction(action.Build, "web", testutil.Dep(action.Build, "base")),
	)

	assert.Equal(t, scheduler.Succeeded, results[disabled.Ref()].State)
	assert.Equal(t, scheduler.Succeeded, results[action.NewRef(action.Build, "web")].State,
		"dependents of a disabled node still run")
	assert.Equal(t, int32(1), h.ExecuteCalls.Load(), "the disabled node itself is never dispatched")
}

func TestRunVersionErrorFailsNode(t *testing.T) {
	g := testutil.MustBuildGraph(t,
		testutil.NewAction(action.Build, "broken"),
		testutil.NewAction(action.Deploy, "broken", testutil.Dep(action.Build, "broken")),
		testutil.NewAction(action.Build, "ok"),
	)
	fp := fingerprint.NewStatic(map[action.Ref]string{
		action.NewRef(action.Build, "ok"): "fp-ok",
	})
	versions := version.NewResolver(fp).Resolve(context.Background(), g)

	h := &testutil.FakeHandler{}
	s := scheduler.New(testutil.NewTestRouter(h), scheduler.Options{})
	results := s.Run(context.Background(), g, versions)

	broken := results[action.NewRef(action.Build, "broken")]
	assert.Equal(t, scheduler.Failed, broken.State)
	var fpErr *version.FingerprintUnavailableError
	assert.ErrorAs(t, broken.Err, &fpErr)

	assert.Equal(t, scheduler.Skipped, results[action.NewRef(action.Deploy, "broken")].State)
	assert.Equal(t, scheduler.Succeeded, results[action.NewRef(action.Build, "ok")].State)
}

func TestRunTimeout(t *testing.T) {
	h := &testutil.FakeHandler{Delay: time.Second}
	a := testutil.NewAction(action.Run, "slow")
	a.Timeout = 30 * time.Millisecond

	results := runGraph(t, h, scheduler.Options{}, a)

	res := results[a.Ref()]
	assert.Equal(t, scheduler.Failed, res.State)
	var timeoutErr *scheduler.TimeoutError
	require.ErrorAs(t, res.Err, &timeoutErr)
	assert.Equal(t, a.Ref(), timeoutErr.Ref)
	assert.Equal(t, a.Timeout, timeoutErr.Limit)
}

func TestRunCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := &testutil.FakeHandler{
		OnExecute: func(_ context.Context, _ *router.Request) (*router.Result, error) {
			cancel()
			// Let the watcher mark everything not yet running as skipped.
			time.Sleep(50 * time.Millisecond)
			return &router.Result{}, nil
		},
	}

	first := testutil.NewAction(action.Build, "running")
	second := testutil.NewAction(action.Deploy, "running", testutil.Dep(action.Build, "running"))
	g := testutil.MustBuildGraph(t, first, second)
	versions := testutil.ResolveVersions(t, g)

	s := scheduler.New(testutil.NewTestRouter(h), scheduler.Options{Workers: 1})
	results := s.Run(ctx, g, versions)

	assert.Equal(t, scheduler.Succeeded, results[first.Ref()].State,
		"the in-flight node finishes and keeps its result")

	res := results[second.Ref()]
	assert.Equal(t, scheduler.Skipped, res.State)
	var skipErr *scheduler.SkippedError
	require.ErrorAs(t, res.Err, &skipErr)
	assert.Equal(t, action.Ref{}, skipErr.Dependency, "cancellation skips carry no dependency")
	assert.ErrorIs(t, res.Err, context.Canceled)

	// An interrupted run is not a clean run, even with zero failed nodes.
	assert.Empty(t, results.Failed())
	assert.ErrorIs(t, results.Err(), context.Canceled)
}

func TestRunConcurrencyBound(t *testing.T) {
	var current, peak atomic.Int32
	h := &testutil.FakeHandler{
		OnExecute: func(_ context.Context, _ *router.Request) (*router.Result, error) {
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(30 * time.Millisecond)
			current.Add(-1)
			return &router.Result{}, nil
		},
	}

	results := runGraph(t, h, scheduler.Options{Workers: 2},
		testutil.NewAction(action.Build, "a"),
		testutil.NewAction(action.Build, "b"),
		testutil.NewAction(action.Build, "c"),
		testutil.NewAction(action.Build, "d"),
	)

	assert.NoError(t, results.Err())
	assert.Equal(t, int32(4), h.ExecuteCalls.Load())
	assert.LessOrEqual(t, peak.Load(), int32(2), "never more than Workers nodes in flight")
}

func TestRunPriorityOrder(t *testing.T) {
	var mu sync.Mutex
	var order []string
	h := &testutil.FakeHandler{
		OnExecute: func(_ context.Context, req *router.Request) (*router.Result, error) {
			mu.Lock()
			order = append(order, req.Action.Key())
			mu.Unlock()
			return &router.Result{}, nil
		},
	}

	// "small" is declared first but "big" unblocks two downstream nodes.
	results := runGraph(t, h, scheduler.Options{Workers: 1},
		testutil.NewAction(action.Build, "small"),
		testutil.NewAction(action.Build, "big"),
		testutil.NewAction(action.Deploy, "app", testutil.Dep(action.Build, "big")),
		testutil.NewAction(action.Test, "app", testutil.Dep(action.Deploy, "app")),
	)

	assert.NoError(t, results.Err())
	require.NotEmpty(t, order)
	assert.Equal(t, "build.big", order[0], "higher transitive dependent count runs first")
}

func TestRunDependencyOutputs(t *testing.T) {
	var mu sync.Mutex
	captured := make(map[string]map[string]map[string]any)
	h := &testutil.FakeHandler{
		OnExecute: func(_ context.Context, req *router.Request) (*router.Result, error) {
			mu.Lock()
			captured[req.Action.Key()] = req.DependencyOutputs
			mu.Unlock()
			if req.Action.Kind == action.Build {
				return &router.Result{Outputs: map[string]any{"image": "web:1"}}, nil
			}
			return &router.Result{}, nil
		},
	}

	results := runGraph(t, h, scheduler.Options{},
		testutil.NewAction(action.Build, "web"),
		testutil.NewAction(action.Deploy, "web", testutil.DepOutputs(action.Build, "web")),
		testutil.NewAction(action.Test, "web", testutil.Dep(action.Deploy, "web")),
	)
	require.NoError(t, results.Err())

	deployInputs := captured["deploy.web"]
	require.Contains(t, deployInputs, "build.web")
	assert.Equal(t, "web:1", deployInputs["build.web"]["image"])

	assert.Empty(t, captured["test.web"], "completion-only dependencies deliver no outputs")
}

func TestRunDeduplicatesConcurrentRuns(t *testing.T) {
	store := cache.NewMemory()
	flight := cache.NewFlight()
	h := &testutil.FakeHandler{Delay: 50 * time.Millisecond, Outputs: map[string]any{"n": 1}}

	a := testutil.NewAction(action.Build, "web")
	g := testutil.MustBuildGraph(t, a)
	versions := testutil.ResolveVersions(t, g)

	opts := scheduler.Options{Cache: store, Flight: flight}
	s1 := scheduler.New(testutil.NewTestRouter(h), opts)
	s2 := scheduler.New(testutil.NewTestRouter(h), opts)

	var wg sync.WaitGroup
	outcomes := make([]scheduler.ResultMap, 2)
	for i, s := range []*scheduler.Scheduler{s1, s2} {
		wg.Add(1)
		go func(i int, s *scheduler.Scheduler) {
			defer wg.Done()
			outcomes[i] = s.Run(context.Background(), g, versions)
		}(i, s)
	}
	wg.Wait()

	for _, results := range outcomes {
		state := results[a.Ref()].State
		assert.True(t, state == scheduler.Succeeded || state == scheduler.Cached)
	}
	assert.Equal(t, int32(1), h.ExecuteCalls.Load(),
		"concurrent runs over one flight group share a single invocation")
}

func TestRunResultDependenciesWired(t *testing.T) {
	results := runGraph(t, &testutil.FakeHandler{}, scheduler.Options{},
		testutil.NewAction(action.Build, "web"),
		testutil.NewAction(action.Deploy, "web", testutil.Dep(action.Build, "web")),
	)

	deploy := results[action.NewRef(action.Deploy, "web")]
	require.Contains(t, deploy.Dependencies, action.NewRef(action.Build, "web"))
	assert.Same(t, results[action.NewRef(action.Build, "web")],
		deploy.Dependencies[action.NewRef(action.Build, "web")])
}

func TestRunEmptyGraph(t *testing.T) {
	g, err := graph.Build(context.Background(), nil)
	require.NoError(t, err)
	versions := testutil.ResolveVersions(t, g)

	s := scheduler.New(testutil.NewTestRouter(&testutil.FakeHandler{}), scheduler.Options{})
	results := s.Run(context.Background(), g, versions)
	assert.Empty(t, results)
	assert.NoError(t, results.Err())
}
