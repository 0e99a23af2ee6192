package testutil

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/AmauryD/garden/internal/router"
)

// FakeHandler is a configurable router.Handler that counts invocations
// atomically, for asserting exactly how often the engine reached the status
// and execute paths.
type FakeHandler struct {
	// StatusCalls and ExecuteCalls count invocations of each operation.
	StatusCalls  atomic.Int32
	ExecuteCalls atomic.Int32

	// UpToDate makes GetStatus report the action as already satisfied.
	UpToDate bool
	// StatusOutputs are returned alongside an up-to-date status.
	StatusOutputs map[string]any
	// StatusErr makes GetStatus fail.
	StatusErr error

	// Outputs are returned by a successful Execute.
	Outputs map[string]any
	// Err makes Execute fail.
	Err error
	// Delay is slept inside Execute while honoring context cancellation,
	// for timeout and concurrency tests.
	Delay time.Duration

	// OnExecute, when set, replaces the canned Execute behavior entirely.
	OnExecute func(ctx context.Context, req *router.Request) (*router.Result, error)
}

func (h *FakeHandler) GetStatus(_ context.Context, _ *router.Request) (*router.Status, error) {
	h.StatusCalls.Add(1)
	if h.StatusErr != nil {
		return nil, h.StatusErr
	}
	return &router.Status{UpToDate: h.UpToDate, Outputs: h.StatusOutputs}, nil
}

func (h *FakeHandler) Execute(ctx context.Context, req *router.Request) (*router.Result, error) {
	h.ExecuteCalls.Add(1)
	if h.OnExecute != nil {
		return h.OnExecute(ctx, req)
	}
	if h.Delay > 0 {
		select {
		case <-time.After(h.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if h.Err != nil {
		return nil, h.Err
	}
	return &router.Result{Outputs: h.Outputs}, nil
}
