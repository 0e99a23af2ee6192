package router

import (
	"context"
	"fmt"

	"github.com/AmauryD/garden/internal/ctxlog"
)

// Router invokes the correct handler for a node and normalizes everything
// that can go wrong into typed errors. It holds no state across invocations
// and performs no caching.
type Router struct {
	registry *Registry
}

// New creates a router over the given registry.
func New(registry *Registry) *Router {
	return &Router{registry: registry}
}

// GetStatus runs the handler's idempotent status check.
func (r *Router) GetStatus(ctx context.Context, req *Request) (status *Status, err error) {
	h, err := r.registry.Lookup(req.Action.Kind, req.Action.Type)
	if err != nil {
		return nil, err
	}

	defer r.recoverInvocation(ctx, req, "getStatus", &err)

	status, err = h.GetStatus(ctx, req)
	if err != nil {
		return nil, &HandlerExecutionError{Ref: req.Action.Ref(), Op: "getStatus", Cause: err}
	}
	return status, nil
}

// Dispatch runs the handler's execute operation.
func (r *Router) Dispatch(ctx context.Context, req *Request) (result *Result, err error) {
	h, err := r.registry.Lookup(req.Action.Kind, req.Action.Type)
	if err != nil {
		return nil, err
	}

	ctxlog.FromContext(ctx).Debug("Dispatching action to handler.",
		"action", req.Action.Key(), "type", req.Action.Type, "version", string(req.Version))

	defer r.recoverInvocation(ctx, req, "execute", &err)

	result, err = h.Execute(ctx, req)
	if err != nil {
		return nil, &HandlerExecutionError{Ref: req.Action.Ref(), Op: "execute", Cause: err}
	}
	if result == nil {
		result = &Result{}
	}
	return result, nil
}

// recoverInvocation converts a handler panic into a HandlerExecutionError so
// a misbehaving provider cannot take down the whole run.
func (r *Router) recoverInvocation(ctx context.Context, req *Request, op string, err *error) {
	if rec := recover(); rec != nil {
		ctxlog.FromContext(ctx).Error("Handler panicked.",
			"action", req.Action.Key(), "op", op, "panic", rec)
		*err = &HandlerExecutionError{
			Ref:   req.Action.Ref(),
			Op:    op,
			Cause: fmt.Errorf("handler panicked: %v", rec),
		}
	}
}
