// Package router dispatches graph nodes to provider handlers.
//
// The Registry maps an action's (kind, type) pair to a registered handler.
// The Router is a stateless translation layer on top of it: it looks up the
// handler, invokes the requested operation, and wraps anything the handler
// raises (errors and panics alike) into a HandlerExecutionError carrying the
// action identity. All side effects live inside the handlers.
package router
