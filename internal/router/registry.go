package router

import (
	"fmt"
	"log/slog"

	"github.com/AmauryD/garden/internal/action"
)

// Module is the interface handler packages implement to contribute their
// handlers to a registry at startup.
type Module interface {
	Register(r *Registry)
}

// handlerKey identifies one registered handler slot.
type handlerKey struct {
	kind action.Kind
	typ  string
}

// Registry holds the handlers registered for a single application instance.
type Registry struct {
	handlers map[handlerKey]Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[handlerKey]Handler)}
}

// Register adds a handler for a (kind, type) pair. Registering the same pair
// twice is a programmer error and panics, matching startup-time validation
// semantics.
func (r *Registry) Register(kind action.Kind, typ string, h Handler) {
	key := handlerKey{kind: kind, typ: typ}
	if _, exists := r.handlers[key]; exists {
		panic(fmt.Sprintf("handler for %s actions of type %q already registered", kind, typ))
	}
	slog.Debug("Registering action handler.", "kind", kind.String(), "type", typ)
	r.handlers[key] = h
}

// Lookup returns the handler for a (kind, type) pair, or an
// UnsupportedActionTypeError when none is registered.
func (r *Registry) Lookup(kind action.Kind, typ string) (Handler, error) {
	h, ok := r.handlers[handlerKey{kind: kind, typ: typ}]
	if !ok {
		return nil, &UnsupportedActionTypeError{Kind: kind, Type: typ}
	}
	return h, nil
}
