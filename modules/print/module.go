// Package print provides the "print" handler: a side-effect-free action type
// that logs its spec attributes and the outputs of the dependencies it
// consumes. Useful for wiring checks and as a minimal handler example.
package print

import (
	"context"
	"fmt"
	"sort"

	"github.com/zclconf/go-cty/cty"

	"github.com/AmauryD/garden/internal/action"
	"github.com/AmauryD/garden/internal/ctxlog"
	"github.com/AmauryD/garden/internal/router"
)

// Module implements the router.Module interface for this package.
type Module struct{}

// Register registers the print handler for every action kind.
func (m *Module) Register(r *router.Registry) {
	h := &handler{}
	for _, kind := range action.Kinds() {
		r.Register(kind, "print", h)
	}
}

type handler struct{}

// GetStatus never reports up to date; printing is repeated every run.
func (h *handler) GetStatus(context.Context, *router.Request) (*router.Status, error) {
	return &router.Status{UpToDate: false}, nil
}

// Execute logs the spec attributes in sorted order, then the dependency
// outputs that were passed through.
func (h *handler) Execute(ctx context.Context, req *router.Request) (*router.Result, error) {
	logger := ctxlog.FromContext(ctx).With("action", req.Action.Key())

	lines := specLines(req.Action.Spec)
	for _, line := range lines {
		logger.Info(line)
	}

	depKeys := make([]string, 0, len(req.DependencyOutputs))
	for k := range req.DependencyOutputs {
		depKeys = append(depKeys, k)
	}
	sort.Strings(depKeys)
	for _, k := range depKeys {
		logger.Info("Dependency outputs.", "dependency", k, "outputs", req.DependencyOutputs[k])
	}

	return &router.Result{Outputs: map[string]any{"lines": len(lines)}}, nil
}

// specLines renders the spec's primitive attributes as "key = value" lines,
// sorted by key.
func specLines(spec cty.Value) []string {
	if spec == cty.NilVal || spec.IsNull() || !spec.Type().IsObjectType() {
		return nil
	}

	types := spec.Type().AttributeTypes()
	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	sort.Strings(names)

	var lines []string
	for _, name := range names {
		v := spec.GetAttr(name)
		if v.IsNull() || !v.Type().IsPrimitiveType() {
			continue
		}
		switch v.Type() {
		case cty.String:
			lines = append(lines, fmt.Sprintf("%s = %q", name, v.AsString()))
		case cty.Bool:
			lines = append(lines, fmt.Sprintf("%s = %t", name, v.True()))
		case cty.Number:
			f, _ := v.AsBigFloat().Float64()
			lines = append(lines, fmt.Sprintf("%s = %g", name, f))
		}
	}
	return lines
}
