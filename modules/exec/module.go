// Package exec provides the "exec" handler: actions whose spec declares a
// shell command to run. It serves as the reference implementation of the
// handler contract for every action kind.
package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/AmauryD/garden/internal/action"
	"github.com/AmauryD/garden/internal/ctxlog"
	"github.com/AmauryD/garden/internal/router"
)

// Module implements the router.Module interface for this package.
type Module struct{}

// Register registers the exec handler for every action kind.
func (m *Module) Register(r *router.Registry) {
	h := &handler{}
	for _, kind := range action.Kinds() {
		r.Register(kind, "exec", h)
	}
}

type handler struct{}

// spec is the decoded payload of an exec action.
//
//	spec {
//	  command        = ["sh", "-c", "make build"]
//	  status_command = ["test", "-f", "dist/done"]  # optional
//	  env            = { FOO = "bar" }              # optional
//	}
type spec struct {
	command       []string
	statusCommand []string
	env           []string
}

// GetStatus runs the optional status_command; a zero exit code means the
// action's desired state is already satisfied. Actions without a
// status_command are never up to date.
func (h *handler) GetStatus(ctx context.Context, req *router.Request) (*router.Status, error) {
	s, err := decodeSpec(req.Action)
	if err != nil {
		return nil, err
	}
	if len(s.statusCommand) == 0 {
		return &router.Status{UpToDate: false}, nil
	}

	cmd := exec.CommandContext(ctx, s.statusCommand[0], s.statusCommand[1:]...)
	cmd.Env = append(os.Environ(), s.env...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Non-zero exit: not up to date, but not a handler failure.
			return &router.Status{UpToDate: false}, nil
		}
		return nil, fmt.Errorf("status command failed to start: %w", err)
	}

	return &router.Status{
		UpToDate: true,
		Outputs:  map[string]any{"log": strings.TrimSpace(string(out))},
	}, nil
}

// Execute runs the command, capturing stdout as the action's output.
func (h *handler) Execute(ctx context.Context, req *router.Request) (*router.Result, error) {
	logger := ctxlog.FromContext(ctx).With("action", req.Action.Key())

	s, err := decodeSpec(req.Action)
	if err != nil {
		return nil, err
	}
	if len(s.command) == 0 {
		return nil, errors.New("exec action spec must declare a non-empty command")
	}

	logger.Debug("Running command.", "command", strings.Join(s.command, " "))
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.command[0], s.command[1:]...)
	cmd.Env = append(os.Environ(), s.env...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("command failed: %w (stderr: %s)", err, strings.TrimSpace(stderr.String()))
	}

	return &router.Result{Outputs: map[string]any{
		"log": strings.TrimSpace(stdout.String()),
	}}, nil
}

// decodeSpec reads the command, status_command and env attributes from the
// opaque spec payload.
func decodeSpec(a *action.Action) (*spec, error) {
	if a.Spec == cty.NilVal || a.Spec.IsNull() || !a.Spec.Type().IsObjectType() {
		return nil, fmt.Errorf("exec action %s has no spec", a.Key())
	}

	s := &spec{}
	var err error
	if s.command, err = stringList(a.Spec, "command"); err != nil {
		return nil, fmt.Errorf("action %s: %w", a.Key(), err)
	}
	if s.statusCommand, err = stringList(a.Spec, "status_command"); err != nil {
		return nil, fmt.Errorf("action %s: %w", a.Key(), err)
	}

	if a.Spec.Type().HasAttribute("env") {
		env := a.Spec.GetAttr("env")
		if !env.IsNull() {
			for it := env.ElementIterator(); it.Next(); {
				k, v := it.Element()
				if v.Type() != cty.String {
					return nil, fmt.Errorf("action %s: env value for %q must be a string", a.Key(), k.AsString())
				}
				s.env = append(s.env, k.AsString()+"="+v.AsString())
			}
		}
	}
	return s, nil
}

// stringList extracts an optional list-of-strings attribute.
func stringList(obj cty.Value, name string) ([]string, error) {
	if !obj.Type().HasAttribute(name) {
		return nil, nil
	}
	val := obj.GetAttr(name)
	if val.IsNull() {
		return nil, nil
	}
	if !val.Type().IsTupleType() && !val.Type().IsListType() {
		return nil, fmt.Errorf("%s must be a list of strings", name)
	}

	var out []string
	for it := val.ElementIterator(); it.Next(); {
		_, v := it.Element()
		if v.Type() != cty.String {
			return nil, fmt.Errorf("%s must be a list of strings", name)
		}
		out = append(out, v.AsString())
	}
	return out, nil
}
