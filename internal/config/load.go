package config

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/AmauryD/garden/internal/action"
	"github.com/AmauryD/garden/internal/ctxlog"
)

// Load reads the project configuration from a single .hcl file or a
// directory tree of .hcl files.
func Load(ctx context.Context, path string) (*Model, error) {
	logger := ctxlog.FromContext(ctx)

	paths, err := findConfigFiles(path)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no .hcl configuration files found at %q", path)
	}
	logger.Debug("Loading project configuration.", "files", len(paths))

	parser := hclparse.NewParser()
	model := &Model{}
	for _, p := range paths {
		hclFile, diags := parser.ParseHCLFile(p)
		if diags.HasErrors() {
			return nil, fmt.Errorf("parsing %s: %w", p, diags)
		}
		if err := decodeFile(p, hclFile.Body, model); err != nil {
			return nil, err
		}
	}

	logger.Debug("Project configuration loaded.",
		"project", model.ProjectName, "actions", len(model.Actions))
	return model, nil
}

// findConfigFiles resolves a path to the sorted list of .hcl files beneath
// it. A direct file path is returned as-is.
func findConfigFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration path: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var paths []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".hcl") {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// decodeFile translates one parsed file into the model, appending its
// actions in block order.
func decodeFile(path string, body hcl.Body, model *Model) error {
	var f file
	if diags := gohcl.DecodeBody(body, nil, &f); diags.HasErrors() {
		return fmt.Errorf("decoding %s: %w", path, diags)
	}

	if f.Project != nil {
		if err := validate.Struct(f.Project); err != nil {
			return fmt.Errorf("invalid project block in %s: %w", path, err)
		}
		if model.ProjectName != "" && model.ProjectName != f.Project.Name {
			return fmt.Errorf("conflicting project blocks: %q and %q", model.ProjectName, f.Project.Name)
		}
		model.ProjectName = f.Project.Name
	}

	for i := range f.Actions {
		a, err := translateAction(&f.Actions[i])
		if err != nil {
			return fmt.Errorf("in %s: %w", path, err)
		}
		model.Actions = append(model.Actions, a)
	}
	return nil
}

// translateAction validates one declaration and converts it into the
// engine's action record.
func translateAction(block *actionBlock) (*action.Action, error) {
	if err := validate.Struct(block); err != nil {
		return nil, fmt.Errorf("invalid action %q %q: %w", block.Kind, block.Name, err)
	}

	kind, err := action.ParseKind(block.Kind)
	if err != nil {
		return nil, err
	}
	a := &action.Action{
		Kind:     kind,
		Type:     block.Type,
		Name:     block.Name,
		Disabled: block.Disabled,
		Source:   block.Source,
		Spec:     cty.NullVal(cty.EmptyObject),
	}
	key := a.Key()

	if block.Timeout != "" {
		timeout, err := time.ParseDuration(block.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout for action %s: %w", key, err)
		}
		a.Timeout = timeout
	}

	deps, err := translateDependencies(key, block.DependsOn, block.NeedsOutputs)
	if err != nil {
		return nil, err
	}
	a.Dependencies = deps

	if block.Spec != nil {
		spec, err := evalSpec(block.Spec.Body)
		if err != nil {
			return nil, fmt.Errorf("invalid spec for action %s: %w", key, err)
		}
		a.Spec = spec
	}
	return a, nil
}

// translateDependencies merges depends_on and needs_outputs into dependency
// edges, deduplicating references that appear in both (needs_outputs wins).
func translateDependencies(key string, dependsOn, needsOutputs []string) ([]action.Dependency, error) {
	parse := func(raw string) (action.Ref, error) {
		ref, err := action.ParseRef(raw)
		if err != nil {
			return action.Ref{}, fmt.Errorf("invalid dependency of action %s: %w", key, err)
		}
		return ref, nil
	}

	index := make(map[action.Ref]int)
	var deps []action.Dependency
	for _, raw := range dependsOn {
		ref, err := parse(raw)
		if err != nil {
			return nil, err
		}
		if _, ok := index[ref]; ok {
			continue
		}
		index[ref] = len(deps)
		deps = append(deps, action.Dependency{Ref: ref})
	}
	for _, raw := range needsOutputs {
		ref, err := parse(raw)
		if err != nil {
			return nil, err
		}
		if i, ok := index[ref]; ok {
			deps[i].NeedsOutputs = true
			continue
		}
		index[ref] = len(deps)
		deps = append(deps, action.Dependency{Ref: ref, NeedsOutputs: true})
	}
	return deps, nil
}

// evalSpec evaluates the spec block's attributes into a cty object. Sorted
// attribute construction keeps the payload deterministic for fingerprinting.
func evalSpec(body hcl.Body) (cty.Value, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return cty.NilVal, diags
	}
	if len(attrs) == 0 {
		return cty.EmptyObjectVal, nil
	}

	values := make(map[string]cty.Value, len(attrs))
	for name, attr := range attrs {
		v, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return cty.NilVal, diags
		}
		values[name] = v
	}
	return cty.ObjectVal(values), nil
}
