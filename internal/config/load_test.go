package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/AmauryD/garden/internal/action"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSingleFile(t *testing.T) {
	path := writeConfig(t, "garden.hcl", `
project {
  name = "shop"
}

action "build" "web" {
  type   = "exec"
  source = "./web"

  spec {
    command = ["make", "image"]
  }
}

action "deploy" "web" {
  type          = "exec"
  needs_outputs = ["build.web"]
  timeout       = "90s"

  spec {
    command = ["make", "rollout"]
  }
}
`)

	model, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "shop", model.ProjectName)
	require.Len(t, model.Actions, 2)

	build := model.Actions[0]
	assert.Equal(t, action.Build, build.Kind)
	assert.Equal(t, "web", build.Name)
	assert.Equal(t, "exec", build.Type)
	assert.Equal(t, "./web", build.Source)
	assert.Empty(t, build.Dependencies)
	command := build.Spec.GetAttr("command")
	assert.Equal(t, "make", command.Index(cty.NumberIntVal(0)).AsString())

	deploy := model.Actions[1]
	assert.Equal(t, 90*time.Second, deploy.Timeout)
	require.Len(t, deploy.Dependencies, 1)
	assert.Equal(t, action.NewRef(action.Build, "web"), deploy.Dependencies[0].Ref)
	assert.True(t, deploy.Dependencies[0].NeedsOutputs)
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b-deploy.hcl"), []byte(`
action "deploy" "web" {
  type       = "exec"
  depends_on = ["build.web"]
}
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a-build.hcl"), []byte(`
project {
  name = "shop"
}

action "build" "web" {
  type = "exec"
}
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	model, err := Load(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, model.Actions, 2)
	// Files contribute in sorted path order.
	assert.Equal(t, action.Build, model.Actions[0].Kind)
	assert.Equal(t, action.Deploy, model.Actions[1].Kind)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "garden.hcl", `
action "run" "db" {
  type     = "exec"
  disabled = true
}
`)

	model, err := Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, model.Actions, 1)

	a := model.Actions[0]
	assert.True(t, a.Disabled)
	assert.Zero(t, a.Timeout)
	assert.True(t, a.Spec.IsNull(), "an action without a spec block gets a null spec")
}

func TestLoadDependencyMerge(t *testing.T) {
	path := writeConfig(t, "garden.hcl", `
action "build" "web" {
  type = "exec"
}

action "deploy" "web" {
  type          = "exec"
  depends_on    = ["build.web"]
  needs_outputs = ["build.web"]
}
`)

	model, err := Load(context.Background(), path)
	require.NoError(t, err)

	deploy := model.Actions[1]
	require.Len(t, deploy.Dependencies, 1, "duplicate references collapse into one edge")
	assert.True(t, deploy.Dependencies[0].NeedsOutputs, "needs_outputs wins the merge")
}

func TestLoadErrors(t *testing.T) {
	t.Run("unknown kind label", func(t *testing.T) {
		path := writeConfig(t, "garden.hcl", `
action "compile" "web" {
  type = "exec"
}
`)
		_, err := Load(context.Background(), path)
		assert.Error(t, err)
	})

	t.Run("missing type", func(t *testing.T) {
		path := writeConfig(t, "garden.hcl", `
action "build" "web" {
  source = "./web"
}
`)
		_, err := Load(context.Background(), path)
		assert.Error(t, err)
	})

	t.Run("malformed dependency reference", func(t *testing.T) {
		path := writeConfig(t, "garden.hcl", `
action "build" "web" {
  type       = "exec"
  depends_on = ["not-a-ref"]
}
`)
		_, err := Load(context.Background(), path)
		assert.ErrorContains(t, err, "dependency")
	})

	t.Run("invalid timeout", func(t *testing.T) {
		path := writeConfig(t, "garden.hcl", `
action "build" "web" {
  type    = "exec"
  timeout = "soon"
}
`)
		_, err := Load(context.Background(), path)
		assert.ErrorContains(t, err, "timeout")
	})

	t.Run("conflicting project names", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.hcl"), []byte(`
project {
  name = "shop"
}
`), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "b.hcl"), []byte(`
project {
  name = "store"
}
`), 0o644))

		_, err := Load(context.Background(), dir)
		assert.ErrorContains(t, err, "conflicting project blocks")
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := Load(context.Background(), filepath.Join(t.TempDir(), "absent"))
		assert.Error(t, err)
	})

	t.Run("directory without hcl files", func(t *testing.T) {
		_, err := Load(context.Background(), t.TempDir())
		assert.ErrorContains(t, err, "no .hcl configuration files")
	})
}
