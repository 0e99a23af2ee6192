package config

import (
	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/hcl/v2"

	"github.com/AmauryD/garden/internal/action"
)

// file mirrors the top-level structure of one HCL project file.
type file struct {
	Project *projectBlock `hcl:"project,block"`
	Actions []actionBlock `hcl:"action,block"`
}

// projectBlock carries project-wide settings.
type projectBlock struct {
	Name string `hcl:"name" validate:"required"`
}

// actionBlock is the raw declaration of a single action.
type actionBlock struct {
	Kind string `hcl:"kind,label" validate:"required,oneof=build deploy run test"`
	Name string `hcl:"name,label" validate:"required"`
	Type string `hcl:"type"       validate:"required"`

	// DependsOn lists dependencies required for completion only.
	DependsOn []string `hcl:"depends_on,optional" validate:"dive,required"`
	// NeedsOutputs lists dependencies whose executed outputs this action
	// consumes; each entry implies a dependency edge.
	NeedsOutputs []string `hcl:"needs_outputs,optional" validate:"dive,required"`

	Disabled bool   `hcl:"disabled,optional"`
	Timeout  string `hcl:"timeout,optional"`
	Source   string `hcl:"source,optional"`

	Spec *specBlock `hcl:"spec,block"`
}

// specBlock captures the provider-specific payload verbatim; the attributes
// are evaluated into a cty object without interpretation.
type specBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// Model is the loaded, validated project configuration.
type Model struct {
	// ProjectName is the name from the project block, when one is declared.
	ProjectName string
	// Actions holds the declared actions in declaration order.
	Actions []*action.Action
}

// validate is shared across loads; validator instances cache struct
// metadata.
var validate = validator.New(validator.WithRequiredStructEnabled())
