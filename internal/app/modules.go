package app

import (
	"github.com/AmauryD/garden/internal/router"
	"github.com/AmauryD/garden/modules/exec"
	"github.com/AmauryD/garden/modules/print"
)

// coreModules is the definitive list of handler modules compiled into the
// garden binary.
var coreModules = []router.Module{
	&exec.Module{},
	&print.Module{},
}
