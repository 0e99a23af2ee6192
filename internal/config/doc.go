// Package config loads declared actions from HCL project files.
//
// A project is one or more .hcl files declaring action blocks:
//
//	action "build" "web" {
//	  type       = "exec"
//	  depends_on = ["build.base"]
//	  source     = "web"
//	  spec {
//	    command = ["sh", "-c", "make"]
//	  }
//	}
//
// The loader parses and validates the declarations and translates them into
// the ordered action list the graph builder consumes. Declaration order is
// file order (sorted by path) then block order within each file.
package config
