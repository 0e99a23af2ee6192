// Package app assembles the engine for one process: logger, handler
// registry, configuration, fingerprinting, cache backend and scheduler, and
// exposes the high-level Validate and Run operations the CLI calls.
package app
