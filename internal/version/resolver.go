package version

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/AmauryD/garden/internal/action"
	"github.com/AmauryD/garden/internal/ctxlog"
	"github.com/AmauryD/garden/internal/graph"
)

// Version is the opaque, stable content version of an action.
type Version string

// Fingerprinter supplies the action's own input fingerprint (source tree
// state plus spec serialization). Implementations must be deterministic for
// identical inputs.
type Fingerprinter interface {
	Fingerprint(ctx context.Context, a *action.Action) (string, error)
}

// Resolver annotates every node of a graph with its version.
type Resolver struct {
	fp Fingerprinter
}

// NewResolver creates a resolver backed by the given fingerprint provider.
func NewResolver(fp Fingerprinter) *Resolver {
	return &Resolver{fp: fp}
}

// Versions is the result of one resolution pass. A node has either a version
// or an error, never both. A node whose own fingerprint failed, or any of
// whose dependencies failed, carries an error; independent branches are
// unaffected.
type Versions struct {
	versions map[action.Ref]Version
	errs     map[action.Ref]error
}

// Version returns the computed version for the given ref, if any.
func (v *Versions) Version(ref action.Ref) (Version, bool) {
	ver, ok := v.versions[ref]
	return ver, ok
}

// Err returns the resolution error for the given ref, or nil.
func (v *Versions) Err(ref action.Ref) error {
	return v.errs[ref]
}

// Resolve processes the graph in topological order so every dependency's
// version is available when its consumers are computed. Fingerprint failures
// are recorded per node rather than aborting the pass: the scheduler fails
// the affected node and skips its dependents, while disjoint subtrees still
// execute.
func (r *Resolver) Resolve(ctx context.Context, g *graph.Graph) *Versions {
	logger := ctxlog.FromContext(ctx)
	out := &Versions{
		versions: make(map[action.Ref]Version, g.Len()),
		errs:     make(map[action.Ref]error),
	}

	for _, n := range g.TopologicalOrder() {
		ref := n.Ref()

		if err := r.dependencyError(g, ref, out); err != nil {
			out.errs[ref] = err
			continue
		}

		own, err := r.fp.Fingerprint(ctx, n.Action)
		if err != nil {
			logger.Debug("Resolve: fingerprint unavailable.", "action", ref.String(), "error", err)
			out.errs[ref] = &FingerprintUnavailableError{Ref: ref, Cause: err}
			continue
		}

		out.versions[ref] = combine(own, g.Dependencies(ref), out.versions)
	}

	logger.Debug("Resolve: version resolution complete.",
		"resolved", len(out.versions), "failed", len(out.errs))
	return out
}

// dependencyError reports the first dependency (in key order) whose version
// could not be resolved.
func (r *Resolver) dependencyError(g *graph.Graph, ref action.Ref, out *Versions) error {
	for _, depRef := range g.Dependencies(ref) {
		if depErr := out.errs[depRef]; depErr != nil {
			return &DependencyVersionError{Ref: ref, Dependency: depRef, Cause: depErr}
		}
	}
	return nil
}

// combine hashes the action's own fingerprint together with the versions of
// its direct dependencies. Dependency entries are consumed in lexicographic
// key order (the order Dependencies returns), never in declaration or map
// iteration order, so the result is independent of how the action was
// declared.
func combine(ownFingerprint string, deps []action.Ref, versions map[action.Ref]Version) Version {
	h := sha256.New()
	h.Write([]byte(ownFingerprint))
	for _, depRef := range deps {
		h.Write([]byte{0})
		h.Write([]byte(depRef.String()))
		h.Write([]byte{'='})
		h.Write([]byte(versions[depRef]))
	}
	return Version("v-" + hex.EncodeToString(h.Sum(nil))[:24])
}
