package fingerprint

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"path"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"

	"github.com/AmauryD/garden/internal/action"
	"github.com/AmauryD/garden/internal/ctxlog"
)

// Local computes fingerprints from an action's spec payload and its source
// tree on a billy filesystem rooted at the project directory.
type Local struct {
	fs billy.Filesystem
}

// NewLocal creates a Local provider reading sources from the given
// filesystem.
func NewLocal(fs billy.Filesystem) *Local {
	return &Local{fs: fs}
}

// Fingerprint hashes the action's serialized spec followed by every file
// under the action's source path, in lexicographic path order. An action
// without a source path is fingerprinted from its spec alone.
func (l *Local) Fingerprint(ctx context.Context, a *action.Action) (string, error) {
	h := sha256.New()

	specJSON, err := marshalSpec(a.Spec)
	if err != nil {
		return "", fmt.Errorf("serializing spec of action %s: %w", a.Key(), err)
	}
	h.Write(specJSON)

	if a.Source != "" {
		if err := l.hashTree(ctx, h, a); err != nil {
			return "", err
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// hashTree writes every regular file under the action's source directory
// into the hash as "relative/path\x00contents\x00", in sorted path order.
func (l *Local) hashTree(ctx context.Context, h hash.Hash, a *action.Action) error {
	logger := ctxlog.FromContext(ctx)

	if _, err := l.fs.Stat(a.Source); err != nil {
		return fmt.Errorf("reading source tree of action %s at %q: %w", a.Key(), a.Source, err)
	}
	files, err := l.listFiles(a.Source)
	if err != nil {
		return fmt.Errorf("reading source tree of action %s at %q: %w", a.Key(), a.Source, err)
	}
	sort.Strings(files)
	logger.Debug("Fingerprint: hashing source tree.", "action", a.Key(), "files", len(files))

	for _, p := range files {
		f, err := l.fs.Open(p)
		if err != nil {
			return fmt.Errorf("reading source file %q of action %s: %w", p, a.Key(), err)
		}
		h.Write([]byte(p))
		h.Write([]byte{0})
		_, copyErr := io.Copy(h, f)
		closeErr := f.Close()
		if copyErr != nil {
			return fmt.Errorf("hashing source file %q of action %s: %w", p, a.Key(), copyErr)
		}
		if closeErr != nil {
			return closeErr
		}
		h.Write([]byte{0})
	}
	return nil
}

// listFiles collects the paths of all regular files under root, recursively.
func (l *Local) listFiles(root string) ([]string, error) {
	entries, err := l.fs.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		p := path.Join(root, entry.Name())
		if entry.IsDir() {
			sub, err := l.listFiles(p)
			if err != nil {
				return nil, err
			}
			files = append(files, sub...)
			continue
		}
		if entry.Mode().IsRegular() {
			files = append(files, p)
		}
	}
	return files, nil
}

// marshalSpec serializes a spec payload deterministically. ctyjson emits
// object attributes in sorted key order, so identical values always produce
// identical bytes.
func marshalSpec(spec cty.Value) ([]byte, error) {
	if spec == cty.NilVal || spec.IsNull() {
		return []byte("null"), nil
	}
	return ctyjson.Marshal(spec, spec.Type())
}
