package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/AmauryD/garden/internal/ctxlog"
)

// File is a Store persisting one JSON document per key under a root
// directory, giving skip-if-unchanged behavior across runs on one machine.
type File struct {
	root string
}

// NewFile creates a file-backed store rooted at the given directory,
// creating it when missing. A "file://" prefix on the root is accepted and
// stripped.
func NewFile(root string) (*File, error) {
	cleanRoot := strings.TrimPrefix(root, "file://")
	if err := os.MkdirAll(cleanRoot, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory %q: %w", cleanRoot, err)
	}
	return &File{root: cleanRoot}, nil
}

func (f *File) path(key Key) string {
	return filepath.Join(f.root, key.String()+".json")
}

// Get reads and decodes the entry for a key, if one exists on disk.
func (f *File) Get(ctx context.Context, key Key) (*Entry, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry %s: %w", key, err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		// A corrupt entry is treated as absent; it will be rewritten on the
		// next successful execution of this version.
		ctxlog.FromContext(ctx).Warn("Discarding unreadable cache entry.", "key", key.String(), "error", err)
		return nil, false, nil
	}
	return &entry, true, nil
}

// Put encodes the entry to disk. O_EXCL keeps the first write for a key and
// turns later writes into no-ops.
func (f *File) Put(_ context.Context, key Key, entry *Entry) error {
	file, err := os.OpenFile(f.path(key), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("creating cache entry %s: %w", key, err)
	}

	encodeErr := json.NewEncoder(file).Encode(entry)
	closeErr := file.Close()
	if encodeErr != nil {
		return fmt.Errorf("writing cache entry %s: %w", key, encodeErr)
	}
	return closeErr
}

// InvalidateAll removes every entry file under the root.
func (f *File) InvalidateAll(_ context.Context) error {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(f.root, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
