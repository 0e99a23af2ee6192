package cache

import (
	"context"
	"time"

	"github.com/AmauryD/garden/internal/action"
	"github.com/AmauryD/garden/internal/version"
)

// Key addresses one cached result.
type Key struct {
	Kind    action.Kind
	Name    string
	Version version.Version
}

// NewKey builds a Key from an action ref and its resolved version.
func NewKey(ref action.Ref, v version.Version) Key {
	return Key{Kind: ref.Kind, Name: ref.Name, Version: v}
}

// String returns the canonical key form, e.g. "build.web@v-0a1b2c".
func (k Key) String() string {
	return k.Kind.String() + "." + k.Name + "@" + string(k.Version)
}

// Entry is a cached successful result.
type Entry struct {
	// Outputs is the successful output payload of the execution.
	Outputs map[string]any `json:"outputs"`
	// CompletedAt records when the version was first executed.
	CompletedAt time.Time `json:"completedAt"`
}

// Store is the result cache contract consumed by the scheduler.
//
// Implementations must be safe for concurrent use and must lock per key,
// never globally, so unrelated keys stay parallel.
type Store interface {
	// Get returns the entry for a key, and whether one exists.
	Get(ctx context.Context, key Key) (*Entry, bool, error)
	// Put stores an entry for a key. Once a key is written it is never
	// overwritten; later calls for the same key are no-ops.
	Put(ctx context.Context, key Key, entry *Entry) error
	// InvalidateAll discards every entry.
	InvalidateAll(ctx context.Context) error
}
