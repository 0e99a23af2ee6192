package cache

import (
	"golang.org/x/sync/singleflight"
)

// Flight collapses concurrent executions of the same uncached version into a
// single in-flight invocation. The second caller for a key waits for the
// first caller's result instead of duplicating work. This is the
// at-most-once-per-version guarantee the caching strategy depends on:
// singleflight locks per key, so unrelated keys proceed in parallel.
type Flight struct {
	group singleflight.Group
}

// NewFlight creates an empty dedup group.
func NewFlight() *Flight {
	return &Flight{}
}

// Do runs fn for the key unless an invocation for the same key is already in
// flight, in which case it waits and returns that invocation's result.
// shared reports whether the result was given to more than one caller.
func (f *Flight) Do(key Key, fn func() (*Entry, error)) (entry *Entry, shared bool, err error) {
	v, err, shared := f.group.Do(key.String(), func() (any, error) {
		return fn()
	})
	if err != nil {
		return nil, shared, err
	}
	return v.(*Entry), shared, nil
}
