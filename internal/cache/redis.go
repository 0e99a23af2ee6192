package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces every cache key in the Redis keyspace.
const keyPrefix = "garden:result:"

// Redis is a Store backed by a Redis server, letting several machines share
// one result cache. Write-once semantics map onto SETNX, which is atomic per
// key on the server side.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a Redis-backed store from a connection URL, e.g.
// "redis://localhost:6379/0".
func NewRedis(url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	return &Redis{client: redis.NewClient(opts)}, nil
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Get fetches and decodes the entry for a key.
func (r *Redis) Get(ctx context.Context, key Key) (*Entry, bool, error) {
	data, err := r.client.Get(ctx, keyPrefix+key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry %s: %w", key, err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false, nil
	}
	return &entry, true, nil
}

// Put stores the entry under the key unless one already exists.
func (r *Redis) Put(ctx context.Context, key Key, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding cache entry %s: %w", key, err)
	}
	// 0 expiration: a version never goes stale by construction.
	return r.client.SetNX(ctx, keyPrefix+key.String(), data, 0).Err()
}

// InvalidateAll deletes every entry in the cache namespace.
func (r *Redis) InvalidateAll(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
