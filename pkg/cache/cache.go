// Package cache stores derived artifacts (decomposed cells, routing results)
// keyed by the fingerprint of the graph they were computed from.
//
// Three backends implement [Cache]:
//   - [FileCache]: one JSON file per entry under a local directory (CLI)
//   - [RedisCache]: a shared Redis instance (server deployments)
//   - [NullCache]: stores nothing (--no-cache, tests)
//
// Keys come from a [Keyer] so that callers never build key strings by hand.
// [NewScopedKeyer] prefixes every key, which separates tenants or graph
// versions sharing one Redis instance.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Default lifetimes for cached artifacts.
const (
	// CellsTTL keeps decompositions for a week; they only change with the graph.
	CellsTTL = 7 * 24 * time.Hour

	// RouteTTL keeps routing results for a day.
	RouteTTL = 24 * time.Hour
)

// Cache is a byte-oriented key/value store with optional expiry.
// A ttl of zero stores the value without expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// GetJSON decodes the value stored under key into v. A missing or
// undecodable entry yields ErrCacheMiss.
func GetJSON(ctx context.Context, c Cache, key string, v any) error {
	data, ok, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCacheMiss
	}
	if err := json.Unmarshal(data, v); err != nil {
		_ = c.Delete(ctx, key)
		return ErrCacheMiss
	}
	return nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}
