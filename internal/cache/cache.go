package cache

import (
	"context"
	"errors"
	"time"
)

// Package cache contains the key/value cache port used by the catalog and its adapters.
// Values are opaque bytes; callers own the encoding.

// ErrMiss is returned by Get when the key is absent or its TTL has elapsed.
var ErrMiss = errors.New("cache miss")

// Cache is a key/value store with per-entry TTL.
// Expired entries must be indistinguishable from entries that were never set.
type Cache interface {
	// Get returns the stored value or ErrMiss.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores val under key. A ttl <= 0 stores the value without expiry.
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Noop never stores anything; every Get is a miss.
type Noop struct{}

var _ Cache = Noop{}

func (Noop) Get(context.Context, string) ([]byte, error) { return nil, ErrMiss }

func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (Noop) Delete(context.Context, string) error { return nil }

// deadline returns the absolute expiry for ttl, zero for no expiry.
func deadline(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}

func expired(now, until time.Time) bool {
	return !until.IsZero() && !now.Before(until)
}
