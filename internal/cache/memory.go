package cache

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/viccon/sturdyc"
)

// MemoryConfig configures the in-process sturdyc backend.
type MemoryConfig struct {
	// Capacity is the maximum number of entries across all shards.
	Capacity int
	// NumShards splits the keyspace to reduce lock contention.
	NumShards int
	// MaxTTL bounds how long sturdyc keeps any entry, including entries set without expiry.
	MaxTTL time.Duration
	// EvictionPercentage is the share of entries dropped when capacity is reached.
	EvictionPercentage int
}

// DefaultMemoryConfig returns settings sized for a single catalog instance.
func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		Capacity:           10000,
		NumShards:          64,
		MaxTTL:             24 * time.Hour,
		EvictionPercentage: 10,
	}
}

// Validate checks the configuration values.
func (c MemoryConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Capacity, validation.Required, validation.Min(1)),
		validation.Field(&c.NumShards, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxTTL, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.EvictionPercentage, validation.Required, validation.Min(1), validation.Max(100)),
	)
}

type memoryEntry struct {
	val   []byte
	until time.Time
}

// Memory is a Cache backed by a sharded sturdyc client. Each entry keeps its own
// deadline so the TTL passed to Set is a hard cutoff regardless of sturdyc's TTL.
type Memory struct {
	client *sturdyc.Client[memoryEntry]
	now    func() time.Time
}

var _ Cache = (*Memory)(nil)

// NewMemory creates an in-process cache.
func NewMemory(cfg MemoryConfig) (*Memory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client := sturdyc.New[memoryEntry](cfg.Capacity, cfg.NumShards, cfg.MaxTTL, cfg.EvictionPercentage)
	return &Memory{client: client, now: time.Now}, nil
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	e, ok := m.client.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	if expired(m.now(), e.until) {
		m.client.Delete(key)
		return nil, ErrMiss
	}
	return append([]byte(nil), e.val...), nil
}

func (m *Memory) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	m.client.Set(key, memoryEntry{
		val:   append([]byte(nil), val...),
		until: deadline(m.now(), ttl),
	})
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.client.Delete(key)
	return nil
}
