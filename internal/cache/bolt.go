package cache

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var boltBucket = []byte("cdox_cache")

// Bolt is a persistent single-node Cache stored in a bbolt file.
// Each value is framed with an 8-byte big-endian unix-nano deadline (0 = no expiry).
type Bolt struct {
	db  *bolt.DB
	now func() time.Time
}

var _ Cache = (*Bolt)(nil)

// NewBolt opens (or creates) the cache file at path.
func NewBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt cache: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create bolt bucket: %w", err)
	}
	return &Bolt{db: db, now: time.Now}, nil
}

func (b *Bolt) Get(_ context.Context, key string) ([]byte, error) {
	var (
		out   []byte
		stale bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(boltBucket).Get([]byte(key))
		if len(raw) < 8 {
			return nil
		}
		var until time.Time
		if ns := int64(binary.BigEndian.Uint64(raw[:8])); ns != 0 {
			until = time.Unix(0, ns)
		}
		if expired(b.now(), until) {
			stale = true
			return nil
		}
		// raw is only valid inside the transaction
		out = append([]byte{}, raw[8:]...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if stale {
		_ = b.Delete(context.Background(), key)
		return nil, ErrMiss
	}
	if out == nil {
		return nil, ErrMiss
	}
	return out, nil
}

func (b *Bolt) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	buf := make([]byte, 8+len(val))
	if until := deadline(b.now(), ttl); !until.IsZero() {
		binary.BigEndian.PutUint64(buf[:8], uint64(until.UnixNano()))
	}
	copy(buf[8:], val)
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Put([]byte(key), buf)
	})
}

func (b *Bolt) Delete(_ context.Context, key string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Delete([]byte(key))
	})
}

// Purge removes every expired entry and returns how many were dropped.
func (b *Bolt) Purge() (int, error) {
	now := b.now()
	removed := 0
	err := b.db.Update(func(tx *bolt.Tx) error {
		bk := tx.Bucket(boltBucket)
		var stale [][]byte
		err := bk.ForEach(func(k, v []byte) error {
			if len(v) < 8 {
				stale = append(stale, append([]byte{}, k...))
				return nil
			}
			ns := int64(binary.BigEndian.Uint64(v[:8]))
			if ns != 0 && !now.Before(time.Unix(0, ns)) {
				stale = append(stale, append([]byte{}, k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := bk.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	return removed, err
}

// Close releases the underlying file.
func (b *Bolt) Close() error {
	return b.db.Close()
}
