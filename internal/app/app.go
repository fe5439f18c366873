package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"cdox/internal/cache"
	"cdox/internal/config"
	"cdox/internal/database"
	"cdox/internal/database/migration"
	"cdox/internal/repository/postgres"
	"cdox/internal/service"
	"cdox/internal/storage"
)

// Deps are the long-lived components shared by the API server and the CLI.
type Deps struct {
	DB      *sql.DB
	Cache   cache.Cache
	Service service.DocumentService

	bolt    *cache.Bolt
	closers []io.Closer
}

// PurgeExpired drops expired entries from a persistent cache. It is a no-op
// for the other backends.
func (d *Deps) PurgeExpired() (int, error) {
	if d.bolt == nil {
		return 0, nil
	}
	return d.bolt.Purge()
}

// Close releases the cache file and the database pool.
func (d *Deps) Close() error {
	var first error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Bootstrap wires the document service: Postgres content store with its schema
// ensured, MinIO file resolver and the configured cache. A nil reg skips metrics.
func Bootstrap(ctx context.Context, cfg *config.AppConfig, log *slog.Logger, reg prometheus.Registerer) (*Deps, error) {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	deps := &Deps{DB: db, closers: []io.Closer{db}}

	if reg != nil {
		if err := reg.Register(collectors.NewDBStatsCollector(db, cfg.Database.Name)); err != nil {
			_ = deps.Close()
			return nil, fmt.Errorf("register database metrics: %w", err)
		}
	}

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		_ = deps.Close()
		return nil, err
	}

	objStore, err := storage.NewMinIO(ctx, cfg.MinIO)
	if err != nil {
		_ = deps.Close()
		return nil, fmt.Errorf("initialize object storage: %w", err)
	}
	resolver := storage.NewResolver(objStore, cfg.MinIO.URLExpiry, cfg.MinIO.PublicBaseURL)

	c, closer, err := NewCache(cfg.Cache, reg)
	if err != nil {
		_ = deps.Close()
		return nil, fmt.Errorf("initialize cache: %w", err)
	}
	if closer != nil {
		deps.closers = append(deps.closers, closer)
	}
	if b, ok := closer.(*cache.Bolt); ok {
		deps.bolt = b
	}
	deps.Cache = c

	store := postgres.NewCatalogPostgres(db, cfg.Location())
	deps.Service = service.NewDocumentService(store, store, resolver, c, service.Options{
		TTL:      cfg.Cache.TTL,
		Logger:   log,
		Location: cfg.Location(),
	})
	return deps, nil
}

// NewCache builds the backend selected by cfg.Backend. The returned closer is
// non-nil only for backends holding a file. A nil reg skips instrumentation.
func NewCache(cfg config.CacheConfig, reg prometheus.Registerer) (cache.Cache, io.Closer, error) {
	var (
		c      cache.Cache
		closer io.Closer
	)
	switch cfg.Backend {
	case config.CacheMemory:
		// MaxTTL also bounds the generation token, which is set without expiry.
		mcfg := cache.DefaultMemoryConfig()
		mcfg.Capacity = cfg.Capacity
		mcfg.NumShards = cfg.Shards
		mcfg.EvictionPercentage = cfg.EvictionPercentage
		if cfg.TTL > mcfg.MaxTTL {
			mcfg.MaxTTL = cfg.TTL
		}
		mem, err := cache.NewMemory(mcfg)
		if err != nil {
			return nil, nil, err
		}
		c = mem
	case config.CacheBolt:
		b, err := cache.NewBolt(cfg.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		c, closer = b, b
	case config.CacheNone:
		c = cache.Noop{}
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}

	if reg == nil {
		return c, closer, nil
	}
	inst, err := cache.NewInstrumented(c, reg)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, nil, fmt.Errorf("register cache metrics: %w", err)
	}
	return inst, closer, nil
}
