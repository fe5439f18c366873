package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"cdox/internal/cache"
	"cdox/internal/model"
	"cdox/internal/repository"
)

// Cache operation names. They are the <operation> segment of every cache key.
const (
	OpFilteredDocuments = "filtered_documents"
	OpDocumentYears     = "document_years"
	OpDocumentTypes     = "document_types"
)

// GenerationKey holds the token embedded in every cache key. Replacing it
// makes every previously cached result unreachable.
const GenerationKey = cache.KeyPrefix + "_generation"

// DefaultTTL is the lifetime of cached results.
const DefaultTTL = time.Hour

// SkippedEntry describes a catalog entry left out of a listing.
type SkippedEntry struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

// FilterResult is a listing together with the entries that could not be built.
// Skipped is only populated when the listing was loaded from the content store.
type FilterResult struct {
	Documents []model.Document `json:"data"`
	Skipped   []SkippedEntry   `json:"skipped,omitempty"`
}

// FormOptions configures the data returned for a filter form.
type FormOptions struct {
	// Types restricts the selectable types; empty offers every type.
	Types []string
	// InitialCurrentYear preselects the current calendar year.
	InitialCurrentYear bool
}

// FilterForm is everything a filter form needs for its first render.
type FilterForm struct {
	Types        []model.DocumentType `json:"types"`
	Years        []model.YearCount    `json:"years"`
	SelectedYear *int                 `json:"selected_year"`
	Documents    []model.Document     `json:"documents"`
}

// DocumentService is the cached read layer over the catalog.
type DocumentService interface {
	// GetFilteredDocuments lists published documents matching spec, sorted by
	// publication date in spec.Order(). The result is never nil.
	GetFilteredDocuments(ctx context.Context, spec model.FilterSpec) ([]model.Document, error)

	// FilterDocuments is GetFilteredDocuments plus diagnostics for skipped entries.
	FilterDocuments(ctx context.Context, spec model.FilterSpec) (*FilterResult, error)

	// GetDocumentYears returns publication counts per year ordered by year.
	GetDocumentYears(ctx context.Context, order model.Order) ([]model.YearCount, error)

	// GetDocument returns one document, or model.ErrNotFound.
	GetDocument(ctx context.Context, id string) (*model.Document, error)

	// IncrementDownloadCount adds one download and invalidates cached listings.
	// A missing id returns model.ErrNotFound and leaves the cache untouched.
	IncrementDownloadCount(ctx context.Context, id string) error

	// GetDocumentTypes lists taxonomy terms with their usage counts.
	GetDocumentTypes(ctx context.Context, q repository.TypeQuery) ([]model.DocumentType, error)

	// GetFilterForm gathers types, years and the initial listing of a filter form.
	GetFilterForm(ctx context.Context, opts FormOptions) (*FilterForm, error)

	// InvalidateAll drops every cached result.
	InvalidateAll(ctx context.Context) error
}

// Options tunes a documentService. Zero values select defaults.
type Options struct {
	TTL      time.Duration
	Logger   *slog.Logger
	Location *time.Location
	Now      func() time.Time
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store    repository.ContentStore
	counters repository.CounterStore
	resolver model.FileResolver
	cache    cache.Cache
	ttl      time.Duration
	log      *slog.Logger
	loc      *time.Location
	now      func() time.Time
	tracer   trace.Tracer
}

// NewDocumentService constructs a new DocumentService. A nil cache disables caching.
func NewDocumentService(
	store repository.ContentStore,
	counters repository.CounterStore,
	resolver model.FileResolver,
	c cache.Cache,
	opts Options,
) DocumentService {
	if c == nil {
		c = cache.Noop{}
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &documentService{
		store:    store,
		counters: counters,
		resolver: resolver,
		cache:    c,
		ttl:      opts.TTL,
		log:      opts.Logger.With("component", "document_service"),
		loc:      opts.Location,
		now:      opts.Now,
		tracer:   otel.Tracer("cdox/internal/service"),
	}
}

func (s *documentService) GetFilteredDocuments(ctx context.Context, spec model.FilterSpec) ([]model.Document, error) {
	res, err := s.FilterDocuments(ctx, spec)
	if err != nil {
		return nil, err
	}
	return res.Documents, nil
}

func (s *documentService) FilterDocuments(ctx context.Context, spec model.FilterSpec) (*FilterResult, error) {
	ctx, span := s.tracer.Start(ctx, "DocumentService.FilterDocuments")
	defer span.End()

	var skipped []SkippedEntry
	docs, hit, err := cached(ctx, s, OpFilteredDocuments, []any{spec.KeyParts()}, func(ctx context.Context) ([]model.Document, error) {
		docs, sk, err := s.loadDocuments(ctx, spec)
		skipped = sk
		return docs, err
	})
	span.SetAttributes(attribute.Bool("cache.hit", hit))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if docs == nil {
		docs = make([]model.Document, 0)
	}
	if hit {
		s.relink(ctx, docs)
	}
	for i := range docs {
		docs[i].PublicationDate = docs[i].PublicationDate.In(s.loc)
	}
	span.SetAttributes(attribute.Int("documents.count", len(docs)), attribute.Int("documents.skipped", len(skipped)))
	return &FilterResult{Documents: docs, Skipped: skipped}, nil
}

func (s *documentService) loadDocuments(ctx context.Context, spec model.FilterSpec) ([]model.Document, []SkippedEntry, error) {
	q := repository.EntryQuery{
		Kind:   model.DocumentKind,
		Status: model.StatusPublished,
		Types:  spec.Types(),
		Order:  spec.Order(),
	}
	if y, ok := spec.Year(); ok {
		q.Year = &y
	}

	entries, err := s.store.QueryEntries(ctx, q)
	if err != nil {
		return nil, nil, fmt.Errorf("query entries: %w", err)
	}

	docs := make([]model.Document, 0, len(entries))
	var skipped []SkippedEntry
	for _, e := range entries {
		doc, err := model.FromCatalogEntry(ctx, e, s.resolver)
		if err != nil {
			if !errors.Is(err, model.ErrInvalidEntity) {
				return nil, nil, err
			}
			s.log.WarnContext(ctx, "data_integrity_anomaly",
				"entry_id", e.ID,
				"kind", e.Kind,
				"error", err.Error(),
			)
			skipped = append(skipped, SkippedEntry{ID: e.ID, Kind: e.Kind, Reason: err.Error()})
			continue
		}
		docs = append(docs, *doc)
	}
	return docs, skipped, nil
}

// relink fills the download URLs of documents read from the cache, which
// outlive presigned links. A failure leaves that document without a URL.
func (s *documentService) relink(ctx context.Context, docs []model.Document) {
	if s.resolver == nil {
		return
	}
	for i := range docs {
		if !docs[i].HasFile() || docs[i].FileRef == nil {
			continue
		}
		link, err := s.resolver.Link(ctx, *docs[i].FileRef)
		if err != nil {
			s.log.WarnContext(ctx, "download_link_failed", "entry_id", docs[i].ID, "error", err.Error())
			continue
		}
		docs[i].DownloadURL = link
	}
}

func (s *documentService) GetDocumentYears(ctx context.Context, order model.Order) ([]model.YearCount, error) {
	ctx, span := s.tracer.Start(ctx, "DocumentService.GetDocumentYears")
	defer span.End()

	order = model.NormalizeOrder(string(order), model.OrderDesc)
	years, hit, err := cached(ctx, s, OpDocumentYears, []any{string(order)}, func(ctx context.Context) ([]model.YearCount, error) {
		years, err := s.store.CountByYear(ctx, model.DocumentKind, order)
		if err != nil {
			return nil, fmt.Errorf("count by year: %w", err)
		}
		return years, nil
	})
	span.SetAttributes(attribute.Bool("cache.hit", hit))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if years == nil {
		years = make([]model.YearCount, 0)
	}
	return years, nil
}

func (s *documentService) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	ctx, span := s.tracer.Start(ctx, "DocumentService.GetDocument", trace.WithAttributes(attribute.String("document.id", id)))
	defer span.End()

	entry, err := s.findDocumentEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	doc, err := model.FromCatalogEntry(ctx, *entry, s.resolver)
	if err != nil {
		return nil, err
	}
	doc.PublicationDate = doc.PublicationDate.In(s.loc)
	return doc, nil
}

func (s *documentService) IncrementDownloadCount(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "DocumentService.IncrementDownloadCount", trace.WithAttributes(attribute.String("document.id", id)))
	defer span.End()

	entry, err := s.findDocumentEntry(ctx, id)
	if err != nil {
		return err
	}

	n, err := s.counters.ReadDownloadCount(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return model.ErrNotFound
		}
		return fmt.Errorf("read download count: %w", err)
	}
	if n < 0 {
		n = 0
	}
	if err := s.counters.WriteDownloadCount(ctx, id, n+1); err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return model.ErrNotFound
		}
		return fmt.Errorf("write download count: %w", err)
	}

	s.invalidate(ctx, entry)
	return nil
}

func (s *documentService) GetDocumentTypes(ctx context.Context, q repository.TypeQuery) ([]model.DocumentType, error) {
	ctx, span := s.tracer.Start(ctx, "DocumentService.GetDocumentTypes")
	defer span.End()

	q = normalizeTypeQuery(q)
	types, hit, err := cached(ctx, s, OpDocumentTypes, []any{q}, func(ctx context.Context) ([]model.DocumentType, error) {
		types, err := s.store.ListDocumentTypes(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("list document types: %w", err)
		}
		return types, nil
	})
	span.SetAttributes(attribute.Bool("cache.hit", hit))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if types == nil {
		types = make([]model.DocumentType, 0)
	}
	return types, nil
}

func (s *documentService) GetFilterForm(ctx context.Context, opts FormOptions) (*FilterForm, error) {
	ctx, span := s.tracer.Start(ctx, "DocumentService.GetFilterForm")
	defer span.End()

	types, err := s.GetDocumentTypes(ctx, repository.TypeQuery{Slugs: opts.Types})
	if err != nil {
		return nil, err
	}
	years, err := s.GetDocumentYears(ctx, model.OrderDesc)
	if err != nil {
		return nil, err
	}

	var selected *int
	if opts.InitialCurrentYear {
		y := s.now().In(s.loc).Year()
		selected = &y
	}
	docs, err := s.GetFilteredDocuments(ctx, model.NewFilterSpec(opts.Types, selected, model.OrderDesc))
	if err != nil {
		return nil, err
	}

	return &FilterForm{Types: types, Years: years, SelectedYear: selected, Documents: docs}, nil
}

func (s *documentService) InvalidateAll(ctx context.Context) error {
	if err := s.cache.Set(ctx, GenerationKey, []byte(uuid.NewString()), 0); err != nil {
		return fmt.Errorf("rotate cache generation: %w", err)
	}
	s.log.InfoContext(ctx, "cache_invalidated", "scope", "all")
	return nil
}

// findDocumentEntry maps a missing entry or one of another kind to model.ErrNotFound.
func (s *documentService) findDocumentEntry(ctx context.Context, id string) (*model.CatalogEntry, error) {
	entry, err := s.store.FindEntry(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("find entry: %w", err)
	}
	if entry.Kind != model.DocumentKind {
		return nil, model.ErrNotFound
	}
	return entry, nil
}

// invalidate rotates the generation and drops the listings the entry is known
// to appear in under the previous generation. Cache failures are logged only.
func (s *documentService) invalidate(ctx context.Context, entry *model.CatalogEntry) {
	old, ok := s.currentGeneration(ctx)
	if err := s.cache.Set(ctx, GenerationKey, []byte(uuid.NewString()), 0); err != nil {
		s.log.WarnContext(ctx, "cache_unavailable", "op", "rotate_generation", "error", err.Error())
	}
	if !ok {
		return
	}

	keys := make([]string, 0, 2+4*len(entry.Terms))
	for _, o := range []model.Order{model.OrderAsc, model.OrderDesc} {
		keys = append(keys, cache.HashKey(OpDocumentYears, old, string(o)))
	}
	year := entry.PublishedAt.In(s.loc).Year()
	for _, t := range entry.Terms {
		for _, o := range []model.Order{model.OrderAsc, model.OrderDesc} {
			spec := model.NewFilterSpec([]string{t.Slug}, &year, o)
			keys = append(keys, cache.HashKey(OpFilteredDocuments, old, spec.KeyParts()))
		}
	}
	for _, k := range keys {
		if err := s.cache.Delete(ctx, k); err != nil {
			s.log.WarnContext(ctx, "cache_unavailable", "op", "delete", "error", err.Error())
		}
	}
	s.log.DebugContext(ctx, "cache_invalidated", "entry_id", entry.ID, "keys", len(keys))
}

// currentGeneration reads the generation token without creating one.
func (s *documentService) currentGeneration(ctx context.Context) (string, bool) {
	b, err := s.cache.Get(ctx, GenerationKey)
	if err != nil || len(b) == 0 {
		return "", false
	}
	return string(b), true
}

// generation returns the current token, creating one when absent. It reports
// false when the cache cannot be used at all.
func (s *documentService) generation(ctx context.Context) (string, bool) {
	b, err := s.cache.Get(ctx, GenerationKey)
	if err == nil && len(b) > 0 {
		return string(b), true
	}
	if err != nil && !errors.Is(err, cache.ErrMiss) {
		s.log.WarnContext(ctx, "cache_unavailable", "op", "get", "key", GenerationKey, "error", err.Error())
		return "", false
	}

	gen := uuid.NewString()
	if err := s.cache.Set(ctx, GenerationKey, []byte(gen), 0); err != nil {
		s.log.WarnContext(ctx, "cache_unavailable", "op", "set", "key", GenerationKey, "error", err.Error())
		return "", false
	}
	return gen, true
}

// cached serves op(args) from the cache or computes it with load and stores the
// msgpack encoding. Cache and codec failures fall through to load.
func cached[T any](ctx context.Context, s *documentService, op string, args []any, load func(context.Context) (T, error)) (T, bool, error) {
	gen, ok := s.generation(ctx)
	if !ok {
		v, err := load(ctx)
		return v, false, err
	}
	key := cache.HashKey(op, append([]any{gen}, args...)...)

	b, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		var v T
		derr := msgpack.Unmarshal(b, &v)
		if derr == nil {
			return v, true, nil
		}
		s.log.WarnContext(ctx, "cache_decode_failed", "op", op, "key", key, "error", derr.Error())
	case !errors.Is(err, cache.ErrMiss):
		s.log.WarnContext(ctx, "cache_unavailable", "op", "get", "key", key, "error", err.Error())
	}

	v, err := load(ctx)
	if err != nil {
		return v, false, err
	}

	enc, err := msgpack.Marshal(v)
	if err != nil {
		s.log.WarnContext(ctx, "cache_encode_failed", "op", op, "error", err.Error())
		return v, false, nil
	}
	if err := s.cache.Set(ctx, key, enc, s.ttl); err != nil {
		s.log.WarnContext(ctx, "cache_unavailable", "op", "set", "key", key, "error", err.Error())
	}
	return v, false, nil
}

func normalizeTypeQuery(q repository.TypeQuery) repository.TypeQuery {
	switch q.OrderBy {
	case repository.TypeOrderByName, repository.TypeOrderBySlug, repository.TypeOrderByCount:
	default:
		q.OrderBy = repository.TypeOrderByName
	}
	q.Order = model.NormalizeOrder(string(q.Order), model.OrderAsc)

	if len(q.Slugs) == 0 {
		q.Slugs = nil
		return q
	}
	// NewFilterSpec trims, dedupes and sorts.
	q.Slugs = model.NewFilterSpec(q.Slugs, nil, model.OrderAsc).Types()
	if len(q.Slugs) == 0 {
		q.Slugs = nil
	}
	return q
}
