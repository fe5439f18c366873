package repository

import (
	"context"
	"errors"

	"cdox/internal/model"
)

// Package repository contains data access abstractions for the catalog content store.
// Implementations live in subpackages (e.g., postgres). No caching or business logic here.

// ErrEntryNotFound is returned when no catalog entry has the requested id.
var ErrEntryNotFound = errors.New("catalog entry not found")

// EntryQuery constrains a catalog listing.
type EntryQuery struct {
	Kind   string
	Status string
	// Types are term slugs combined with OR; empty means no type constraint.
	Types []string
	// Year is an exact calendar-year match on the publication date; nil means all years.
	Year  *int
	Order model.Order
}

// TypeOrderBy names a sort field for document type listings.
type TypeOrderBy string

const (
	TypeOrderByName  TypeOrderBy = "name"
	TypeOrderBySlug  TypeOrderBy = "slug"
	TypeOrderByCount TypeOrderBy = "count"
)

// TypeQuery constrains a document type listing.
type TypeQuery struct {
	// HideEmpty drops terms with no published document.
	HideEmpty bool
	OrderBy   TypeOrderBy
	Order     model.Order
	// Slugs restricts the listing to these terms; empty means all.
	Slugs []string
}

// ContentStore reads catalog entries and taxonomy terms.
type ContentStore interface {
	// QueryEntries returns entries matching q, sorted by publication date in q.Order.
	QueryEntries(ctx context.Context, q EntryQuery) ([]model.CatalogEntry, error)

	// FindEntry returns an entry of any kind by id, or ErrEntryNotFound.
	FindEntry(ctx context.Context, id string) (*model.CatalogEntry, error)

	// CountByYear aggregates published entries of kind per calendar year.
	CountByYear(ctx context.Context, kind string, order model.Order) ([]model.YearCount, error)

	// ListDocumentTypes returns taxonomy terms with their published usage counts.
	ListDocumentTypes(ctx context.Context, q TypeQuery) ([]model.DocumentType, error)
}

// CounterStore persists per-document download counters.
// The read-then-write pair is not atomic; concurrent increments may be lost.
type CounterStore interface {
	ReadDownloadCount(ctx context.Context, id string) (int, error)
	WriteDownloadCount(ctx context.Context, id string, n int) error
}
