package model

import "time"

// StatusPublished is the only status listed by the catalog.
const StatusPublished = "publish"

// CatalogEntry is a raw content-store record before it is checked and projected
// into a Document.
type CatalogEntry struct {
	ID            string
	Kind          string
	Status        string
	Title         string
	PublishedAt   time.Time
	FileRef       *string
	DownloadCount int
	Terms         []DocumentType
}

// DocumentType is a taxonomy term owned by the content store.
type DocumentType struct {
	ID    string `json:"id" msgpack:"id"`
	Name  string `json:"name" msgpack:"name"`
	Slug  string `json:"slug" msgpack:"slug"`
	Count int    `json:"count" msgpack:"count"`
}

// YearCount is one row of the per-year publication aggregate.
type YearCount struct {
	Year  int `json:"year" msgpack:"year"`
	Count int `json:"count" msgpack:"count"`
}
