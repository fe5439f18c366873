package model

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
)

// DocumentKind is the content-store kind every catalog entry must carry.
const DocumentKind = "corporate_document"

// DefaultDateLayout renders dates as "Jan 02, 2006".
const DefaultDateLayout = "Jan 02, 2006"

// Icon classes returned by Document.IconClass.
const (
	IconPDF     = "pdf-icon"
	IconImage   = "image-icon"
	IconVideo   = "video-icon"
	IconCSV     = "csv-icon"
	IconPlain   = "plain-icon"
	IconCode    = "code-icon"
	IconGeneric = "generic-icon"
)

// Document is a read-only projection of one published catalog entry.
// It is built per request by FromCatalogEntry and never persisted back.
// DownloadURL may expire and is left out of the cached encoding.
type Document struct {
	ID              string         `json:"id" msgpack:"id"`
	Title           string         `json:"title" msgpack:"title"`
	PublicationDate time.Time      `json:"publication_date" msgpack:"publication_date"`
	FileRef         *string        `json:"file_ref,omitempty" msgpack:"file_ref"`
	DocumentTypes   []DocumentType `json:"document_types" msgpack:"document_types"`
	DownloadCount   int            `json:"download_count" msgpack:"download_count"`
	FileSizeBytes   *int64         `json:"file_size_bytes,omitempty" msgpack:"file_size_bytes"`
	MimeType        *string        `json:"mime_type,omitempty" msgpack:"mime_type"`
	DownloadURL     string         `json:"download_url,omitempty" msgpack:"-"`
}

// FileInfo is what a FileResolver reports for a stored file.
type FileInfo struct {
	Size        int64
	ContentType string
	URL         string
}

// FileResolver looks up metadata of an externally stored file.
type FileResolver interface {
	Resolve(ctx context.Context, ref string) (FileInfo, error)
	// Link returns a fresh download URL without reading the file metadata.
	Link(ctx context.Context, ref string) (string, error)
}

// FromCatalogEntry builds a Document from a raw catalog entry.
//
// Entries of another kind are rejected with an *InvalidEntityError. A file reference
// that cannot be resolved leaves the file attributes unset instead of failing.
func FromCatalogEntry(ctx context.Context, e CatalogEntry, resolver FileResolver) (*Document, error) {
	if e.Kind != DocumentKind {
		return nil, &InvalidEntityError{ID: e.ID, Kind: e.Kind}
	}

	count := e.DownloadCount
	if count < 0 {
		count = 0
	}

	doc := &Document{
		ID:              e.ID,
		Title:           e.Title,
		PublicationDate: e.PublishedAt,
		DocumentTypes:   append([]DocumentType{}, e.Terms...),
		DownloadCount:   count,
	}

	if e.FileRef == nil || *e.FileRef == "" {
		return doc, nil
	}
	ref := *e.FileRef
	doc.FileRef = &ref

	if resolver == nil {
		return doc, nil
	}
	info, err := resolver.Resolve(ctx, ref)
	if err != nil {
		return doc, nil
	}
	size := info.Size
	mime := info.ContentType
	doc.FileSizeBytes = &size
	doc.MimeType = &mime
	doc.DownloadURL = info.URL
	return doc, nil
}

// FormattedDate formats the publication date. An empty layout uses DefaultDateLayout.
func (d *Document) FormattedDate(layout string) string {
	if layout == "" {
		layout = DefaultDateLayout
	}
	return d.PublicationDate.Format(layout)
}

// IconClass maps the mime type to a display icon class.
func (d *Document) IconClass() string {
	if d.MimeType == nil {
		return IconGeneric
	}
	return IconClassFor(*d.MimeType)
}

// IconClassFor is total over every string; unknown mime types map to IconGeneric.
func IconClassFor(mime string) string {
	switch mime {
	case "application/pdf":
		return IconPDF
	case "image/jpeg", "image/png", "image/gif":
		return IconImage
	case "video/mp4", "video/quicktime":
		return IconVideo
	case "text/csv":
		return IconCSV
	case "text/plain":
		return IconPlain
	case "text/xml", "text/html":
		return IconCode
	default:
		return IconGeneric
	}
}

// HasMetadata reports whether there is a file size or at least one download to show.
func (d *Document) HasMetadata() bool {
	return d.FileSizeBytes != nil || d.DownloadCount > 0
}

// HasFile reports whether a file reference was resolved.
func (d *Document) HasFile() bool {
	return d.FileSizeBytes != nil
}

// FormattedFileSize returns a human readable size such as "1.2 MiB", or "" when unknown.
func (d *Document) FormattedFileSize() string {
	if d.FileSizeBytes == nil {
		return ""
	}
	return humanize.IBytes(uint64(*d.FileSizeBytes))
}

// TypeSlugs returns the slugs of the assigned document types.
func (d *Document) TypeSlugs() []string {
	out := make([]string, 0, len(d.DocumentTypes))
	for _, t := range d.DocumentTypes {
		out = append(out, t.Slug)
	}
	return out
}
