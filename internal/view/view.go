package view

import (
	"cdox/internal/model"
)

// Options controls which optional fields BuildList emits.
type Options struct {
	ShowDate   bool
	DateLayout string
}

// DocumentView is the data contract consumed by the presentation layer.
type DocumentView struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Date          string `json:"date,omitempty"`
	IconClass     string `json:"icon_class"`
	DownloadURL   string `json:"download_url"`
	FileSize      *int64 `json:"file_size,omitempty"`
	FileSizeHuman string `json:"file_size_human,omitempty"`
	DownloadCount *int   `json:"download_count,omitempty"`
	HasMetadata   bool   `json:"has_metadata"`
}

// Build projects one document.
func Build(d *model.Document, opt Options) DocumentView {
	v := DocumentView{
		ID:          d.ID,
		Title:       d.Title,
		IconClass:   d.IconClass(),
		DownloadURL: d.DownloadURL,
		HasMetadata: d.HasMetadata(),
	}
	if opt.ShowDate {
		v.Date = d.FormattedDate(opt.DateLayout)
	}
	if d.FileSizeBytes != nil {
		size := *d.FileSizeBytes
		v.FileSize = &size
		v.FileSizeHuman = d.FormattedFileSize()
	}
	if d.DownloadCount > 0 {
		n := d.DownloadCount
		v.DownloadCount = &n
	}
	return v
}

// BuildList projects docs in order. The result is never nil.
func BuildList(docs []model.Document, opt Options) []DocumentView {
	out := make([]DocumentView, 0, len(docs))
	for i := range docs {
		out = append(out, Build(&docs[i], opt))
	}
	return out
}

// YearView is one entry of the years listing.
type YearView struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// BuildYears keeps the aggregate order.
func BuildYears(years []model.YearCount) []YearView {
	out := make([]YearView, 0, len(years))
	for _, y := range years {
		out = append(out, YearView{Year: y.Year, Count: y.Count})
	}
	return out
}

// TypeView is one selectable document type.
type TypeView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

func BuildTypes(types []model.DocumentType) []TypeView {
	out := make([]TypeView, 0, len(types))
	for _, t := range types {
		out = append(out, TypeView{ID: t.ID, Name: t.Name, Slug: t.Slug, Count: t.Count})
	}
	return out
}
