package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"cdox/internal/model"
	"cdox/internal/repository"
)

// CatalogPostgres is a PostgreSQL implementation of repository.ContentStore and
// repository.CounterStore. It uses database/sql with parameterized queries and
// contains no caching or business logic.
type CatalogPostgres struct {
	db   *sql.DB
	zone string
}

// NewCatalogPostgres creates a new CatalogPostgres repository. Calendar years
// are taken in loc so they agree with the dates the service renders; nil and
// time.Local mean UTC.
func NewCatalogPostgres(db *sql.DB, loc *time.Location) *CatalogPostgres {
	zone := "UTC"
	if loc != nil && loc != time.Local {
		zone = loc.String()
	}
	return &CatalogPostgres{db: db, zone: zone}
}

var (
	_ repository.ContentStore = (*CatalogPostgres)(nil)
	_ repository.CounterStore = (*CatalogPostgres)(nil)
)

const entrySelect = `
		SELECT e.id, e.kind, e.status, e.title, e.published_at, e.file_key, e.download_count,
		       t.id, t.name, t.slug
		FROM catalog_entries e
		LEFT JOIN catalog_entry_types et ON et.entry_id = e.id
		LEFT JOIN document_types t ON t.id = et.type_id`

// QueryEntries returns matching entries with their terms, one row per (entry, term)
// folded back into one CatalogEntry per id.
func (r *CatalogPostgres) QueryEntries(ctx context.Context, q repository.EntryQuery) ([]model.CatalogEntry, error) {
	var (
		where []string
		args  []any
	)
	args = append(args, q.Kind, q.Status)
	where = append(where, "e.kind = $1", "e.status = $2")

	if len(q.Types) > 0 {
		where = append(where, fmt.Sprintf(`e.id IN (
			SELECT et2.entry_id FROM catalog_entry_types et2
			JOIN document_types t2 ON t2.id = et2.type_id
			WHERE t2.slug IN (%s))`, placeholders(len(args)+1, len(q.Types))))
		for _, s := range q.Types {
			args = append(args, s)
		}
	}
	if q.Year != nil {
		args = append(args, r.zone, *q.Year)
		where = append(where, fmt.Sprintf("EXTRACT(YEAR FROM e.published_at AT TIME ZONE $%d) = $%d", len(args)-1, len(args)))
	}

	dir := sqlOrder(q.Order)
	query := entrySelect + "\n\t\tWHERE " + strings.Join(where, " AND ") +
		fmt.Sprintf("\n\t\tORDER BY e.published_at %s, e.id %s, t.name ASC", dir, dir)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// FindEntry fetches one entry of any kind by its ID.
func (r *CatalogPostgres) FindEntry(ctx context.Context, id string) (*model.CatalogEntry, error) {
	query := entrySelect + "\n\t\tWHERE e.id = $1\n\t\tORDER BY t.name ASC"
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, repository.ErrEntryNotFound
	}
	return &entries[0], nil
}

// CountByYear aggregates published entries per calendar year.
func (r *CatalogPostgres) CountByYear(ctx context.Context, kind string, order model.Order) ([]model.YearCount, error) {
	query := fmt.Sprintf(`
		SELECT EXTRACT(YEAR FROM published_at AT TIME ZONE $3)::int AS year, COUNT(*) AS count
		FROM catalog_entries
		WHERE kind = $1 AND status = $2
		GROUP BY year
		ORDER BY year %s`, sqlOrder(order))

	rows, err := r.db.QueryContext(ctx, query, kind, model.StatusPublished, r.zone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.YearCount, 0)
	for rows.Next() {
		var yc model.YearCount
		if err := rows.Scan(&yc.Year, &yc.Count); err != nil {
			return nil, err
		}
		out = append(out, yc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListDocumentTypes returns terms with the number of published documents using them.
func (r *CatalogPostgres) ListDocumentTypes(ctx context.Context, q repository.TypeQuery) ([]model.DocumentType, error) {
	args := []any{model.DocumentKind, model.StatusPublished}
	where := ""
	if len(q.Slugs) > 0 {
		where = fmt.Sprintf("\n\t\tWHERE t.slug IN (%s)", placeholders(len(args)+1, len(q.Slugs)))
		for _, s := range q.Slugs {
			args = append(args, s)
		}
	}
	having := ""
	if q.HideEmpty {
		having = "\n\t\tHAVING COUNT(e.id) > 0"
	}

	var col string
	switch q.OrderBy {
	case repository.TypeOrderBySlug:
		col = "t.slug"
	case repository.TypeOrderByCount:
		col = "count"
	default:
		col = "t.name"
	}
	dir := "ASC"
	if q.Order == model.OrderDesc {
		dir = "DESC"
	}

	query := `
		SELECT t.id, t.name, t.slug, COUNT(e.id) AS count
		FROM document_types t
		LEFT JOIN catalog_entry_types et ON et.type_id = t.id
		LEFT JOIN catalog_entries e ON e.id = et.entry_id AND e.kind = $1 AND e.status = $2` +
		where +
		"\n\t\tGROUP BY t.id, t.name, t.slug" +
		having +
		fmt.Sprintf("\n\t\tORDER BY %s %s, t.id ASC", col, dir)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.DocumentType, 0)
	for rows.Next() {
		var t model.DocumentType
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.Count); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadDownloadCount returns the persisted counter of an entry.
func (r *CatalogPostgres) ReadDownloadCount(ctx context.Context, id string) (int, error) {
	const q = `SELECT download_count FROM catalog_entries WHERE id = $1`
	var n int
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&n); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, repository.ErrEntryNotFound
		}
		return 0, err
	}
	return n, nil
}

// WriteDownloadCount overwrites the persisted counter of an entry.
func (r *CatalogPostgres) WriteDownloadCount(ctx context.Context, id string, n int) error {
	const q = `UPDATE catalog_entries SET download_count = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, n)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrEntryNotFound
	}
	return nil
}

func scanEntries(rows *sql.Rows) ([]model.CatalogEntry, error) {
	entries := make([]model.CatalogEntry, 0)
	index := make(map[string]int)
	for rows.Next() {
		var (
			e                          model.CatalogEntry
			fileKey                    sql.NullString
			termID, termName, termSlug sql.NullString
			published                  time.Time
		)
		if err := rows.Scan(
			&e.ID,
			&e.Kind,
			&e.Status,
			&e.Title,
			&published,
			&fileKey,
			&e.DownloadCount,
			&termID,
			&termName,
			&termSlug,
		); err != nil {
			return nil, err
		}

		i, seen := index[e.ID]
		if !seen {
			e.PublishedAt = published
			if fileKey.Valid {
				key := fileKey.String
				e.FileRef = &key
			}
			e.Terms = make([]model.DocumentType, 0)
			entries = append(entries, e)
			i = len(entries) - 1
			index[e.ID] = i
		}
		if termID.Valid {
			entries[i].Terms = append(entries[i].Terms, model.DocumentType{
				ID:   termID.String,
				Name: termName.String,
				Slug: termSlug.String,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// placeholders returns "$start, $start+1, ..." for n arguments.
func placeholders(start, n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(ph, ", ")
}

// sqlOrder only ever yields ASC or DESC, so it is safe to interpolate.
func sqlOrder(o model.Order) string {
	if o == model.OrderAsc {
		return "ASC"
	}
	return "DESC"
}
