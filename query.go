package paradigm

import (
	"fmt"
	"strings"

	"github.com/jward/paradigm/internal/features"
	"github.com/jward/paradigm/internal/store"
)

// QueryBuilder provides read access to the indexed corpus.
type QueryBuilder struct {
	store *store.Store
}

// Pagination controls offset+limit paging on list results.
type Pagination struct {
	Offset int // skip this many results (default 0)
	Limit  int // max results to return (default 50, max 500)
}

const (
	defaultLimit = 50
	maxLimit     = 500
)

// normalize returns a Pagination with defaults applied and bounds enforced.
func (p Pagination) normalize() Pagination {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

// PagedResult wraps a page of results with total count for pagination.
type PagedResult[T any] struct {
	Items      []T
	TotalCount int // total matching results (before pagination)
}

// SampleFilter narrows Samples. Zero values match everything.
type SampleFilter struct {
	Language   string
	PathPrefix string
}

// SampleDetail is a sample together with its feature row.
type SampleDetail struct {
	Sample   Sample
	Features features.Vector
}

// Samples lists stored samples matching filter, ordered by path.
func (q *QueryBuilder) Samples(filter SampleFilter, page Pagination) (*PagedResult[Sample], error) {
	page = page.normalize()

	var where []string
	var args []any
	if filter.Language != "" {
		where = append(where, "lower(language) = ?")
		args = append(args, strings.ToLower(filter.Language))
	}
	if filter.PathPrefix != "" {
		where = append(where, "path LIKE ? ESCAPE '\\'")
		args = append(args, escapeLike(filter.PathPrefix)+"%")
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := q.store.DB().QueryRow("SELECT COUNT(*) FROM samples"+cond, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("samples: count: %w", err)
	}

	rows, err := q.store.DB().Query(
		"SELECT id, path, language, hash, line_count, syntax_errors, last_indexed FROM samples"+cond+
			" ORDER BY path LIMIT ? OFFSET ?",
		append(args, page.Limit, page.Offset)...,
	)
	if err != nil {
		return nil, fmt.Errorf("samples: query: %w", err)
	}
	defer rows.Close()

	result := &PagedResult[Sample]{TotalCount: total}
	for rows.Next() {
		var s Sample
		if err := rows.Scan(&s.ID, &s.Path, &s.Language, &s.Hash, &s.LineCount, &s.SyntaxErrors, &s.LastIndexed); err != nil {
			return nil, fmt.Errorf("samples: scan: %w", err)
		}
		result.Items = append(result.Items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("samples: rows: %w", err)
	}
	return result, nil
}

// SampleByPath returns the sample stored under path with its feature row,
// or nil if no such sample exists.
func (q *QueryBuilder) SampleByPath(path string) (*SampleDetail, error) {
	s, err := q.store.SampleByPath(path)
	if err != nil {
		return nil, fmt.Errorf("sample by path: %w", err)
	}
	if s == nil {
		return nil, nil
	}
	v, err := q.store.FeaturesBySample(s.ID)
	if err != nil {
		return nil, fmt.Errorf("sample by path: %w", err)
	}
	d := &SampleDetail{Sample: *s}
	if v != nil {
		d.Features = *v
	}
	return d, nil
}

// LanguageCounts returns the number of feature rows per declared language,
// most common first.
func (q *QueryBuilder) LanguageCounts() ([]LanguageCount, error) {
	counts, err := q.store.LanguageCounts()
	if err != nil {
		return nil, fmt.Errorf("language counts: %w", err)
	}
	return counts, nil
}

// Features returns the stored feature rows for languages (all when empty),
// ordered by path.
func (q *QueryBuilder) Features(languages ...string) ([]FeatureRow, error) {
	rows, err := q.store.FeatureRows(languages...)
	if err != nil {
		return nil, fmt.Errorf("features: %w", err)
	}
	return rows, nil
}

// escapeLike escapes LIKE wildcards in s so it matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
