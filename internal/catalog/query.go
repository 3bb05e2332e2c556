// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/rhino-harvest/pkg/types"
)

// QueryOptions holds parameters for catalog queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string over title, instruction
	// and code.
	Query string

	Language string
	Source   string

	// Tags filters by one or more tags with AND semantics.
	Tags []string

	// Solutions keeps only records from accepted answers.
	Solutions bool

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Language == "" && q.Source == "" && len(q.Tags) == 0 && !q.Solutions
}

const recordColumns = `r.id, r.work_item_id, r.source, r.source_url, r.title, r.instruction, r.code,
	r.language, r.author, r.tags, r.imports, r.post_number, r.is_solution, r.repository, r.path,
	r.license, r.stars, r.has_docstring`

// Query searches the catalog. Full-text queries are ranked by relevance;
// filter-only queries are ordered by source and record id.
func (s *Store) Query(ctx context.Context, opts QueryOptions) ([]types.ExtractedRecord, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)
	if useFTS {
		qb.WriteString(`SELECT ` + recordColumns + `
			FROM records_fts
			JOIN records r ON r.rowid = records_fts.rowid
			WHERE records_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(`SELECT ` + recordColumns + ` FROM records r WHERE 1=1`)
	}

	if opts.Language != "" {
		qb.WriteString(` AND r.language = ?`)
		args = append(args, opts.Language)
	}
	if opts.Source != "" {
		qb.WriteString(` AND r.source = ?`)
		args = append(args, opts.Source)
	}
	if opts.Solutions {
		qb.WriteString(` AND r.is_solution = 1`)
	}
	for _, tag := range opts.Tags {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM json_each(r.tags) WHERE value = ?)`)
		args = append(args, tag)
	}

	if useFTS {
		qb.WriteString(` ORDER BY records_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY r.source, r.id`)
	}
	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var results []types.ExtractedRecord
	for rows.Next() {
		var (
			r           types.ExtractedRecord
			tagsJSON    string
			importsJSON string
		)
		if err := rows.Scan(
			&r.ID, &r.WorkItemID, &r.Source, &r.SourceURL, &r.Title, &r.Instruction, &r.Code,
			&r.Language, &r.Author, &tagsJSON, &importsJSON, &r.PostNumber, &r.IsSolution,
			&r.Repository, &r.Path, &r.License, &r.Stars, &r.HasDocstring,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		json.Unmarshal([]byte(tagsJSON), &r.Tags)
		json.Unmarshal([]byte(importsJSON), &r.Imports)
		if len(r.Imports) == 0 {
			r.Imports = nil
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Count returns the number of cataloged records per source.
func (s *Store) Count(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT source, count(*) FROM records GROUP BY source`)
	if err != nil {
		return nil, fmt.Errorf("counting records: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var source string
		var n int
		if err := rows.Scan(&source, &n); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		counts[source] = n
	}
	return counts, rows.Err()
}
