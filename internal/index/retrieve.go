// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/canon-engine/internal/ingest"
	"github.com/pdiddy/canon-engine/pkg/types"
)

var (
	// ErrNotFound is returned when a claim id is not in the index.
	ErrNotFound = errors.New("not found")

	// ErrAmbiguous is returned when a claim id exists in several documents
	// and no document was named.
	ErrAmbiguous = errors.New("ambiguous claim id")
)

// QueryOptions holds parameters for claim queries.
type QueryOptions struct {
	// Query is an FTS5 full-text search over claim statements.
	Query string

	// Type filters by claim category.
	Type types.ClaimType

	// Tags filters by one or more tags with AND semantics.
	Tags []string

	// DocID filters by source document.
	DocID string

	// Section filters by source section title.
	Section string

	// MinConfidence drops claims below this confidence.
	MinConfidence float64

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Type == "" && len(q.Tags) == 0 && q.DocID == "" &&
		q.Section == "" && q.MinConfidence == 0
}

// QueryResult is a claim with its document metadata.
type QueryResult struct {
	types.Claim
	DocID    string `json:"doc_id" yaml:"doc_id"`
	Filename string `json:"filename,omitempty" yaml:"filename,omitempty"`
}

// Retrieve queries claims with optional full-text search and structured
// filters. Full-text results are ranked by relevance; structured-only
// queries are ordered by document, section and claim id.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	const columns = `c.id, c.doc_id, c.statement, c.claim_type, c.confidence, c.source_document,
		c.section, c.page, c.line_start, c.line_end, c.tags, c.equation_refs,
		c.scriptural_mapping, d.filename`

	if useFTS {
		qb.WriteString(`SELECT ` + columns + `
			FROM claims_fts
			JOIN claims c ON c.rowid = claims_fts.rowid
			LEFT JOIN documents d ON c.doc_id = d.id
			WHERE claims_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(`SELECT ` + columns + `
			FROM claims c
			LEFT JOIN documents d ON c.doc_id = d.id
			WHERE 1=1`)
	}

	if opts.Type != "" {
		qb.WriteString(` AND c.claim_type = ?`)
		args = append(args, string(opts.Type))
	}
	if opts.DocID != "" {
		qb.WriteString(` AND c.doc_id = ?`)
		args = append(args, opts.DocID)
	}
	if opts.Section != "" {
		qb.WriteString(` AND c.section = ?`)
		args = append(args, opts.Section)
	}
	if opts.MinConfidence > 0 {
		qb.WriteString(` AND c.confidence >= ?`)
		args = append(args, opts.MinConfidence)
	}
	for _, tag := range opts.Tags {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM json_each(c.tags) WHERE value = ?)`)
		args = append(args, tag)
	}

	if useFTS {
		qb.WriteString(` ORDER BY claims_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY c.doc_id, c.section, c.id`)
	}
	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var (
			qr        QueryResult
			claimType string
			sourceDoc sql.NullString
			section   sql.NullString
			page      sql.NullInt64
			lineStart sql.NullInt64
			lineEnd   sql.NullInt64
			tagsJSON  sql.NullString
			refsJSON  sql.NullString
			mapping   sql.NullString
			filename  sql.NullString
		)
		if err := rows.Scan(
			&qr.ID, &qr.DocID, &qr.Statement, &claimType, &qr.Confidence, &sourceDoc,
			&section, &page, &lineStart, &lineEnd, &tagsJSON, &refsJSON,
			&mapping, &filename,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		qr.Type = types.ClaimType(claimType)
		qr.SourceDocument = sourceDoc.String
		qr.SourceSection = section.String
		qr.Filename = filename.String
		qr.PageNumber = intPtr(page)
		if lineStart.Valid && lineEnd.Valid {
			qr.LineRange = &types.LineRange{int(lineStart.Int64), int(lineEnd.Int64)}
		}
		qr.Tags = decodeList(tagsJSON)
		qr.EquationRefs = decodeList(refsJSON)
		if mapping.Valid {
			m := mapping.String
			qr.ScripturalMapping = &m
		}
		qr.Dependencies = []string{}

		results = append(results, qr)
	}
	return results, rows.Err()
}

// Equations returns the indexed equations of a document in extraction order.
// An empty docID returns every equation.
func (s *Store) Equations(ctx context.Context, docID string) ([]types.Equation, error) {
	query := `SELECT id, formula, context, section, page, line_start, line_end, related_claims
		FROM equations`
	var args []any
	if docID != "" {
		query += ` WHERE doc_id = ?`
		args = append(args, docID)
	}
	query += ` ORDER BY doc_id, rowid`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying equations: %w", err)
	}
	defer rows.Close()

	var out []types.Equation
	for rows.Next() {
		var (
			eq                 types.Equation
			ctxText, section   sql.NullString
			page               sql.NullInt64
			lineStart, lineEnd sql.NullInt64
			related            sql.NullString
		)
		if err := rows.Scan(&eq.ID, &eq.Formula, &ctxText, &section, &page, &lineStart, &lineEnd, &related); err != nil {
			return nil, fmt.Errorf("scanning equation: %w", err)
		}
		eq.Context = ctxText.String
		eq.Section = section.String
		eq.PageNumber = intPtr(page)
		if lineStart.Valid && lineEnd.Valid {
			eq.LineRange = &types.LineRange{int(lineStart.Int64), int(lineEnd.Int64)}
		}
		eq.RelatedClaims = decodeList(related)
		out = append(out, eq)
	}
	return out, rows.Err()
}

// Trace returns the text of the section a claim was extracted from, read
// from extracted/<doc_id>.json. Claim ids are unique only within a document;
// docID may be empty when the id occurs in a single document.
func (s *Store) Trace(ctx context.Context, docID, claimID string) (string, error) {
	query := `SELECT doc_id, COALESCE(section, '') FROM claims WHERE id = ?`
	args := []any{claimID}
	if docID != "" {
		query += ` AND doc_id = ?`
		args = append(args, docID)
	}
	rows, err := s.db.QueryContext(ctx, query+` ORDER BY doc_id`, args...)
	if err != nil {
		return "", fmt.Errorf("looking up claim: %w", err)
	}
	defer rows.Close()

	var docIDs, sections []string
	for rows.Next() {
		var d, sec string
		if err := rows.Scan(&d, &sec); err != nil {
			return "", fmt.Errorf("scanning claim: %w", err)
		}
		docIDs = append(docIDs, d)
		sections = append(sections, sec)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("looking up claim: %w", err)
	}

	switch len(docIDs) {
	case 0:
		return "", fmt.Errorf("claim %s: %w", claimID, ErrNotFound)
	case 1:
	default:
		return "", fmt.Errorf("claim %s in documents %s: %w", claimID, strings.Join(docIDs, ", "), ErrAmbiguous)
	}
	docID, section := docIDs[0], sections[0]

	path := filepath.Join(s.outputDir, ingest.ExtractedDir, docID+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	var record types.ExtractedRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return "", fmt.Errorf("parsing %s: %w", path, err)
	}

	for _, sec := range record.Sections {
		if sec.Title == section {
			return strings.TrimSpace(sec.Text), nil
		}
	}
	return "", fmt.Errorf("section %q of %s: %w", section, docID, ErrNotFound)
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func decodeList(v sql.NullString) []string {
	out := []string{}
	if v.Valid {
		_ = json.Unmarshal([]byte(v.String), &out)
	}
	return out
}
