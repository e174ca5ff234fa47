// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index loads the per-document claim and equation exports of a canon
// into a SQLite database with full-text search over claim statements.
package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/canon-engine/internal/ingest"
	"github.com/pdiddy/canon-engine/internal/manifest"
	"github.com/pdiddy/canon-engine/pkg/types"
)

const (
	indexDir            = "index"
	dbFile              = "canon.db"
	claimsFileSuffix    = "_claims.json"
	equationsFileSuffix = "_equations.json"
	defaultMaxResults   = 20

	// schemaVersion is stored in PRAGMA user_version. Databases with an
	// older layout are dropped and rebuilt from the canon exports.
	schemaVersion = 2
)

// Store manages the canon index database at <output>/index/canon.db.
type Store struct {
	db         *sql.DB
	outputDir  string
	maxResults int
}

// NewStore opens or creates the index database and its schema.
func NewStore(cfg types.IndexConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.OutputDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dbDir, dbFile)+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{db: db, outputDir: cfg.OutputDir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	if err := s.dropOutdated(); err != nil {
		return err
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			filename TEXT,
			relpath TEXT,
			sha256 TEXT,
			content_type TEXT,
			pages INTEGER,
			ingested_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS claims (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL,
			doc_id TEXT NOT NULL REFERENCES documents(id),
			statement TEXT NOT NULL,
			claim_type TEXT NOT NULL,
			confidence REAL NOT NULL,
			source_document TEXT,
			section TEXT,
			page INTEGER,
			line_start INTEGER,
			line_end INTEGER,
			tags TEXT,
			equation_refs TEXT,
			scriptural_mapping TEXT,
			UNIQUE (doc_id, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_claims_id ON claims(id)`,
		`CREATE INDEX IF NOT EXISTS idx_claims_type ON claims(claim_type)`,
		`CREATE TABLE IF NOT EXISTS equations (
			id TEXT NOT NULL,
			doc_id TEXT NOT NULL REFERENCES documents(id),
			formula TEXT NOT NULL,
			context TEXT,
			section TEXT,
			page INTEGER,
			line_start INTEGER,
			line_end INTEGER,
			related_claims TEXT,
			PRIMARY KEY (doc_id, id)
		)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			doc_id TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='claims_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		return s.setVersion()
	}

	ftsStatements := []string{
		`CREATE VIRTUAL TABLE claims_fts USING fts5(statement, content=claims, content_rowid=rowid)`,
		`CREATE TRIGGER claims_ai AFTER INSERT ON claims BEGIN
			INSERT INTO claims_fts(rowid, statement) VALUES (new.rowid, new.statement);
		END`,
		`CREATE TRIGGER claims_ad AFTER DELETE ON claims BEGIN
			INSERT INTO claims_fts(claims_fts, rowid, statement) VALUES('delete', old.rowid, old.statement);
		END`,
		`CREATE TRIGGER claims_au AFTER UPDATE ON claims BEGIN
			INSERT INTO claims_fts(claims_fts, rowid, statement) VALUES('delete', old.rowid, old.statement);
			INSERT INTO claims_fts(rowid, statement) VALUES (new.rowid, new.statement);
		END`,
	}
	for _, stmt := range ftsStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}
	return s.setVersion()
}

// dropOutdated removes every table of a database written with an older
// layout. Indexing status goes with them, so the next Ingest reloads all
// documents.
func (s *Store) dropOutdated() error {
	var version, tables int
	if err := s.db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='claims'`,
	).Scan(&tables); err != nil {
		return fmt.Errorf("checking claims table: %w", err)
	}
	if tables == 0 || version >= schemaVersion {
		return nil
	}

	for _, stmt := range []string{
		`DROP TRIGGER IF EXISTS claims_ai`,
		`DROP TRIGGER IF EXISTS claims_ad`,
		`DROP TRIGGER IF EXISTS claims_au`,
		`DROP TABLE IF EXISTS claims_fts`,
		`DROP TABLE IF EXISTS claims`,
		`DROP TABLE IF EXISTS equations`,
		`DROP TABLE IF EXISTS indexing_status`,
		`DROP TABLE IF EXISTS documents`,
	} {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("dropping outdated schema: %w", err)
		}
	}
	return nil
}

func (s *Store) setVersion() error {
	if _, err := s.db.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, schemaVersion)); err != nil {
		return fmt.Errorf("setting schema version: %w", err)
	}
	return nil
}

// IngestSummary holds counts from one indexing run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of documents considered.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// HasFailures reports whether any document failed to index.
func (s IngestSummary) HasFailures() bool {
	return s.Failed > 0
}

// Ingest indexes every canon/claims/<doc>_claims.json together with the
// matching equations export. Documents whose exports have not changed since
// the last run are skipped; changed documents have their rows replaced.
// export.yaml is rewritten when anything was indexed.
func (s *Store) Ingest(ctx context.Context, w io.Writer) (IngestSummary, error) {
	claimsDir := filepath.Join(s.outputDir, ingest.ClaimsDir)
	entries, err := os.ReadDir(claimsDir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading claims directory %s: %w", claimsDir, err)
	}

	docs, err := s.manifestDocuments()
	if err != nil {
		return IngestSummary{}, err
	}

	var summary IngestSummary
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), claimsFileSuffix) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		docID := strings.TrimSuffix(entry.Name(), claimsFileSuffix)
		claimsPath := filepath.Join(claimsDir, entry.Name())
		equationsPath := filepath.Join(s.outputDir, ingest.EquationsDir, docID+equationsFileSuffix)

		modTime, err := latestModTime(claimsPath, equationsPath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", docID, err)
			summary.Failed++
			continue
		}

		var stored string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE doc_id = ?`, docID,
		).Scan(&stored)
		if err == nil && stored == modTime {
			fmt.Fprintf(w, "skipped %s\n", docID)
			summary.Skipped++
			continue
		}
		isUpdate := err == nil

		claims, equations, err := loadExports(claimsPath, equationsPath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", docID, err)
			summary.Failed++
			continue
		}
		if err := validateClaims(claims); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", docID, err)
			summary.Failed++
			continue
		}

		doc, ok := docs[docID]
		if err := s.ingestDocument(ctx, docID, doc, ok, claims, equations, modTime); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", docID, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d claims, %d equations)\n", docID, len(claims), len(equations))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d claims, %d equations)\n", docID, len(claims), len(equations))
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	if summary.Indexed > 0 || summary.Updated > 0 {
		if err := s.ExportYAML(ctx, QueryOptions{}); err != nil {
			fmt.Fprintf(w, "warning: export.yaml write failed: %v\n", err)
		}
	}
	return summary, nil
}

// manifestDocuments maps doc ids to their latest manifest record. A missing
// manifest yields an empty map.
func (s *Store) manifestDocuments() (map[string]types.DocumentMeta, error) {
	m, err := manifest.Load(filepath.Join(s.outputDir, ingest.ManifestsDir, ingest.ManifestFile))
	if err != nil {
		return nil, err
	}
	docs := make(map[string]types.DocumentMeta)
	for _, d := range m.Documents() {
		docs[d.ID] = d
	}
	return docs, nil
}

// latestModTime returns the newer modification time of the claims and
// equations files; a missing equations file is ignored.
func latestModTime(claimsPath, equationsPath string) (string, error) {
	info, err := os.Stat(claimsPath)
	if err != nil {
		return "", err
	}
	latest := info.ModTime()
	if eqInfo, err := os.Stat(equationsPath); err == nil {
		if eqInfo.ModTime().After(latest) {
			latest = eqInfo.ModTime()
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	return latest.UTC().Format(time.RFC3339Nano), nil
}

func loadExports(claimsPath, equationsPath string) ([]types.Claim, []types.Equation, error) {
	var claims types.ClaimsExport
	if err := readJSON(claimsPath, &claims); err != nil {
		return nil, nil, err
	}

	var equations types.EquationsExport
	if err := readJSON(equationsPath, &equations); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, err
	}
	return claims.Claims, equations.Equations, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse error in %s: %w", filepath.Base(path), err)
	}
	return nil
}

// validateClaims rejects exports with empty statements, out-of-range
// confidences or unknown claim types.
func validateClaims(claims []types.Claim) error {
	var errs []error
	seen := make(map[string]bool, len(claims))
	for _, c := range claims {
		switch {
		case c.ID == "":
			errs = append(errs, errors.New("claim with empty id"))
		case seen[c.ID]:
			errs = append(errs, fmt.Errorf("claim %s: duplicate id", c.ID))
		case strings.TrimSpace(c.Statement) == "":
			errs = append(errs, fmt.Errorf("claim %s: empty statement", c.ID))
		case c.Confidence < 0 || c.Confidence > 1:
			errs = append(errs, fmt.Errorf("claim %s: confidence %v outside [0,1]", c.ID, c.Confidence))
		case !c.Type.Valid():
			errs = append(errs, fmt.Errorf("claim %s: unknown claim type %q", c.ID, c.Type))
		}
		seen[c.ID] = true
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ingest.ErrValidation, errors.Join(errs...))
	}
	return nil
}

func (s *Store) ingestDocument(ctx context.Context, docID string, doc types.DocumentMeta, known bool,
	claims []types.Claim, equations []types.Equation, modTime string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM claims WHERE doc_id = ?`,
		`DELETE FROM equations WHERE doc_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, docID); err != nil {
			return fmt.Errorf("deleting old rows: %w", err)
		}
	}

	if known {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO documents (id, filename, relpath, sha256, content_type, pages, ingested_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
				filename=excluded.filename, relpath=excluded.relpath, sha256=excluded.sha256,
				content_type=excluded.content_type, pages=excluded.pages, ingested_at=excluded.ingested_at`,
			docID, doc.Filename, doc.RelPath, doc.SHA256, doc.ContentType, doc.Pages,
			doc.IngestedAt.UTC().Format(time.RFC3339),
		)
	} else {
		_, err = tx.ExecContext(ctx, `INSERT OR IGNORE INTO documents (id) VALUES (?)`, docID)
	}
	if err != nil {
		return fmt.Errorf("upserting document: %w", err)
	}

	claimStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO claims (id, doc_id, statement, claim_type, confidence, source_document,
			section, page, line_start, line_end, tags, equation_refs, scriptural_mapping)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing claim insert: %w", err)
	}
	defer claimStmt.Close()

	for _, c := range claims {
		start, end := lineBounds(c.LineRange)
		_, err := claimStmt.ExecContext(ctx,
			c.ID, docID, c.Statement, string(c.Type), c.Confidence, c.SourceDocument,
			c.SourceSection, c.PageNumber, start, end,
			jsonList(c.Tags), jsonList(c.EquationRefs), c.ScripturalMapping,
		)
		if err != nil {
			return fmt.Errorf("inserting claim %s: %w", c.ID, err)
		}
	}

	eqStmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO equations (id, doc_id, formula, context, section, page,
			line_start, line_end, related_claims)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing equation insert: %w", err)
	}
	defer eqStmt.Close()

	for _, eq := range equations {
		start, end := lineBounds(eq.LineRange)
		_, err := eqStmt.ExecContext(ctx,
			eq.ID, docID, eq.Formula, eq.Context, eq.Section, eq.PageNumber,
			start, end, jsonList(eq.RelatedClaims),
		)
		if err != nil {
			return fmt.Errorf("inserting equation %s: %w", eq.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (doc_id, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(doc_id) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		docID, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}

func lineBounds(lr *types.LineRange) (start, end *int) {
	if lr == nil {
		return nil, nil
	}
	a, b := lr[0], lr[1]
	return &a, &b
}

func jsonList(v []string) string {
	if v == nil {
		v = []string{}
	}
	data, _ := json.Marshal(v)
	return string(data)
}
