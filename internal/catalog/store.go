// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog indexes harvested records in SQLite for full-text search
// and filtered export. The record files stay the source of truth; the
// catalog is rebuilt from them incrementally.
//
// Full-text search needs FTS5, which mattn/go-sqlite3 only compiles in with
// the sqlite_fts5 build tag.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/rhino-harvest/internal/resume"
	"github.com/pdiddy/rhino-harvest/pkg/types"
)

// ErrNoFTS5 is returned by NewStore when the binary was built without the
// sqlite_fts5 tag.
var ErrNoFTS5 = errors.New("sqlite built without FTS5: rebuild with -tags sqlite_fts5")

const (
	dbFile            = "catalog.db"
	defaultMaxResults = 20
)

// Store manages the catalog database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
}

// NewStore opens or creates the catalog at cfg.Dir/catalog.db and creates
// the schema if it does not exist.
func NewStore(cfg types.CatalogConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{db: db, dir: cfg.Dir, maxResults: maxResults}
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

// Dir returns the catalog directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS records (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL,
			source TEXT NOT NULL,
			file_key TEXT NOT NULL,
			work_item_id TEXT NOT NULL,
			source_url TEXT,
			title TEXT,
			instruction TEXT,
			code TEXT NOT NULL,
			language TEXT,
			author TEXT,
			tags TEXT,
			imports TEXT,
			post_number INTEGER,
			is_solution INTEGER,
			repository TEXT,
			path TEXT,
			license TEXT,
			stars INTEGER,
			has_docstring INTEGER,
			UNIQUE(source, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_file_key ON records(file_key)`,
		`CREATE INDEX IF NOT EXISTS idx_records_language ON records(language)`,
		`CREATE INDEX IF NOT EXISTS idx_records_source ON records(source)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			file_key TEXT PRIMARY KEY,
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
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='records_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		return nil
	}

	ftsStatements := []string{
		`CREATE VIRTUAL TABLE records_fts USING fts5(title, instruction, code, content=records, content_rowid=rowid)`,
		`CREATE TRIGGER records_ai AFTER INSERT ON records BEGIN
			INSERT INTO records_fts(rowid, title, instruction, code) VALUES (new.rowid, new.title, new.instruction, new.code);
		END`,
		`CREATE TRIGGER records_ad AFTER DELETE ON records BEGIN
			INSERT INTO records_fts(records_fts, rowid, title, instruction, code) VALUES('delete', old.rowid, old.title, old.instruction, old.code);
		END`,
		`CREATE TRIGGER records_au AFTER UPDATE ON records BEGIN
			INSERT INTO records_fts(records_fts, rowid, title, instruction, code) VALUES('delete', old.rowid, old.title, old.instruction, old.code);
			INSERT INTO records_fts(rowid, title, instruction, code) VALUES (new.rowid, new.title, new.instruction, new.code);
		END`,
	}
	for _, stmt := range ftsStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			if strings.Contains(err.Error(), "no such module: fts5") {
				return fmt.Errorf("%w: %v", ErrNoFTS5, err)
			}
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}
	return nil
}

// IngestSummary holds counts from one indexing run.
type IngestSummary struct {
	Indexed   int
	Updated   int
	Skipped   int
	Failed    int
	Records   int
	Malformed int
}

// Total returns the number of record files processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest indexes the record files of source found in recordsDir. Files
// whose modification time matches the last indexing run are skipped;
// changed files replace their previous rows. Malformed lines are counted
// and skipped.
func (s *Store) Ingest(ctx context.Context, source, recordsDir string, w io.Writer) (IngestSummary, error) {
	entries, err := os.ReadDir(recordsDir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading records directory %s: %w", recordsDir, err)
	}

	var summary IngestSummary
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), resume.RecordExt) {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		fileKey := source + "/" + entry.Name()
		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", fileKey, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE file_key = ?`, fileKey,
		).Scan(&storedModTime)
		if err == nil && storedModTime == modTime {
			summary.Skipped++
			continue
		}
		isUpdate := err == nil

		records, malformed, err := resume.ReadRecords(filepath.Join(recordsDir, entry.Name()))
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", fileKey, err)
			summary.Failed++
			continue
		}
		summary.Malformed += malformed

		if err := s.ingestFile(ctx, source, fileKey, records, modTime); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", fileKey, err)
			summary.Failed++
			continue
		}
		summary.Records += len(records)
		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d records)\n", fileKey, len(records))
			summary.Updated++
		} else {
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "%s: indexed %d, updated %d, skipped %d, failed %d (%d records, %d malformed lines)\n",
		source, summary.Indexed, summary.Updated, summary.Skipped, summary.Failed, summary.Records, summary.Malformed)
	return summary, nil
}

func (s *Store) ingestFile(ctx context.Context, source, fileKey string, records []types.ExtractedRecord, modTime string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE file_key = ?`, fileKey); err != nil {
		return fmt.Errorf("deleting old records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO records (id, source, file_key, work_item_id, source_url, title, instruction,
			code, language, author, tags, imports, post_number, is_solution, repository, path, license,
			stars, has_docstring)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		tagsJSON, _ := json.Marshal(nonNil(r.Tags))
		importsJSON, _ := json.Marshal(nonNil(r.Imports))
		_, err := stmt.ExecContext(ctx,
			r.ID, source, fileKey, r.WorkItemID, r.SourceURL, r.Title, r.Instruction,
			r.Code, r.Language, r.Author, string(tagsJSON), string(importsJSON),
			r.PostNumber, r.IsSolution, r.Repository, r.Path, r.License,
			r.Stars, r.HasDocstring,
		)
		if err != nil {
			return fmt.Errorf("inserting record %s: %w", r.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (file_key, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(file_key) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		fileKey, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}
	return tx.Commit()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
