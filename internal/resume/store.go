// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resume tracks which work items have been fully processed, across
// process restarts.
//
// State lives in two places: an append-only completion log holding one
// canonical id per line, and the record directory holding one file per
// processed item. The record directory is the source of truth. On open, any
// record file missing from the log is added to it; a logged id whose record
// file is gone is treated as not done.
package resume

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Output layout under a source's output directory.
const (
	RecordsDirName = "records"
	LogFileName    = "completed.log"
	RecordExt      = ".jsonl"
)

// ErrEmptyID is returned when marking an empty id.
var ErrEmptyID = errors.New("resume: empty id")

// Store is the completion state of one output directory.
type Store struct {
	recordsDir string
	logPath    string
	logger     *slog.Logger

	mu      sync.Mutex
	logged  map[string]bool // ids in the completion log
	present map[string]bool // record file keys on disk
	log     *os.File

	repaired int
	stale    int
}

// Open loads the completion log at logPath and reconciles it against the
// record files in recordsDir. Both are created when missing.
func Open(recordsDir, logPath string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(recordsDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating records dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating log dir: %w", err)
	}

	s := &Store{
		recordsDir: recordsDir,
		logPath:    logPath,
		logger:     logger,
		logged:     make(map[string]bool),
		present:    make(map[string]bool),
	}
	if err := s.load(); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening completion log: %w", err)
	}
	s.log = f

	if err := s.reconcile(); err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

// OpenDir opens the store for the standard layout under outputDir.
func OpenDir(outputDir string, logger *slog.Logger) (*Store, error) {
	return Open(filepath.Join(outputDir, RecordsDirName), filepath.Join(outputDir, LogFileName), logger)
}

// load reads the completion log. A final line without a newline is the
// remains of an interrupted append; it is cut off so a partial id never
// counts as done.
func (s *Store) load() error {
	data, err := os.ReadFile(s.logPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading completion log: %w", err)
	}

	if n := len(data); n > 0 && data[n-1] != '\n' {
		keep := bytes.LastIndexByte(data, '\n') + 1
		s.logger.Warn("dropping partial completion log line", "path", s.logPath, "line", string(data[keep:]))
		if err := os.Truncate(s.logPath, int64(keep)); err != nil {
			return fmt.Errorf("truncating completion log: %w", err)
		}
		data = data[:keep]
	}

	for _, line := range strings.Split(string(data), "\n") {
		if id := strings.TrimSpace(line); id != "" {
			s.logged[id] = true
		}
	}
	return nil
}

// reconcile scans the record directory and appends every decodable record
// id missing from the log.
func (s *Store) reconcile() error {
	entries, err := os.ReadDir(s.recordsDir)
	if err != nil {
		return fmt.Errorf("scanning records dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), RecordExt) {
			continue
		}
		key := strings.TrimSuffix(e.Name(), RecordExt)
		s.present[key] = true

		id, ok := ParseFileKey(key)
		if !ok || s.logged[id] {
			continue
		}
		if err := s.appendLocked(id); err != nil {
			return err
		}
		s.repaired++
	}

	for id := range s.logged {
		if !s.present[FileKey(id)] {
			s.stale++
		}
	}
	if s.repaired > 0 || s.stale > 0 {
		s.logger.Info("completion log reconciled", "repaired", s.repaired, "stale", s.stale, "done", len(s.logged))
	}
	return nil
}

// RecordsDir returns the directory holding record files.
func (s *Store) RecordsDir() string { return s.recordsDir }

// LogPath returns the path of the completion log.
func (s *Store) LogPath() string { return s.logPath }

// RecordPath returns the record file path for id.
func (s *Store) RecordPath(id string) string {
	return filepath.Join(s.recordsDir, FileKey(id)+RecordExt)
}

// IsDone reports whether id was fully processed: its record file exists.
// A record file found without a log entry repairs the log.
func (s *Store) IsDone(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := FileKey(id)
	if !s.present[key] {
		if _, err := os.Stat(s.RecordPath(id)); err != nil {
			return false
		}
		s.present[key] = true
	}
	if !s.logged[id] {
		if err := s.appendLocked(id); err != nil {
			s.logger.Warn("repairing completion log", "id", id, "err", err)
		} else {
			s.repaired++
		}
	}
	return true
}

// MarkDone appends id to the completion log and syncs it. Call it only
// after the record file for id has been written.
func (s *Store) MarkDone(id string) error {
	if id == "" {
		return ErrEmptyID
	}
	if strings.ContainsAny(id, "\r\n") {
		return fmt.Errorf("resume: id %q contains a line break", id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.present[FileKey(id)] = true
	if s.logged[id] {
		return nil
	}
	return s.appendLocked(id)
}

func (s *Store) appendLocked(id string) error {
	if _, err := s.log.WriteString(id + "\n"); err != nil {
		return fmt.Errorf("appending to completion log: %w", err)
	}
	if err := s.log.Sync(); err != nil {
		return fmt.Errorf("syncing completion log: %w", err)
	}
	s.logged[id] = true
	return nil
}

// Len returns the number of ids in the completion log.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.logged)
}

// Repaired returns how many ids were added to the log from the record
// directory rather than by MarkDone.
func (s *Store) Repaired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repaired
}

// Stale returns how many logged ids had no record file when the store was
// opened. Those items are processed again.
func (s *Store) Stale() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stale
}

// Close closes the completion log.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.log == nil {
		return nil
	}
	err := s.log.Close()
	s.log = nil
	return err
}
