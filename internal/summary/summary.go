// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summary keeps the run summary of a harvest: incremental counters
// while the run progresses, interim checkpoints, and a final report
// recomputed from the record files on disk.
package summary

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/rhino-harvest/pkg/types"
)

// FileName is the summary file written next to the record directory.
const FileName = "summary.json"

// TopRepositories bounds the repositories listed in a summary.
const TopRepositories = 20

// Reporter accumulates the counts of one run.
type Reporter struct {
	// Now returns the current time. Tests replace it for stable output.
	Now func() time.Time

	path       string
	recordsDir string
	logger     *slog.Logger
	sum        types.RunSummary
}

// NewReporter returns a reporter for source that writes its summary into
// outputDir and rescans recordsDir on Finalize.
func NewReporter(source, outputDir, recordsDir string, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Reporter{
		Now:        time.Now,
		path:       filepath.Join(outputDir, FileName),
		recordsDir: recordsDir,
		logger:     logger,
	}
	r.sum = types.RunSummary{
		RunID:     uuid.NewString(),
		Source:    source,
		Status:    types.StatusInProgress,
		StartedAt: r.Now().UTC(),
	}
	resetTallies(&r.sum)
	return r
}

// Path returns the summary file path.
func (r *Reporter) Path() string { return r.path }

// Discovered records the discovery outcome.
func (r *Reporter) Discovered(items int, reports []types.ChannelReport) {
	r.sum.Discovered = items
	r.sum.ChannelReports = append([]types.ChannelReport(nil), reports...)
	r.sum.Channels = make([]string, 0, len(reports))
	for _, rep := range reports {
		r.sum.Channels = append(r.sum.Channels, rep.Name)
	}
}

// AlreadyDone counts an item skipped because an earlier run completed it.
func (r *Reporter) AlreadyDone() { r.sum.AlreadyDone++ }

// Fetched counts a successful content fetch.
func (r *Reporter) Fetched() { r.sum.Fetched++ }

// Written counts a processed item whose record file was written.
func (r *Reporter) Written(records []types.ExtractedRecord) {
	r.sum.Processed++
	r.sum.ItemsOnDisk++
	if len(records) == 0 {
		r.sum.Empty++
		return
	}
	r.sum.WithContent++
	tallyFile(&r.sum, records)
}

// Failed counts an item that failed with reason. A retryable failure is a
// skip for this run; anything else is an error.
func (r *Reporter) Failed(reason string, retryable bool) {
	r.sum.Processed++
	r.sum.Failures[reason]++
	if retryable {
		r.sum.Skipped++
	} else {
		r.sum.Errors++
	}
}

// Gone counts an item the provider reports as missing or rejected; it is
// written with no records and never retried.
func (r *Reporter) Gone(reason string) {
	r.sum.Failures[reason]++
	r.Written(nil)
}

// Summary returns a copy of the current summary.
func (r *Reporter) Summary() types.RunSummary {
	s := r.sum
	s.Failures = cloneCounts(r.sum.Failures)
	s.Languages = cloneCounts(r.sum.Languages)
	s.Tags = cloneCounts(r.sum.Tags)
	s.Imports = cloneCounts(r.sum.Imports)
	s.TopRepositories = cloneCounts(r.sum.TopRepositories)
	s.Channels = append([]string(nil), r.sum.Channels...)
	s.ChannelReports = append([]types.ChannelReport(nil), r.sum.ChannelReports...)
	return s
}

// Checkpoint writes the incremental summary with status in_progress.
func (r *Reporter) Checkpoint() error {
	r.sum.Status = types.StatusInProgress
	r.sum.UpdatedAt = r.Now().UTC()
	if err := Write(r.path, r.sum); err != nil {
		return err
	}
	r.logger.Info("checkpoint written", "path", r.path, "processed", r.sum.Processed, "records", r.sum.Records)
	return nil
}

// Finalize recomputes the on-disk counts from the record files, ignoring
// the incremental tallies, and writes the summary with status complete.
func (r *Reporter) Finalize() (types.RunSummary, error) {
	tally, err := Scan(r.recordsDir)
	if err != nil {
		return r.Summary(), err
	}
	tally.Apply(&r.sum)
	r.sum.Status = types.StatusComplete
	r.sum.UpdatedAt = r.Now().UTC()

	if err := Write(r.path, r.sum); err != nil {
		return r.Summary(), err
	}
	r.logger.Info("summary written", "path", r.path,
		"items_on_disk", r.sum.ItemsOnDisk, "records", r.sum.Records, "malformed_lines", r.sum.MalformedLines)
	return r.Summary(), nil
}

// Write replaces the summary file at path. The file is written to a
// temporary sibling and renamed so readers never see a partial summary.
func Write(path string, s types.RunSummary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".summary-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing summary: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Load reads a summary file.
func Load(path string) (types.RunSummary, error) {
	var s types.RunSummary
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("reading summary: %w", err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parsing summary %s: %w", path, err)
	}
	return s, nil
}

func resetTallies(s *types.RunSummary) {
	s.Failures = make(map[string]int)
	s.Languages = make(map[string]int)
	s.Tags = make(map[string]int)
	s.Imports = make(map[string]int)
	s.TopRepositories = make(map[string]int)
}

// tallyFile adds the records of one item file. WithDocstring and
// WithInstruction count files, not records.
func tallyFile(s *types.RunSummary, records []types.ExtractedRecord) {
	var docstring, instruction bool
	for _, rec := range records {
		tallyRecord(s, rec)
		docstring = docstring || rec.HasDocstring
		instruction = instruction || rec.Instruction != ""
	}
	if docstring {
		s.WithDocstring++
	}
	if instruction {
		s.WithInstruction++
	}
}

func tallyRecord(s *types.RunSummary, rec types.ExtractedRecord) {
	s.Records++
	if rec.IsSolution {
		s.SolutionRecords++
	}
	s.Languages[rec.Language]++
	for _, t := range rec.Tags {
		s.Tags[t]++
	}
	for _, imp := range rec.Imports {
		s.Imports[imp]++
	}
	if rec.Repository != "" {
		s.TopRepositories[rec.Repository]++
	}
}

func cloneCounts(m map[string]int) map[string]int {
	if m == nil {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// topN keeps the n largest counts, breaking ties by name.
func topN(m map[string]int, n int) map[string]int {
	if len(m) <= n {
		return m
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	out := make(map[string]int, n)
	for _, k := range keys[:n] {
		out[k] = m[k]
	}
	return out
}
