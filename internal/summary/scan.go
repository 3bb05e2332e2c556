// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summary

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/rhino-harvest/internal/resume"
	"github.com/pdiddy/rhino-harvest/pkg/types"
)

// Tally is the state of a record directory as found on disk.
type Tally struct {
	ItemsOnDisk     int
	WithContent     int
	WithDocstring   int
	WithInstruction int
	Records         int
	SolutionRecords int
	MalformedLines  int
	Languages       map[string]int
	Tags            map[string]int
	Imports         map[string]int
	TopRepositories map[string]int
}

// Scan reads every record file in recordsDir. Lines that do not decode as a
// record are counted as malformed and otherwise ignored. A missing
// directory yields an empty tally.
func Scan(recordsDir string) (Tally, error) {
	var s types.RunSummary
	resetTallies(&s)

	entries, err := os.ReadDir(recordsDir)
	if err != nil && !os.IsNotExist(err) {
		return Tally{}, fmt.Errorf("reading %s: %w", recordsDir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), resume.RecordExt) {
			continue
		}
		path := filepath.Join(recordsDir, e.Name())
		n, bad, err := scanFile(path, &s)
		if err != nil {
			return Tally{}, err
		}
		s.ItemsOnDisk++
		if n > 0 {
			s.WithContent++
		}
		s.MalformedLines += bad
	}

	return Tally{
		ItemsOnDisk:     s.ItemsOnDisk,
		WithContent:     s.WithContent,
		WithDocstring:   s.WithDocstring,
		WithInstruction: s.WithInstruction,
		Records:         s.Records,
		SolutionRecords: s.SolutionRecords,
		MalformedLines:  s.MalformedLines,
		Languages:       s.Languages,
		Tags:            s.Tags,
		Imports:         s.Imports,
		TopRepositories: s.TopRepositories,
	}, nil
}

// Apply replaces the on-disk fields of s with the tally.
func (t Tally) Apply(s *types.RunSummary) {
	s.ItemsOnDisk = t.ItemsOnDisk
	s.WithContent = t.WithContent
	s.WithDocstring = t.WithDocstring
	s.WithInstruction = t.WithInstruction
	s.Records = t.Records
	s.SolutionRecords = t.SolutionRecords
	s.MalformedLines = t.MalformedLines
	s.Languages = t.Languages
	s.Tags = t.Tags
	s.Imports = t.Imports
	s.TopRepositories = topN(t.TopRepositories, TopRepositories)
}

func scanFile(path string, s *types.RunSummary) (records, malformed int, err error) {
	recs, malformed, err := resume.ReadRecords(path)
	if err != nil {
		return 0, 0, err
	}
	tallyFile(s, recs)
	return len(recs), malformed, nil
}
