// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summary

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/rhino-harvest/pkg/types"
)

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func writeRecords(t *testing.T, dir, name string, recs ...types.ExtractedRecord) {
	t.Helper()
	var b strings.Builder
	for _, r := range recs {
		data, err := json.Marshal(r)
		require.NoError(t, err)
		b.Write(data)
		b.WriteByte('\n')
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(b.String()), 0o644))
}

func newTestReporter(t *testing.T) (*Reporter, string) {
	t.Helper()
	out := t.TempDir()
	recs := filepath.Join(out, "records")
	require.NoError(t, os.MkdirAll(recs, 0o755))
	r := NewReporter(types.SourceForum, out, recs, quietLogger())
	r.Now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return r, recs
}

func TestNewReporter_AssignsRunID(t *testing.T) {
	r, _ := newTestReporter(t)
	s := r.Summary()
	_, err := uuid.Parse(s.RunID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusInProgress, s.Status)
	assert.Equal(t, types.SourceForum, s.Source)
}

func TestReporter_IncrementalCounts(t *testing.T) {
	r, _ := newTestReporter(t)
	r.Discovered(4, []types.ChannelReport{{Name: "search:a", Pages: 2, Items: 3}, {Name: "category:3", Pages: 1, Items: 2}})
	r.AlreadyDone()
	r.Fetched()
	r.Written([]types.ExtractedRecord{
		{ID: "1#1", Language: types.LangPython, Tags: []string{"mesh", "python"}, IsSolution: true},
		{ID: "1#2", Language: types.LangPython, Tags: []string{"mesh"}},
	})
	r.Fetched()
	r.Written(nil)
	r.Gone("not_found")
	r.Failed("rate_limited", true)
	r.Failed("http_error", false)

	s := r.Summary()
	assert.Equal(t, 4, s.Discovered)
	assert.Equal(t, []string{"search:a", "category:3"}, s.Channels)
	assert.Equal(t, 1, s.AlreadyDone)
	assert.Equal(t, 5, s.Processed)
	assert.Equal(t, 2, s.Fetched)
	assert.Equal(t, 2, s.Empty)
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, 1, s.Errors)
	assert.Equal(t, 3, s.ItemsOnDisk)
	assert.Equal(t, 1, s.WithContent)
	assert.Equal(t, 2, s.Records)
	assert.Equal(t, 1, s.SolutionRecords)
	assert.Equal(t, map[string]int{types.LangPython: 2}, s.Languages)
	assert.Equal(t, map[string]int{"mesh": 2, "python": 1}, s.Tags)
	assert.Equal(t, map[string]int{"not_found": 1, "rate_limited": 1, "http_error": 1}, s.Failures)
}

func TestReporter_CheckpointWritesInProgress(t *testing.T) {
	r, _ := newTestReporter(t)
	r.Written([]types.ExtractedRecord{{ID: "1#1", Language: types.LangPython}})
	require.NoError(t, r.Checkpoint())

	got, err := Load(r.Path())
	require.NoError(t, err)
	assert.Equal(t, types.StatusInProgress, got.Status)
	assert.Equal(t, 1, got.Records)
	assert.Equal(t, r.Summary().RunID, got.RunID)
}

func TestReporter_FinalizeRescansDisk(t *testing.T) {
	r, recs := newTestReporter(t)
	// Counters from this run only know about one item.
	r.Written([]types.ExtractedRecord{{ID: "9#1", Language: types.LangCSharp}})

	writeRecords(t, recs, "1.jsonl",
		types.ExtractedRecord{ID: "1#1", Language: types.LangPython, Tags: []string{"mesh"}, IsSolution: true},
		types.ExtractedRecord{ID: "1#2", Language: types.LangPython, Tags: []string{"mesh", "curve"}},
	)
	writeRecords(t, recs, "2.jsonl")
	writeRecords(t, recs, "o%2Fr%3Aa.py.jsonl", types.ExtractedRecord{
		ID: "o/r:a.py#1", Language: types.LangPython, Repository: "o/r", Imports: []string{"rhinoscriptsyntax"},
	})
	require.NoError(t, os.WriteFile(filepath.Join(recs, "3.jsonl"), []byte("{\"id\":\"3#1\",\"language\":\"python\"}\n{\"id\":\"3#2\",\"lang"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(recs, "notes.txt"), []byte("ignored"), 0o644))

	s, err := r.Finalize()
	require.NoError(t, err)
	assert.Equal(t, types.StatusComplete, s.Status)
	assert.Equal(t, 4, s.ItemsOnDisk)
	assert.Equal(t, 3, s.WithContent)
	assert.Equal(t, 4, s.Records)
	assert.Equal(t, 1, s.SolutionRecords)
	assert.Equal(t, 1, s.MalformedLines)
	assert.Equal(t, map[string]int{types.LangPython: 4}, s.Languages)
	assert.Equal(t, map[string]int{"mesh": 2, "curve": 1}, s.Tags)
	assert.Equal(t, map[string]int{"rhinoscriptsyntax": 1}, s.Imports)
	assert.Equal(t, map[string]int{"o/r": 1}, s.TopRepositories)

	onDisk, err := Load(r.Path())
	require.NoError(t, err)
	assert.Equal(t, s.Records, onDisk.Records)
	assert.Equal(t, types.StatusComplete, onDisk.Status)

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(r.Path()), ".summary-*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches, "no temp files left behind")
}

func TestReporter_CountsDocstringAndInstructionFiles(t *testing.T) {
	r, recs := newTestReporter(t)
	r.Written([]types.ExtractedRecord{
		{ID: "1#1", Language: types.LangPython, Instruction: "How do I loft curves?"},
		{ID: "1#2", Language: types.LangPython, Instruction: "How do I loft curves?"},
	})
	r.Written([]types.ExtractedRecord{{ID: "o/r:a.py#1", Language: types.LangPython, HasDocstring: true}})
	r.Written([]types.ExtractedRecord{{ID: "2#1", Language: types.LangCSharp}})

	s := r.Summary()
	assert.Equal(t, 1, s.WithInstruction, "counted once per file")
	assert.Equal(t, 1, s.WithDocstring)

	writeRecords(t, recs, "1.jsonl",
		types.ExtractedRecord{ID: "1#1", Language: types.LangPython, Instruction: "Split a brep"},
		types.ExtractedRecord{ID: "1#2", Language: types.LangPython, HasDocstring: true},
	)
	writeRecords(t, recs, "2.jsonl", types.ExtractedRecord{ID: "2#1", Language: types.LangPython, Instruction: "Offset"})
	writeRecords(t, recs, "o%2Fr%3Aa.py.jsonl", types.ExtractedRecord{ID: "o/r:a.py#1", Language: types.LangPython, HasDocstring: true})
	writeRecords(t, recs, "3.jsonl", types.ExtractedRecord{ID: "3#1", Language: types.LangPython})

	s, err := r.Finalize()
	require.NoError(t, err)
	assert.Equal(t, 2, s.WithInstruction)
	assert.Equal(t, 2, s.WithDocstring)

	onDisk, err := Load(r.Path())
	require.NoError(t, err)
	assert.Equal(t, 2, onDisk.WithDocstring)
	assert.Equal(t, 2, onDisk.WithInstruction)
}

func TestScan_MissingDirectory(t *testing.T) {
	tally, err := Scan(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Zero(t, tally.ItemsOnDisk)
	assert.Empty(t, tally.Languages)
}

func TestTopN(t *testing.T) {
	m := map[string]int{"a": 1, "b": 5, "c": 5, "d": 3}
	assert.Equal(t, map[string]int{"b": 5, "c": 5}, topN(m, 2))
	assert.Equal(t, m, topN(m, 10))
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)
}
