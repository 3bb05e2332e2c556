// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resume

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openTest(t *testing.T, dir string) *Store {
	t.Helper()
	s, err := OpenDir(dir, quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func writeRecord(t *testing.T, s *Store, id, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(s.RecordPath(id), []byte(content), 0o644))
}

func logLines(t *testing.T, dir string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	require.NoError(t, err)
	var lines []string
	for _, l := range strings.Split(string(data), "\n") {
		if l != "" {
			lines = append(lines, l)
		}
	}
	sort.Strings(lines)
	return lines
}

func TestOpen_CreatesLayout(t *testing.T) {
	dir := t.TempDir()
	s := openTest(t, dir)

	assert.DirExists(t, filepath.Join(dir, RecordsDirName))
	assert.FileExists(t, filepath.Join(dir, LogFileName))
	assert.False(t, s.IsDone("1"))
	assert.Equal(t, 0, s.Len())
}

func TestMarkDone_SurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	s := openTest(t, dir)
	writeRecord(t, s, "1234", `{"id":"1234#1"}`+"\n")
	require.NoError(t, s.MarkDone("1234"))
	assert.True(t, s.IsDone("1234"))
	require.NoError(t, s.Close())

	reopened := openTest(t, dir)
	assert.True(t, reopened.IsDone("1234"))
	assert.Equal(t, 0, reopened.Repaired())
	assert.Equal(t, []string{"1234"}, logLines(t, dir))
}

func TestMarkDone_Idempotent(t *testing.T) {
	dir := t.TempDir()
	s := openTest(t, dir)
	writeRecord(t, s, "7", "")
	require.NoError(t, s.MarkDone("7"))
	require.NoError(t, s.MarkDone("7"))

	assert.Equal(t, []string{"7"}, logLines(t, dir))
}

func TestMarkDone_RejectsBadIDs(t *testing.T) {
	s := openTest(t, t.TempDir())
	assert.ErrorIs(t, s.MarkDone(""), ErrEmptyID)
	assert.Error(t, s.MarkDone("a\nb"))
}

func TestOpen_RecordWithoutMarkerIsReconciled(t *testing.T) {
	dir := t.TempDir()
	s := openTest(t, dir)
	// Crash after writing the record but before the marker.
	writeRecord(t, s, "mcneel/rhino3dm:docs/sample.py", `{"id":"x"}`+"\n")
	require.NoError(t, s.Close())

	reopened := openTest(t, dir)
	assert.Equal(t, 1, reopened.Repaired())
	assert.True(t, reopened.IsDone("mcneel/rhino3dm:docs/sample.py"))
	assert.Equal(t, []string{"mcneel/rhino3dm:docs/sample.py"}, logLines(t, dir))
}

func TestOpen_LostLogIsRebuilt(t *testing.T) {
	dir := t.TempDir()
	s := openTest(t, dir)
	for _, id := range []string{"1", "2", "3"} {
		writeRecord(t, s, id, "")
		require.NoError(t, s.MarkDone(id))
	}
	require.NoError(t, s.Close())
	require.NoError(t, os.Remove(filepath.Join(dir, LogFileName)))

	reopened := openTest(t, dir)
	assert.Equal(t, 3, reopened.Repaired())
	assert.Equal(t, []string{"1", "2", "3"}, logLines(t, dir))
}

func TestIsDone_MarkerWithoutRecordIsRetried(t *testing.T) {
	dir := t.TempDir()
	s := openTest(t, dir)
	writeRecord(t, s, "9", "")
	require.NoError(t, s.MarkDone("9"))
	require.NoError(t, s.Close())
	require.NoError(t, os.Remove(s.RecordPath("9")))

	reopened := openTest(t, dir)
	assert.Equal(t, 1, reopened.Stale())
	assert.False(t, reopened.IsDone("9"))
}

func TestOpen_PartialLogLineIsDropped(t *testing.T) {
	dir := t.TempDir()
	s := openTest(t, dir)
	writeRecord(t, s, "1", "")
	writeRecord(t, s, "2", "")
	require.NoError(t, s.Close())
	require.NoError(t, os.WriteFile(filepath.Join(dir, LogFileName), []byte("1\n2\n12"), 0o644))

	reopened := openTest(t, dir)
	assert.False(t, reopened.IsDone("12"))
	assert.True(t, reopened.IsDone("1"))
	assert.Equal(t, []string{"1", "2"}, logLines(t, dir))
}

func TestIsDone_HashedKeyRepairsLog(t *testing.T) {
	dir := t.TempDir()
	s := openTest(t, dir)
	id := "owner/repo:" + strings.Repeat("deep/", 60) + "script.py"
	require.True(t, strings.HasPrefix(FileKey(id), hashPrefix))
	writeRecord(t, s, id, "")
	require.NoError(t, s.Close())

	reopened := openTest(t, dir)
	assert.Equal(t, 0, reopened.Repaired(), "hashed keys cannot be decoded on open")
	assert.True(t, reopened.IsDone(id))
	assert.Equal(t, 1, reopened.Repaired())
	assert.Equal(t, []string{id}, logLines(t, dir))
}

func TestOpen_IgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s := openTest(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(s.RecordsDir(), "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(s.RecordsDir(), "sub.jsonl"), 0o755))
	require.NoError(t, s.Close())

	reopened := openTest(t, dir)
	assert.Equal(t, 0, reopened.Len())
}

func TestOpen_NonCanonicalRecordNameIsNotReconciled(t *testing.T) {
	dir := t.TempDir()
	s := openTest(t, dir)
	// A hand-made name that decodes to "A" but is not FileKey("A").
	require.NoError(t, os.WriteFile(filepath.Join(s.RecordsDir(), "%41"+RecordExt), nil, 0o644))
	require.NoError(t, s.Close())

	reopened := openTest(t, dir)
	assert.Equal(t, 0, reopened.Repaired())
	assert.False(t, reopened.IsDone("A"))
}
