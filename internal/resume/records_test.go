// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resume

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/rhino-harvest/pkg/types"
)

func TestWriteRecords_OneLinePerRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.jsonl")
	recs := []types.ExtractedRecord{
		{ID: "x#1", Code: "a < b && c", Language: types.LangPython},
		{ID: "x#2", Code: "line1\nline2", Language: types.LangPython},
	}
	require.NoError(t, WriteRecords(path, recs))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "a < b && c", "HTML characters are not escaped")

	got, malformed, err := ReadRecords(path)
	require.NoError(t, err)
	assert.Zero(t, malformed)
	assert.Equal(t, recs, got)
}

func TestWriteRecords_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.jsonl")
	require.NoError(t, WriteRecords(path, nil))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())

	got, malformed, err := ReadRecords(path)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, malformed)
}

func TestReadRecords_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mixed.jsonl")
	content := `{"id":"1#1","code":"rs.AddPoint(0,0,0)"}` + "\n" +
		"\n" +
		`{"id":"1#2","code":` + "\n" +
		`{"code":"no id"}` + "\n" +
		`{"id":"1#3","code":"rs.AddLine(a, b)"}` // no trailing newline
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, malformed, err := ReadRecords(path)
	require.NoError(t, err)
	assert.Equal(t, 2, malformed)
	require.Len(t, got, 2)
	assert.Equal(t, "1#1", got[0].ID)
	assert.Equal(t, "1#3", got[1].ID)
}

func TestReadRecords_MissingFile(t *testing.T) {
	_, _, err := ReadRecords(filepath.Join(t.TempDir(), "absent.jsonl"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
