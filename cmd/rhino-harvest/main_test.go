// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/rhino-harvest/pkg/types"
)

func TestPipelineConfig_OverlaysConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Cleanup(func() { loadedSecrets = nil })
	t.Setenv("GITHUB_TOKEN", "")

	path := filepath.Join(t.TempDir(), "rhino-harvest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
forum:
  base_url: https://forum.example
  search_pacing:
    delay: 5s
  category_ids: [42]
code:
  known_repos: [owner/repo]
harvest:
  checkpoint_every: 10
`), 0o644))
	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())
	loadedSecrets = map[string]string{"github-token": "from-file"}

	cfg, err := pipelineConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://forum.example", cfg.Forum.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Forum.SearchPacing.Delay)
	assert.Equal(t, []int{42}, cfg.Forum.CategoryIDs)
	assert.Equal(t, []string{"owner/repo"}, cfg.Code.KnownRepos)
	assert.Equal(t, 10, cfg.Harvest.CheckpointEvery)
	assert.Equal(t, "from-file", cfg.Code.Token)

	defaults := types.DefaultPipelineConfig()
	assert.Equal(t, defaults.Forum.OutputDir, cfg.Forum.OutputDir, "unset keys keep their defaults")
	assert.Equal(t, defaults.Code.SearchPacing, cfg.Code.SearchPacing)
}

func TestPrintSummary(t *testing.T) {
	var b strings.Builder
	printSummary(&b, types.RunSummary{
		RunID:         "run-1",
		Source:        types.SourceForum,
		Status:        types.StatusComplete,
		Discovered:    6,
		Processed:     5,
		Failures:      map[string]int{"rate_limited": 1, "not_found": 2},
		Records:       3,
		WithDocstring: 2,
		Languages:     map[string]int{"python": 3},
		ChannelReports: []types.ChannelReport{
			{Name: "search:rs", Pages: 2, Items: 6},
			{Name: "category:3", Pages: 1, Error: "boom"},
		},
	})
	out := b.String()

	assert.Contains(t, out, "Run run-1 (forum): complete")
	assert.Contains(t, out, "discovered      6")
	assert.Contains(t, out, "with docstring  2")
	assert.Less(t, strings.Index(out, "not_found"), strings.Index(out, "rate_limited"), "failure reasons are sorted")
	assert.Contains(t, out, "python")
	assert.Contains(t, out, "channel category:3")
	assert.NotContains(t, out, "channel search:rs")
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "import rhinoscriptsyntax as rs", firstLine("\nimport rhinoscriptsyntax as rs\nrs.AddPoint(0,0,0)"))
	long := strings.Repeat("x", 150)
	assert.Len(t, firstLine(long), 100)
}
