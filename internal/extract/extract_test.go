// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/rhino-harvest/pkg/types"
)

const loftBlock = `<pre><code class="lang-python">import rhinoscriptsyntax as rs

curves = rs.GetObjects("Select curves", rs.filter.curve)
if curves:
    rs.AddLoftSrf(curves)
</code></pre>`

const shortBlock = `<pre><code>import rhinoscriptsyntax as rs
rs.AddPoint((0, 0, 0))
rs.Redraw()
</code></pre>`

func forumFetch(posts ...types.Post) types.FetchResult {
	return types.FetchResult{
		Item:  types.WorkItem{ID: "1", Source: types.SourceForum, Title: "A", Tags: []string{"x"}},
		Title: "A",
		URL:   "https://forum.example/t/a/1",
		Posts: posts,
	}
}

func TestForumExtract_OneQualifyingBlock(t *testing.T) {
	res := forumFetch(
		types.Post{Number: 1, Username: "asker", Cooked: "<p>How do I loft the selected curves?</p>"},
		types.Post{Number: 2, Username: "helper", Cooked: "<p>Try this:</p>" + loftBlock + shortBlock, Accepted: true},
	)

	records := NewForumExtractor(types.DefaultExtraction()).Extract(res)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "1#1", r.ID)
	assert.Equal(t, "1", r.WorkItemID)
	assert.Equal(t, types.SourceForum, r.Source)
	assert.Equal(t, "https://forum.example/t/a/1", r.SourceURL)
	assert.Equal(t, types.LangPython, r.Language)
	assert.Equal(t, "helper", r.Author)
	assert.Equal(t, 2, r.PostNumber)
	assert.True(t, r.IsSolution)
	assert.Contains(t, r.Code, "rs.AddLoftSrf(curves)")
	assert.Contains(t, r.Instruction, "How do I loft")
	assert.Contains(t, r.Tags, "x", "discovery tags are kept")
	assert.Contains(t, r.Tags, "python")
	assert.Contains(t, r.Tags, "rhinoscriptsyntax")
}

func TestForumExtract_Filters(t *testing.T) {
	irrelevant := `<pre><code>import os
for f in os.listdir("."):
    print(f)
    print(len(f))
</code></pre>`

	tests := []struct {
		name   string
		cooked string
		want   int
	}{
		{"below minimum lines", shortBlock, 0},
		{"no domain keyword", irrelevant, 0},
		{"qualifying", loftBlock, 1},
		{"same block twice in one thread", loftBlock + loftBlock, 2},
		{"no code", "<p>Thanks, that worked!</p>", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := forumFetch(
				types.Post{Number: 1, Cooked: "<p>question</p>"},
				types.Post{Number: 2, Cooked: tt.cooked},
			)
			got := NewForumExtractor(types.DefaultExtraction()).Extract(res)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestForumExtract_SelfAnsweredFirstPost(t *testing.T) {
	res := forumFetch(types.Post{Number: 1, Username: "asker", Cooked: "<p>Here is my script:</p>" + loftBlock})

	records := NewForumExtractor(types.DefaultExtraction()).Extract(res)
	require.Len(t, records, 1)
	assert.Equal(t, 1, records[0].PostNumber)
	assert.Equal(t, "asker", records[0].Author)
}

func TestForumExtract_OrderAndNumbering(t *testing.T) {
	res := forumFetch(
		types.Post{Number: 3, Username: "c", Cooked: loftBlock},
		types.Post{Number: 1, Username: "a", Cooked: "<p>q</p>"},
		types.Post{Number: 2, Username: "b", Cooked: loftBlock},
	)

	records := NewForumExtractor(types.DefaultExtraction()).Extract(res)
	require.Len(t, records, 2)
	assert.Equal(t, "1#1", records[0].ID)
	assert.Equal(t, "b", records[0].Author)
	assert.Equal(t, "1#2", records[1].ID)
	assert.Equal(t, "c", records[1].Author)

	again := NewForumExtractor(types.DefaultExtraction()).Extract(res)
	assert.Equal(t, records, again, "extraction is deterministic")
}

func TestForumExtract_LanguageHintWins(t *testing.T) {
	// C#-looking text with an explicit python hint.
	block := `<pre><code class="lang-python">using Rhino;
public static void Main() {
    var doc = RhinoDoc.ActiveDoc;
};
</code></pre>`
	res := forumFetch(types.Post{Number: 1, Cooked: "<p>q</p>"}, types.Post{Number: 2, Cooked: block})

	records := NewForumExtractor(types.DefaultExtraction()).Extract(res)
	require.Len(t, records, 1)
	assert.Equal(t, types.LangPython, records[0].Language)
}

func TestForumExtract_MultilineInlineCode(t *testing.T) {
	cooked := "<p><code>import rhinoscriptsyntax as rs\nids = rs.AllObjects()\nfor i in ids:\n    rs.ObjectColor(i, (255,0,0))</code></p>" +
		"<p><code>rs.AddPoint</code></p>"
	res := forumFetch(types.Post{Number: 1, Cooked: "<p>q</p>"}, types.Post{Number: 2, Cooked: cooked})

	records := NewForumExtractor(types.DefaultExtraction()).Extract(res)
	require.Len(t, records, 1)
	assert.Contains(t, records[0].Code, "rs.ObjectColor")
}

func TestForumExtract_QuestionTruncated(t *testing.T) {
	cfg := types.DefaultExtraction()
	cfg.MaxQuestionChars = 20
	res := forumFetch(
		types.Post{Number: 1, Cooked: "<p>" + strings.Repeat("long question ", 20) + "</p>"},
		types.Post{Number: 2, Cooked: loftBlock},
	)

	records := NewForumExtractor(cfg).Extract(res)
	require.Len(t, records, 1)
	assert.Equal(t, 23, len([]rune(records[0].Instruction)))
	assert.True(t, strings.HasSuffix(records[0].Instruction, "..."))
}

func TestForumExtract_NoPosts(t *testing.T) {
	assert.Empty(t, NewForumExtractor(types.DefaultExtraction()).Extract(forumFetch()))
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"python", "import rhinoscriptsyntax as rs\ndef main():\n    print(rs.AllObjects())", types.LangPython},
		{"csharp", "using Rhino;\nnamespace Demo {\n  public static void Run() {\n    var x = 1; // c\n  }\n}", types.LangCSharp},
		{"tie", "x = 1", types.LangUnknown},
		{"signals count once", "rs.a rs.b rs.c rs.d { }", types.LangUnknown},
	}
	for _, tt := range tests {
		if got := DetectLanguage(tt.code); got != tt.want {
			t.Errorf("%s: DetectLanguage() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestLanguageFromClass(t *testing.T) {
	tests := []struct {
		class string
		want  string
	}{
		{"lang-python", types.LangPython},
		{"hljs language-py", types.LangPython},
		{"lang-cs", types.LangCSharp},
		{"lang-csharp", types.LangCSharp},
		{"lang-css", ""},
		{"lang-auto", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := LanguageFromClass(tt.class); got != tt.want {
			t.Errorf("LanguageFromClass(%q) = %q, want %q", tt.class, got, tt.want)
		}
	}
}

func TestInferTags(t *testing.T) {
	tags := InferTags("Boolean union of meshes", "", "import rhinoscriptsyntax as rs\nrs.BooleanUnion(ids)")
	assert.Equal(t, []string{"boolean", "file-io", "geometry", "mesh", "python", "rhinoscriptsyntax"}, tags)
	assert.Equal(t, []string{}, InferTags("nothing relevant"))
}
