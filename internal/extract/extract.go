// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns a fetched document into zero or more candidate
// records. Forum threads yield one candidate per code block; source files
// are a single candidate. Candidates pass through hard filters (length,
// domain relevance, file-level quality) before language and tags are
// assigned.
//
// Extraction is deterministic: the same FetchResult always yields the same
// records in the same order. Identical content across different work items
// is kept; deduplication belongs to the downstream cleaning stage.
package extract

import (
	"fmt"
	"strings"

	"github.com/pdiddy/rhino-harvest/pkg/types"
)

// Extractor produces records from one fetched document. Each source
// provides its own implementation per the Strategy pattern.
type Extractor interface {
	Extract(res types.FetchResult) []types.ExtractedRecord
}

// DefaultKeywords is the domain-relevance keyword set for forum code blocks.
// A block must contain at least one of them, case-insensitively.
var DefaultKeywords = []string{
	"rhinoscriptsyntax", "rhino.geometry", "rhinocommon", "scriptcontext",
	"rs.", "import Rhino", "import rhino3dm", "RhinoDoc", "RhinoApp",
	"Rhino.Commands", "Rhino.Input", "Rhino.DocObjects",
	"ghpythonlib", "Grasshopper", "ghdoc",
	"AddLine", "AddCircle", "AddSphere", "AddCurve", "AddSurface",
	"AddPoint", "AddMesh", "AddBrep", "AddBox", "AddCylinder",
	"GetObject", "GetObjects", "GetPoint", "GetPoints",
	"ObjectName", "ObjectLayer", "ObjectColor",
	"coerce", "scriptcontext.doc",
	"RhinoCommon", "Rhino.Geometry.", "RhinoDoc.ActiveDoc",
	"Rhino.Commands.Result", "using Rhino",
}

// DefaultCodePatterns is the stricter relevance set for whole source files.
var DefaultCodePatterns = []string{
	"import rhinoscriptsyntax",
	"import Rhino",
	"from Rhino",
	"import rhino3dm",
	"from rhino3dm",
	"import scriptcontext",
	"from scriptcontext",
	"ghpythonlib",
	"RhinoCommon",
	"rs.Add",
}

// keywordSet matches text case-insensitively against a fixed set.
type keywordSet []string

func newKeywordSet(words []string) keywordSet {
	set := make(keywordSet, 0, len(words))
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			set = append(set, w)
		}
	}
	return set
}

func (k keywordSet) matches(text string) bool {
	lower := strings.ToLower(text)
	for _, w := range k {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// recordID numbers records within their work item, starting at 1.
func recordID(itemID string, n int) string {
	return fmt.Sprintf("%s#%d", itemID, n)
}

// lineCount counts the lines of a trimmed block.
func lineCount(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

// trimBlankLines removes leading and trailing blank lines and trailing
// whitespace, keeping the indentation of the first code line.
func trimBlankLines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.TrimRight(strings.Join(lines[start:end], "\n"), " \t")
}

// truncate cuts s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
