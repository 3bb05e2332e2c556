// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/rhino-harvest/pkg/types"
)

const maxInstructionChars = 200

// skippedNames are boilerplate files that never make useful examples.
var skippedNames = map[string]bool{
	"__init__.py": true,
	"setup.py":    true,
	"conftest.py": true,
	"conf.py":     true,
	"__main__.py": true,
}

var (
	camelBoundary = regexp.MustCompile(`([a-z])([A-Z])`)
	rhinoImport   = regexp.MustCompile(`^\s*(import|from)\s+Rhino\b`)
)

// importMarkers are the library names recorded in ExtractedRecord.Imports.
var importMarkers = []string{
	"rhinoscriptsyntax", "Rhino.Geometry", "rhino3dm", "scriptcontext", "ghpythonlib", "RhinoCommon",
}

// CodeExtractor turns a whole source file into at most one record.
type CodeExtractor struct {
	cfg      types.ExtractionConfig
	patterns keywordSet
}

// NewCodeExtractor returns a source file extractor. Patterns default to
// DefaultCodePatterns when cfg.CodePatterns is empty.
func NewCodeExtractor(cfg types.ExtractionConfig) *CodeExtractor {
	words := cfg.CodePatterns
	if len(words) == 0 {
		words = DefaultCodePatterns
	}
	return &CodeExtractor{cfg: cfg, patterns: newKeywordSet(words)}
}

// Extract applies the file filters in order (skipped name, minimum length,
// relevance, meaningful lines) and returns the surviving file as a single
// record.
func (x *CodeExtractor) Extract(res types.FetchResult) []types.ExtractedRecord {
	if res.File == nil {
		return nil
	}
	item := res.Item
	code := res.File.Content
	if skippedFile(item.Path) {
		return nil
	}
	if len(strings.TrimSpace(code)) < x.cfg.MinCodeChars {
		return nil
	}
	if !x.patterns.matches(code) {
		return nil
	}
	if meaningfulLines(code) < x.cfg.MinMeaningfulLines {
		return nil
	}

	lang := LanguageFromPath(item.Path)
	if lang == "" {
		lang = DetectLanguage(code)
	}
	instruction, hasDoc := Instruction(code, item.Path)

	url := res.URL
	if url == "" {
		url = item.URL
	}
	title := res.Title
	if title == "" {
		title = item.Path
	}

	return []types.ExtractedRecord{{
		ID:           recordID(item.ID, 1),
		WorkItemID:   item.ID,
		Source:       types.SourceCode,
		SourceURL:    url,
		Title:        title,
		Instruction:  instruction,
		Code:         code,
		Language:     lang,
		Author:       repoOwner(item.Repository),
		Tags:         InferTags(item.Path, res.File.Description, code),
		Repository:   item.Repository,
		Path:         item.Path,
		License:      res.File.License,
		Stars:        res.File.Stars,
		Imports:      Imports(code),
		HasDocstring: hasDoc,
	}}
}

func skippedFile(p string) bool {
	base := strings.ToLower(path.Base(p))
	if skippedNames[base] {
		return true
	}
	return strings.HasPrefix(base, "test_") || strings.HasSuffix(base, "_test.py")
}

// meaningfulLines counts lines that are not blank, comments, or imports.
func meaningfulLines(code string) int {
	n := 0
	for _, line := range strings.Split(code, "\n") {
		s := strings.TrimSpace(line)
		if s == "" || strings.HasPrefix(s, "#") || strings.HasPrefix(s, "//") ||
			strings.HasPrefix(s, "import ") || strings.HasPrefix(s, "from ") || strings.HasPrefix(s, "using ") {
			continue
		}
		n++
	}
	return n
}

// Instruction derives a natural-language prompt for a source file: the
// first paragraph of its module docstring, else its leading comments, else
// its humanized file name. The flag reports whether the text came from the
// file itself.
func Instruction(code, filePath string) (string, bool) {
	if doc := docstring(code); len(doc) > 10 {
		first := strings.TrimSpace(strings.SplitN(doc, "\n\n", 2)[0])
		if len(first) > maxInstructionChars {
			cut := first[:maxInstructionChars]
			if i := strings.LastIndex(cut, " "); i > 0 {
				cut = cut[:i]
			}
			first = cut + "..."
		}
		return first, true
	}
	if c := topComments(code); len(c) > 10 {
		return c, true
	}

	name := strings.TrimSuffix(path.Base(filePath), path.Ext(filePath))
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	name = camelBoundary.ReplaceAllString(name, "$1 $2")
	name = strings.TrimSpace(name)
	if len(name) > 5 {
		return strings.ToUpper(name[:1]) + strings.ToLower(name[1:]), false
	}
	return "", false
}

// docstring returns the module docstring following any leading comments.
func docstring(code string) string {
	lines := strings.Split(strings.TrimSpace(code), "\n")
	start := 0
	for start < len(lines) {
		s := strings.TrimSpace(lines[start])
		if s != "" && !strings.HasPrefix(s, "#") {
			break
		}
		start++
	}
	if start >= len(lines) {
		return ""
	}
	rest := strings.TrimSpace(strings.Join(lines[start:], "\n"))
	for _, q := range []string{`"""`, `'''`} {
		if !strings.HasPrefix(rest, q) {
			continue
		}
		body := rest[len(q):]
		if end := strings.Index(body, q); end > 0 {
			return strings.TrimSpace(body[:end])
		}
	}
	return ""
}

// topComments joins the leading comment lines, skipping shebang and
// encoding lines.
func topComments(code string) string {
	var comments []string
	for _, line := range strings.Split(strings.TrimSpace(code), "\n") {
		s := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(s, "#!") || strings.HasPrefix(s, "# -*-"):
			continue
		case strings.HasPrefix(s, "#"):
			if text := strings.TrimSpace(strings.TrimLeft(s, "#")); text != "" {
				comments = append(comments, text)
			}
		case s == "":
			if len(comments) > 0 {
				return strings.Join(comments, " ")
			}
		default:
			return strings.Join(comments, " ")
		}
	}
	return strings.Join(comments, " ")
}

// Imports lists the Rhino-related libraries a file uses, sorted.
func Imports(code string) []string {
	found := make(map[string]bool)
	for _, line := range strings.Split(code, "\n") {
		for _, m := range importMarkers {
			if strings.Contains(line, m) {
				found[m] = true
			}
		}
		if rhinoImport.MatchString(line) {
			found["Rhino"] = true
		}
	}
	out := make([]string, 0, len(found))
	for m := range found {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

func repoOwner(fullName string) string {
	owner, _, _ := strings.Cut(fullName, "/")
	return owner
}
