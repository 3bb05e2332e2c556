// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"path"
	"strings"

	"github.com/pdiddy/rhino-harvest/pkg/types"
)

var (
	pythonSignals = []string{
		"import ", "def ", "print(", "for ", "rhinoscriptsyntax", "rs.", "scriptcontext", "ghpythonlib",
	}
	csharpSignals = []string{
		"using ", "void ", "public ", "private ", "static ", "namespace ", "var ", "{", "};", "//",
	}
)

// DetectLanguage classifies code by counting which python and C# signals
// it contains. The language with strictly more signals wins; a tie is
// LangUnknown.
func DetectLanguage(code string) string {
	lower := strings.ToLower(code)
	py, cs := 0, 0
	for _, s := range pythonSignals {
		if strings.Contains(lower, s) {
			py++
		}
	}
	for _, s := range csharpSignals {
		if strings.Contains(lower, s) {
			cs++
		}
	}
	switch {
	case py > cs:
		return types.LangPython
	case cs > py:
		return types.LangCSharp
	default:
		return types.LangUnknown
	}
}

// LanguageFromClass reads a language hint from a code element's class
// attribute ("lang-python", "language-cs"). It returns "" when no class
// names a known language.
func LanguageFromClass(class string) string {
	for _, c := range strings.Fields(strings.ToLower(class)) {
		c = strings.TrimPrefix(c, "lang-")
		c = strings.TrimPrefix(c, "language-")
		switch c {
		case "python", "py", "python3", "ipython", "ghpython":
			return types.LangPython
		case "csharp", "cs", "c#":
			return types.LangCSharp
		}
	}
	return ""
}

// LanguageFromPath maps a file extension to a language, or "".
func LanguageFromPath(p string) string {
	switch strings.ToLower(path.Ext(p)) {
	case ".py":
		return types.LangPython
	case ".cs":
		return types.LangCSharp
	}
	return ""
}
