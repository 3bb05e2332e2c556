// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"sort"
	"strings"
)

// tagKeywords maps each tag to the lowercase substrings that imply it.
var tagKeywords = map[string][]string{
	"python":            {"python", "rhinoscriptsyntax", "rs.", "ghpython", "scriptcontext"},
	"csharp":            {"c#", "csharp", "using rhino", "rhinocommon"},
	"rhinoscriptsyntax": {"rhinoscriptsyntax", "import rhinoscriptsyntax"},
	"rhinocommon":       {"rhinocommon", "rhino.geometry", "rhino.commands"},
	"grasshopper":       {"grasshopper", "ghpython", "ghdoc", "ghpythonlib"},
	"geometry":          {"curve", "surface", "mesh", "brep", "point", "line", "circle", "sphere", "box", "cylinder"},
	"selection":         {"getobject", "getobjects", "selectedobjects"},
	"layers":            {"layer", "objectlayer", "addlayer", "currentlayer"},
	"materials":         {"material", "render", "texture"},
	"transformation":    {"move", "rotate", "scale", "transform", "mirror", "orient"},
	"boolean":           {"boolean", "booleanunion", "booleandifference", "booleanintersection"},
	"mesh":              {"mesh", "addmesh", "meshface", "meshvertex"},
	"nurbs":             {"nurbs", "nurbscurve", "nurbssurface", "controlpoint"},
	"file-io":           {"import ", "export", "open ", "save", "readfile", "writefile"},
	"ui":                {"getstring", "getinteger", "getreal", "messagebox", "listbox"},
}

// InferTags returns the sorted tags whose keywords appear in the combined,
// lowercased text of parts.
func InferTags(parts ...string) []string {
	combined := strings.ToLower(strings.Join(parts, " "))
	tags := []string{}
	for tag, words := range tagKeywords {
		for _, w := range words {
			if strings.Contains(combined, w) {
				tags = append(tags, tag)
				break
			}
		}
	}
	sort.Strings(tags)
	return tags
}

// mergeTags returns the sorted union of a and b, lowercased.
func mergeTags(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := []string{}
	for _, list := range [][]string{a, b} {
		for _, t := range list {
			t = strings.ToLower(strings.TrimSpace(t))
			if t != "" && !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	sort.Strings(out)
	return out
}
