// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/rhino-harvest/pkg/types"
)

const sampleScript = `# -*- coding: utf-8 -*-
"""Create a grid of spheres on the XY plane.

Run from the Rhino Python editor.
"""
import rhinoscriptsyntax as rs
import scriptcontext as sc

def grid(n, spacing):
    for i in range(n):
        for j in range(n):
            rs.AddSphere((i * spacing, j * spacing, 0), spacing / 3.0)

grid(5, 10)
sc.doc.Views.Redraw()
`

func codeFetch(path, content string) types.FetchResult {
	return types.FetchResult{
		Item: types.WorkItem{
			ID:         "mcneel/rhino-developer-samples:" + path,
			Source:     types.SourceCode,
			Repository: "mcneel/rhino-developer-samples",
			Path:       path,
			URL:        "https://github.com/mcneel/rhino-developer-samples/blob/HEAD/" + path,
		},
		File: &types.SourceFile{Content: content, Stars: 420, License: "MIT", Description: "Rhino samples"},
	}
}

func TestCodeExtract_Record(t *testing.T) {
	records := NewCodeExtractor(types.DefaultExtraction()).Extract(codeFetch("rhinopython/sphere_grid.py", sampleScript))
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "mcneel/rhino-developer-samples:rhinopython/sphere_grid.py#1", r.ID)
	assert.Equal(t, types.SourceCode, r.Source)
	assert.Equal(t, types.LangPython, r.Language)
	assert.Equal(t, "Create a grid of spheres on the XY plane.", r.Instruction)
	assert.True(t, r.HasDocstring)
	assert.Equal(t, []string{"rhinoscriptsyntax", "scriptcontext"}, r.Imports)
	assert.Equal(t, "mcneel", r.Author)
	assert.Equal(t, "MIT", r.License)
	assert.Equal(t, 420, r.Stars)
	assert.Equal(t, sampleScript, r.Code)
	assert.Contains(t, r.Tags, "geometry")
}

func TestCodeExtract_Filters(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content string
	}{
		{"init file", "pkg/__init__.py", sampleScript},
		{"setup file", "setup.py", sampleScript},
		{"test prefix", "tests/test_grid.py", sampleScript},
		{"test suffix", "grid_test.py", sampleScript},
		{"too short", "a.py", "import Rhino"},
		{"not rhino", "util.py", "import os\n\nfor f in os.listdir('.'):\n    print(f)\n    print(f)\n    print(f)\n    print(f)\n"},
		{"few meaningful lines", "tiny.py", "import rhinoscriptsyntax as rs\n# add a point\nrs.AddPoint(0, 0, 0)\nrs.Redraw()\n"},
		{"no file", "x.py", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := codeFetch(tt.path, tt.content)
			if tt.name == "no file" {
				res.File = nil
			}
			assert.Empty(t, NewCodeExtractor(types.DefaultExtraction()).Extract(res))
		})
	}
}

func TestCodeExtract_PatternsIndependentOfKeywords(t *testing.T) {
	res := codeFetch("rhinopython/sphere_grid.py", sampleScript)

	cfg := types.DefaultExtraction()
	cfg.Keywords = []string{"grasshopper-only"}
	assert.Len(t, NewCodeExtractor(cfg).Extract(res), 1, "forum keywords leave file patterns alone")

	cfg = types.DefaultExtraction()
	cfg.CodePatterns = []string{"Rhino.Geometry"}
	assert.Empty(t, NewCodeExtractor(cfg).Extract(res))

	cfg.CodePatterns = []string{"AddSphere"}
	assert.Len(t, NewCodeExtractor(cfg).Extract(res), 1)
}

func TestInstruction(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		path    string
		want    string
		fromDoc bool
	}{
		{"docstring first paragraph", sampleScript, "x.py", "Create a grid of spheres on the XY plane.", true},
		{"leading comments", "#!/usr/bin/env python\n# Offsets every selected curve\n# by a fixed distance\nimport rhinoscriptsyntax as rs\n", "x.py", "Offsets every selected curve by a fixed distance", true},
		{"file name", "import Rhino\nx = 1\n", "samples/SampleAddNurbsCurve.py", "Sample add nurbs curve", false},
		{"file name with underscores", "x = 1\n", "loft_between_curves.py", "Loft between curves", false},
		{"nothing usable", "x = 1\n", "a.py", "", false},
	}
	for _, tt := range tests {
		got, fromDoc := Instruction(tt.code, tt.path)
		if got != tt.want || fromDoc != tt.fromDoc {
			t.Errorf("%s: Instruction() = (%q, %v), want (%q, %v)", tt.name, got, fromDoc, tt.want, tt.fromDoc)
		}
	}
}

func TestInstruction_LongDocstringIsCut(t *testing.T) {
	code := `"""` + strings.Repeat("word ", 80) + `"""` + "\n"
	got, _ := Instruction(code, "x.py")
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, len(got), maxInstructionChars+3)
}

func TestImports(t *testing.T) {
	code := "import Rhino\nfrom Rhino.Geometry import Point3d\nimport rhino3dm\nimport ghpythonlib.components as ghc\n"
	assert.Equal(t, []string{"Rhino", "Rhino.Geometry", "ghpythonlib", "rhino3dm"}, Imports(code))
	assert.Empty(t, Imports("print('hi')"))
}

func TestLanguageFromPath(t *testing.T) {
	assert.Equal(t, types.LangPython, LanguageFromPath("a/b.py"))
	assert.Equal(t, types.LangCSharp, LanguageFromPath("a/B.CS"))
	assert.Equal(t, "", LanguageFromPath("README.md"))
}
