// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Language values assigned by the extractor.
const (
	LangPython  = "python"
	LangCSharp  = "csharp"
	LangUnknown = "unknown"
)

// ExtractedRecord is a single harvested example. Records are written once,
// one JSON object per line, to the record file of their WorkItem.
type ExtractedRecord struct {
	// ID is "<work item id>#<n>" with n counting from 1 within the item.
	ID         string `json:"id" yaml:"id"`
	WorkItemID string `json:"work_item_id" yaml:"work_item_id"`
	Source     string `json:"source" yaml:"source"`
	SourceURL  string `json:"source_url" yaml:"source_url"`
	Title      string `json:"title,omitempty" yaml:"title,omitempty"`

	// Instruction is the natural-language prompt paired with Code: the forum
	// question or the file docstring.
	Instruction string `json:"instruction,omitempty" yaml:"instruction,omitempty"`

	Code     string   `json:"code" yaml:"code"`
	Language string   `json:"language" yaml:"language"`
	Author   string   `json:"author,omitempty" yaml:"author,omitempty"`
	Tags     []string `json:"tags" yaml:"tags"`

	// Forum provenance.
	PostNumber int  `json:"post_number,omitempty" yaml:"post_number,omitempty"`
	IsSolution bool `json:"is_solution,omitempty" yaml:"is_solution,omitempty"`

	// Code provenance.
	Repository   string   `json:"repository,omitempty" yaml:"repository,omitempty"`
	Path         string   `json:"path,omitempty" yaml:"path,omitempty"`
	License      string   `json:"license,omitempty" yaml:"license,omitempty"`
	Stars        int      `json:"stars,omitempty" yaml:"stars,omitempty"`
	Imports      []string `json:"imports,omitempty" yaml:"imports,omitempty"`
	HasDocstring bool     `json:"has_docstring,omitempty" yaml:"has_docstring,omitempty"`
}
