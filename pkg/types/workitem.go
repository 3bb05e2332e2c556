// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the rhino-harvest pipeline:
// work items produced by discovery, fetched documents, extracted records,
// run summaries, and the configuration for each stage.
package types

// Source names a harvested provider.
const (
	SourceForum = "forum"
	SourceCode  = "code"
)

// WorkItem identifies one unit of discovery: a forum topic or a source file
// found through code search or a repository listing. Work items are built by
// the frontier and are not modified once handed to the orchestrator.
type WorkItem struct {
	// ID is the canonical, source-specific identifier. Forum topics use the
	// decimal topic id; code items use "owner/repo:path".
	ID string `json:"id" yaml:"id"`

	// Source is the provider the item belongs to ("forum" or "code").
	Source string `json:"source" yaml:"source"`

	// Channels lists every discovery channel that returned this item, sorted.
	Channels []string `json:"channels" yaml:"channels"`

	// Richness ranks the channel whose metadata this item currently holds.
	// Higher values carry more fields and win on merge.
	Richness int `json:"richness" yaml:"richness"`

	Title          string   `json:"title,omitempty" yaml:"title,omitempty"`
	Slug           string   `json:"slug,omitempty" yaml:"slug,omitempty"`
	Tags           []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	AcceptedAnswer bool     `json:"accepted_answer,omitempty" yaml:"accepted_answer,omitempty"`
	CategoryID     int      `json:"category_id,omitempty" yaml:"category_id,omitempty"`

	// Repository is the "owner/repo" full name for code items.
	Repository string `json:"repository,omitempty" yaml:"repository,omitempty"`

	// Path is the file path inside Repository.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// URL is a human-facing link to the item.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// SHA is the blob SHA reported by code search, when known.
	SHA string `json:"sha,omitempty" yaml:"sha,omitempty"`
}

// Post is one reply in a forum thread.
type Post struct {
	Number   int    `json:"post_number"`
	Username string `json:"username"`
	Cooked   string `json:"cooked"`
	Accepted bool   `json:"accepted_answer"`
}

// SourceFile is a fetched source file together with the repository metadata
// used for provenance.
type SourceFile struct {
	Content     string `json:"content"`
	Stars       int    `json:"stars"`
	Description string `json:"description,omitempty"`
	License     string `json:"license,omitempty"`
}

// FetchResult is the fetched document for one WorkItem. Forum fetches fill
// Posts; code fetches fill File.
type FetchResult struct {
	Item WorkItem

	Title string
	URL   string

	Posts          []Post
	AcceptedAnswer bool
	CategoryID     int
	Views          int
	PostsCount     int

	File *SourceFile
}
