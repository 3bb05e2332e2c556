// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Summary status values.
const (
	StatusInProgress = "in_progress"
	StatusComplete   = "complete"
)

// ChannelReport records what one discovery channel produced.
type ChannelReport struct {
	Name  string `json:"name"`
	Pages int    `json:"pages"`
	Items int    `json:"items"`
	Error string `json:"error,omitempty"`
}

// RunSummary is the machine-readable report of a harvest run. Interim
// checkpoints carry incremental counts; the final summary recomputes the
// on-disk fields by scanning every record file.
type RunSummary struct {
	RunID     string    `json:"run_id"`
	Source    string    `json:"source"`
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Counts for this run.
	Discovered  int `json:"discovered"`
	AlreadyDone int `json:"already_done"`
	Processed   int `json:"processed"`
	Fetched     int `json:"fetched"`
	Empty       int `json:"empty"`
	Skipped     int `json:"skipped"`
	Errors      int `json:"errors"`

	// Failures counts failed items by reason (rate_limited, not_found, ...).
	Failures map[string]int `json:"failures"`

	// On-disk counts. Incremental during the run, recomputed by Finalize.
	ItemsOnDisk     int            `json:"items_on_disk"`
	WithContent     int            `json:"with_content"`
	WithDocstring   int            `json:"with_docstring"`
	WithInstruction int            `json:"with_instruction"`
	Records         int            `json:"records"`
	SolutionRecords int            `json:"solution_records"`
	MalformedLines  int            `json:"malformed_lines"`
	Languages       map[string]int `json:"languages"`
	Tags            map[string]int `json:"tags"`
	Imports         map[string]int `json:"imports,omitempty"`
	TopRepositories map[string]int `json:"top_repositories,omitempty"`

	// Channels names every discovery channel used.
	Channels       []string        `json:"channels"`
	ChannelReports []ChannelReport `json:"channel_reports,omitempty"`
}
