package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "rhino-harvest/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// PacingConfig controls request spacing for one channel kind.
type PacingConfig struct {
	// Delay is the minimum spacing between consecutive calls.
	Delay time.Duration `json:"delay" yaml:"delay" mapstructure:"delay"`

	// QuotaEvery triggers a proactive QuotaPause every N calls. Zero disables it.
	QuotaEvery int `json:"quota_every" yaml:"quota_every" mapstructure:"quota_every"`

	// QuotaPause is the sleep taken before every QuotaEvery-th call.
	QuotaPause time.Duration `json:"quota_pause" yaml:"quota_pause" mapstructure:"quota_pause"`
}

// RetryConfig controls backoff on failed calls.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts per call (default 5).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts" mapstructure:"max_attempts"`

	// BackoffBase is the exponential base: the wait before retry n is
	// BackoffUnit * BackoffBase^n (default 2).
	BackoffBase float64 `json:"backoff_base" yaml:"backoff_base" mapstructure:"backoff_base"`

	// BackoffUnit scales the exponential wait (default 1s).
	BackoffUnit time.Duration `json:"backoff_unit" yaml:"backoff_unit" mapstructure:"backoff_unit"`

	// ResetFloor and ResetCeiling bound the wait computed from a
	// rate-limit reset header (defaults 10s and 120s).
	ResetFloor   time.Duration `json:"reset_floor" yaml:"reset_floor" mapstructure:"reset_floor"`
	ResetCeiling time.Duration `json:"reset_ceiling" yaml:"reset_ceiling" mapstructure:"reset_ceiling"`
}

// ForumConfig holds settings for the Discourse forum harvest.
type ForumConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the forum root, e.g. "https://discourse.mcneel.com".
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// APIKey and APIUsername are sent as Api-Key / Api-Username headers when set.
	APIKey      string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`
	APIUsername string `json:"api_username,omitempty" yaml:"api_username,omitempty" mapstructure:"api_username"`

	SearchQueries []string `json:"search_queries" yaml:"search_queries" mapstructure:"search_queries"`
	CategoryIDs   []int    `json:"category_ids" yaml:"category_ids" mapstructure:"category_ids"`

	MaxSearchPages   int `json:"max_search_pages" yaml:"max_search_pages" mapstructure:"max_search_pages"`
	MaxCategoryPages int `json:"max_category_pages" yaml:"max_category_pages" mapstructure:"max_category_pages"`

	SearchPacing  PacingConfig `json:"search_pacing" yaml:"search_pacing" mapstructure:"search_pacing"`
	ListingPacing PacingConfig `json:"listing_pacing" yaml:"listing_pacing" mapstructure:"listing_pacing"`
	ContentPacing PacingConfig `json:"content_pacing" yaml:"content_pacing" mapstructure:"content_pacing"`
	Retry         RetryConfig  `json:"retry" yaml:"retry" mapstructure:"retry"`

	// OutputDir receives records/, completed.log, and summary.json.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`
}

// CodeSearchConfig holds settings for the GitHub code harvest.
type CodeSearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL overrides the GitHub API root (must end in "/"); empty uses api.github.com.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// Token is the static credential presented on every request.
	Token string `json:"token,omitempty" yaml:"token,omitempty" mapstructure:"token"`

	SearchQueries []string `json:"search_queries" yaml:"search_queries" mapstructure:"search_queries"`

	// KnownRepos lists "owner/repo" repositories whose trees are listed in full.
	KnownRepos []string `json:"known_repos" yaml:"known_repos" mapstructure:"known_repos"`

	// Extensions selects which files from known repositories become work items.
	Extensions []string `json:"extensions" yaml:"extensions" mapstructure:"extensions"`

	PerPage        int `json:"per_page" yaml:"per_page" mapstructure:"per_page"`
	MaxSearchPages int `json:"max_search_pages" yaml:"max_search_pages" mapstructure:"max_search_pages"`

	SearchPacing  PacingConfig `json:"search_pacing" yaml:"search_pacing" mapstructure:"search_pacing"`
	ListingPacing PacingConfig `json:"listing_pacing" yaml:"listing_pacing" mapstructure:"listing_pacing"`
	ContentPacing PacingConfig `json:"content_pacing" yaml:"content_pacing" mapstructure:"content_pacing"`
	Retry         RetryConfig  `json:"retry" yaml:"retry" mapstructure:"retry"`

	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`
}

// ExtractionConfig holds the filter thresholds applied by the extractors.
type ExtractionConfig struct {
	// MinCodeLines drops forum code blocks with fewer lines.
	MinCodeLines int `json:"min_code_lines" yaml:"min_code_lines" mapstructure:"min_code_lines"`

	// MinCodeChars drops source files shorter than this after trimming.
	MinCodeChars int `json:"min_code_chars" yaml:"min_code_chars" mapstructure:"min_code_chars"`

	// MinMeaningfulLines drops source files with fewer non-comment, non-import lines.
	MinMeaningfulLines int `json:"min_meaningful_lines" yaml:"min_meaningful_lines" mapstructure:"min_meaningful_lines"`

	// MaxQuestionChars truncates forum question text.
	MaxQuestionChars int `json:"max_question_chars" yaml:"max_question_chars" mapstructure:"max_question_chars"`

	// Keywords overrides the forum code-block keyword set when non-empty.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty" mapstructure:"keywords"`

	// CodePatterns overrides the source-file relevance patterns when non-empty.
	CodePatterns []string `json:"code_patterns,omitempty" yaml:"code_patterns,omitempty" mapstructure:"code_patterns"`
}

// HarvestConfig holds orchestrator settings.
type HarvestConfig struct {
	// CheckpointEvery writes an interim summary after this many processed items.
	CheckpointEvery int `json:"checkpoint_every" yaml:"checkpoint_every" mapstructure:"checkpoint_every"`
}

// CatalogConfig holds settings for the SQLite catalog.
type CatalogConfig struct {
	// Dir contains catalog.db and the export files.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Forum      ForumConfig      `json:"forum" yaml:"forum" mapstructure:"forum"`
	Code       CodeSearchConfig `json:"code" yaml:"code" mapstructure:"code"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction" mapstructure:"extraction"`
	Harvest    HarvestConfig    `json:"harvest" yaml:"harvest" mapstructure:"harvest"`
	Catalog    CatalogConfig    `json:"catalog" yaml:"catalog" mapstructure:"catalog"`
}

const defaultUserAgent = "rhino-harvest/0.1 (research; polite-scraper)"

// DefaultRetry returns the retry settings shared by both providers.
func DefaultRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts:  5,
		BackoffBase:  2,
		BackoffUnit:  time.Second,
		ResetFloor:   10 * time.Second,
		ResetCeiling: 120 * time.Second,
	}
}

// DefaultExtraction returns the default extraction thresholds.
func DefaultExtraction() ExtractionConfig {
	return ExtractionConfig{
		MinCodeLines:       4,
		MinCodeChars:       20,
		MinMeaningfulLines: 5,
		MaxQuestionChars:   2000,
	}
}

// DefaultPipelineConfig returns the configuration used when no config file
// or flag overrides a value.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Forum: ForumConfig{
			HTTPConfig: HTTPConfig{Timeout: 30 * time.Second, UserAgent: defaultUserAgent},
			BaseURL:    "https://discourse.mcneel.com",
			SearchQueries: []string{
				"rhinoscriptsyntax",
				"rhinocommon python",
				"python script rhino",
				"ghpython",
				"import Rhino.Geometry",
				"rs.Add",
				"scriptcontext",
				"RhinoCommon C#",
				"Rhino.Geometry python",
				"rhinoscriptsyntax rs.",
			},
			CategoryIDs:      []int{3, 11, 8},
			MaxSearchPages:   10,
			MaxCategoryPages: 15,
			SearchPacing:     PacingConfig{Delay: 2 * time.Second},
			ListingPacing:    PacingConfig{Delay: time.Second},
			ContentPacing:    PacingConfig{Delay: time.Second},
			Retry:            DefaultRetry(),
			OutputDir:        "data/raw/discourse",
		},
		Code: CodeSearchConfig{
			HTTPConfig: HTTPConfig{Timeout: 30 * time.Second, UserAgent: defaultUserAgent},
			SearchQueries: []string{
				`"import rhinoscriptsyntax" language:python`,
				`"import Rhino.Geometry" language:python`,
				`"import Rhino" language:python`,
				`"import rhino3dm" language:python`,
				`"import scriptcontext" language:python`,
				`"from Rhino.Geometry import" language:python`,
				`"rs.AddSurface" language:python`,
				`"rs.AddCurve" language:python`,
				`"RhinoCommon" language:python`,
				`"ghpythonlib" language:python`,
			},
			KnownRepos: []string{
				"mcneel/rhino-developer-samples",
				"mcneel/rhinoscriptsyntax",
				"mcneel/rhino3dm",
				"compas-dev/compas",
			},
			Extensions:     []string{".py"},
			PerPage:        100,
			MaxSearchPages: 10,
			// GitHub allows 30 search requests per minute.
			SearchPacing:  PacingConfig{Delay: 3 * time.Second, QuotaEvery: 28, QuotaPause: 65 * time.Second},
			ListingPacing: PacingConfig{Delay: time.Second},
			ContentPacing: PacingConfig{Delay: 250 * time.Millisecond, QuotaEvery: 100, QuotaPause: time.Second},
			Retry:         DefaultRetry(),
			OutputDir:     "data/raw/github",
		},
		Extraction: DefaultExtraction(),
		Harvest:    HarvestConfig{CheckpointEvery: 50},
		Catalog:    CatalogConfig{Dir: "data/catalog", MaxResults: 20},
	}
}
