// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package codesearch

import (
	"context"
	"log/slog"

	"github.com/pdiddy/rhino-harvest/internal/extract"
	"github.com/pdiddy/rhino-harvest/internal/frontier"
	"github.com/pdiddy/rhino-harvest/pkg/types"
)

// Source wires the code-search and known-repository channels, file fetch,
// and script extractor into one harvest source.
type Source struct {
	client    *Client
	cfg       types.CodeSearchConfig
	extractor *extract.CodeExtractor
}

// NewSource returns the code harvest source.
func NewSource(cfg types.CodeSearchConfig, ext types.ExtractionConfig, logger *slog.Logger) (*Source, error) {
	client, err := NewClient(cfg, nil, logger)
	if err != nil {
		return nil, err
	}
	return &Source{client: client, cfg: cfg, extractor: extract.NewCodeExtractor(ext)}, nil
}

func (s *Source) Name() string { return types.SourceCode }

// Client returns the underlying API client.
func (s *Source) Client() *Client { return s.client }

// Channels returns one search channel per query followed by one tree
// channel per known repository.
func (s *Source) Channels() []frontier.Channel {
	var chans []frontier.Channel
	for _, q := range s.cfg.SearchQueries {
		chans = append(chans, NewSearchChannel(s.client, q, s.cfg.PerPage, s.cfg.MaxSearchPages))
	}
	for _, repo := range s.cfg.KnownRepos {
		chans = append(chans, NewTreeChannel(s.client, repo))
	}
	return chans
}

func (s *Source) Fetch(ctx context.Context, item types.WorkItem) (types.FetchResult, error) {
	return s.client.FetchFile(ctx, item)
}

func (s *Source) Extractor() extract.Extractor { return s.extractor }
