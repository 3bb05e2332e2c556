// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package forum

import (
	"context"
	"log/slog"

	"github.com/pdiddy/rhino-harvest/internal/extract"
	"github.com/pdiddy/rhino-harvest/internal/frontier"
	"github.com/pdiddy/rhino-harvest/pkg/types"
)

// Source wires the forum channels, topic fetch, and forum extractor into
// one harvest source.
type Source struct {
	client    *Client
	cfg       types.ForumConfig
	extractor *extract.ForumExtractor
}

// NewSource returns the forum harvest source.
func NewSource(cfg types.ForumConfig, ext types.ExtractionConfig, logger *slog.Logger) *Source {
	return &Source{
		client:    NewClient(cfg, nil, logger),
		cfg:       cfg,
		extractor: extract.NewForumExtractor(ext),
	}
}

func (s *Source) Name() string { return types.SourceForum }

// Client returns the underlying API client.
func (s *Source) Client() *Client { return s.client }

// Channels returns one search channel per query followed by one listing
// channel per category.
func (s *Source) Channels() []frontier.Channel {
	var chans []frontier.Channel
	for _, q := range s.cfg.SearchQueries {
		chans = append(chans, NewSearchChannel(s.client, q, s.cfg.MaxSearchPages))
	}
	for _, id := range s.cfg.CategoryIDs {
		chans = append(chans, NewCategoryChannel(s.client, id, s.cfg.MaxCategoryPages))
	}
	return chans
}

func (s *Source) Fetch(ctx context.Context, item types.WorkItem) (types.FetchResult, error) {
	return s.client.FetchTopic(ctx, item)
}

func (s *Source) Extractor() extract.Extractor { return s.extractor }
