// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package frontier runs discovery channels to exhaustion and merges their
// results into one deduplicated, ordered set of work items.
//
// Channels run one after another. A failing channel is reported and skipped;
// the others still run. The frontier never consults completion state: that
// filtering belongs to the orchestrator.
package frontier

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pdiddy/rhino-harvest/pkg/types"
)

// DefaultMaxPages bounds channels that do not set their own page limit.
const DefaultMaxPages = 10

// ErrNoChannels is returned by Discover when no channel is configured.
var ErrNoChannels = errors.New("no discovery channels configured")

// Page is one page of discovery results.
type Page struct {
	Items []types.WorkItem

	// HasMore reports whether the provider signalled another page, either
	// explicitly or because the page was full.
	HasMore bool
}

// Channel is a paginated discovery source: one search query, one category
// listing, one repository tree. Each provider implements its channels per
// the Strategy pattern.
type Channel interface {
	// Name identifies the channel in work items and the run summary.
	Name() string

	// Richness ranks the metadata this channel returns. When channels
	// disagree about an item, the richer channel wins.
	Richness() int

	// MaxPages is the hard page bound; zero or less uses DefaultMaxPages.
	MaxPages() int

	// FetchPage returns page (1-based).
	FetchPage(ctx context.Context, page int) (Page, error)
}

// HasMoreBySize infers the "more available" signal from page fullness.
func HasMoreBySize(n, pageSize int) bool {
	return pageSize > 0 && n >= pageSize
}

// Result is the merged discovery output.
type Result struct {
	// Items holds one work item per canonical id, sorted by id.
	Items []types.WorkItem

	// Reports holds one entry per channel, in run order.
	Reports []types.ChannelReport

	// Duplicates counts observations merged into an existing item.
	Duplicates int
}

// ChannelNames lists the names of every channel in the result.
func (r Result) ChannelNames() []string {
	names := make([]string, 0, len(r.Reports))
	for _, rep := range r.Reports {
		names = append(names, rep.Name)
	}
	return names
}

// Aggregator merges the output of several channels.
type Aggregator struct {
	channels []Channel
	logger   *slog.Logger
}

// NewAggregator returns an aggregator over channels.
func NewAggregator(channels []Channel, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{channels: channels, logger: logger}
}

// Discover runs every channel to exhaustion and merges the results. A
// channel error ends that channel only. When ctx is cancelled the items
// merged so far are returned together with the context error.
func (a *Aggregator) Discover(ctx context.Context) (Result, error) {
	if len(a.channels) == 0 {
		return Result{}, ErrNoChannels
	}

	m := newMerger()
	var reports []types.ChannelReport
	for _, ch := range a.channels {
		rep := a.drain(ctx, ch, m)
		reports = append(reports, rep)
		if err := ctx.Err(); err != nil {
			items, dups := m.items()
			return Result{Items: items, Reports: reports, Duplicates: dups}, err
		}
	}

	items, dups := m.items()
	a.logger.Info("discovery complete", "channels", len(reports), "items", len(items), "duplicates", dups)
	return Result{Items: items, Reports: reports, Duplicates: dups}, nil
}

// drain pages through one channel until it signals the end, returns an
// empty page, fails, or reaches its page bound.
func (a *Aggregator) drain(ctx context.Context, ch Channel, m *merger) types.ChannelReport {
	rep := types.ChannelReport{Name: ch.Name()}
	maxPages := ch.MaxPages()
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	for page := 1; page <= maxPages; page++ {
		if ctx.Err() != nil {
			return rep
		}
		p, err := ch.FetchPage(ctx, page)
		if err != nil {
			rep.Error = err.Error()
			a.logger.Warn("discovery channel failed", "channel", ch.Name(), "page", page, "err", err)
			return rep
		}
		rep.Pages++
		rep.Items += len(p.Items)
		for _, item := range p.Items {
			m.add(item, ch.Name(), ch.Richness())
		}
		a.logger.Debug("discovery page", "channel", ch.Name(), "page", page, "items", len(p.Items), "has_more", p.HasMore)

		if len(p.Items) == 0 || !p.HasMore {
			return rep
		}
		if page == maxPages {
			a.logger.Info("discovery page bound reached", "channel", ch.Name(), "max_pages", maxPages)
		}
	}
	return rep
}
