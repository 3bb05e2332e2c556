// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package frontier

import (
	"sort"

	"github.com/pdiddy/rhino-harvest/pkg/types"
)

// observation is one sighting of an item by one channel.
type observation struct {
	item    types.WorkItem
	channel string
	rank    int
	seq     int
}

// merger collects observations per canonical id. Items are folded only
// when requested, so the outcome does not depend on channel order.
type merger struct {
	byID map[string][]observation
	seq  int
}

func newMerger() *merger {
	return &merger{byID: make(map[string][]observation)}
}

func (m *merger) add(item types.WorkItem, channel string, rank int) {
	if item.ID == "" {
		return
	}
	m.seq++
	m.byID[item.ID] = append(m.byID[item.ID], observation{item: item, channel: channel, rank: rank, seq: m.seq})
}

// items folds every id and returns the work items sorted by id, plus the
// number of observations that were merged away.
func (m *merger) items() ([]types.WorkItem, int) {
	ids := make([]string, 0, len(m.byID))
	for id := range m.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]types.WorkItem, 0, len(ids))
	dups := 0
	for _, id := range ids {
		obs := m.byID[id]
		dups += len(obs) - 1
		out = append(out, merge(obs))
	}
	return out, dups
}

// merge folds the observations of one id. The highest rank wins, ties go to
// the lexicographically smaller channel name, then to the earlier sighting.
// Empty fields of the winner are filled from the others in the same order.
func merge(obs []observation) types.WorkItem {
	sorted := make([]observation, len(obs))
	copy(sorted, obs)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.rank != b.rank {
			return a.rank > b.rank
		}
		if a.channel != b.channel {
			return a.channel < b.channel
		}
		return a.seq < b.seq
	})

	dst := sorted[0].item
	dst.Richness = sorted[0].rank
	dst.Tags = cloneStrings(dst.Tags)

	channels := make(map[string]bool)
	for _, o := range sorted {
		channels[o.channel] = true
		for _, c := range o.item.Channels {
			channels[c] = true
		}
	}
	for _, o := range sorted[1:] {
		mergeInto(&dst, o.item)
	}

	dst.Channels = make([]string, 0, len(channels))
	for c := range channels {
		dst.Channels = append(dst.Channels, c)
	}
	sort.Strings(dst.Channels)
	return dst
}

// mergeInto fills empty fields of dst from src.
func mergeInto(dst *types.WorkItem, src types.WorkItem) {
	if dst.Source == "" {
		dst.Source = src.Source
	}
	if dst.Title == "" {
		dst.Title = src.Title
	}
	if dst.Slug == "" {
		dst.Slug = src.Slug
	}
	if len(dst.Tags) == 0 && len(src.Tags) > 0 {
		dst.Tags = cloneStrings(src.Tags)
	}
	if !dst.AcceptedAnswer {
		dst.AcceptedAnswer = src.AcceptedAnswer
	}
	if dst.CategoryID == 0 {
		dst.CategoryID = src.CategoryID
	}
	if dst.Repository == "" {
		dst.Repository = src.Repository
	}
	if dst.Path == "" {
		dst.Path = src.Path
	}
	if dst.URL == "" {
		dst.URL = src.URL
	}
	if dst.SHA == "" {
		dst.SHA = src.SHA
	}
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}
