// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package forum

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/pdiddy/rhino-harvest/internal/httputil"
	"github.com/pdiddy/rhino-harvest/pkg/types"
)

// postChunkSize is the number of post ids requested per posts.json call.
const postChunkSize = 20

// FetchTopic fetches a topic and every post in its stream. Posts missing
// from the first response are requested in chunks. Only the topic request
// decides whether the item is gone: a chunk answered with 404 or 422 is
// skipped and the posts already fetched are kept. Any other chunk failure
// fails the whole fetch so the topic is retried on the next run.
func (c *Client) FetchTopic(ctx context.Context, item types.WorkItem) (types.FetchResult, error) {
	id, err := strconv.Atoi(item.ID)
	if err != nil {
		return types.FetchResult{}, httputil.Malformed(fmt.Errorf("topic id %q: %w", item.ID, err))
	}

	var topic topicResponse
	if err := c.getJSON(ctx, httputil.KindContent, fmt.Sprintf("/t/%d.json", id), nil, &topic); err != nil {
		return types.FetchResult{}, err
	}

	posts := topic.PostStream.Posts
	have := make(map[int]bool, len(posts))
	for _, p := range posts {
		have[p.ID] = true
	}
	var missing []int
	for _, pid := range topic.PostStream.Stream {
		if !have[pid] {
			missing = append(missing, pid)
			have[pid] = true
		}
	}

	for start := 0; start < len(missing); start += postChunkSize {
		end := min(start+postChunkSize, len(missing))
		q := url.Values{}
		for _, pid := range missing[start:end] {
			q.Add("post_ids[]", strconv.Itoa(pid))
		}
		var extra postsResponse
		err := c.getJSON(ctx, httputil.KindContent, fmt.Sprintf("/t/%d/posts.json", id), q, &extra)
		switch {
		case httputil.IsNotFound(err), httputil.IsRejected(err):
			c.logger.Warn("skipping unavailable posts", "topic", id, "from", start+1, "to", end, "reason", httputil.ReasonOf(err))
			continue
		case err != nil:
			return types.FetchResult{}, fmt.Errorf("fetching posts %d-%d of topic %d: %w", start+1, end, id, err)
		}
		posts = append(posts, extra.PostStream.Posts...)
	}

	sort.SliceStable(posts, func(i, j int) bool { return posts[i].PostNumber < posts[j].PostNumber })

	res := types.FetchResult{
		Item:           item,
		Title:          topic.Title,
		URL:            c.TopicURL(topic.Slug, id),
		AcceptedAnswer: topic.HasAcceptedAnswer || item.AcceptedAnswer,
		CategoryID:     topic.CategoryID,
		Views:          topic.Views,
		PostsCount:     topic.PostsCount,
	}
	if res.Title == "" {
		res.Title = item.Title
	}
	for _, p := range posts {
		res.Posts = append(res.Posts, types.Post{
			Number:   p.PostNumber,
			Username: p.Username,
			Cooked:   p.Cooked,
			Accepted: p.AcceptedAnswer,
		})
	}
	return res, nil
}
