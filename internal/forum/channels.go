// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package forum

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/pdiddy/rhino-harvest/internal/frontier"
	"github.com/pdiddy/rhino-harvest/internal/httputil"
	"github.com/pdiddy/rhino-harvest/pkg/types"
)

// Channel ranks. Search hits carry tags and the accepted-answer flag, so
// they win over category listings.
const (
	CategoryRichness = 1
	SearchRichness   = 2
)

// SearchChannel pages through /search.json for one query.
type SearchChannel struct {
	client   *Client
	query    string
	maxPages int
}

// NewSearchChannel returns a search channel for query.
func NewSearchChannel(client *Client, query string, maxPages int) *SearchChannel {
	return &SearchChannel{client: client, query: query, maxPages: maxPages}
}

func (s *SearchChannel) Name() string  { return "search:" + s.query }
func (s *SearchChannel) Richness() int { return SearchRichness }
func (s *SearchChannel) MaxPages() int { return s.maxPages }

// FetchPage returns one page of search hits. The provider's
// more_full_page_results flag drives HasMore.
func (s *SearchChannel) FetchPage(ctx context.Context, page int) (frontier.Page, error) {
	var resp searchResponse
	q := url.Values{"q": {s.query}, "page": {strconv.Itoa(page)}}
	if err := s.client.getJSON(ctx, httputil.KindSearch, "/search.json", q, &resp); err != nil {
		return frontier.Page{}, err
	}
	return frontier.Page{
		Items:   s.client.workItems(resp.Topics),
		HasMore: resp.GroupedSearchResult.MoreFullPageResults,
	}, nil
}

// CategoryChannel pages through the latest topics of one category.
type CategoryChannel struct {
	client     *Client
	categoryID int
	maxPages   int
}

// NewCategoryChannel returns a listing channel for a category.
func NewCategoryChannel(client *Client, categoryID, maxPages int) *CategoryChannel {
	return &CategoryChannel{client: client, categoryID: categoryID, maxPages: maxPages}
}

func (c *CategoryChannel) Name() string  { return fmt.Sprintf("category:%d", c.categoryID) }
func (c *CategoryChannel) Richness() int { return CategoryRichness }
func (c *CategoryChannel) MaxPages() int { return c.maxPages }

// FetchPage returns one page of the category listing. Discourse pages are
// zero-based; a non-empty more_topics_url drives HasMore.
func (c *CategoryChannel) FetchPage(ctx context.Context, page int) (frontier.Page, error) {
	var resp categoryResponse
	path := fmt.Sprintf("/c/%d.json", c.categoryID)
	q := url.Values{}
	if page > 1 {
		q.Set("page", strconv.Itoa(page-1))
	}
	if err := c.client.getJSON(ctx, httputil.KindListing, path, q, &resp); err != nil {
		return frontier.Page{}, err
	}
	return frontier.Page{
		Items:   c.client.workItems(resp.TopicList.Topics),
		HasMore: resp.TopicList.MoreTopicsURL != "",
	}, nil
}

func (c *Client) workItems(stubs []topicStub) []types.WorkItem {
	items := make([]types.WorkItem, 0, len(stubs))
	for _, t := range stubs {
		if t.ID <= 0 {
			continue
		}
		items = append(items, c.workItem(t))
	}
	return items
}
