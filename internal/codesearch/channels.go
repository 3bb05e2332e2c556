// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package codesearch

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v80/github"

	"github.com/pdiddy/rhino-harvest/internal/frontier"
	"github.com/pdiddy/rhino-harvest/internal/httputil"
	"github.com/pdiddy/rhino-harvest/pkg/types"
)

const defaultPerPage = 100

// SearchChannel pages through code-search results for one query.
type SearchChannel struct {
	client   *Client
	query    string
	perPage  int
	maxPages int
}

// NewSearchChannel returns a code-search channel for query.
func NewSearchChannel(client *Client, query string, perPage, maxPages int) *SearchChannel {
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	return &SearchChannel{client: client, query: query, perPage: perPage, maxPages: maxPages}
}

func (s *SearchChannel) Name() string  { return "code:" + s.query }
func (s *SearchChannel) Richness() int { return SearchRichness }
func (s *SearchChannel) MaxPages() int { return s.maxPages }

// FetchPage returns the hits of one result page whose path carries a
// configured extension. A page shorter than the page size is the last one.
func (s *SearchChannel) FetchPage(ctx context.Context, page int) (frontier.Page, error) {
	var result *gh.CodeSearchResult
	err := s.client.do(ctx, httputil.KindSearch, func(ctx context.Context) (*gh.Response, error) {
		opts := &gh.SearchOptions{ListOptions: gh.ListOptions{Page: page, PerPage: s.perPage}}
		r, resp, err := s.client.gh.Search.Code(ctx, s.query, opts)
		result = r
		return resp, err
	})
	if err != nil {
		return frontier.Page{}, fmt.Errorf("searching %q page %d: %w", s.query, page, err)
	}
	if result == nil {
		return frontier.Page{}, nil
	}

	items := make([]types.WorkItem, 0, len(result.CodeResults))
	for _, r := range result.CodeResults {
		repo := r.GetRepository().GetFullName()
		p := r.GetPath()
		if repo == "" || p == "" || !s.client.matches(p) {
			continue
		}
		items = append(items, types.WorkItem{
			ID:         ItemID(repo, p),
			Source:     types.SourceCode,
			Title:      r.GetName(),
			Repository: repo,
			Path:       p,
			URL:        r.GetHTMLURL(),
			SHA:        r.GetSHA(),
		})
	}
	return frontier.Page{
		Items:   items,
		HasMore: frontier.HasMoreBySize(len(result.CodeResults), s.perPage),
	}, nil
}

// TreeChannel lists every matching file of one known repository from its
// default branch tree. The listing is a single page.
type TreeChannel struct {
	client *Client
	repo   string
}

// NewTreeChannel returns a listing channel for repo ("owner/name").
func NewTreeChannel(client *Client, repo string) *TreeChannel {
	return &TreeChannel{client: client, repo: repo}
}

func (t *TreeChannel) Name() string  { return "repo:" + t.repo }
func (t *TreeChannel) Richness() int { return TreeRichness }
func (t *TreeChannel) MaxPages() int { return 1 }

func (t *TreeChannel) FetchPage(ctx context.Context, page int) (frontier.Page, error) {
	if page > 1 {
		return frontier.Page{}, nil
	}
	owner, name, err := SplitRepo(t.repo)
	if err != nil {
		return frontier.Page{}, httputil.Malformed(err)
	}

	var repository *gh.Repository
	err = t.client.do(ctx, httputil.KindListing, func(ctx context.Context) (*gh.Response, error) {
		r, resp, err := t.client.gh.Repositories.Get(ctx, owner, name)
		repository = r
		return resp, err
	})
	if err != nil {
		return frontier.Page{}, fmt.Errorf("getting repository %s: %w", t.repo, err)
	}
	t.client.remember(t.repo, repository)

	branch := repository.GetDefaultBranch()
	if branch == "" {
		branch = "HEAD"
	}
	var tree *gh.Tree
	err = t.client.do(ctx, httputil.KindListing, func(ctx context.Context) (*gh.Response, error) {
		tr, resp, err := t.client.gh.Git.GetTree(ctx, owner, name, branch, true)
		tree = tr
		return resp, err
	})
	if err != nil {
		return frontier.Page{}, fmt.Errorf("listing tree of %s: %w", t.repo, err)
	}
	if tree.GetTruncated() {
		t.client.logger.Warn("repository tree truncated", "repo", t.repo)
	}

	var items []types.WorkItem
	for _, e := range tree.Entries {
		if e.GetType() != "blob" || !t.client.matches(e.GetPath()) {
			continue
		}
		items = append(items, types.WorkItem{
			ID:         ItemID(t.repo, e.GetPath()),
			Source:     types.SourceCode,
			Repository: t.repo,
			Path:       e.GetPath(),
			URL:        BlobURL(t.repo, branch, e.GetPath()),
			SHA:        e.GetSHA(),
		})
	}
	return frontier.Page{Items: items}, nil
}
