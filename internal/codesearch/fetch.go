// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package codesearch

import (
	"context"
	"errors"
	"fmt"

	gh "github.com/google/go-github/v80/github"

	"github.com/pdiddy/rhino-harvest/internal/httputil"
	"github.com/pdiddy/rhino-harvest/pkg/types"
)

// FetchFile downloads the file named by item together with its repository
// metadata. Repository metadata is fetched once per repository per run.
func (c *Client) FetchFile(ctx context.Context, item types.WorkItem) (types.FetchResult, error) {
	owner, name, err := SplitRepo(item.Repository)
	if err != nil {
		return types.FetchResult{}, httputil.Malformed(err)
	}
	if item.Path == "" {
		return types.FetchResult{}, httputil.Malformed(fmt.Errorf("item %s has no path", item.ID))
	}

	info, err := c.repoInfo(ctx, item.Repository, owner, name)
	if err != nil {
		return types.FetchResult{}, err
	}

	var file *gh.RepositoryContent
	err = c.do(ctx, httputil.KindContent, func(ctx context.Context) (*gh.Response, error) {
		f, _, resp, err := c.gh.Repositories.GetContents(ctx, owner, name, item.Path, nil)
		file = f
		return resp, err
	})
	if err != nil {
		return types.FetchResult{}, fmt.Errorf("getting %s: %w", item.ID, err)
	}
	if file == nil {
		return types.FetchResult{}, httputil.Malformed(fmt.Errorf("%s is a directory", item.ID))
	}
	content, err := file.GetContent()
	if err != nil {
		return types.FetchResult{}, httputil.Malformed(fmt.Errorf("decoding %s: %w", item.ID, err))
	}

	url := item.URL
	if url == "" {
		url = file.GetHTMLURL()
	}
	if url == "" {
		url = BlobURL(item.Repository, "", item.Path)
	}
	title := item.Title
	if title == "" {
		title = file.GetName()
	}

	return types.FetchResult{
		Item:  item,
		Title: title,
		URL:   url,
		File: &types.SourceFile{
			Content:     content,
			Stars:       info.stars,
			Description: info.description,
			License:     info.license,
		},
	}, nil
}

// repoInfo returns cached repository metadata. A failed lookup is cached as
// empty metadata so the file fetch still proceeds; cancellation is returned.
func (c *Client) repoInfo(ctx context.Context, repo, owner, name string) (repoInfo, error) {
	if info, ok := c.repos[repo]; ok {
		return info, nil
	}
	var repository *gh.Repository
	err := c.do(ctx, httputil.KindContent, func(ctx context.Context) (*gh.Response, error) {
		r, resp, err := c.gh.Repositories.Get(ctx, owner, name)
		repository = r
		return resp, err
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return repoInfo{}, err
		}
		c.logger.Warn("repository metadata unavailable", "repo", repo, "error", err)
		c.repos[repo] = repoInfo{}
		return repoInfo{}, nil
	}
	return c.remember(repo, repository), nil
}

func (c *Client) remember(repo string, r *gh.Repository) repoInfo {
	info := repoInfo{
		stars:       r.GetStargazersCount(),
		description: r.GetDescription(),
		license:     r.GetLicense().GetSPDXID(),
	}
	c.repos[repo] = info
	return info
}
