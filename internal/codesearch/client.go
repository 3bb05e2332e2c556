// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package codesearch harvests scripts from a code-hosting provider through
// its code-search API and the file trees of known repositories.
package codesearch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/pdiddy/rhino-harvest/internal/httputil"
	"github.com/pdiddy/rhino-harvest/pkg/types"
)

// Channel ranks. Known-repository listings carry less metadata than search
// hits (no blob URL from the provider).
const (
	TreeRichness   = 1
	SearchRichness = 2
)

// repoInfo is the repository metadata attached to every file of a repository.
type repoInfo struct {
	stars       int
	description string
	license     string
}

// Client wraps the go-github client and routes every call through the
// shared executor.
type Client struct {
	gh         *gh.Client
	exec       *httputil.Executor
	logger     *slog.Logger
	extensions []string

	repos map[string]repoInfo
}

// NewClient returns a client for cfg. A non-empty cfg.Token is presented as
// a bearer token; a non-empty cfg.BaseURL replaces the public API endpoint.
// A nil executor is built from cfg's pacing and retry settings.
func NewClient(cfg types.CodeSearchConfig, exec *httputil.Executor, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if exec == nil {
		exec = NewExecutor(cfg, logger)
	}

	hc := httputil.NewClient(cfg.Timeout)
	if cfg.Token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, hc)
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		tc := oauth2.NewClient(ctx, ts)
		tc.Timeout = cfg.Timeout
		hc = tc
	}

	client := gh.NewClient(hc)
	if cfg.UserAgent != "" {
		client.UserAgent = cfg.UserAgent
	}
	if cfg.BaseURL != "" {
		u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parsing code search base URL: %w", err)
		}
		client.BaseURL = u
	}

	return &Client{
		gh:         client,
		exec:       exec,
		logger:     logger,
		extensions: cfg.Extensions,
		repos:      make(map[string]repoInfo),
	}, nil
}

// NewExecutor returns an executor with the code-search per-kind pacing.
func NewExecutor(cfg types.CodeSearchConfig, logger *slog.Logger) *httputil.Executor {
	return httputil.NewExecutor(cfg.Retry, map[httputil.ChannelKind]types.PacingConfig{
		httputil.KindSearch:  cfg.SearchPacing,
		httputil.KindListing: cfg.ListingPacing,
		httputil.KindContent: cfg.ContentPacing,
	}, logger)
}

// Executor returns the executor used for every request.
func (c *Client) Executor() *httputil.Executor { return c.exec }

// ItemID returns the canonical work item id of a file.
func ItemID(repo, filePath string) string { return repo + ":" + filePath }

// BlobURL returns the human-facing URL of a file at ref.
func BlobURL(repo, ref, filePath string) string {
	if ref == "" {
		ref = "HEAD"
	}
	return fmt.Sprintf("https://github.com/%s/blob/%s/%s", repo, ref, filePath)
}

// SplitRepo splits "owner/name".
func SplitRepo(repo string) (owner, name string, err error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("repository %q is not owner/name", repo)
	}
	return owner, name, nil
}

// matches reports whether p carries one of the configured extensions. An
// empty extension list accepts every path.
func (c *Client) matches(p string) bool {
	if len(c.extensions) == 0 {
		return true
	}
	ext := strings.ToLower(path.Ext(p))
	for _, e := range c.extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// do runs fn through the executor, translating go-github's response and
// error into what the executor classifies.
func (c *Client) do(ctx context.Context, kind httputil.ChannelKind, fn func(ctx context.Context) (*gh.Response, error)) error {
	_, err := c.exec.Execute(ctx, kind, func(ctx context.Context) (*http.Response, error) {
		return toHTTP(fn(ctx))
	})
	return err
}

// toHTTP exposes the raw response of a go-github call. Rate-limit errors
// raised without a server round trip carry no headers, so the reset time
// and retry hint are copied onto the response.
func toHTTP(resp *gh.Response, err error) (*http.Response, error) {
	if resp == nil || resp.Response == nil {
		if err == nil {
			err = errors.New("empty response")
		}
		return nil, err
	}
	r := resp.Response
	if err == nil {
		return r, nil
	}
	if r.Header == nil {
		r.Header = make(http.Header)
	}

	var rl *gh.RateLimitError
	if errors.As(err, &rl) && r.Header.Get(httputil.HeaderRateReset) == "" && !rl.Rate.Reset.IsZero() {
		r.Header.Set(httputil.HeaderRateReset, strconv.FormatInt(rl.Rate.Reset.Unix(), 10))
	}
	var abuse *gh.AbuseRateLimitError
	if errors.As(err, &abuse) && abuse.RetryAfter != nil && r.Header.Get(httputil.HeaderRetryAfter) == "" {
		r.Header.Set(httputil.HeaderRetryAfter, strconv.Itoa(int(abuse.RetryAfter.Seconds())))
	}

	if r.StatusCode >= 200 && r.StatusCode < 300 {
		return r, err
	}
	return r, nil
}
