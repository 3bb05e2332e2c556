// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package forum harvests code examples from a Discourse forum: search and
// category listings for discovery, topic and post endpoints for content.
package forum

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/rhino-harvest/internal/httputil"
	"github.com/pdiddy/rhino-harvest/pkg/types"
)

// Client issues Discourse API requests through a shared executor.
type Client struct {
	baseURL     string
	http        *http.Client
	exec        *httputil.Executor
	userAgent   string
	apiKey      string
	apiUsername string
	logger      *slog.Logger
}

// NewClient returns a client for the forum at cfg.BaseURL. A nil executor
// is built from cfg's pacing and retry settings.
func NewClient(cfg types.ForumConfig, exec *httputil.Executor, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if exec == nil {
		exec = NewExecutor(cfg, logger)
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		http:        httputil.NewClient(cfg.Timeout),
		exec:        exec,
		userAgent:   cfg.UserAgent,
		apiKey:      cfg.APIKey,
		apiUsername: cfg.APIUsername,
		logger:      logger,
	}
}

// NewExecutor returns an executor with the forum's per-kind pacing.
func NewExecutor(cfg types.ForumConfig, logger *slog.Logger) *httputil.Executor {
	return httputil.NewExecutor(cfg.Retry, map[httputil.ChannelKind]types.PacingConfig{
		httputil.KindSearch:  cfg.SearchPacing,
		httputil.KindListing: cfg.ListingPacing,
		httputil.KindContent: cfg.ContentPacing,
	}, logger)
}

// Executor returns the executor used for every request.
func (c *Client) Executor() *httputil.Executor { return c.exec }

// TopicURL returns the human-facing URL of a topic.
func (c *Client) TopicURL(slug string, id int) string {
	if slug == "" {
		return fmt.Sprintf("%s/t/%d", c.baseURL, id)
	}
	return fmt.Sprintf("%s/t/%s/%d", c.baseURL, slug, id)
}

// getJSON fetches path with query and decodes a 2xx JSON body into out.
func (c *Client) getJSON(ctx context.Context, kind httputil.ChannelKind, path string, query url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	_, err := c.exec.Execute(ctx, kind, func(ctx context.Context) (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}
		if c.apiKey != "" {
			req.Header.Set("Api-Key", c.apiKey)
			req.Header.Set("Api-Username", c.apiUsername)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return resp, nil
		}
		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp, fmt.Errorf("parsing %s: %w", path, err)
		}
		return resp, nil
	})
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	return nil
}
