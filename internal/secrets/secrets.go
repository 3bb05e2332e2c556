// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Supported key files: github-token, discourse-api-key, discourse-api-username.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/rhino-harvest/pkg/types"
)

// Key file names.
const (
	GitHubToken          = "github-token"
	DiscourseAPIKey      = "discourse-api-key"
	DiscourseAPIUsername = "discourse-api-username"
)

// GitHubTokenEnv is consulted when no github-token file is present.
const GitHubTokenEnv = "GITHUB_TOKEN"

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged and skipped.
func Load(dir string, logger *slog.Logger) (map[string]string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("could not read secret", "name", name, "error", err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Apply fills credentials missing from cfg. Values already set through
// configuration win over secret files; the GITHUB_TOKEN environment
// variable is the last resort for the code-search token.
func Apply(cfg *types.PipelineConfig, secrets map[string]string) {
	if cfg.Code.Token == "" {
		cfg.Code.Token = secrets[GitHubToken]
	}
	if cfg.Code.Token == "" {
		cfg.Code.Token = os.Getenv(GitHubTokenEnv)
	}
	if cfg.Forum.APIKey == "" {
		cfg.Forum.APIKey = secrets[DiscourseAPIKey]
	}
	if cfg.Forum.APIUsername == "" {
		cfg.Forum.APIUsername = secrets[DiscourseAPIUsername]
	}
}
