// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/rhino-harvest/pkg/types"
)

const exportLimit = 1000000

// ExportYAML writes the records matching opts to <catalog>/export.yaml and
// returns the path written.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) (string, error) {
	records, err := s.exportRecords(ctx, opts)
	if err != nil {
		return "", err
	}
	data, err := yaml.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	path := filepath.Join(s.dir, "export.yaml")
	return path, os.WriteFile(path, data, 0o644)
}

// ExportJSONL writes the records matching opts to <catalog>/export.jsonl,
// one record per line, and returns the path written.
func (s *Store) ExportJSONL(ctx context.Context, opts QueryOptions) (string, error) {
	records, err := s.exportRecords(ctx, opts)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return "", fmt.Errorf("marshaling record %s: %w", r.ID, err)
		}
	}
	path := filepath.Join(s.dir, "export.jsonl")
	return path, os.WriteFile(path, buf.Bytes(), 0o644)
}

func (s *Store) exportRecords(ctx context.Context, opts QueryOptions) ([]types.ExtractedRecord, error) {
	opts.MaxResults = exportLimit
	records, err := s.Query(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	if records == nil {
		records = []types.ExtractedRecord{}
	}
	return records, nil
}
