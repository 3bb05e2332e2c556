// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resume

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pdiddy/rhino-harvest/pkg/types"
)

// WriteRecords writes one JSON record per line to path, replacing any
// existing file. Zero records produce an empty file.
func WriteRecords(path string, records []types.ExtractedRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			f.Close()
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

// ReadRecords decodes the record file at path. Blank lines are ignored;
// lines that do not decode, or decode without an id, are counted as
// malformed and skipped.
func ReadRecords(path string) (records []types.ExtractedRecord, malformed int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	for {
		line, readErr := r.ReadBytes('\n')
		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
			var rec types.ExtractedRecord
			if json.Unmarshal(trimmed, &rec) != nil || rec.ID == "" {
				malformed++
			} else {
				records = append(records, rec)
			}
		}
		if readErr == io.EOF {
			return records, malformed, nil
		}
		if readErr != nil {
			return nil, 0, fmt.Errorf("reading %s: %w", path, readErr)
		}
	}
}
