// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/rhino-harvest/internal/catalog"
	"github.com/pdiddy/rhino-harvest/internal/resume"
	"github.com/pdiddy/rhino-harvest/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Index, search, and export harvested records",
	Long: `Catalog manages a SQLite index over the harvested record files. Use
the subcommands to store (index records), query (search), or export
(write YAML or JSONL). Record files remain the source of truth; store
re-indexes only files that changed since the last run.

The catalog uses SQLite FTS5, so the binary must be built with
-tags sqlite_fts5 (mage build does this).`,
}

var catalogStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Index record files into the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, store, err := openCatalog(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		sources := []struct {
			name, dir string
		}{
			{types.SourceForum, cfg.Forum.OutputDir},
			{types.SourceCode, cfg.Code.OutputDir},
		}
		ctx := context.Background()
		var total catalog.IngestSummary
		for _, src := range sources {
			recordsDir := filepath.Join(src.dir, resume.RecordsDirName)
			if _, err := os.Stat(recordsDir); os.IsNotExist(err) {
				logger.Debug("no records to index", "source", src.name, "dir", recordsDir)
				continue
			}
			s, err := store.Ingest(ctx, src.name, recordsDir, os.Stdout)
			if err != nil {
				return err
			}
			total.Indexed += s.Indexed
			total.Updated += s.Updated
			total.Skipped += s.Skipped
			total.Failed += s.Failed
		}
		if total.Failed > 0 {
			return fmt.Errorf("%d record file(s) failed to index", total.Failed)
		}
		return nil
	},
}

var catalogQueryCmd = &cobra.Command{
	Use:   "query [search terms...]",
	Short: "Search the catalog",
	Long: `Query searches cataloged records using full-text search over title,
instruction, and code, with optional filters for language, source, tag,
and accepted answers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := openCatalog(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		opts := queryOptsFromFlags(cmd, args)
		if opts.IsEmpty() {
			return fmt.Errorf("provide a search query or at least one filter (--language, --source, --tag, --solutions)")
		}

		results, err := store.Query(context.Background(), opts)
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(results)
		}

		if len(results) == 0 {
			fmt.Println("No results.")
			return nil
		}
		for i, r := range results {
			fmt.Printf("%d. [%s/%s] %s\n", i+1, r.Source, r.Language, r.ID)
			if r.Title != "" {
				fmt.Printf("   %s\n", r.Title)
			}
			if r.SourceURL != "" {
				fmt.Printf("   %s\n", r.SourceURL)
			}
			fmt.Printf("   %s\n", firstLine(r.Code))
			if len(r.Tags) > 0 {
				fmt.Printf("   Tags: %s\n", strings.Join(r.Tags, ", "))
			}
		}
		return nil
	},
}

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export cataloged records to YAML or JSONL",
	Long: `Export writes the catalog (or a filtered subset) to export.yaml or
export.jsonl in the catalog directory. Supports the same filter flags as
query for partial exports.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		_, store, err := openCatalog(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		opts := queryOptsFromFlags(cmd, args)

		var path string
		switch format {
		case "yaml", "":
			path, err = store.ExportYAML(context.Background(), opts)
		case "jsonl":
			path, err = store.ExportJSONL(context.Background(), opts)
		default:
			return fmt.Errorf("unsupported format %q: use yaml or jsonl", format)
		}
		if err != nil {
			return err
		}
		fmt.Println("Exported to", path)
		return nil
	},
}

// --- shared helpers ---

func openCatalog(cmd *cobra.Command) (types.PipelineConfig, *catalog.Store, error) {
	cfg, err := pipelineConfig()
	if err != nil {
		return cfg, nil, err
	}
	if dir, _ := cmd.Flags().GetString("catalog-dir"); dir != "" {
		cfg.Catalog.Dir = dir
	}
	if n, _ := cmd.Flags().GetInt("max-results"); n > 0 {
		cfg.Catalog.MaxResults = n
	}
	store, err := catalog.NewStore(cfg.Catalog)
	return cfg, store, err
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) catalog.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}
	language, _ := cmd.Flags().GetString("language")
	source, _ := cmd.Flags().GetString("source")
	tags, _ := cmd.Flags().GetStringSlice("tag")
	solutions, _ := cmd.Flags().GetBool("solutions")
	limit, _ := cmd.Flags().GetInt("limit")

	return catalog.QueryOptions{
		Query:      queryText,
		Language:   language,
		Source:     source,
		Tags:       tags,
		Solutions:  solutions,
		MaxResults: limit,
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	if len(line) > 100 {
		line = line[:97] + "..."
	}
	return line
}

func init() {
	catalogCmd.PersistentFlags().String("catalog-dir", "", "catalog directory (default from config)")
	catalogCmd.PersistentFlags().Int("max-results", 0, "default maximum number of query results (0 = use config)")

	for _, c := range []*cobra.Command{catalogQueryCmd, catalogExportCmd} {
		c.Flags().String("query", "", "full-text search query")
		c.Flags().String("language", "", "filter by language: python, csharp, unknown")
		c.Flags().String("source", "", "filter by source: forum or code")
		c.Flags().StringSlice("tag", nil, "filter by tag, repeatable (all must match)")
		c.Flags().Bool("solutions", false, "only records from accepted answers")
		c.Flags().Int("limit", 0, "maximum results (0 = use default)")
	}
	catalogQueryCmd.Flags().Bool("json", false, "output results as JSON")
	catalogExportCmd.Flags().String("format", "yaml", "export format: yaml or jsonl")

	catalogCmd.AddCommand(catalogStoreCmd)
	catalogCmd.AddCommand(catalogQueryCmd)
	catalogCmd.AddCommand(catalogExportCmd)

	rootCmd.AddCommand(catalogCmd)
}
