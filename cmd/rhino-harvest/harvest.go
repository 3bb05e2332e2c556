// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/pdiddy/rhino-harvest/internal/codesearch"
	"github.com/pdiddy/rhino-harvest/internal/forum"
	"github.com/pdiddy/rhino-harvest/internal/harvest"
	"github.com/pdiddy/rhino-harvest/pkg/types"
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Run a resumable harvest against one source",
	Long: `Harvest discovers work items through every configured channel of a
source, fetches each item not already completed, extracts records, and
writes one record file per item. A summary.json is written to the output
directory at every checkpoint and when the run ends.

Interrupt with Ctrl-C to stop between items; the next run resumes.`,
}

var harvestForumCmd = &cobra.Command{
	Use:   "forum",
	Short: "Harvest scripting examples from the Discourse forum",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := pipelineConfig()
		if err != nil {
			return err
		}
		fc := cfg.Forum
		if dir, _ := cmd.Flags().GetString("output-dir"); dir != "" {
			fc.OutputDir = dir
		}
		if queries, _ := cmd.Flags().GetStringSlice("query"); len(queries) > 0 {
			fc.SearchQueries = queries
		}
		if cmd.Flags().Changed("categories") {
			fc.CategoryIDs, _ = cmd.Flags().GetIntSlice("categories")
		}
		if n, _ := cmd.Flags().GetInt("max-pages"); n > 0 {
			fc.MaxSearchPages = n
			fc.MaxCategoryPages = n
		}
		if fc.BaseURL == "" {
			return fmt.Errorf("forum base URL is not configured")
		}
		return runHarvest(cmd, forum.NewSource(fc, cfg.Extraction, logger), fc.OutputDir, cfg.Harvest)
	},
}

var harvestCodeCmd = &cobra.Command{
	Use:   "code",
	Short: "Harvest Rhino Python files from GitHub",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := pipelineConfig()
		if err != nil {
			return err
		}
		cc := cfg.Code
		if dir, _ := cmd.Flags().GetString("output-dir"); dir != "" {
			cc.OutputDir = dir
		}
		if queries, _ := cmd.Flags().GetStringSlice("query"); len(queries) > 0 {
			cc.SearchQueries = queries
		}
		if cmd.Flags().Changed("repos") {
			cc.KnownRepos, _ = cmd.Flags().GetStringSlice("repos")
		}
		if n, _ := cmd.Flags().GetInt("max-pages"); n > 0 {
			cc.MaxSearchPages = n
		}
		if cc.Token == "" {
			logger.Warn("no GitHub token configured; code search requires authentication")
		}
		src, err := codesearch.NewSource(cc, cfg.Extraction, logger)
		if err != nil {
			return err
		}
		return runHarvest(cmd, src, cc.OutputDir, cfg.Harvest)
	},
}

func runHarvest(cmd *cobra.Command, src harvest.Source, outputDir string, hc types.HarvestConfig) error {
	if n, _ := cmd.Flags().GetInt("checkpoint-every"); n > 0 {
		hc.CheckpointEvery = n
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sum, err := harvest.New(src, outputDir, hc, logger).Run(ctx)
	if err != nil && sum.RunID == "" {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(sum); encErr != nil {
			return encErr
		}
	} else {
		printSummary(os.Stdout, sum)
	}
	return err
}

// printSummary writes the headline counts of a run summary.
func printSummary(w io.Writer, s types.RunSummary) {
	fmt.Fprintf(w, "Run %s (%s): %s\n", s.RunID, s.Source, s.Status)
	fmt.Fprintf(w, "  discovered      %d\n", s.Discovered)
	fmt.Fprintf(w, "  already done    %d\n", s.AlreadyDone)
	fmt.Fprintf(w, "  processed       %d\n", s.Processed)
	fmt.Fprintf(w, "  fetched         %d\n", s.Fetched)
	fmt.Fprintf(w, "  empty           %d\n", s.Empty)
	fmt.Fprintf(w, "  skipped         %d\n", s.Skipped)
	fmt.Fprintf(w, "  errors          %d\n", s.Errors)
	for _, reason := range sortedKeys(s.Failures) {
		fmt.Fprintf(w, "    %-14s%d\n", reason, s.Failures[reason])
	}
	fmt.Fprintf(w, "  items on disk   %d (%d with content)\n", s.ItemsOnDisk, s.WithContent)
	fmt.Fprintf(w, "  with docstring  %d\n", s.WithDocstring)
	fmt.Fprintf(w, "  with prompt     %d\n", s.WithInstruction)
	fmt.Fprintf(w, "  records         %d (%d solutions, %d malformed lines)\n", s.Records, s.SolutionRecords, s.MalformedLines)
	for _, lang := range sortedKeys(s.Languages) {
		fmt.Fprintf(w, "    %-14s%d\n", lang, s.Languages[lang])
	}
	for _, ch := range s.ChannelReports {
		if ch.Error != "" {
			fmt.Fprintf(w, "  channel %s: %d items, %d pages, error: %s\n", ch.Name, ch.Items, ch.Pages, ch.Error)
		}
	}
}

func init() {
	for _, c := range []*cobra.Command{harvestForumCmd, harvestCodeCmd} {
		c.Flags().String("output-dir", "", "output directory (default from config)")
		c.Flags().StringSlice("query", nil, "search query, repeatable (replaces the configured queries)")
		c.Flags().Int("max-pages", 0, "maximum pages per discovery channel (0 = use config)")
		c.Flags().Int("checkpoint-every", 0, "write an interim summary every N items (0 = use config)")
		c.Flags().Bool("json", false, "print the final summary as JSON")
	}
	harvestForumCmd.Flags().IntSlice("categories", nil, "category IDs to list (replaces the configured categories)")
	harvestCodeCmd.Flags().StringSlice("repos", nil, "owner/repo repositories to list in full (replaces the configured repositories)")

	harvestCmd.AddCommand(harvestForumCmd)
	harvestCmd.AddCommand(harvestCodeCmd)

	rootCmd.AddCommand(harvestCmd)
}
