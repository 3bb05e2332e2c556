// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pdiddy/rhino-harvest/internal/resume"
	"github.com/pdiddy/rhino-harvest/internal/summary"
	"github.com/pdiddy/rhino-harvest/pkg/types"
)

var summaryCmd = &cobra.Command{
	Use:   "summary [forum|code]",
	Short: "Print the last run summary of a harvest",
	Long: `Summary reads summary.json from a harvest output directory and prints
its counts. With --rescan the on-disk counts are recomputed from the record
files instead of read from the last checkpoint.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := pipelineConfig()
		if err != nil {
			return err
		}
		dir, _ := cmd.Flags().GetString("output-dir")
		if dir == "" {
			source := types.SourceForum
			if len(args) > 0 {
				source = args[0]
			}
			switch source {
			case types.SourceForum:
				dir = cfg.Forum.OutputDir
			case types.SourceCode:
				dir = cfg.Code.OutputDir
			default:
				return fmt.Errorf("unknown source %q: use forum or code", source)
			}
		}

		sum, err := summary.Load(filepath.Join(dir, summary.FileName))
		if err != nil {
			return err
		}

		if rescan, _ := cmd.Flags().GetBool("rescan"); rescan {
			tally, err := summary.Scan(filepath.Join(dir, resume.RecordsDirName))
			if err != nil {
				return err
			}
			tally.Apply(&sum)
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(sum)
		}
		printSummary(os.Stdout, sum)
		return nil
	},
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	summaryCmd.Flags().String("output-dir", "", "harvest output directory (default from config)")
	summaryCmd.Flags().Bool("rescan", false, "recompute on-disk counts from the record files")
	summaryCmd.Flags().Bool("json", false, "output the summary as JSON")

	rootCmd.AddCommand(summaryCmd)
}
