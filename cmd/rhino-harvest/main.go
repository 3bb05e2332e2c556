// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the rhino-harvest CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/pdiddy/rhino-harvest/internal/secrets"
	"github.com/pdiddy/rhino-harvest/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// logger is configured by the root command before any subcommand runs.
var logger = slog.Default()

// rootCmd is the base command for the rhino-harvest CLI.
var rootCmd = &cobra.Command{
	Use:   "rhino-harvest",
	Short: "Harvest Rhino3D scripting examples from the forum and GitHub",
	Long: `rhino-harvest collects Rhino3D scripting examples (rhinoscriptsyntax,
RhinoCommon, Grasshopper Python, C#) from the McNeel Discourse forum and
from GitHub code search, and writes them as instruction/code records.

Harvests are resumable: interrupted runs pick up where they stopped and
never refetch items already written. The catalog subcommands index the
records in SQLite for search and export.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			level = slog.LevelDebug
		}
		opts := &slog.HandlerOptions{Level: level}
		if term.IsTerminal(int(os.Stderr.Fd())) {
			logger = slog.New(slog.NewTextHandler(os.Stderr, opts))
		} else {
			logger = slog.New(slog.NewJSONHandler(os.Stderr, opts))
		}
		slog.SetDefault(logger)

		s, err := secrets.Load(".secrets/", logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Info("loaded secrets", "keys", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./rhino-harvest.yaml or ~/.config/rhino-harvest/rhino-harvest.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("rhino-harvest")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "rhino-harvest"))
		}
	}

	viper.SetEnvPrefix("RHINO_HARVEST")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// pipelineConfig overlays the config file onto the defaults and fills
// credentials from the loaded secrets.
func pipelineConfig() (types.PipelineConfig, error) {
	cfg := types.DefaultPipelineConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	secrets.Apply(&cfg, loadedSecrets)
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
