// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperdrop/internal/catalog"
	"github.com/pdiddy/paperdrop/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List earlier runs from the catalog",
	Args:  cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, map[string]string{
			"output-dir": "output_dir",
			"catalog":    "catalog",
		})
	},
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().String("output-dir", "papers", "directory holding per-paper working directories")
	historyCmd.Flags().String("catalog", "", "run history database (default <output-dir>/catalog.db)")
	historyCmd.Flags().String("paper", "", "only runs for this short ID")
	historyCmd.Flags().Bool("failed", false, "only failed runs")
	historyCmd.Flags().Int("limit", 50, "maximum number of runs to list")
	historyCmd.Flags().Bool("yaml", false, "output as YAML")
	historyCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path := catalogPath(cfg)
	if path == "" {
		return fmt.Errorf("run history is disabled (catalog: %s)", catalogOff)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
		return nil
	}

	store, err := catalog.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := catalog.ListOptions{}
	opts.ShortID, _ = cmd.Flags().GetString("paper")
	opts.Limit, _ = cmd.Flags().GetInt("limit")
	if failed, _ := cmd.Flags().GetBool("failed"); failed {
		opts.Status = types.RunFailed
	}

	runs, err := store.List(cmd.Context(), opts)
	if err != nil {
		return err
	}

	asYAML, _ := cmd.Flags().GetBool("yaml")
	asJSON, _ := cmd.Flags().GetBool("json")
	switch {
	case asYAML:
		return catalog.WriteYAML(cmd.OutOrStdout(), runs)
	case asJSON:
		return catalog.WriteJSON(cmd.OutOrStdout(), runs)
	default:
		return catalog.WriteTable(cmd.OutOrStdout(), runs)
	}
}
