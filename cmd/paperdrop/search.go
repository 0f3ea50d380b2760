// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperdrop/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search <terms...>",
	Short: "List arXiv papers matching a query without processing them",
	Long: `Search queries the arXiv API and prints the top results in relevance
order. Use the listed ID with get to fetch a paper.`,
	Args: cobra.MinimumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, map[string]string{
			"max-results": "search.max_results",
			"timeout":     "http.timeout",
		})
	},
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int("max-results", search.DefaultMaxResults, "maximum number of results to return")
	searchCmd.Flags().Duration("timeout", defaultTimeout, "HTTP request timeout")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().Bool("csl", false, "output results as CSL-YAML for pandoc or reference managers")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	asJSON, _ := cmd.Flags().GetBool("json")
	asCSL, _ := cmd.Flags().GetBool("csl")

	client := search.NewArxivClient(&http.Client{Timeout: cfg.HTTP.Timeout}, cfg.Search)
	papers, err := client.Search(cmd.Context(), strings.Join(args, " "), client.MaxResults())
	if err != nil {
		return err
	}
	if len(papers) == 0 {
		return search.ErrNoMatches
	}

	switch {
	case asJSON:
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(papers)
	case asCSL:
		return search.FormatCSL(cmd.OutOrStdout(), papers)
	default:
		search.FormatTable(cmd.OutOrStdout(), papers)
		return nil
	}
}
