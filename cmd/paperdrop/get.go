// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperdrop/internal/acquire"
	"github.com/pdiddy/paperdrop/internal/catalog"
	"github.com/pdiddy/paperdrop/internal/command"
	"github.com/pdiddy/paperdrop/internal/convert"
	"github.com/pdiddy/paperdrop/internal/export"
	"github.com/pdiddy/paperdrop/internal/extract"
	"github.com/pdiddy/paperdrop/internal/pipeline"
	"github.com/pdiddy/paperdrop/internal/search"
	"github.com/pdiddy/paperdrop/pkg/types"
)

var getCmd = &cobra.Command{
	Use:   "get <arxiv-id | search terms...>",
	Short: "Fetch a paper, convert it to EPUB, and copy it to the e-reader",
	Long: `Get resolves its arguments to an arXiv paper. An identifier such as
2308.06721 or hep-th/9901001 is looked up directly; anything else is a
search, and you pick one of the top results (or process them all with --all).

The LaTeX source is downloaded to <output-dir>/<id>/latex.tar.gz, unpacked
into latex_extracted/, converted to <id>.epub with pandoc, and copied to the
destination directory. A failure stops that paper only; nothing partial is
copied.`,
	Args: cobra.MinimumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, map[string]string{
			"output-dir":  "output_dir",
			"dest":        "dest",
			"retention":   "retention",
			"catalog":     "catalog",
			"extract":     "extract.backend",
			"converter":   "convert.backend",
			"max-results": "search.max_results",
			"timeout":     "http.timeout",
		})
	},
	RunE: runGet,
}

func init() {
	getCmd.Flags().String("output-dir", "papers", "directory holding per-paper working directories")
	getCmd.Flags().String("dest", placeholderDest, "e-reader directory the EPUB is copied to")
	getCmd.Flags().String("retention", string(types.RetainKeep), "working directory policy after success: keep or clean")
	getCmd.Flags().String("catalog", "", `run history database (default <output-dir>/catalog.db, "off" disables)`)
	getCmd.Flags().String("extract", string(types.ExtractTar), "extraction backend: tar or builtin")
	getCmd.Flags().String("converter", string(types.BackendPandoc), "conversion backend: pandoc or container")
	getCmd.Flags().Int("max-results", search.DefaultMaxResults, "number of search results to choose from")
	getCmd.Flags().Duration("timeout", defaultTimeout, "HTTP request timeout")
	getCmd.Flags().Bool("all", false, "process every search result instead of prompting")
	getCmd.Flags().Bool("strict", false, "exit non-zero when any paper fails")

	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	all, _ := cmd.Flags().GetBool("all")
	strict, _ := cmd.Flags().GetBool("strict")

	if cfg.DestDir == placeholderDest {
		fmt.Fprintf(os.Stderr, "dest is still %s: set --dest, PAPERDROP_DEST, or dest in paperdrop.yaml\n", placeholderDest)
	}

	ctx := cmd.Context()
	runner := command.OS{}

	extractor, err := extract.New(cfg.Extract, runner)
	if err != nil {
		return err
	}
	converter, err := convert.New(ctx, cfg.Conversion, runner)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: cfg.HTTP.Timeout}
	out := cmd.OutOrStdout()

	p := &pipeline.Pipeline{
		Search:    search.NewArxivClient(client, cfg.Search),
		Fetcher:   acquire.NewFetcher(client, cfg.Fetch),
		Extractor: extractor,
		Converter: converter,
		Exporter:  export.New(cfg.DestDir),
		Prompt: func(papers []types.Paper) (types.Paper, error) {
			return search.Prompt(cmd.InOrStdin(), out, papers)
		},
		Config: cfg,
		Out:    out,
	}

	if path := catalogPath(cfg); path != "" {
		store := catalog.NewLazy(path)
		defer store.Close()
		p.Recorder = store
	}

	_, err = p.Run(ctx, strings.Join(args, " "), pipeline.Options{All: all, Strict: strict})
	return err
}
