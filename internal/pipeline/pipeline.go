// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline wires the stages together: resolve a query to papers,
// then fetch, extract, convert and export each one in turn. Every stage is
// reached through an interface so tests can substitute fakes.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paperdrop/internal/acquire"
	"github.com/pdiddy/paperdrop/internal/convert"
	"github.com/pdiddy/paperdrop/internal/extract"
	"github.com/pdiddy/paperdrop/internal/search"
	"github.com/pdiddy/paperdrop/pkg/types"
)

// MetadataFile is the per-paper metadata record in the working directory.
const MetadataFile = "paper.yaml"

// ErrFailures is returned by Run in strict mode when any paper failed.
var ErrFailures = errors.New("some papers failed")

// MetadataService answers searches and identifier lookups.
type MetadataService interface {
	Search(ctx context.Context, text string, max int) ([]types.Paper, error)
	Lookup(ctx context.Context, id string) ([]types.Paper, error)
	MaxResults() int
}

// Fetcher downloads a paper's source archive into a working directory and
// returns the archive path.
type Fetcher interface {
	Fetch(ctx context.Context, paper types.Paper, workDir string) (string, error)
}

// Exporter places a finished artifact on the device.
type Exporter interface {
	Export(src string) (string, error)
}

// Recorder stores the outcome of each processed paper.
type Recorder interface {
	Record(ctx context.Context, r types.RunRecord) (int64, error)
}

// PromptFunc asks the operator to pick one of several candidates.
type PromptFunc func(papers []types.Paper) (types.Paper, error)

// Options adjust a single Run.
type Options struct {
	// All processes every search hit instead of prompting for one.
	All bool

	// Strict makes Run return ErrFailures when any paper failed.
	Strict bool
}

// Pipeline processes papers one after another. Recorder may be nil.
type Pipeline struct {
	Search    MetadataService
	Fetcher   Fetcher
	Extractor extract.Extractor
	Converter convert.Converter
	Exporter  Exporter
	Recorder  Recorder
	Prompt    PromptFunc
	Config    types.PipelineConfig
	Out       io.Writer

	// Now defaults to time.Now.
	Now func() time.Time
}

// Result is the outcome of processing one paper.
type Result struct {
	Paper   types.Paper
	WorkDir string
	Archive string
	EPUB    string
	Dest    string

	// Stage is types.StageDone on success, otherwise the stage that failed.
	Stage types.Stage
	Err   error
}

// Summary holds the outcome of a Run.
type Summary struct {
	Succeeded int
	Failed    int
	Results   []Result
}

// Total returns the number of papers processed.
func (s Summary) Total() int {
	return s.Succeeded + s.Failed
}

// HasFailures reports whether any paper failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Run resolves raw and processes the resulting papers sequentially.
// Resolution errors are returned before anything touches the filesystem.
// Per-paper failures are reported on Out and counted in the summary; they
// only become an error in strict mode.
func (p *Pipeline) Run(ctx context.Context, raw string, opts Options) (Summary, error) {
	papers, err := p.Resolve(ctx, raw, opts.All)
	if err != nil {
		return Summary{}, err
	}

	var sum Summary
	for _, paper := range papers {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		r := p.Process(ctx, raw, paper)
		sum.Results = append(sum.Results, r)
		if r.Err != nil {
			sum.Failed++
		} else {
			sum.Succeeded++
		}
	}

	if len(papers) > 1 {
		fmt.Fprintf(p.Out, "\nDone: %d succeeded, %d failed (%d total)\n",
			sum.Succeeded, sum.Failed, sum.Total())
	}
	if opts.Strict && sum.HasFailures() {
		return sum, fmt.Errorf("%w: %d of %d", ErrFailures, sum.Failed, sum.Total())
	}
	return sum, nil
}

// Resolve turns raw into the papers to process. An identifier yields the
// single matching paper. Free text yields every hit when all is set,
// otherwise the operator's pick among them.
func (p *Pipeline) Resolve(ctx context.Context, raw string, all bool) ([]types.Paper, error) {
	q := acquire.Classify(raw)

	if q.IsIdentifier() {
		papers, err := p.Search.Lookup(ctx, q.LookupID())
		if err != nil {
			return nil, fmt.Errorf("looking up %s: %w", q.LookupID(), err)
		}
		if len(papers) == 0 {
			return nil, fmt.Errorf("%w: %s", search.ErrNotFound, q.LookupID())
		}
		return papers[:1], nil
	}

	if q.Key == "" {
		return nil, fmt.Errorf("%w: empty query", search.ErrNoMatches)
	}

	papers, err := p.Search.Search(ctx, q.Key, p.Search.MaxResults())
	if err != nil {
		return nil, fmt.Errorf("searching for %q: %w", q.Key, err)
	}
	if len(papers) == 0 {
		return nil, fmt.Errorf("%w for %q", search.ErrNoMatches, q.Key)
	}
	if all {
		return papers, nil
	}

	choice, err := p.Prompt(papers)
	if err != nil {
		return nil, err
	}
	return []types.Paper{choice}, nil
}

// Process runs fetch, extract, convert and export for one paper. Errors
// are caught here: they are reported on Out and returned in the Result,
// and nothing is copied to the device. The working directory is left as
// is after a failure.
func (p *Pipeline) Process(ctx context.Context, query string, paper types.Paper) Result {
	started := p.now()
	r := Result{
		Paper:   paper,
		WorkDir: filepath.Join(p.Config.OutputDir, paper.Stem()),
	}

	fmt.Fprintf(p.Out, "processing: %s [%s]\n", paper.DisplayTitle(), paper.ShortID)
	r.Stage, r.Err = p.process(ctx, &r)

	if r.Err != nil {
		fmt.Fprintf(p.Out, "Error processing %s: %v\n", paper.DisplayTitle(), r.Err)
	} else if p.Config.Retention == types.RetainClean {
		if err := os.RemoveAll(r.WorkDir); err != nil {
			fmt.Fprintf(p.Out, "warning: removing %s: %v\n", r.WorkDir, err)
		} else {
			r.Archive, r.EPUB = "", ""
		}
	}

	p.record(ctx, query, r, started)
	return r
}

func (p *Pipeline) process(ctx context.Context, r *Result) (types.Stage, error) {
	paper := r.Paper

	if err := os.MkdirAll(r.WorkDir, 0o755); err != nil {
		return types.StageFetch, fmt.Errorf("creating working directory: %w", err)
	}
	if err := writeMetadata(r.WorkDir, paper); err != nil {
		return types.StageFetch, err
	}

	fmt.Fprintf(p.Out, "downloading: %s source\n", paper.ShortID)
	archive, err := p.Fetcher.Fetch(ctx, paper, r.WorkDir)
	if err != nil {
		return types.StageFetch, err
	}
	r.Archive = archive

	srcDir := filepath.Join(r.WorkDir, extract.DirName)
	fmt.Fprintf(p.Out, "extracting: %s\n", filepath.Base(archive))
	if err := p.Extractor.Extract(ctx, archive, srcDir); err != nil {
		return types.StageExtract, err
	}

	fmt.Fprintf(p.Out, "converting: %s\n", paper.ShortID)
	epub, err := convert.ConvertPaper(ctx, p.Converter, paper, srcDir, r.WorkDir, p.Config.Conversion)
	if err != nil {
		return types.StageConvert, err
	}
	r.EPUB = epub

	dest, err := p.Exporter.Export(epub)
	if err != nil {
		return types.StageExport, err
	}
	r.Dest = dest
	fmt.Fprintf(p.Out, "copied: %s\n", dest)

	return types.StageDone, nil
}

func (p *Pipeline) record(ctx context.Context, query string, r Result, started time.Time) {
	if p.Recorder == nil {
		return
	}

	rec := types.RunRecord{
		Query:      query,
		PaperID:    r.Paper.ID,
		ShortID:    r.Paper.ShortID,
		Title:      r.Paper.Title,
		Authors:    r.Paper.Authors,
		Status:     types.RunSucceeded,
		Stage:      r.Stage,
		EPUBPath:   r.EPUB,
		DestPath:   r.Dest,
		StartedAt:  started,
		FinishedAt: p.now(),
	}
	if r.Err != nil {
		rec.Status = types.RunFailed
		rec.Error = r.Err.Error()
	}

	if _, err := p.Recorder.Record(ctx, rec); err != nil {
		fmt.Fprintf(p.Out, "warning: recording run for %s: %v\n", r.Paper.ShortID, err)
	}
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// writeMetadata stores the paper record as YAML in the working directory.
func writeMetadata(workDir string, paper types.Paper) error {
	data, err := yaml.Marshal(paper)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(workDir, MetadataFile), data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", MetadataFile, err)
	}
	return nil
}
