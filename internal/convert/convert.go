// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns the primary LaTeX document of an extracted source
// tree into an EPUB with pluggable backends (local pandoc or a pandoc
// container image).
package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/paperdrop/internal/command"
	"github.com/pdiddy/paperdrop/internal/container"
	"github.com/pdiddy/paperdrop/pkg/types"
)

const (
	// DefaultTemplate is the file name arXiv's template ships its entry point under.
	DefaultTemplate = "templateArxiv.tex"

	// DefaultLanguage is written into the EPUB metadata.
	DefaultLanguage = "en"

	texExt  = ".tex"
	epubExt = ".epub"
)

// ErrNoSourceDocument is returned when the extracted tree has no top-level
// .tex file.
var ErrNoSourceDocument = errors.New("no LaTeX source document found")

// Job describes one conversion.
type Job struct {
	// Dir is the extracted source tree; the converter runs inside it so
	// relative \input and \includegraphics paths resolve.
	Dir string

	// Input is the primary document's file name within Dir.
	Input string

	// Output is the absolute path of the EPUB to produce.
	Output string

	Title    string
	Authors  []string
	Language string
}

// Converter produces an EPUB from a LaTeX document.
type Converter interface {
	Convert(ctx context.Context, job Job) error
}

// New returns the converter for cfg.Backend. The container backend needs a
// working docker or podman with the configured image present.
func New(ctx context.Context, cfg types.ConversionConfig, runner command.Runner) (Converter, error) {
	switch cfg.Backend {
	case types.BackendPandoc, "":
		return &PandocConverter{Runner: runner, Bin: cfg.PandocPath}, nil
	case types.BackendContainer:
		rt, err := container.DetectRuntime(ctx, runner)
		if err != nil {
			return nil, err
		}
		c, err := NewContainerConverter(ctx, rt, cfg.Image)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported conversion backend %q: use pandoc or container", cfg.Backend)
	}
}

// SelectPrimary picks the document to convert from the top level of dir.
// A file named template wins; otherwise the first .tex file in directory
// order (os.ReadDir sorts by name) is used. Subdirectories are not searched.
func SelectPrimary(dir, template string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", dir, err)
	}

	var first string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), texExt) {
			continue
		}
		if e.Name() == template {
			return e.Name(), nil
		}
		if first == "" {
			first = e.Name()
		}
	}

	if first == "" {
		return "", fmt.Errorf("%w in %s", ErrNoSourceDocument, dir)
	}
	return first, nil
}

// ConvertPaper selects the primary document under srcDir and converts it
// to outDir/<stem>.epub, returning the EPUB path.
func ConvertPaper(ctx context.Context, c Converter, paper types.Paper, srcDir, outDir string, cfg types.ConversionConfig) (string, error) {
	template := cfg.Template
	if template == "" {
		template = DefaultTemplate
	}
	lang := cfg.Language
	if lang == "" {
		lang = DefaultLanguage
	}

	input, err := SelectPrimary(srcDir, template)
	if err != nil {
		return "", err
	}

	output, err := filepath.Abs(filepath.Join(outDir, paper.Stem()+epubExt))
	if err != nil {
		return "", fmt.Errorf("resolving output path: %w", err)
	}

	job := Job{
		Dir:      srcDir,
		Input:    input,
		Output:   output,
		Title:    paper.Title,
		Authors:  paper.Authors,
		Language: lang,
	}
	if err := c.Convert(ctx, job); err != nil {
		return "", fmt.Errorf("converting %s: %w", input, err)
	}

	if _, err := os.Stat(output); err != nil {
		return "", fmt.Errorf("converter produced no %s: %w", filepath.Base(output), err)
	}
	return output, nil
}

// pandocArgs builds the pandoc command line: LaTeX in, EPUB out, with a
// table of contents, as a standalone document, carrying book metadata.
func pandocArgs(input, output string, job Job) []string {
	args := []string{
		input,
		"-f", "latex",
		"-t", "epub",
		"-o", output,
		"--toc",
		"--standalone",
	}
	if job.Title != "" {
		args = append(args, "--metadata", "title="+job.Title)
	}
	if len(job.Authors) > 0 {
		args = append(args, "--metadata", "author="+strings.Join(job.Authors, ", "))
	}
	if job.Language != "" {
		args = append(args, "--metadata", "lang="+job.Language)
	}
	return args
}
