// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract unpacks LaTeX source archives into a paper's working
// directory after checking that no entry escapes it.
package extract

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mholt/archiver/v3"

	"github.com/pdiddy/paperdrop/internal/command"
	"github.com/pdiddy/paperdrop/pkg/types"
)

// DirName is the extraction subdirectory inside a working directory.
const DirName = "latex_extracted"

// ErrUnsafePath is returned for archives with entries that would land
// outside the extraction directory.
var ErrUnsafePath = errors.New("archive entry escapes extraction directory")

// Extractor unpacks a gzip-compressed tar archive into destDir.
type Extractor interface {
	Extract(ctx context.Context, archive, destDir string) error
}

// New returns the extractor for cfg.Backend. The tar backend shells out to
// the host tar through runner; the builtin backend needs no external tool.
func New(cfg types.ExtractConfig, runner command.Runner) (Extractor, error) {
	switch cfg.Backend {
	case types.ExtractTar, "":
		return &TarExtractor{Runner: runner, Bin: cfg.TarPath}, nil
	case types.ExtractBuiltin:
		return &BuiltinExtractor{}, nil
	default:
		return nil, fmt.Errorf("unsupported extract backend %q: use tar or builtin", cfg.Backend)
	}
}

// TarExtractor runs the host's tar.
type TarExtractor struct {
	Runner command.Runner

	// Bin overrides the tar executable (default "tar").
	Bin string
}

// Extract validates archive, creates destDir, and runs tar -xzf into it.
func (t *TarExtractor) Extract(ctx context.Context, archive, destDir string) error {
	if err := Validate(archive, destDir); err != nil {
		return err
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", destDir, err)
	}

	bin := t.Bin
	if bin == "" {
		bin = "tar"
	}
	c := command.Cmd{Name: bin, Args: []string{"-xzf", archive, "-C", destDir}}
	if err := t.Runner.Run(ctx, c); err != nil {
		return fmt.Errorf("extracting %s: %w", filepath.Base(archive), err)
	}
	return nil
}

// BuiltinExtractor unpacks archives in-process.
type BuiltinExtractor struct{}

// Extract validates archive and unpacks it into destDir, overwriting files
// left by an earlier run.
func (BuiltinExtractor) Extract(_ context.Context, archive, destDir string) error {
	if err := Validate(archive, destDir); err != nil {
		return err
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", destDir, err)
	}

	tgz := archiver.NewTarGz()
	tgz.OverwriteExisting = true
	tgz.MkdirAll = true
	if err := tgz.Unarchive(archive, destDir); err != nil {
		return fmt.Errorf("extracting %s: %w", filepath.Base(archive), err)
	}
	return nil
}

// Validate walks the archive and rejects absolute entry names, entries
// that resolve outside destDir, and links pointing outside destDir. Paths
// are resolved through the symlinks created by earlier entries, so a chain
// of individually harmless links cannot carry a later entry out.
func Validate(archive, destDir string) error {
	// Walk flattens callback errors into text, so the unsafe entry is
	// carried out through unsafe and the walk stopped early.
	var unsafe error
	reject := func(format string, args ...any) error {
		unsafe = fmt.Errorf("%w: "+format, append([]any{ErrUnsafePath}, args...)...)
		return archiver.ErrStopWalk
	}

	links := linkTable{}
	tgz := archiver.NewTarGz()
	err := tgz.Walk(archive, func(f archiver.File) error {
		hdr, ok := f.Header.(*tar.Header)
		if !ok {
			return fmt.Errorf("unexpected header type %T", f.Header)
		}

		switch hdr.Typeflag {
		case tar.TypeSymlink:
			if !links.add(hdr.Name, hdr.Linkname) {
				return reject("%s -> %s", hdr.Name, hdr.Linkname)
			}
		case tar.TypeLink:
			if _, ok := links.resolve(hdr.Name); !ok {
				return reject("%s", hdr.Name)
			}
			if _, ok := links.resolve(hdr.Linkname); !ok {
				return reject("%s -> %s", hdr.Name, hdr.Linkname)
			}
		default:
			if _, ok := links.resolve(hdr.Name); !ok {
				return reject("%s", hdr.Name)
			}
		}
		return nil
	})
	if unsafe != nil {
		return unsafe
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", filepath.Base(archive), err)
	}
	return nil
}
