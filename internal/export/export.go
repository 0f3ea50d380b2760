// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export copies finished EPUBs onto the e-reader mount.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrDestination is returned when the e-reader mount cannot receive files.
var ErrDestination = errors.New("destination unavailable")

// Exporter copies files into a fixed destination directory.
type Exporter struct {
	Dir string
}

// New returns an Exporter for dir.
func New(dir string) *Exporter {
	return &Exporter{Dir: dir}
}

// Check verifies that the destination exists, is a directory, and accepts
// new files. It leaves nothing behind.
func (e *Exporter) Check() error {
	info, err := os.Stat(e.Dir)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDestination, e.Dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrDestination, e.Dir)
	}

	probe, err := os.CreateTemp(e.Dir, ".paperdrop-probe-*")
	if err != nil {
		return fmt.Errorf("%w: %s is not writable: %v", ErrDestination, e.Dir, err)
	}
	probe.Close()
	os.Remove(probe.Name())
	return nil
}

// Export copies src into the destination under its base name and returns
// the destination path. An existing file of that name is replaced. The
// copy keeps the source's permission bits and modification time.
func (e *Exporter) Export(src string) (string, error) {
	if err := e.Check(); err != nil {
		return "", err
	}

	info, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", src, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%s is not a regular file", src)
	}

	dest := filepath.Join(e.Dir, filepath.Base(src))
	if err := copyFile(src, dest, info); err != nil {
		return "", fmt.Errorf("copying %s to %s: %w", filepath.Base(src), e.Dir, err)
	}
	return dest, nil
}

// copyFile writes to a temp file beside dest, then renames it over dest so
// the device never shows a half-written book.
func copyFile(src, dest string, info os.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".paperdrop-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	cleanup := func() { os.Remove(tmpPath) }

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}

	// FAT-formatted readers reject chmod; the copy is still usable.
	_ = os.Chmod(tmpPath, info.Mode().Perm())

	if err := os.Chtimes(tmpPath, info.ModTime(), info.ModTime()); err != nil {
		cleanup()
		return fmt.Errorf("preserving modification time: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		cleanup()
		return err
	}
	return nil
}
