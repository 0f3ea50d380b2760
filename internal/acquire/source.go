// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire classifies user queries and downloads LaTeX source
// archives for resolved papers.
package acquire

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pdiddy/paperdrop/internal/httputil"
	"github.com/pdiddy/paperdrop/pkg/types"
)

// ArchiveName is the file the source archive is stored as inside a
// paper's working directory.
const ArchiveName = "latex.tar.gz"

// DefaultSourceURL is the arXiv e-print endpoint; the short ID is appended.
const DefaultSourceURL = "https://arxiv.org/e-print/"

// gzipTypes lists the media types accepted as a gzip-compressed archive.
// arXiv labels tarred sources as application/x-eprint-tar.
var gzipTypes = map[string]bool{
	"application/gzip":         true,
	"application/x-gzip":       true,
	"application/x-eprint-tar": true,
	"application/x-tar+gzip":   true,
}

// SourceError reports a paper without a usable source archive: a non-200
// answer or a response that is not a gzip archive.
type SourceError struct {
	ShortID     string
	URL         string
	Status      int
	ContentType string
}

func (e *SourceError) Error() string {
	if e.Status != http.StatusOK {
		return fmt.Sprintf("no usable source for %s: HTTP %d from %s", e.ShortID, e.Status, e.URL)
	}
	return fmt.Sprintf("no usable source for %s: content type %q is not a gzip archive", e.ShortID, e.ContentType)
}

// Fetcher downloads source archives from the e-print service.
type Fetcher struct {
	client *http.Client
	cfg    types.FetchConfig
}

// NewFetcher returns a Fetcher using client for requests. An empty
// cfg.SourceURL falls back to DefaultSourceURL.
func NewFetcher(client *http.Client, cfg types.FetchConfig) *Fetcher {
	if cfg.SourceURL == "" {
		cfg.SourceURL = DefaultSourceURL
	}
	return &Fetcher{client: client, cfg: cfg}
}

// SourceURL returns the archive URL for a short ID.
func (f *Fetcher) SourceURL(shortID string) string {
	return f.cfg.SourceURL + shortID
}

// Fetch downloads the source archive of paper into workDir/latex.tar.gz
// and returns that path. The body is written to a temporary file that is
// renamed into place only once the download completes, so a failed request
// never leaves an archive behind.
func (f *Fetcher) Fetch(ctx context.Context, paper types.Paper, workDir string) (string, error) {
	url := f.SourceURL(paper.ShortID)

	req, err := httputil.NewRequest(ctx, url, f.cfg.UserAgent)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/gzip, application/x-eprint-tar")

	resp, err := httputil.DoWithRetry(ctx, f.client, req, f.cfg.MaxRetries)
	if err != nil {
		return "", fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if resp.StatusCode != http.StatusOK || !isGzip(contentType) {
		return "", &SourceError{
			ShortID:     paper.ShortID,
			URL:         url,
			Status:      resp.StatusCode,
			ContentType: contentType,
		}
	}

	destPath := filepath.Join(workDir, ArchiveName)
	if err := writeAtomic(resp.Body, destPath); err != nil {
		return "", fmt.Errorf("saving %s: %w", ArchiveName, err)
	}
	return destPath, nil
}

func isGzip(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return gzipTypes[mediaType]
}

// writeAtomic copies r to a temp file next to destPath and renames it.
func writeAtomic(r io.Reader, destPath string) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".fetch-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, r)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
