// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paperdrop/pkg/types"
)

const fakeArchive = "\x1f\x8b fake gzip body"

// newSourceServer serves /e-print/<id> with the given status and content type.
func newSourceServer(t *testing.T, status int, contentType string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/e-print/2308.06721" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(status)
		fmt.Fprint(w, fakeArchive)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func testFetcher(ts *httptest.Server) *Fetcher {
	return NewFetcher(ts.Client(), types.FetchConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "paperdrop/test"},
		SourceURL:  ts.URL + "/e-print/",
	})
}

var testPaper = types.Paper{ID: "2308.06721v1", ShortID: "2308.06721", Title: "Test Paper"}

func TestFetch_Success(t *testing.T) {
	for _, ct := range []string{"application/gzip", "application/x-eprint-tar", "application/x-gzip; charset=binary"} {
		t.Run(ct, func(t *testing.T) {
			ts := newSourceServer(t, http.StatusOK, ct)
			workDir := t.TempDir()

			path, err := testFetcher(ts).Fetch(context.Background(), testPaper, workDir)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(workDir, ArchiveName), path)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, fakeArchive, string(data))

			// No temp files left behind.
			entries, err := os.ReadDir(workDir)
			require.NoError(t, err)
			assert.Len(t, entries, 1)
		})
	}
}

func TestFetch_NoUsableSource(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
	}{
		{"not found", http.StatusNotFound, "text/html"},
		{"server error", http.StatusInternalServerError, "application/gzip"},
		{"pdf only", http.StatusOK, "application/pdf"},
		{"missing content type", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newSourceServer(t, tt.status, tt.contentType)
			workDir := t.TempDir()

			_, err := testFetcher(ts).Fetch(context.Background(), testPaper, workDir)
			require.Error(t, err)

			var srcErr *SourceError
			require.True(t, errors.As(err, &srcErr), "want *SourceError, got %T", err)
			assert.Equal(t, "2308.06721", srcErr.ShortID)
			assert.Equal(t, tt.status, srcErr.Status)

			_, statErr := os.Stat(filepath.Join(workDir, ArchiveName))
			assert.True(t, os.IsNotExist(statErr), "archive must not be written")
		})
	}
}

func TestFetch_NetworkError(t *testing.T) {
	ts := newSourceServer(t, http.StatusOK, "application/gzip")
	f := testFetcher(ts)
	ts.Close()

	workDir := t.TempDir()
	_, err := f.Fetch(context.Background(), testPaper, workDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP request")

	_, statErr := os.Stat(filepath.Join(workDir, ArchiveName))
	assert.True(t, os.IsNotExist(statErr))
}

func TestSourceURL(t *testing.T) {
	f := NewFetcher(http.DefaultClient, types.FetchConfig{})
	assert.Equal(t, "https://arxiv.org/e-print/2308.06721", f.SourceURL("2308.06721"))
	assert.Equal(t, "https://arxiv.org/e-print/hep-th/9901001", f.SourceURL("hep-th/9901001"))
}

func TestSourceErrorMessage(t *testing.T) {
	err := &SourceError{ShortID: "2308.06721", URL: "https://x/e-print/2308.06721", Status: 404}
	assert.Contains(t, err.Error(), "HTTP 404")

	err = &SourceError{ShortID: "2308.06721", Status: 200, ContentType: "application/pdf"}
	assert.Contains(t, err.Error(), "not a gzip archive")
}
