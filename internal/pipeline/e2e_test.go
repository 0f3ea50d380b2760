// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paperdrop/internal/acquire"
	"github.com/pdiddy/paperdrop/internal/catalog"
	"github.com/pdiddy/paperdrop/internal/export"
	"github.com/pdiddy/paperdrop/internal/extract"
	"github.com/pdiddy/paperdrop/internal/search"
	"github.com/pdiddy/paperdrop/pkg/types"
)

const lookupFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/%s</id>
    <title>%s</title>
    <published>2023-08-13T09:00:00Z</published>
    <author><name>Ada Lovelace</name></author>
  </entry>
</feed>`

const emptyFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom"></feed>`

func sourceTarball(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	files := []struct{ name, body string }{
		{"main.tex", `\documentclass{article}\input{sections/intro}`},
		{"templateArxiv.tex", `\documentclass{article}\begin{document}Hi\end{document}`},
		{"sections/intro.tex", `Introduction.`},
	}
	for _, f := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name: f.name, Mode: 0o644, Size: int64(len(f.body)), Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write([]byte(f.body))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

// newArxiv serves the Atom API under /api/query and e-prints under
// /e-print/. Only 2308.06721 has a source archive.
func newArxiv(t *testing.T) *httptest.Server {
	t.Helper()
	tarball := sourceTarball(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/query", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/atom+xml")
		switch r.URL.Query().Get("id_list") {
		case "2308.06721":
			fmt.Fprintf(w, lookupFeed, "2308.06721v1", "Source Available")
		case "2401.00001":
			fmt.Fprintf(w, lookupFeed, "2401.00001v2", "Missing Source")
		default:
			fmt.Fprint(w, emptyFeed)
		}
	})
	mux.HandleFunc("/e-print/2308.06721", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-eprint-tar")
		w.Write(tarball)
	})
	mux.HandleFunc("/e-print/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

type e2e struct {
	p       *Pipeline
	out     *bytes.Buffer
	papers  string
	dest    string
	catalog *catalog.Store
}

func newE2E(t *testing.T) *e2e {
	t.Helper()
	ts := newArxiv(t)
	root := t.TempDir()

	cfg := types.PipelineConfig{
		OutputDir: filepath.Join(root, "papers"),
		DestDir:   filepath.Join(root, "kobo"),
		Search:    types.SearchConfig{APIURL: ts.URL + "/api/query"},
		Fetch:     types.FetchConfig{SourceURL: ts.URL + "/e-print/"},
	}
	require.NoError(t, os.MkdirAll(cfg.DestDir, 0o755))

	store, err := catalog.Open(filepath.Join(cfg.OutputDir, catalog.DefaultFile))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	out := &bytes.Buffer{}
	return &e2e{
		p: &Pipeline{
			Search:    search.NewArxivClient(ts.Client(), cfg.Search),
			Fetcher:   acquire.NewFetcher(ts.Client(), cfg.Fetch),
			Extractor: extract.BuiltinExtractor{},
			Converter: &stubConverter{},
			Exporter:  export.New(cfg.DestDir),
			Recorder:  store,
			Config:    cfg,
			Out:       out,
		},
		out:     out,
		papers:  cfg.OutputDir,
		dest:    cfg.DestDir,
		catalog: store,
	}
}

func TestEndToEnd_Success(t *testing.T) {
	e := newE2E(t)

	sum, err := e.p.Run(context.Background(), "2308.06721", Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Succeeded)

	workDir := filepath.Join(e.papers, "2308.06721")
	assert.FileExists(t, filepath.Join(workDir, acquire.ArchiveName))
	assert.FileExists(t, filepath.Join(workDir, extract.DirName, "templateArxiv.tex"))
	assert.FileExists(t, filepath.Join(workDir, extract.DirName, "sections", "intro.tex"))
	assert.FileExists(t, filepath.Join(workDir, MetadataFile))

	epub := filepath.Join(workDir, "2308.06721.epub")
	local, err := os.ReadFile(epub)
	require.NoError(t, err)
	assert.Contains(t, string(local), "EPUB Source Available")
	assert.Contains(t, string(local), `Hi\end{document}`, "templateArxiv.tex is the primary document")

	copied, err := os.ReadFile(filepath.Join(e.dest, "2308.06721.epub"))
	require.NoError(t, err)
	assert.Equal(t, local, copied)

	runs, err := e.catalog.List(context.Background(), catalog.ListOptions{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, types.RunSucceeded, runs[0].Status)
	assert.Equal(t, "2308.06721v1", runs[0].PaperID)
}

func TestEndToEnd_MissingSource(t *testing.T) {
	e := newE2E(t)

	sum, err := e.p.Run(context.Background(), "2401.00001", Options{})
	require.NoError(t, err, "per-paper failures are reported, not returned")
	assert.Equal(t, 1, sum.Failed)

	var srcErr *acquire.SourceError
	require.ErrorAs(t, sum.Results[0].Err, &srcErr)
	assert.Equal(t, http.StatusNotFound, srcErr.Status)

	workDir := filepath.Join(e.papers, "2401.00001")
	assert.NoFileExists(t, filepath.Join(workDir, acquire.ArchiveName))
	assert.NoDirExists(t, filepath.Join(workDir, extract.DirName))
	assert.Contains(t, e.out.String(), "Error processing Missing Source")

	entries, err := os.ReadDir(e.dest)
	require.NoError(t, err)
	assert.Empty(t, entries, "destination untouched")

	runs, err := e.catalog.List(context.Background(), catalog.ListOptions{Status: types.RunFailed})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, types.StageFetch, runs[0].Stage)
}

func TestEndToEnd_NotFound(t *testing.T) {
	e := newE2E(t)

	_, err := e.p.Run(context.Background(), "2401.99999", Options{})
	assert.ErrorIs(t, err, search.ErrNotFound)
	assert.NoDirExists(t, filepath.Join(e.papers, "2401.99999"))
}

func TestEndToEnd_Idempotent(t *testing.T) {
	e := newE2E(t)
	target := filepath.Join(e.dest, "2308.06721.epub")

	_, err := e.p.Run(context.Background(), "2308.06721", Options{})
	require.NoError(t, err)
	first, err := os.ReadFile(target)
	require.NoError(t, err)

	_, err = e.p.Run(context.Background(), "2308.06721", Options{})
	require.NoError(t, err)
	second, err := os.ReadFile(target)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	entries, err := os.ReadDir(e.dest)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "overwritten, not duplicated")

	runs, err := e.catalog.List(context.Background(), catalog.ListOptions{ShortID: "2308.06721"})
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}
