// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/paperdrop/internal/httputil"
	"github.com/pdiddy/paperdrop/pkg/types"
)

// DefaultAPIURL is the arXiv query endpoint.
const DefaultAPIURL = "https://export.arxiv.org/api/query"

// DefaultMaxResults caps free-text searches.
const DefaultMaxResults = 10

// ArxivClient queries the arXiv Atom API for paper metadata.
type ArxivClient struct {
	client *http.Client
	cfg    types.SearchConfig
}

// NewArxivClient returns a client using httpClient for requests. Zero
// values in cfg fall back to DefaultAPIURL and DefaultMaxResults.
func NewArxivClient(httpClient *http.Client, cfg types.SearchConfig) *ArxivClient {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	return &ArxivClient{client: httpClient, cfg: cfg}
}

// MaxResults returns the configured search cap.
func (c *ArxivClient) MaxResults() int { return c.cfg.MaxResults }

// Search returns up to max papers matching text, in arXiv's relevance
// order. A max of zero or less uses the configured cap.
func (c *ArxivClient) Search(ctx context.Context, text string, max int) ([]types.Paper, error) {
	terms := strings.Fields(text)
	if len(terms) == 0 {
		return nil, fmt.Errorf("empty arXiv query")
	}
	if max <= 0 {
		max = c.cfg.MaxResults
	}

	params := url.Values{}
	params.Set("search_query", "all:"+strings.Join(terms, " "))
	params.Set("start", "0")
	params.Set("max_results", strconv.Itoa(max))
	params.Set("sortBy", "relevance")
	params.Set("sortOrder", "descending")

	papers, err := c.query(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(papers) > max {
		papers = papers[:max]
	}
	return papers, nil
}

// Lookup fetches a single paper by identifier. It returns an empty slice
// when arXiv does not know the identifier.
func (c *ArxivClient) Lookup(ctx context.Context, id string) ([]types.Paper, error) {
	params := url.Values{}
	params.Set("id_list", id)
	params.Set("max_results", "1")

	papers, err := c.query(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(papers) > 1 {
		papers = papers[:1]
	}
	return papers, nil
}

func (c *ArxivClient) query(ctx context.Context, params url.Values) ([]types.Paper, error) {
	req, err := httputil.NewRequest(ctx, c.cfg.APIURL+"?"+params.Encode(), c.cfg.UserAgent)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := httputil.DoWithRetry(ctx, c.client, req, c.cfg.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	var papers []types.Paper
	for _, entry := range feed.Entries {
		id, short := parseEntryID(entry.ID)
		if id == "" {
			// Error entries (bad id_list values) carry no /abs/ link.
			continue
		}

		p := types.Paper{
			ID:       id,
			ShortID:  short,
			Title:    collapseSpace(entry.Title),
			Abstract: strings.TrimSpace(entry.Summary),
		}
		for _, a := range entry.Authors {
			p.Authors = append(p.Authors, strings.TrimSpace(a.Name))
		}
		if t, parseErr := time.Parse(time.RFC3339, entry.Published); parseErr == nil {
			p.Published = t
		}
		papers = append(papers, p)
	}
	return papers, nil
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// parseEntryID pulls the versioned and short identifiers out of an entry's
// <id> URL ("http://arxiv.org/abs/2308.06721v1" → "2308.06721v1", "2308.06721").
func parseEntryID(idURL string) (id, short string) {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return "", ""
	}
	id = idURL[idx+len(prefix):]
	short = id

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			short = id[:vIdx]
		}
	}
	return id, short
}

// collapseSpace folds the line breaks arXiv puts inside long titles.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
