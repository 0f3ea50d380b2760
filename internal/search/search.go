// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search resolves queries against the arXiv metadata service and
// lets the operator pick one of several candidates.
package search

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/paperdrop/pkg/types"
)

var (
	// ErrNoMatches is returned when a free-text search finds nothing.
	ErrNoMatches = errors.New("no matches")

	// ErrNotFound is returned when an identifier lookup finds nothing.
	ErrNotFound = errors.New("paper not found")
)

// FormatTable writes papers as a human-readable table to w.
func FormatTable(w io.Writer, papers []types.Paper) {
	if len(papers) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-14s  %-60s  %-20s  %s\n",
		"#", "ID", "Title", "Authors", "Year")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for i, p := range papers {
		year := ""
		if !p.Published.IsZero() {
			year = fmt.Sprintf("%d", p.Published.Year())
		}
		fmt.Fprintf(w, "%-4d  %-14s  %-60s  %-20s  %s\n",
			i, p.ShortID, truncate(p.Title, 60), formatAuthors(p.Authors), year)
	}

	fmt.Fprintf(w, "\n%d results\n", len(papers))
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

// truncate shortens s to at most max runes, marking the cut with "...".
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
