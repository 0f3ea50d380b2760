// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paperdrop pipeline.
package types

import (
	"strings"
	"time"
)

// Paper identifies a single arXiv item as returned by the metadata service.
// It is built once per pipeline run and never mutated afterwards.
type Paper struct {
	// ID is the canonical versioned identifier (e.g. "2308.06721v1").
	ID string `json:"id" yaml:"id"`

	// ShortID is the identifier without a version suffix (e.g. "2308.06721",
	// "hep-th/9901001"). It names the working directory and the EPUB.
	ShortID string `json:"short_id" yaml:"short_id"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Published is the first-version submission date.
	Published time.Time `json:"published" yaml:"published"`
}

// Stem returns a filesystem-safe name derived from ShortID. Legacy
// identifiers carry a slash ("hep-th/9901001"), which becomes a dash.
func (p Paper) Stem() string {
	return strings.ReplaceAll(p.ShortID, "/", "-")
}

// DisplayTitle returns the title, or the short ID when the title is empty.
func (p Paper) DisplayTitle() string {
	if t := strings.TrimSpace(p.Title); t != "" {
		return t
	}
	return p.ShortID
}
