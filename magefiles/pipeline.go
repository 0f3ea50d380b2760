//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

func binPath() string {
	return filepath.Join(binDir, binName)
}

// Get builds the CLI and runs the full pipeline for one query, e.g.
// mage get 2308.06721.
func Get(query string) error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "get", query)
}

// Search builds the CLI and lists arXiv results for a query.
func Search(query string) error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "search", query)
}

// History builds the CLI and lists earlier runs.
func History() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "history")
}
