//go:build mage

// Package main contains Mage build targets for paperdrop developer tooling.
package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "paperdrop"
	cmdPkg  = "./cmd/paperdrop"

	papersDir  = "papers"
	configFile = "paperdrop.yaml"
)

// starterConfig is written by Init when no config file exists yet.
const starterConfig = `# paperdrop configuration
output_dir: papers
dest: /path/to/kobo
retention: keep
http:
  timeout: 60s
  max_retries: 0
extract:
  backend: tar
convert:
  backend: pandoc
  image: pandoc/latex:3.5
`

// Init creates the papers directory and a starter paperdrop.yaml.
func Init() error {
	if err := os.MkdirAll(papersDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", papersDir, err)
	}
	fmt.Println("  ", papersDir)

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err := os.WriteFile(configFile, []byte(starterConfig), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", configFile, err)
		}
		fmt.Println("  ", configFile, "(set dest to your e-reader mount)")
	}
	fmt.Println("Project initialized.")
	return nil
}

// Build compiles the CLI binary into bin/, stamping the git version.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}

	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || version == "" {
		version = "dev"
	}

	out := filepath.Join(binDir, binName)
	ldflags := "-X main.version=" + version
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s (%s)\n", out, version)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Clean removes build output.
func Clean() error {
	return sh.Rm(binDir)
}

// Stats prints project metrics: Go production/test LOC and documentation word count.
func Stats() error {
	prodLines, testLines, err := countGoLines(".")
	if err != nil {
		return err
	}
	docWords, err := countDocWords(".")
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	fmt.Printf("Words (documentation):           %d\n", docWords)
	return nil
}

// countGoLines walks the tree and counts non-blank lines in Go files,
// split into production and test code. Underscore directories are skipped.
func countGoLines(root string) (prod, test int, err error) {
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != root && strings.HasPrefix(info.Name(), "_") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		n := 0
		for _, line := range bytes.Split(data, []byte("\n")) {
			if len(bytes.TrimSpace(line)) > 0 {
				n++
			}
		}
		if strings.HasSuffix(path, "_test.go") {
			test += n
		} else {
			prod += n
		}
		return nil
	})
	return prod, test, err
}

// countDocWords counts words in top-level Markdown files.
func countDocWords(root string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(root, "*.md"))
	if err != nil {
		return 0, err
	}
	total := 0
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("reading %s: %w", path, err)
		}
		total += len(bytes.Fields(data))
	}
	return total, nil
}
