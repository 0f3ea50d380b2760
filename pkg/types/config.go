// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paperdrop/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries is the number of retries on HTTP 429. Zero disables retries.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// SearchConfig holds settings for the metadata service client.
type SearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// APIURL is the arXiv query endpoint.
	APIURL string `json:"api_url" yaml:"api_url" mapstructure:"api_url"`

	// MaxResults caps the number of candidates shown for a free-text query (default 10).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// FetchConfig holds settings for the source archive download.
type FetchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// SourceURL is the base URL to which the short ID is appended.
	SourceURL string `json:"source_url" yaml:"source_url" mapstructure:"source_url"`
}

// ExtractBackend identifies how source archives are unpacked.
type ExtractBackend string

const (
	ExtractTar     ExtractBackend = "tar"
	ExtractBuiltin ExtractBackend = "builtin"
)

// ExtractConfig holds settings for the extraction stage.
type ExtractConfig struct {
	// Backend selects the host tar binary or the in-process unpacker.
	Backend ExtractBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// TarPath is the tar executable used by the tar backend.
	TarPath string `json:"tar" yaml:"tar" mapstructure:"tar"`
}

// ConversionBackend identifies how the LaTeX document is turned into an EPUB.
type ConversionBackend string

const (
	BackendPandoc    ConversionBackend = "pandoc"
	BackendContainer ConversionBackend = "container"
)

// ConversionConfig holds settings for the document conversion stage.
type ConversionConfig struct {
	// Backend selects a local pandoc binary or a pandoc container image.
	Backend ConversionBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// PandocPath is the pandoc executable used by the local backend.
	PandocPath string `json:"pandoc" yaml:"pandoc" mapstructure:"pandoc"`

	// Image is the container image used by the container backend.
	Image string `json:"image" yaml:"image" mapstructure:"image"`

	// Template is the file name preferred as primary document.
	Template string `json:"template" yaml:"template" mapstructure:"template"`

	// Language is written into the EPUB metadata.
	Language string `json:"language" yaml:"language" mapstructure:"language"`
}

// RetentionPolicy controls what happens to a working directory after a run.
type RetentionPolicy string

const (
	// RetainKeep leaves the working directory in place; later runs overwrite it.
	RetainKeep RetentionPolicy = "keep"
	// RetainClean removes the working directory after a successful export.
	RetainClean RetentionPolicy = "clean"
)

// PipelineConfig groups the settings of one paperdrop run.
type PipelineConfig struct {
	// OutputDir is the root under which per-paper working directories live.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// DestDir is the e-reader mount point the EPUB is copied to.
	DestDir string `json:"dest" yaml:"dest" mapstructure:"dest"`

	// Retention decides whether working directories survive a successful run.
	Retention RetentionPolicy `json:"retention" yaml:"retention" mapstructure:"retention"`

	// CatalogPath is the SQLite run history database. Empty disables it.
	CatalogPath string `json:"catalog" yaml:"catalog" mapstructure:"catalog"`

	HTTP       HTTPConfig       `json:"http" yaml:"http" mapstructure:"http"`
	Search     SearchConfig     `json:"search" yaml:"search" mapstructure:"search"`
	Fetch      FetchConfig      `json:"fetch" yaml:"fetch" mapstructure:"fetch"`
	Extract    ExtractConfig    `json:"extract" yaml:"extract" mapstructure:"extract"`
	Conversion ConversionConfig `json:"convert" yaml:"convert" mapstructure:"convert"`
}
