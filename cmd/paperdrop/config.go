// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paperdrop/internal/acquire"
	"github.com/pdiddy/paperdrop/internal/catalog"
	"github.com/pdiddy/paperdrop/internal/convert"
	"github.com/pdiddy/paperdrop/internal/search"
	"github.com/pdiddy/paperdrop/pkg/types"
)

const (
	defaultTimeout = 60 * time.Second

	// placeholderDest is the unconfigured destination. Exports to it fail.
	placeholderDest = "/path/to/kobo"

	// catalogOff disables run history.
	catalogOff = "off"
)

// envKeyReplacer maps nested keys to environment names:
// http.timeout → PAPERDROP_HTTP_TIMEOUT.
var envKeyReplacer = strings.NewReplacer(".", "_")

func setDefaults() {
	viper.SetDefault("output_dir", "papers")
	viper.SetDefault("dest", placeholderDest)
	viper.SetDefault("retention", string(types.RetainKeep))
	viper.SetDefault("catalog", "")

	viper.SetDefault("http.timeout", defaultTimeout)
	viper.SetDefault("http.user_agent", "paperdrop/"+version)
	viper.SetDefault("http.max_retries", 0)

	viper.SetDefault("search.api_url", search.DefaultAPIURL)
	viper.SetDefault("search.max_results", search.DefaultMaxResults)
	viper.SetDefault("fetch.source_url", acquire.DefaultSourceURL)

	viper.SetDefault("extract.backend", string(types.ExtractTar))
	viper.SetDefault("extract.tar", "tar")

	viper.SetDefault("convert.backend", string(types.BackendPandoc))
	viper.SetDefault("convert.pandoc", "pandoc")
	viper.SetDefault("convert.image", convert.DefaultImage)
	viper.SetDefault("convert.template", convert.DefaultTemplate)
	viper.SetDefault("convert.language", convert.DefaultLanguage)
}

// bindFlags binds command flags to config keys. It runs when the command
// executes so commands sharing a key do not steal each other's binding.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for flag, key := range keys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("binding --%s: %w", flag, err)
		}
	}
	return nil
}

// loadConfig reads the effective configuration from viper and validates it.
// The shared http settings fill in whatever the search and fetch sections
// leave unset.
func loadConfig() (types.PipelineConfig, error) {
	var cfg types.PipelineConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}

	cfg.Search.HTTPConfig = mergeHTTP("search", cfg.Search.HTTPConfig, cfg.HTTP)
	cfg.Fetch.HTTPConfig = mergeHTTP("fetch", cfg.Fetch.HTTPConfig, cfg.HTTP)

	switch cfg.Retention {
	case types.RetainKeep, types.RetainClean:
	case "":
		cfg.Retention = types.RetainKeep
	default:
		return cfg, fmt.Errorf("invalid retention %q: use keep or clean", cfg.Retention)
	}

	if cfg.OutputDir == "" {
		return cfg, fmt.Errorf("output_dir must not be empty")
	}
	return cfg, nil
}

// mergeHTTP fills the unset fields of the named section from shared. An
// explicit max_retries of 0 in the section turns retries off for it.
func mergeHTTP(name string, section, shared types.HTTPConfig) types.HTTPConfig {
	if section.Timeout == 0 {
		section.Timeout = shared.Timeout
	}
	if section.UserAgent == "" {
		section.UserAgent = shared.UserAgent
	}
	if key := name + ".max_retries"; viper.IsSet(key) {
		section.MaxRetries = viper.GetInt(key)
	} else {
		section.MaxRetries = shared.MaxRetries
	}
	return section
}

// catalogPath returns where run history is stored, or "" when disabled.
func catalogPath(cfg types.PipelineConfig) string {
	switch cfg.CatalogPath {
	case catalogOff:
		return ""
	case "":
		return filepath.Join(cfg.OutputDir, catalog.DefaultFile)
	default:
		return cfg.CatalogPath
	}
}
