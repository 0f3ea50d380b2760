// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paperdrop CLI: fetch an arXiv
// paper's LaTeX source, convert it to EPUB, and copy it to an e-reader.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the paperdrop CLI.
var rootCmd = &cobra.Command{
	Use:   "paperdrop",
	Short: "Put arXiv papers on your e-reader as EPUBs",
	Long: `paperdrop resolves an arXiv identifier or search query, downloads the
paper's LaTeX source, converts it to EPUB with pandoc, and copies the book to
an e-reader mounted as a directory.

Use get to run the pipeline, search to list candidates without processing,
and history to review earlier runs.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paperdrop.yaml or ~/.config/paperdrop/config.yaml)")
}

func initConfig() {
	setDefaults()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paperdrop")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paperdrop"))
		}
	}

	viper.SetEnvPrefix("PAPERDROP")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
