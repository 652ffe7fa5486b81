// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the preprintd CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the preprintd CLI.
var rootCmd = &cobra.Command{
	Use:   "preprintd",
	Short: "Summarize and question scientific preprints",
	Long: `preprintd fetches preprints from arXiv, medRxiv, bioRxiv and ChemRxiv,
extracts their text, and produces cached per-language summaries through a
generation API. It also answers free-text questions about stored papers and
searches the arXiv index by topic.

Each operation is a subcommand: submit, summary, ask, export, search, and
serve for the HTTP API.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; environment variables win over it either way.
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "warning: reading .env: %v\n", err)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./preprintd.yaml or ~/.config/preprintd/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "directory holding the paper database (default: ./data)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("preprintd")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "preprintd"))
		}
	}

	viper.SetEnvPrefix("PREPRINTD")
	viper.AutomaticEnv()

	setConfigDefaults()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
