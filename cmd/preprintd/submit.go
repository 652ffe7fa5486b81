// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/preprintlab/preprintd/pkg/types"
)

var submitCmd = &cobra.Command{
	Use:   "submit <repository> <paper-id>",
	Short: "Fetch, extract and store a preprint",
	Long: `Submit resolves a (repository, paper ID) pair, downloads the PDF,
extracts its text, and stores the paper. Default summaries are generated in
the background before the command exits. Repositories: arxiv, medrxiv,
biorxiv, chemrxiv.`,
	Args: cobra.ExactArgs(2),
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().String("lang", "en", "summary language for the requested pair")
	submitCmd.Flags().String("type", "ordinary", "summary type: short, ordinary, or detailed")

	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	repo, err := types.ParseRepository(args[0])
	if err != nil {
		return err
	}
	lang, _ := cmd.Flags().GetString("lang")
	typeFlag, _ := cmd.Flags().GetString("type")
	summaryType, err := types.ParseSummaryType(typeFlag)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.pipeline.Submit(cmd.Context(), repo, args[1], summaryType, lang)
	if err != nil {
		return err
	}

	if result.Cached {
		fmt.Printf("already stored: %s\n", result.Paper.SourceKey)
	} else {
		fmt.Printf("stored: %s\n", result.Paper.SourceKey)
	}
	if result.Paper.Title != "" {
		fmt.Printf("title: %s\n", result.Paper.Title)
	}
	if result.Paper.Authors != "" {
		fmt.Printf("authors: %s\n", result.Paper.Authors)
	}
	return nil
}
