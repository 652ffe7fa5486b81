// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/preprintlab/preprintd/internal/pipeline"
	"github.com/preprintlab/preprintd/pkg/types"
)

var summaryCmd = &cobra.Command{
	Use:   "summary <source-key>",
	Short: "Print a paper's summary, generating it on first request",
	Long: `Summary prints the cached summary for a stored paper, generating and
caching it first when absent. The source key is printed by submit, e.g.
"arxiv:2506.08872". With --regenerate the cached summary is overwritten with
a fresh generation.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummary,
}

func init() {
	summaryCmd.Flags().String("lang", "en", "summary language")
	summaryCmd.Flags().String("type", "ordinary", "summary type: short, ordinary, or detailed")
	summaryCmd.Flags().Bool("regenerate", false, "overwrite the cached summary")

	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	lang, _ := cmd.Flags().GetString("lang")
	typeFlag, _ := cmd.Flags().GetString("type")
	summaryType, err := types.ParseSummaryType(typeFlag)
	if err != nil {
		return err
	}
	regenerate, _ := cmd.Flags().GetBool("regenerate")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	var result *pipeline.SummaryResult
	if regenerate {
		result, err = a.pipeline.Regenerate(cmd.Context(), args[0], lang, summaryType)
	} else {
		result, err = a.pipeline.Result(cmd.Context(), args[0], lang, summaryType)
	}
	if err != nil {
		return err
	}

	if result.Summary.Status == types.GenerationFailed {
		fmt.Printf("generation failed; cached message follows (use --regenerate to retry)\n\n")
	}
	fmt.Println(result.Summary.SummaryText)
	return nil
}
