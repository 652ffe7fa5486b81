// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <topic...>",
	Short: "Search the arXiv index by topic",
	Long: `Search queries arXiv for papers on a topic and ranks the results:
exact title matches first, then title matches, then abstract matches. A
non-English topic (--lang) is translated to English through the generation
API before searching.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("lang", "en", "language the topic is written in")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	lang, _ := cmd.Flags().GetString("lang")
	asJSON, _ := cmd.Flags().GetBool("json")
	topic := strings.Join(args, " ")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	results, err := a.search.Search(cmd.Context(), topic, lang)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	for i, r := range results {
		fmt.Printf("%2d. %s\n    %s\n    %s\n", i+1, r.Title, r.Authors, r.URL)
	}
	fmt.Printf("\n%d results\n", len(results))
	return nil
}
