// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <source-key> <question...>",
	Short: "Ask a question about a stored paper",
	Long: `Ask answers a free-text question about a stored paper using its
extracted text. Answers are cached per normalized question and language, so
repeating a question is free. Use --highlighted to ask about a specific
passage from the paper.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().String("lang", "en", "answer language")
	askCmd.Flags().String("highlighted", "", "passage from the paper the question refers to")

	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	lang, _ := cmd.Flags().GetString("lang")
	highlighted, _ := cmd.Flags().GetString("highlighted")
	question := strings.Join(args[1:], " ")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.pipeline.Ask(cmd.Context(), args[0], question, highlighted, lang)
	if err != nil {
		return err
	}

	if result.Cached {
		fmt.Println("(cached)")
	}
	fmt.Println(result.Answer.Answer)
	return nil
}
