// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/preprintlab/preprintd/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export <source-key>",
	Short: "Export a paper's summary as YAML or JSON",
	Long: `Export writes the title, authors, source URL and summary of a stored
paper to stdout or a file. A summary that was never generated for the
requested language and type is exported as a placeholder line rather than an
error.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var exportOriginalCmd = &cobra.Command{
	Use:   "export-original <repository> <paper-id>",
	Short: "Download the original PDF from its source",
	Long: `Export-original re-resolves a paper at its upstream repository and
streams the PDF. The paper does not need to be stored first.`,
	Args: cobra.ExactArgs(2),
	RunE: runExportOriginal,
}

func init() {
	exportCmd.Flags().String("lang", "en", "summary language")
	exportCmd.Flags().String("type", "ordinary", "summary type: short, ordinary, or detailed")
	exportCmd.Flags().String("format", "yaml", "output format: yaml or json")
	exportCmd.Flags().String("out", "", "output file (default: stdout)")

	exportOriginalCmd.Flags().String("out", "", "output file (default: <paper-id>.pdf)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(exportOriginalCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	lang, _ := cmd.Flags().GetString("lang")
	typeFlag, _ := cmd.Flags().GetString("type")
	summaryType, err := types.ParseSummaryType(typeFlag)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("out")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	doc, err := a.pipeline.ExportSummary(cmd.Context(), args[0], lang, summaryType)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	switch format {
	case "yaml":
		data, err := yaml.Marshal(doc)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	default:
		return fmt.Errorf("unknown format %q (want yaml or json)", format)
	}
}

func runExportOriginal(cmd *cobra.Command, args []string) error {
	repo, err := types.ParseRepository(args[0])
	if err != nil {
		return err
	}

	outPath, _ := cmd.Flags().GetString("out")
	if outPath == "" {
		outPath = args[1] + ".pdf"
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := a.pipeline.ExportOriginal(cmd.Context(), repo, args[1], f); err != nil {
		os.Remove(outPath)
		return err
	}
	fmt.Printf("wrote %s\n", outPath)
	return nil
}
