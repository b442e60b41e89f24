package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rpggio/statusboard/internal/domain/project"
	"github.com/rpggio/statusboard/internal/markdown"
	"github.com/rpggio/statusboard/internal/slug"
	"github.com/spf13/cobra"
)

type parseOutput struct {
	Document markdown.Document `json:"document"`
	Record   project.Record    `json:"record"`
}

var parseCmd = &cobra.Command{
	Use:     "parse <file>",
	GroupID: "documents",
	Short:   "Parse a status document and print the extracted fields and normalized record",
	Long: `Parse a markdown status document the way ingestion does.

Prints the raw extracted document and the record it normalizes to.
Use "-" to read from stdin.

With --catalog the file is split on level-2 headings first and every
project in it is printed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(cmd, args[0])
		if err != nil {
			return err
		}
		catalog, _ := cmd.Flags().GetBool("catalog")

		if !catalog {
			doc := markdown.Parse(text, "")
			return writeJSON(cmd.OutOrStdout(), parseOutput{Document: doc, Record: project.NewRecord(doc, text)})
		}

		entries := markdown.SplitCatalog(text)
		out := make([]parseOutput, 0, len(entries))
		for _, entry := range entries {
			doc := markdown.Parse(entry.Document, entry.Title)
			out = append(out, parseOutput{Document: doc, Record: project.NewRecord(doc, entry.Document)})
		}
		return writeJSON(cmd.OutOrStdout(), out)
	},
}

var slugCmd = &cobra.Command{
	Use:     "slug <text>...",
	GroupID: "documents",
	Short:   "Print the identifier derived from a title",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), slug.Make(strings.Join(args, " ")))
		return err
	},
}

func init() {
	parseCmd.Flags().Bool("catalog", false, "treat the file as a multi-project catalog")
	rootCmd.AddCommand(parseCmd, slugCmd)
}

func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
