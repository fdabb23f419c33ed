package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/mmdcheck/internal/artifact"
	"github.com/harrison/mmdcheck/internal/display"
	"github.com/harrison/mmdcheck/internal/models"
)

// NewExtractCommand creates the extract command
func NewExtractCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <file-or-directory>... -o <collection.json>",
		Short: "Build a diagram collection from Markdown documents",
		Long: `Scan Markdown documents (.md, .markdown, .mdx) for fenced mermaid code
blocks and write them as a JSON collection that "mmdcheck check" can read.

Each diagram gets the id "<path>#<n>" (n counts blocks within a document)
and the title of the closest heading above it.

Examples:
  mmdcheck extract docs/ -o diagrams_to_validate.json
  mmdcheck extract README.md docs/arch.md -o diagrams.json --base docs`,
		Args: cobra.MinimumNArgs(1),
		RunE: runExtract,
	}

	cmd.Flags().StringP("output", "o", "", "Collection file to write (required)")
	cmd.Flags().String("base", ".", "Directory that diagram ids are relative to")
	cmd.Flags().StringSlice("lang", []string{"mermaid"}, "Code block languages to extract")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runExtract(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	base, _ := cmd.Flags().GetString("base")
	langs, _ := cmd.Flags().GetStringSlice("lang")
	out := cmd.OutOrStdout()

	extractor := artifact.NewExtractor(langs...)
	docs, err := extractor.Documents(args)
	if err != nil {
		return models.NewSetupError(models.PhaseInput, "", err)
	}

	progress := display.NewProgressIndicator(out, len(docs), "documents")
	progress.Start()

	artifacts := []models.Artifact{}
	for _, doc := range docs {
		progress.Step(doc)
		found, err := extractor.ExtractDocument(doc, base)
		if err != nil {
			return models.NewSetupError(models.PhaseInput, doc, err)
		}
		artifacts = append(artifacts, found...)
	}

	if len(artifacts) == 0 {
		display.WarnNoArtifacts(docs).Display(cmd.ErrOrStderr())
	}

	if err := artifact.WriteFile(output, artifacts); err != nil {
		return err
	}
	progress.Complete(fmt.Sprintf("Extracted %d diagrams from %d documents into %s", len(artifacts), len(docs), output))
	return nil
}
