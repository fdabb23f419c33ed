package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for mmdcheck
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mmdcheck",
		Short: "Batch validation of Mermaid diagrams with an external renderer",
		Long: `mmdcheck validates a collection of Mermaid diagrams by handing each one,
in turn, to an external renderer (mmdc by default) and recording whether it
rendered. Invalid diagrams are reported with the renderer's diagnostic and
written to a JSON side file for follow-up work.

Diagram collections are JSON arrays of {id, title, source} objects; the
extract command builds one from Markdown documents.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
		// main prints the error once
		SilenceErrors: true,
	}

	cmd.AddCommand(NewCheckCommand())
	cmd.AddCommand(NewExtractCommand())
	cmd.AddCommand(NewProfilesCommand())

	return cmd
}
