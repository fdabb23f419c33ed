package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harrison/mmdcheck/internal/config"
	"github.com/harrison/mmdcheck/internal/models"
)

// NewProfilesCommand creates the profiles command
func NewProfilesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List the available run profiles",
		Long: `List built-in and configured profiles with their effective settings.
The default profile is marked with "*".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			if configPath == "" {
				configPath = config.ConfigPath(".")
			}
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return models.NewSetupError(models.PhaseConfig, configPath, err)
			}
			return printProfiles(cmd.OutOrStdout(), cfg)
		},
	}

	cmd.Flags().String("config", "", "Path to config file (default: .mmdcheck/config.yaml)")

	return cmd
}

func printProfiles(w io.Writer, cfg *config.Config) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PROFILE\tINPUT\tSCRATCH\tPREFIX\tSIDE FILE\tEXCERPT\tMODE\tDESCRIPTION")
	for _, name := range cfg.ProfileNames() {
		p := cfg.Profiles[name]
		marker := " "
		if name == cfg.Profile {
			marker = "*"
		}
		fmt.Fprintf(tw, "%s %s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			marker, name, p.Input, p.ScratchDir, p.FilePrefix, p.SideFile, p.ExcerptLength, profileMode(p), p.Description)
	}
	return tw.Flush()
}

// profileMode describes how a profile reports progress.
func profileMode(p config.Profile) string {
	var mode string
	switch {
	case p.Live:
		mode = "live"
	case p.ProgressEvery > 0:
		mode = fmt.Sprintf("progress/%d", p.ProgressEvery)
	default:
		mode = "quiet"
	}
	if p.ListValid {
		mode += "+list-valid"
	}
	return mode
}
