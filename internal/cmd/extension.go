package cmd

import (
	"fmt"

	"github.com/qawatake/rm2jira/internal/extension"
	"github.com/spf13/cobra"
)

var extensionCmd = &cobra.Command{
	Use:   "extension",
	Short: "Manage rm2jira extensions",
	Long: `Manage rm2jira extensions. Extensions are executables named rm2jira-* in your PATH.
An extension reads converted Jira markup from stdin and writes the result to stdout.
Use them with --filter on convert and migrate.`,
}

var extensionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed extensions",
	Long:  `List all rm2jira extensions available in your PATH.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		extensions, err := extension.NewManager().FindExtensions()
		if err != nil {
			return fmt.Errorf("failed to find extensions: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(extensions) == 0 {
			fmt.Fprintln(out, "No extensions found.")
			fmt.Fprintf(out, "Extensions are executables named '%s*' in your PATH.\n", extension.Prefix)
			return nil
		}

		fmt.Fprintf(out, "Found %d extension(s):\n", len(extensions))
		for _, ext := range extensions {
			fmt.Fprintf(out, "  %s\t%s\n", ext.Name, ext.Path)
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, "Usage: rm2jira convert --filter <extension-name> [file]")
		return nil
	},
}

func init() {
	extensionCmd.AddCommand(extensionListCmd)
	rootCmd.AddCommand(extensionCmd)
}
