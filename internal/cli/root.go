package cli

import (
	"time"

	"github.com/spf13/cobra"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "weave",
		Short: "Expand import directives in markdown command files",
		Long: "Weave resolves the import directives embedded in a markdown document -\n" +
			"@file paths, @path:start-end line ranges, @path#Symbol declarations,\n" +
			"@globs, @urls, !`shell commands` and executable code fences - and\n" +
			"splices the resolved content back in, recursing into imported files\n" +
			"with cycle detection and size budgets.",
		Version:      version,
		SilenceUsage: true,
	}

	expandCmd := &cobra.Command{
		Use:   "expand <file>",
		Short: "Resolve every import directive in a document",
		Args:  cobra.ExactArgs(1),
		RunE:  RunExpand,
	}
	expandCmd.Flags().StringP("output", "o", "", "Write expanded output to a file instead of stdout")
	expandCmd.Flags().Bool("verbose", false, "Trace each directive resolution on stderr")
	expandCmd.Flags().Bool("list-imports", false, "List every resolved file path on stderr when done")
	expandCmd.Flags().Duration("timeout", 30*time.Second, "Ceiling for each remote fetch or command run")

	checkCmd := &cobra.Command{
		Use:   "check <file>",
		Short: "List a document's directives without resolving them",
		Args:  cobra.ExactArgs(1),
		RunE:  RunCheck,
	}
	checkCmd.Flags().Bool("json", false, "Print machine-readable directive list")

	rootCmd.AddCommand(expandCmd, checkCmd)
	return rootCmd
}
