package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/weave-dev/weave/internal/directive"
	"github.com/weave-dev/weave/internal/fileutil"
)

func RunCheck(cmd *cobra.Command, args []string) error {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to read --json flag: %w", err)
	}

	path, text, err := readInputFile(args[0])
	if err != nil {
		return err
	}

	directives := directive.Parse(text)

	if asJSON {
		return fileutil.PrintJSON(struct {
			File       string                `json:"file"`
			Count      int                   `json:"count"`
			Directives []directive.Directive `json:"directives"`
		}{File: path, Count: len(directives), Directives: directives})
	}

	if len(directives) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no directives found")
		return nil
	}
	for _, d := range directives {
		fmt.Fprintf(cmd.OutOrStdout(), "%6d  %-10s  %s\n", d.Index, d.Kind, firstLine(d.Original))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d directive(s)\n", len(directives))
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + "..."
	}
	return s
}
