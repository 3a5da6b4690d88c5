package cli

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ppiankov/docketsift/internal/names"
	"github.com/ppiankov/docketsift/internal/report"
)

// matchCmd represents the match command
var matchCmd = &cobra.Command{
	Use:   "match <name-a> <name-b>",
	Short: "Check whether two party names denote the same person",
	Long: `Match shows how two docket names parse and whether the companion-case
rule would treat them as the same person. The similarity score is shown
for diagnosis only; it never decides a match.

Example:
  docketsift match "Smith, John A. Jr." "John Alan Smith Jr."`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		t := report.NewTable(out)
		t.AppendHeader(table.Row{"Input", "First", "Middle", "Surname", "Suffixes", "Canonical"})
		for _, raw := range args {
			n, ok := names.Parse(raw)
			if !ok {
				t.AppendRow(table.Row{raw, "-", "-", "-", "-", "(unparseable)"})
				continue
			}
			t.AppendRow(table.Row{raw, n.First, join(n.Middle), n.Surname, join(n.Suffixes), n.Canonical()})
		}
		t.Render()

		fmt.Fprintf(out, "\nMatch:      %v\n", names.Match(args[0], args[1]))
		fmt.Fprintf(out, "Similarity: %.3f\n", names.Similarity(args[0], args[1]))
		return nil
	},
}

func join(parts []string) string {
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

func init() {
	rootCmd.AddCommand(matchCmd)
}
