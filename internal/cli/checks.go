package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/prloop/prloop/internal/pr"
)

var checksCmd = &cobra.Command{
	Use:   "checks",
	Short: "List CI checks on the PR",
	Long: `Display every CI check on the pull request's head commit after applying
the configured include/exclude filters, with its conclusion.`,
	Example: `  prloop checks --repo octo/widgets --pr 42
  prloop checks --repo octo/widgets --pr 42 --exclude-checks "lint-*"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		w := cmd.OutOrStdout()

		ref, err := resolveRef()
		if err != nil {
			return err
		}
		opts, err := classifyOptions()
		if err != nil {
			return err
		}

		snap, err := buildHost().FetchSnapshot(ctx, ref)
		if err != nil {
			return fmt.Errorf("fetching snapshot for %s: %w", ref, err)
		}

		checks := pr.FilterChecks(snap.Checks, opts.Filter)

		if jsonOutput {
			return printChecksJSON(w, checks)
		}

		if len(checks) == 0 {
			fmt.Fprintf(w, "No checks reported on %s.\n", ref)
			return nil
		}

		headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
		cellStyle := lipgloss.NewStyle().Padding(0, 1)

		rows := make([][]string, 0, len(checks))
		for _, c := range checks {
			rows = append(rows, []string{conclusionSymbol(c.Conclusion), c.Name, c.Conclusion.String(), c.URL})
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("", "CHECK", "CONCLUSION", "URL").
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			})

		fmt.Fprintln(w, t)
		return nil
	},
}

func conclusionSymbol(c pr.CheckConclusion) string {
	switch c {
	case pr.ConclusionSuccess:
		return "✓"
	case pr.ConclusionFailure:
		return "✗"
	case pr.ConclusionPending:
		return "○"
	default:
		return "–"
	}
}

type checkJSON struct {
	Name       string `json:"name"`
	Conclusion string `json:"conclusion"`
	URL        string `json:"url,omitempty"`
}

func printChecksJSON(w io.Writer, checks []pr.CheckResult) error {
	out := make([]checkJSON, 0, len(checks))
	for _, c := range checks {
		out = append(out, checkJSON{Name: c.Name, Conclusion: c.Conclusion.String(), URL: c.URL})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling checks: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
