package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prloop/prloop/internal/pr"
)

var readyPreserveAgentThreads bool

var readyCmd = &cobra.Command{
	Use:   "ready",
	Short: "Validate the PR and flip it out of draft",
	Long: `Check that the pull request is ready for human review: it is a draft,
carries exactly one commit, has every review thread resolved, and has
all checks passing. Every condition is evaluated even after the first
failure so the full picture is reported in one pass.

When all conditions hold, the PR is finalized: agent-only resolved
threads are deleted (unless marked preserved with a paperclip), the
status block is removed from the description, and the PR is marked
ready for review.`,
	Example: `  prloop ready --repo octo/widgets --pr 42
  prloop ready --repo octo/widgets --pr 42 --preserve-agent-threads`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		w := cmd.OutOrStdout()

		ref, err := resolveRef()
		if err != nil {
			return err
		}
		clOpts, err := classifyOptions()
		if err != nil {
			return err
		}
		opts := pr.ReadinessOptions{
			Filter:               clOpts.Filter,
			RequireChecks:        clOpts.RequireChecks,
			PreserveAgentThreads: readyPreserveAgentThreads,
		}

		host := buildHost()
		snap, err := host.FetchSnapshot(ctx, ref)
		if err != nil {
			return fmt.Errorf("fetching snapshot for %s: %w", ref, err)
		}

		report := pr.CheckReadiness(snap, opts)
		if !report.Ready() {
			fmt.Fprintf(w, "%s is not ready:\n", ref)
			for _, v := range report.Violations {
				fmt.Fprintf(w, "  ✗ %s: %s\n", v.Condition, v.Detail)
			}
			return report.Err()
		}

		fmt.Fprintf(w, "%s passed all readiness checks\n", ref)
		if err := pr.Finalize(ctx, host, snap, opts); err != nil {
			return fmt.Errorf("finalizing %s: %w", ref, err)
		}

		fmt.Fprintln(w, "  ✓ agent-only resolved threads cleaned up")
		fmt.Fprintln(w, "  ✓ status block removed")
		fmt.Fprintln(w, "  ✓ marked ready for review")
		return nil
	},
}

func init() {
	readyCmd.Flags().BoolVar(&readyPreserveAgentThreads, "preserve-agent-threads", false, "Keep agent-only resolved threads instead of deleting them")
}
