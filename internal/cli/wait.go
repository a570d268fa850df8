package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/prloop/prloop/internal/pr"
)

var (
	waitHappy          bool
	waitMaintainStatus bool
	waitStatusMessage  string
)

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Block until the PR needs attention",
	Long: `Poll the pull request until it classifies as actionable — a check failed
or a human comment awaits a reply. With --happy the wait also ends when
everything is green and resolved, but only after the settle delay has
elapsed since the last push, so a green state observed right after a push
is not trusted prematurely.

With --maintain-status the PR description carries a marker-delimited
status block while the wait runs, so a human glancing at the PR can see
the agent is active. The block is refreshed each poll and survives
hand-edits to the rest of the description.`,
	Example: `  prloop wait --repo octo/widgets --pr 42
  prloop wait --repo octo/widgets --pr 42 --happy
  prloop wait --repo octo/widgets --pr 42 --maintain-status --status-message "iterating on review feedback"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		ref, err := resolveRef()
		if err != nil {
			return err
		}
		opts, err := classifyOptions()
		if err != nil {
			return err
		}
		if waitStatusMessage != "" && !waitMaintainStatus {
			return &pr.ConfigError{Field: "status-message", Detail: "requires --maintain-status"}
		}

		host := buildHost()
		poller := pr.NewPoller(host, opts)
		poller.Interval, poller.SettleDelay = pollTimings()

		if waitMaintainStatus {
			poller.OnPoll = statusBlockMaintainer(host, ref)
		}

		slog.Info("waiting for PR state change",
			"pr", ref.String(),
			"mode", waitMode(),
			"interval", poller.Interval)

		var (
			snap *pr.Snapshot
			cl   pr.Classification
		)
		if waitHappy {
			snap, cl, err = poller.WaitUntilActionableOrHappy(ctx, ref)
		} else {
			snap, cl, err = poller.WaitUntilActionable(ctx, ref)
		}
		if err != nil {
			return err
		}

		// The poller hands back the snapshot its terminal classification was
		// computed from, so the report cannot disagree with the verdict.
		return printClassification(cmd.OutOrStdout(), ref, snap, cl)
	},
}

func init() {
	waitCmd.Flags().BoolVar(&waitHappy, "happy", false, "Also return when everything is green and resolved")
	waitCmd.Flags().BoolVar(&waitMaintainStatus, "maintain-status", false, "Keep a status block in the PR description while waiting")
	waitCmd.Flags().StringVar(&waitStatusMessage, "status-message", "", "Status line shown inside the maintained block")
}

func waitMode() string {
	if waitHappy {
		return "actionable-or-happy"
	}
	return "actionable"
}

// statusBlockMaintainer returns an OnPoll hook that upserts the status
// block into the description whenever it drifts. Write failures are logged
// and skipped — the wait itself must not die over a cosmetic update.
func statusBlockMaintainer(host pr.Host, ref pr.PRRef) func(context.Context, *pr.Snapshot, pr.Classification) {
	return func(ctx context.Context, snap *pr.Snapshot, cl pr.Classification) {
		block := pr.RenderStatusBlock(waitStatusMessage)
		updated := pr.UpsertStatusBlock(snap.Description, block)
		if updated == snap.Description {
			return
		}
		if err := host.UpdateDescription(ctx, ref, updated); err != nil {
			slog.Warn("failed to refresh status block", "pr", ref.String(), "error", err)
		}
	}
}
