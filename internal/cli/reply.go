package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/prloop/prloop/internal/pr"
)

var (
	replyInReplyTo string
	replyMessage   string
	replyResolve   bool
)

var replyCmd = &cobra.Command{
	Use:   "reply",
	Short: "Reply to a review thread as the agent",
	Long: `Post a reply to the review thread containing the given comment. The
message is prefixed with the agent marker so later classification
recognizes it as agent activity.

If humans commented on the thread after the comment being replied to,
those comments are printed and a short acknowledgment is appended to the
reply, so the racing feedback is neither silently ignored nor falsely
claimed as addressed.`,
	Example: `  prloop reply --repo octo/widgets --pr 42 --in-reply-to PRRC_abc --message "Fixed in the latest revision" --resolve
  prloop reply --repo octo/widgets --pr 42 --in-reply-to PRRC_abc --message "Good point, keeping as is"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		w := cmd.OutOrStdout()

		ref, err := resolveRef()
		if err != nil {
			return err
		}
		if replyInReplyTo == "" {
			return &pr.ConfigError{Field: "in-reply-to", Detail: "a comment ID is required"}
		}
		if replyMessage == "" {
			return &pr.ConfigError{Field: "message", Detail: "a reply message is required"}
		}

		host := buildHost()
		snap, err := host.FetchSnapshot(ctx, ref)
		if err != nil {
			return fmt.Errorf("fetching snapshot for %s: %w", ref, err)
		}

		thread, ok := findThreadByComment(snap.Threads, replyInReplyTo)
		if !ok {
			return fmt.Errorf("no review thread on %s contains comment %s", ref, replyInReplyTo)
		}

		body := pr.AgentMarker + " " + replyMessage

		// Surface human comments that arrived after the one being answered.
		newer := thread.HumanCommentsAfter(replyInReplyTo)
		if len(newer) > 0 {
			fmt.Fprintf(w, "Note: %d newer human comment(s) on this thread:\n", len(newer))
			for _, c := range newer {
				fmt.Fprintf(w, "  %s: %s\n", c.Author, c.Body)
			}
			body += fmt.Sprintf("\n\n(I see %d newer comment(s) on this thread and will address them separately.)", len(newer))
		}

		if err := host.PostReply(ctx, ref, thread.ID, body, replyResolve); err != nil {
			return fmt.Errorf("posting reply: %w", err)
		}

		action := "Replied to"
		if replyResolve {
			action = "Replied to and resolved"
		}
		fmt.Fprintf(w, "%s thread %s\n", action, threadLocation(thread))
		return nil
	},
}

func init() {
	replyCmd.Flags().StringVar(&replyInReplyTo, "in-reply-to", "", "Comment ID identifying the thread to reply to (required)")
	replyCmd.Flags().StringVar(&replyMessage, "message", "", "Reply body, posted with the agent marker prefix (required)")
	replyCmd.Flags().BoolVar(&replyResolve, "resolve", false, "Resolve the thread after replying")
}

// findThreadByComment locates the thread containing the given comment ID.
func findThreadByComment(threads []pr.ReviewThread, commentID string) (pr.ReviewThread, bool) {
	for _, t := range threads {
		if _, ok := t.FindComment(commentID); ok {
			return t, true
		}
	}
	return pr.ReviewThread{}, false
}

// threadLocation renders a thread's position for humans.
func threadLocation(t pr.ReviewThread) string {
	if t.Path == "" {
		return t.ID
	}
	return fmt.Sprintf("%s (%s)", strings.TrimSpace(fmt.Sprintf("%s:%d", t.Path, t.Line)), t.ID)
}
