package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prloop/prloop/internal/pr"
)

var cleanThreadsCmd = &cobra.Command{
	Use:   "clean-threads",
	Short: "Delete resolved agent-only review threads",
	Long: `Delete review threads where every comment is agent activity and the
thread has been resolved. Threads involving a human, unresolved
threads, and threads pinned with a paperclip marker are left alone.

Ready performs the same cleanup as part of finalization; this command
runs it on its own, for tidying a PR mid-iteration.`,
	Example: `  prloop clean-threads --repo octo/widgets --pr 42`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		w := cmd.OutOrStdout()

		ref, err := resolveRef()
		if err != nil {
			return err
		}

		host := buildHost()
		snap, err := host.FetchSnapshot(ctx, ref)
		if err != nil {
			return fmt.Errorf("fetching snapshot for %s: %w", ref, err)
		}

		cleanable := pr.CleanableThreads(snap.Threads)
		if len(cleanable) == 0 {
			fmt.Fprintf(w, "No agent-only resolved threads to clean on %s.\n", ref)
			return nil
		}

		var commentIDs []string
		for _, t := range cleanable {
			for _, c := range t.Comments {
				commentIDs = append(commentIDs, c.ID)
			}
		}
		if err := host.DeleteComments(ctx, ref, commentIDs); err != nil {
			return fmt.Errorf("deleting threads: %w", err)
		}

		fmt.Fprintf(w, "Deleted %d thread(s) (%d comment(s)) on %s.\n", len(cleanable), len(commentIDs), ref)
		return nil
	},
}
