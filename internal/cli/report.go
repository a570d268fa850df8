package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/prloop/prloop/internal/pr"
)

// runReport is the default command: fetch one snapshot, classify it, and
// tell the caller what to do next.
func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

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

	cl := pr.Classify(snap, opts)
	return printClassification(cmd.OutOrStdout(), ref, snap, cl)
}

// reportJSON is the machine-readable shape of a classification. Callers
// distinguish happy/actionable/waiting from the state field alone.
type reportJSON struct {
	State   string       `json:"state"`
	Reasons []reasonJSON `json:"reasons,omitempty"`
	Checks  struct {
		Status  string   `json:"status"`
		Failing []string `json:"failing,omitempty"`
		Pending []string `json:"pending,omitempty"`
	} `json:"checks"`
	ThreadsNeedingResponse []threadJSON `json:"threads_needing_response,omitempty"`
}

type reasonJSON struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}

type threadJSON struct {
	ID            string `json:"id"`
	Path          string `json:"path,omitempty"`
	Line          int    `json:"line,omitempty"`
	LastCommentID string `json:"last_comment_id"`
	LastComment   string `json:"last_comment"`
	LastAuthor    string `json:"last_author"`
}

func printClassification(w io.Writer, ref pr.PRRef, snap *pr.Snapshot, cl pr.Classification) error {
	if jsonOutput {
		return printClassificationJSON(w, cl)
	}

	headingStyle := lipgloss.NewStyle().Bold(true)
	labelStyle := lipgloss.NewStyle().Bold(true)

	fmt.Fprintf(w, "%s %s — %s\n\n", headingStyle.Render(ref.String()), snap.Title, cl.State)

	switch cl.State {
	case pr.StateHappy:
		fmt.Fprintln(w, "Nothing to do: checks are green and no review thread needs a response.")
		return nil

	case pr.StateWaiting:
		fmt.Fprintln(w, "Checks are still running:")
		for _, name := range cl.Checks.Pending {
			fmt.Fprintf(w, "  ○ %s\n", name)
		}
		if cl.Checks.Status == pr.ChecksNone {
			fmt.Fprintln(w, "  (no checks reported yet)")
		}
		return nil
	}

	// Actionable: print every reason with enough detail to act on.
	if len(cl.Checks.Failing) > 0 {
		fmt.Fprintf(w, "%s\n", labelStyle.Render("Failing checks:"))
		for _, name := range cl.Checks.Failing {
			fmt.Fprintf(w, "  ✗ %s\n", name)
		}
		fmt.Fprintln(w)
	}

	if len(cl.Threads.NeedingResponse) > 0 {
		fmt.Fprintf(w, "%s\n", labelStyle.Render("Review threads needing a response:"))
		for _, thread := range cl.Threads.NeedingResponse {
			last := thread.Comments[len(thread.Comments)-1]
			location := thread.ID
			if thread.Path != "" {
				location = fmt.Sprintf("%s:%d", thread.Path, thread.Line)
			}
			fmt.Fprintf(w, "\n  %s (%s wrote):\n", location, last.Author)
			fmt.Fprintf(w, "    > %s\n", last.Body)
			fmt.Fprintf(w, "    reply with: prloop reply --repo %s/%s --pr %d --in-reply-to %s --message \"...\"\n",
				ref.Owner, ref.Repo, ref.Number, last.ID)
		}
	}

	return nil
}

func printClassificationJSON(w io.Writer, cl pr.Classification) error {
	out := reportJSON{State: cl.State.String()}
	out.Checks.Status = cl.Checks.Status.String()
	out.Checks.Failing = cl.Checks.Failing
	out.Checks.Pending = cl.Checks.Pending

	for _, r := range cl.Reasons {
		out.Reasons = append(out.Reasons, reasonJSON{Kind: r.Kind.String(), Name: r.Name})
	}
	for _, thread := range cl.Threads.NeedingResponse {
		last := thread.Comments[len(thread.Comments)-1]
		out.ThreadsNeedingResponse = append(out.ThreadsNeedingResponse, threadJSON{
			ID:            thread.ID,
			Path:          thread.Path,
			Line:          thread.Line,
			LastCommentID: last.ID,
			LastComment:   last.Body,
			LastAuthor:    last.Author,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
