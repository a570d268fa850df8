package pr

import (
	"context"
	"fmt"
	"strings"
)

// Readiness precondition names, in evaluation priority order.
const (
	CondDraft        = "draft"
	CondSingleCommit = "single-commit"
	CondThreads      = "threads-resolved"
	CondChecks       = "checks-passing"
)

// ReadinessOptions configures readiness evaluation and finalization.
type ReadinessOptions struct {
	Filter CheckFilter
	// RequireChecks makes an empty filtered check set a violation instead of
	// a pass, mirroring the wait loop's policy.
	RequireChecks bool
	// PreserveAgentThreads skips deleting resolved agent-only threads
	// during finalization.
	PreserveAgentThreads bool
}

// ReadinessViolation is one unmet precondition with its specifics.
type ReadinessViolation struct {
	Condition string
	Detail    string
}

// ReadinessReport lists every unmet precondition, in priority order. All
// preconditions are evaluated even after the first violation so a human
// sees the full picture in one pass.
type ReadinessReport struct {
	Violations []ReadinessViolation
}

// Ready reports whether every precondition holds.
func (r ReadinessReport) Ready() bool {
	return len(r.Violations) == 0
}

// Err returns a PreconditionError for the highest-priority violation, or
// nil when the PR is ready.
func (r ReadinessReport) Err() error {
	if len(r.Violations) == 0 {
		return nil
	}
	v := r.Violations[0]
	return &PreconditionError{Condition: v.Condition, Detail: v.Detail}
}

// CheckReadiness evaluates the four merge-readiness preconditions against a
// snapshot: the PR is a draft, carries exactly one commit, every review
// thread is resolved, and every filtered check passes (pending blocks too).
func CheckReadiness(snap *Snapshot, opts ReadinessOptions) ReadinessReport {
	var report ReadinessReport
	add := func(condition, detail string) {
		report.Violations = append(report.Violations, ReadinessViolation{Condition: condition, Detail: detail})
	}

	if !snap.IsDraft {
		add(CondDraft, "pull request is not in draft mode")
	}

	if snap.CommitCount != 1 {
		add(CondSingleCommit, fmt.Sprintf("pull request has %d commits, expected exactly 1", snap.CommitCount))
	}

	threads := ClassifyThreads(snap.Threads)
	if !threads.AllResolved {
		var open []string
		for _, t := range snap.Threads {
			if !t.IsResolved {
				open = append(open, t.ID)
			}
		}
		add(CondThreads, fmt.Sprintf("%d unresolved review thread(s): %s", len(open), strings.Join(open, ", ")))
	}

	checks := ClassifyChecks(snap.Checks, opts.Filter)
	switch checks.Status {
	case ChecksHasFailure:
		add(CondChecks, fmt.Sprintf("failing check(s): %s", strings.Join(checks.Failing, ", ")))
	case ChecksHasPending:
		add(CondChecks, fmt.Sprintf("pending check(s): %s", strings.Join(checks.Pending, ", ")))
	case ChecksNone:
		if opts.RequireChecks {
			add(CondChecks, "no checks reported and at least one is required")
		}
	}

	return report
}

// Finalize performs the post-validation cleanup on a ready PR: deletes
// resolved agent-only threads (unless preserved), strips the status block
// from the description, and takes the PR out of draft. Callers must have a
// clean ReadinessReport before invoking it.
func Finalize(ctx context.Context, host Host, snap *Snapshot, opts ReadinessOptions) error {
	if !opts.PreserveAgentThreads {
		var commentIDs []string
		for _, t := range CleanableThreads(snap.Threads) {
			for _, c := range t.Comments {
				commentIDs = append(commentIDs, c.ID)
			}
		}
		if len(commentIDs) > 0 {
			if err := host.DeleteComments(ctx, snap.Ref, commentIDs); err != nil {
				return fmt.Errorf("deleting agent threads: %w", err)
			}
		}
	}

	cleaned := RemoveStatusBlock(snap.Description)
	if cleaned != snap.Description {
		if err := host.UpdateDescription(ctx, snap.Ref, cleaned); err != nil {
			return fmt.Errorf("removing status block: %w", err)
		}
	}

	if err := host.SetDraftState(ctx, snap.Ref, false); err != nil {
		return fmt.Errorf("marking ready for review: %w", err)
	}
	return nil
}
