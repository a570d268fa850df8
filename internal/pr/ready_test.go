package pr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readySnapshot() *Snapshot {
	return &Snapshot{
		Ref:         testRef(),
		IsDraft:     true,
		CommitCount: 1,
		Description: "Body.\n",
		Checks:      []CheckResult{{Name: "build", Conclusion: ConclusionSuccess}},
		Threads: []ReviewThread{
			{ID: "t-1", IsResolved: true, Comments: []ReviewComment{
				agentComment("c-1", "bot", "note"),
				agentComment("c-2", "bot", "resolved"),
			}},
		},
	}
}

func TestCheckReadiness_Clean(t *testing.T) {
	report := CheckReadiness(readySnapshot(), ReadinessOptions{})
	assert.True(t, report.Ready())
	assert.NoError(t, report.Err())
}

func TestCheckReadiness_TwoCommits(t *testing.T) {
	// Commit count violates independently of CI and thread state.
	snap := readySnapshot()
	snap.CommitCount = 2
	snap.Checks = []CheckResult{{Name: "build", Conclusion: ConclusionFailure}}

	report := CheckReadiness(snap, ReadinessOptions{})
	assert.False(t, report.Ready())

	var found bool
	for _, v := range report.Violations {
		if v.Condition == CondSingleCommit {
			found = true
			assert.Contains(t, v.Detail, "2 commits")
		}
	}
	assert.True(t, found)
}

func TestCheckReadiness_ReportsAllViolations(t *testing.T) {
	snap := &Snapshot{
		Ref:         testRef(),
		IsDraft:     false,
		CommitCount: 3,
		Checks:      []CheckResult{{Name: "lint", Conclusion: ConclusionFailure}},
		Threads: []ReviewThread{
			{ID: "t-1", Comments: []ReviewComment{humanComment("1", "alice", "open question")}},
		},
	}

	report := CheckReadiness(snap, ReadinessOptions{})
	require.Len(t, report.Violations, 4)
	// Priority order: draft, commit count, threads, checks.
	assert.Equal(t, CondDraft, report.Violations[0].Condition)
	assert.Equal(t, CondSingleCommit, report.Violations[1].Condition)
	assert.Equal(t, CondThreads, report.Violations[2].Condition)
	assert.Equal(t, CondChecks, report.Violations[3].Condition)

	// Err surfaces the highest-priority violation as a PreconditionError.
	var precond *PreconditionError
	require.ErrorAs(t, report.Err(), &precond)
	assert.Equal(t, CondDraft, precond.Condition)
}

func TestCheckReadiness_PendingChecksBlock(t *testing.T) {
	snap := readySnapshot()
	snap.Checks = []CheckResult{{Name: "test", Conclusion: ConclusionPending}}

	report := CheckReadiness(snap, ReadinessOptions{})
	require.Len(t, report.Violations, 1)
	assert.Equal(t, CondChecks, report.Violations[0].Condition)
	assert.Contains(t, report.Violations[0].Detail, "pending")
}

func TestCheckReadiness_NoChecks(t *testing.T) {
	snap := readySnapshot()
	snap.Checks = nil

	assert.True(t, CheckReadiness(snap, ReadinessOptions{}).Ready())
	assert.False(t, CheckReadiness(snap, ReadinessOptions{RequireChecks: true}).Ready())
}

func TestCheckReadiness_UnresolvedThreadDetail(t *testing.T) {
	snap := readySnapshot()
	snap.Threads = append(snap.Threads, ReviewThread{
		ID:       "t-2",
		Comments: []ReviewComment{agentComment("c-3", "bot", "self note")},
	})

	report := CheckReadiness(snap, ReadinessOptions{})
	require.Len(t, report.Violations, 1)
	assert.Equal(t, CondThreads, report.Violations[0].Condition)
	assert.Contains(t, report.Violations[0].Detail, "t-2")
}

func TestFinalize_DeletesAgentThreads(t *testing.T) {
	snap := readySnapshot()
	snap.Description = UpsertStatusBlock("Body.\n", RenderStatusBlock("working"))
	host := &fakeHost{}

	err := Finalize(t.Context(), host, snap, ReadinessOptions{})
	require.NoError(t, err)

	require.Len(t, host.deleted, 1)
	assert.Equal(t, []string{"c-1", "c-2"}, host.deleted[0])

	require.Len(t, host.descriptions, 1)
	assert.Equal(t, "Body.\n", host.descriptions[0])

	require.Len(t, host.draftStates, 1)
	assert.False(t, host.draftStates[0])
}

func TestFinalize_PreserveAgentThreads(t *testing.T) {
	snap := readySnapshot()
	host := &fakeHost{}

	err := Finalize(t.Context(), host, snap, ReadinessOptions{PreserveAgentThreads: true})
	require.NoError(t, err)
	assert.Empty(t, host.deleted)
	require.Len(t, host.draftStates, 1)
	assert.False(t, host.draftStates[0])
}

func TestFinalize_SkipsHumanAndPreservedThreads(t *testing.T) {
	snap := readySnapshot()
	snap.Threads = append(snap.Threads,
		ReviewThread{ID: "t-2", IsResolved: true, Comments: []ReviewComment{
			humanComment("c-10", "alice", "discussion"),
		}},
		ReviewThread{ID: "t-3", IsResolved: true, Comments: []ReviewComment{
			agentComment("c-11", "bot", "📎 pinned note"),
		}},
	)
	host := &fakeHost{}

	err := Finalize(t.Context(), host, snap, ReadinessOptions{})
	require.NoError(t, err)
	require.Len(t, host.deleted, 1)
	// Only the pure-agent, non-preserved thread's comments were deleted.
	assert.Equal(t, []string{"c-1", "c-2"}, host.deleted[0])
}

func TestFinalize_NoStatusBlockSkipsDescriptionWrite(t *testing.T) {
	snap := readySnapshot()
	snap.Threads = nil
	host := &fakeHost{}

	err := Finalize(t.Context(), host, snap, ReadinessOptions{})
	require.NoError(t, err)
	assert.Empty(t, host.descriptions)
	assert.Empty(t, host.deleted)
}
