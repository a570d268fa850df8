package pr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func agentComment(id, author, body string) ReviewComment {
	return ReviewComment{ID: id, Author: author, Body: AgentMarker + " " + body}
}

func humanComment(id, author, body string) ReviewComment {
	return ReviewComment{ID: id, Author: author, Body: body}
}

func TestReviewCommentIsFromAgent(t *testing.T) {
	assert.True(t, agentComment("1", "bot", "done").IsFromAgent())
	assert.False(t, humanComment("2", "alice", "please fix").IsFromAgent())
	// The marker must be a prefix, not merely present.
	assert.False(t, ReviewComment{Body: "see " + AgentMarker + " above"}.IsFromAgent())
}

func TestNeedsResponse(t *testing.T) {
	tests := []struct {
		name   string
		thread ReviewThread
		want   bool
	}{
		{
			name: "last comment from human",
			thread: ReviewThread{Comments: []ReviewComment{
				agentComment("1", "bot", "fixed"),
				humanComment("2", "alice", "still broken"),
			}},
			want: true,
		},
		{
			name: "last comment from agent",
			thread: ReviewThread{Comments: []ReviewComment{
				humanComment("1", "alice", "please fix"),
				agentComment("2", "bot", "fixed"),
			}},
			want: false,
		},
		{
			name:   "unresolved with zero comments",
			thread: ReviewThread{},
			want:   false,
		},
		{
			name: "resolved thread never needs response",
			thread: ReviewThread{IsResolved: true, Comments: []ReviewComment{
				humanComment("1", "alice", "please fix"),
			}},
			want: false,
		},
		{
			name: "preserved thread is exempt",
			thread: ReviewThread{Comments: []ReviewComment{
				humanComment("1", "alice", "📎 keeping this for later"),
			}},
			want: false,
		},
		{
			name: "paperclip shortcode is exempt too",
			thread: ReviewThread{Comments: []ReviewComment{
				humanComment("1", "alice", "question"),
				humanComment("2", "bob", ":paperclip: parking this"),
			}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.thread.NeedsResponse())
		})
	}
}

func TestIsPureAgent(t *testing.T) {
	tests := []struct {
		name   string
		thread ReviewThread
		want   bool
	}{
		{
			name: "all marked comments",
			thread: ReviewThread{Comments: []ReviewComment{
				agentComment("1", "bot", "note"),
				agentComment("2", "bot", "resolved"),
			}},
			want: true,
		},
		{
			name: "unmarked comment from an author who also posted marked ones",
			thread: ReviewThread{Comments: []ReviewComment{
				agentComment("1", "ci-user", "note"),
				humanComment("2", "ci-user", "resolving"),
			}},
			want: true,
		},
		{
			name: "human participated",
			thread: ReviewThread{Comments: []ReviewComment{
				agentComment("1", "bot", "note"),
				humanComment("2", "alice", "thanks"),
			}},
			want: false,
		},
		{
			name:   "empty thread is not pure agent",
			thread: ReviewThread{},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.thread.IsPureAgent())
		})
	}
}

func TestHumanCommentsAfter(t *testing.T) {
	thread := ReviewThread{Comments: []ReviewComment{
		humanComment("1", "alice", "please fix"),
		agentComment("2", "bot", "on it"),
		humanComment("3", "alice", "also this"),
		agentComment("4", "bot", "noted"),
		humanComment("5", "bob", "and that"),
	}}

	newer := thread.HumanCommentsAfter("2")
	require.Len(t, newer, 2)
	assert.Equal(t, "3", newer[0].ID)
	assert.Equal(t, "5", newer[1].ID)

	assert.Empty(t, thread.HumanCommentsAfter("5"))
	assert.Nil(t, thread.HumanCommentsAfter("does-not-exist"))
}

func TestFindComment(t *testing.T) {
	thread := ReviewThread{Comments: []ReviewComment{
		humanComment("10", "alice", "hi"),
	}}

	c, ok := thread.FindComment("10")
	assert.True(t, ok)
	assert.Equal(t, "alice", c.Author)

	_, ok = thread.FindComment("11")
	assert.False(t, ok)
}

func TestCleanableThreads(t *testing.T) {
	threads := []ReviewThread{
		{ID: "t1", IsResolved: true, Comments: []ReviewComment{agentComment("1", "bot", "note")}},
		{ID: "t2", Comments: []ReviewComment{agentComment("2", "bot", "note")}},
		{ID: "t3", IsResolved: true, Comments: []ReviewComment{
			agentComment("3", "bot", "note"),
			humanComment("4", "alice", "thanks"),
		}},
		{ID: "t4", IsResolved: true, Comments: []ReviewComment{
			agentComment("5", "bot", "📎 keeping this"),
		}},
	}

	cleanable := CleanableThreads(threads)
	require.Len(t, cleanable, 1)
	assert.Equal(t, "t1", cleanable[0].ID)
}

func TestClassifyThreads(t *testing.T) {
	now := time.Now()
	threads := []ReviewThread{
		{ID: "t1", IsResolved: true, Comments: []ReviewComment{humanComment("1", "alice", "fixed now")}},
		{ID: "t2", Comments: []ReviewComment{
			{ID: "2", Author: "alice", Body: "please fix", CreatedAt: now},
		}},
		{ID: "t3", Comments: []ReviewComment{
			humanComment("3", "bob", "question"),
			agentComment("4", "bot", "answered"),
		}},
		{ID: "t4", Comments: []ReviewComment{humanComment("5", "carol", "another issue")}},
	}

	cl := ClassifyThreads(threads)
	assert.False(t, cl.AllResolved)
	require.Len(t, cl.NeedingResponse, 2)
	// Creation order is preserved.
	assert.Equal(t, "t2", cl.NeedingResponse[0].ID)
	assert.Equal(t, "t4", cl.NeedingResponse[1].ID)
}

func TestClassifyThreads_AllResolved(t *testing.T) {
	threads := []ReviewThread{
		{ID: "t1", IsResolved: true, Comments: []ReviewComment{humanComment("1", "alice", "done")}},
		{ID: "t2", IsResolved: true, Comments: []ReviewComment{agentComment("2", "bot", "done")}},
	}

	cl := ClassifyThreads(threads)
	assert.True(t, cl.AllResolved)
	assert.Empty(t, cl.NeedingResponse)
}

func TestClassifyThreads_EmptyThreadBlocksResolution(t *testing.T) {
	// A comment-less unresolved thread needs no response but still blocks
	// the all-resolved condition.
	cl := ClassifyThreads([]ReviewThread{{ID: "t1"}})
	assert.False(t, cl.AllResolved)
	assert.Empty(t, cl.NeedingResponse)
}

func TestClassifyThreads_PreservedStillBlocksResolution(t *testing.T) {
	cl := ClassifyThreads([]ReviewThread{
		{ID: "t1", Comments: []ReviewComment{humanComment("1", "alice", "📎 park this")}},
	})
	assert.False(t, cl.AllResolved)
	assert.Empty(t, cl.NeedingResponse)
}
