package pr

import (
	"strings"
	"time"
)

// AgentMarker is the fixed prefix identifying comments posted by the agent.
// Every reply the agent posts starts with it, and every classification
// decision about authorship keys off it rather than off account names.
const AgentMarker = "🤖 prloop:"

// Preserve markers: a thread containing either is excluded from automation
// entirely — it never counts as needing a response and its comments are
// never deleted, so a human can pin a thread for later review.
const (
	preserveShortcode = ":paperclip:"
	preserveEmoji     = "📎"
)

// ReviewComment is a single comment within a review thread.
type ReviewComment struct {
	ID        string
	Author    string
	Body      string
	CreatedAt time.Time
}

// IsFromAgent reports whether the comment body carries the agent marker.
func (c ReviewComment) IsFromAgent() bool {
	return strings.HasPrefix(c.Body, AgentMarker)
}

// ReviewThread is a platform review thread with its comments in creation order.
type ReviewThread struct {
	ID         string
	Path       string
	Line       int
	IsResolved bool
	Comments   []ReviewComment
}

// NeedsResponse reports whether the agent owes this thread a reply:
// the thread is unresolved and its last comment is not agent-authored.
// An unresolved thread with no comments needs nothing — nobody asked yet.
func (t ReviewThread) NeedsResponse() bool {
	if t.IsResolved || len(t.Comments) == 0 || t.IsPreserved() {
		return false
	}
	return !t.Comments[len(t.Comments)-1].IsFromAgent()
}

// IsPureAgent reports whether every comment in the thread is agent activity.
// A comment without the marker still counts as agent activity when its
// author posted a marked comment elsewhere in the same thread, which covers
// resolution notes the agent posts without the prefix.
func (t ReviewThread) IsPureAgent() bool {
	if len(t.Comments) == 0 {
		return false
	}
	agentAuthors := make(map[string]bool)
	for _, c := range t.Comments {
		if c.IsFromAgent() {
			agentAuthors[c.Author] = true
		}
	}
	for _, c := range t.Comments {
		if !c.IsFromAgent() && !agentAuthors[c.Author] {
			return false
		}
	}
	return true
}

// IsPreserved reports whether any comment carries a preserve marker.
func (t ReviewThread) IsPreserved() bool {
	for _, c := range t.Comments {
		if strings.Contains(c.Body, preserveShortcode) || strings.Contains(c.Body, preserveEmoji) {
			return true
		}
	}
	return false
}

// FindComment returns the comment with the given ID, if present.
func (t ReviewThread) FindComment(commentID string) (ReviewComment, bool) {
	for _, c := range t.Comments {
		if c.ID == commentID {
			return c, true
		}
	}
	return ReviewComment{}, false
}

// HumanCommentsAfter returns the non-agent comments that follow the comment
// with the given ID, in creation order. Used by reply to surface feedback
// that arrived while the agent was working.
func (t ReviewThread) HumanCommentsAfter(commentID string) []ReviewComment {
	idx := -1
	for i, c := range t.Comments {
		if c.ID == commentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	var newer []ReviewComment
	for _, c := range t.Comments[idx+1:] {
		if !c.IsFromAgent() {
			newer = append(newer, c)
		}
	}
	return newer
}

// CleanableThreads returns the threads eligible for deletion: resolved,
// agent-only, and not pinned with a preserve marker.
func CleanableThreads(threads []ReviewThread) []ReviewThread {
	var out []ReviewThread
	for _, t := range threads {
		if t.IsResolved && t.IsPureAgent() && !t.IsPreserved() {
			out = append(out, t)
		}
	}
	return out
}

// ThreadClassification summarizes a thread set for the state machine.
// NeedingResponse keeps the threads in creation order so repeated runs
// produce identical, diffable output. AllResolved is the stricter readiness
// condition: every thread resolved, regardless of who spoke last.
type ThreadClassification struct {
	NeedingResponse []ReviewThread
	AllResolved     bool
}

// ClassifyThreads reduces a thread set to the two signals the rest of the
// engine consumes. Preserved threads are exempt from NeedsResponse but still
// count against AllResolved — pinning a thread defers the agent, not the merge.
func ClassifyThreads(threads []ReviewThread) ThreadClassification {
	cl := ThreadClassification{AllResolved: true}
	for _, t := range threads {
		if !t.IsResolved {
			cl.AllResolved = false
		}
		if t.NeedsResponse() {
			cl.NeedingResponse = append(cl.NeedingResponse, t)
		}
	}
	return cl
}
