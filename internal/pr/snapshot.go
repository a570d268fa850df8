package pr

import (
	"fmt"
	"strings"
	"time"
)

// PRRef identifies a pull request explicitly. Every operation takes one —
// there is no ambient "current PR" derived from branch or process state.
type PRRef struct {
	Owner  string
	Repo   string
	Number int
}

// String renders the reference as "owner/repo#number".
func (r PRRef) String() string {
	return fmt.Sprintf("%s/%s#%d", r.Owner, r.Repo, r.Number)
}

// ParsePRRef builds a PRRef from an "owner/name" repo string and a PR number.
func ParsePRRef(repo string, number int) (PRRef, error) {
	parts := strings.SplitN(repo, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return PRRef{}, &ConfigError{Field: "repo", Detail: fmt.Sprintf("expected owner/name, got %q", repo)}
	}
	if number <= 0 {
		return PRRef{}, &ConfigError{Field: "pr", Detail: fmt.Sprintf("expected a positive PR number, got %d", number)}
	}
	return PRRef{Owner: parts[0], Repo: parts[1], Number: number}, nil
}

// Snapshot is the complete observed state of a pull request at one poll.
// It is rebuilt from scratch on every poll and never mutated, so a stale
// field can only mean a stale snapshot, never a partial update.
type Snapshot struct {
	Ref          PRRef
	Title        string
	IsDraft      bool
	CommitCount  int
	LastPushedAt time.Time
	Description  string
	Checks       []CheckResult
	Threads      []ReviewThread
}
