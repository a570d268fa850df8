// Package gh implements the GitHub platform collaborator behind the
// pr.Host interface. REST (go-github) covers PR metadata, checks, and
// description updates; GraphQL (githubv4) covers review threads and the
// thread/draft mutations the REST API does not expose.
package gh

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	github_ratelimit "github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	gh "github.com/google/go-github/v82/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/prloop/prloop/internal/pr"
)

// Client talks to GitHub on behalf of the polling engine.
type Client struct {
	rest    *gh.Client
	gqlOnce sync.Once
	gql     *githubv4.Client
	token   string
	gqlURL  string // override for testing
}

// NewClient creates a GitHub client authenticated with the given token.
// Uses go-github-ratelimit middleware for automatic rate limit handling, so
// transient rate limiting never surfaces to the polling engine.
func NewClient(token string) *Client {
	rateLimiter := github_ratelimit.NewClient(nil)
	rest := gh.NewClient(rateLimiter).WithAuthToken(token)
	return &Client{rest: rest, token: token}
}

// FetchSnapshot assembles the complete current state of a pull request:
// draft flag, commit count, and description from REST; check runs and
// legacy commit statuses from REST; review threads and the last push
// timestamp from GraphQL.
func (c *Client) FetchSnapshot(ctx context.Context, ref pr.PRRef) (*pr.Snapshot, error) {
	ghPR, _, err := c.rest.PullRequests.Get(ctx, ref.Owner, ref.Repo, ref.Number)
	if err != nil {
		return nil, fmt.Errorf("getting PR: %w", err)
	}

	headSHA := ghPR.GetHead().GetSHA()
	if headSHA == "" {
		return nil, fmt.Errorf("PR head SHA is empty")
	}

	checks, err := c.fetchChecks(ctx, ref, headSHA)
	if err != nil {
		return nil, err
	}

	threads, lastPushedAt, err := c.fetchThreads(ctx, ref)
	if err != nil {
		return nil, err
	}

	return &pr.Snapshot{
		Ref:          ref,
		Title:        ghPR.GetTitle(),
		IsDraft:      ghPR.GetDraft(),
		CommitCount:  ghPR.GetCommits(),
		LastPushedAt: lastPushedAt,
		Description:  ghPR.GetBody(),
		Checks:       checks,
		Threads:      threads,
	}, nil
}

// fetchChecks queries both GitHub Check Runs and legacy Commit Statuses for
// a complete picture, with pagination.
func (c *Client) fetchChecks(ctx context.Context, ref pr.PRRef, headSHA string) ([]pr.CheckResult, error) {
	var checks []pr.CheckResult

	checkOpts := &gh.ListCheckRunsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}
	for {
		result, resp, err := c.rest.Checks.ListCheckRunsForRef(ctx, ref.Owner, ref.Repo, headSHA, checkOpts)
		if err != nil {
			return nil, fmt.Errorf("listing check runs: %w", err)
		}
		for _, cr := range result.CheckRuns {
			checks = append(checks, pr.CheckResult{
				Name:       cr.GetName(),
				Conclusion: mapCheckRun(cr.GetStatus(), cr.GetConclusion()),
				URL:        cr.GetHTMLURL(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		checkOpts.Page = resp.NextPage
	}

	statusOpts := &gh.ListOptions{PerPage: 100}
	for {
		combined, resp, err := c.rest.Repositories.GetCombinedStatus(ctx, ref.Owner, ref.Repo, headSHA, statusOpts)
		if err != nil {
			slog.Warn("failed to get combined status", "error", err)
			return checks, nil
		}
		for _, s := range combined.Statuses {
			checks = append(checks, pr.CheckResult{
				Name:       s.GetContext(),
				Conclusion: mapCommitStatus(s.GetState()),
				URL:        s.GetTargetURL(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		statusOpts.Page = resp.NextPage
	}

	return checks, nil
}

// mapCheckRun reduces a check run's status/conclusion pair to a conclusion.
// A run that has not completed is pending regardless of its eventual outcome;
// an unrecognized conclusion is also treated as pending rather than failing,
// so new platform states never flip a PR to actionable spuriously.
func mapCheckRun(status, conclusion string) pr.CheckConclusion {
	if status != "completed" {
		return pr.ConclusionPending
	}
	switch conclusion {
	case "success":
		return pr.ConclusionSuccess
	case "failure", "timed_out", "cancelled", "action_required":
		return pr.ConclusionFailure
	case "skipped", "stale":
		return pr.ConclusionSkipped
	case "neutral":
		return pr.ConclusionNeutral
	default:
		return pr.ConclusionPending
	}
}

// mapCommitStatus reduces a legacy commit status state to a conclusion.
func mapCommitStatus(state string) pr.CheckConclusion {
	switch state {
	case "success":
		return pr.ConclusionSuccess
	case "failure", "error":
		return pr.ConclusionFailure
	default:
		return pr.ConclusionPending
	}
}

// threadsQuery pages through review threads and picks up the head commit's
// push timestamp in the same round trip.
type threadsQuery struct {
	Repository struct {
		PullRequest struct {
			ReviewThreads struct {
				Nodes []struct {
					ID         githubv4.ID
					IsResolved bool
					Path       githubv4.String
					Line       *githubv4.Int
					Comments   struct {
						Nodes []struct {
							ID        githubv4.ID
							Body      githubv4.String
							CreatedAt githubv4.DateTime
							Author    struct {
								Login githubv4.String
							}
						}
					} `graphql:"comments(first: 100)"`
				}
				PageInfo struct {
					HasNextPage bool
					EndCursor   githubv4.String
				}
			} `graphql:"reviewThreads(first: 50, after: $cursor)"`
			Commits struct {
				Nodes []struct {
					Commit struct {
						PushedDate    *githubv4.DateTime
						CommittedDate githubv4.DateTime
					}
				}
			} `graphql:"commits(last: 1)"`
		} `graphql:"pullRequest(number: $number)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// fetchThreads returns all review threads in creation order plus the last
// push timestamp. GitHub no longer populates pushedDate reliably, so the
// commit date is used as a fallback.
func (c *Client) fetchThreads(ctx context.Context, ref pr.PRRef) ([]pr.ReviewThread, time.Time, error) {
	gql := c.graphQLClient(ctx)

	var threads []pr.ReviewThread
	var lastPushedAt time.Time
	var cursor *githubv4.String

	for {
		var q threadsQuery
		vars := map[string]any{
			"owner":  githubv4.String(ref.Owner),
			"name":   githubv4.String(ref.Repo),
			"number": githubv4.Int(ref.Number),
			"cursor": cursor,
		}
		if err := gql.Query(ctx, &q, vars); err != nil {
			return nil, time.Time{}, fmt.Errorf("querying review threads: %w", err)
		}

		if nodes := q.Repository.PullRequest.Commits.Nodes; len(nodes) > 0 {
			if pushed := nodes[0].Commit.PushedDate; pushed != nil {
				lastPushedAt = pushed.Time
			} else {
				lastPushedAt = nodes[0].Commit.CommittedDate.Time
			}
		}

		for _, node := range q.Repository.PullRequest.ReviewThreads.Nodes {
			thread := pr.ReviewThread{
				ID:         fmt.Sprint(node.ID),
				Path:       string(node.Path),
				IsResolved: node.IsResolved,
			}
			if node.Line != nil {
				thread.Line = int(*node.Line)
			}
			for _, cn := range node.Comments.Nodes {
				thread.Comments = append(thread.Comments, pr.ReviewComment{
					ID:        fmt.Sprint(cn.ID),
					Author:    string(cn.Author.Login),
					Body:      string(cn.Body),
					CreatedAt: cn.CreatedAt.Time,
				})
			}
			threads = append(threads, thread)
		}

		page := q.Repository.PullRequest.ReviewThreads.PageInfo
		if !page.HasNextPage {
			break
		}
		cursor = githubv4.NewString(page.EndCursor)
	}

	return threads, lastPushedAt, nil
}

// PostReply adds a reply to a review thread and optionally resolves it.
// threadID must be the thread's GraphQL node ID (e.g. "PRRT_...").
func (c *Client) PostReply(ctx context.Context, ref pr.PRRef, threadID, body string, resolve bool) error {
	gql := c.graphQLClient(ctx)

	var reply struct {
		AddPullRequestReviewThreadReply struct {
			Comment struct {
				ID githubv4.ID
			}
		} `graphql:"addPullRequestReviewThreadReply(input: $input)"`
	}
	input := githubv4.AddPullRequestReviewThreadReplyInput{
		PullRequestReviewThreadID: githubv4.NewID(githubv4.ID(threadID)),
		Body:                      githubv4.String(body),
	}
	if err := gql.Mutate(ctx, &reply, input, nil); err != nil {
		return fmt.Errorf("replying to thread %s: %w", threadID, err)
	}

	if !resolve {
		return nil
	}

	var resolution struct {
		ResolveReviewThread struct {
			Thread struct {
				IsResolved bool
			}
		} `graphql:"resolveReviewThread(input: $input)"`
	}
	resolveInput := githubv4.ResolveReviewThreadInput{
		ThreadID: githubv4.ID(threadID),
	}
	if err := gql.Mutate(ctx, &resolution, resolveInput, nil); err != nil {
		return fmt.Errorf("resolving thread %s: %w", threadID, err)
	}
	return nil
}

// UpdateDescription replaces the PR description.
func (c *Client) UpdateDescription(ctx context.Context, ref pr.PRRef, description string) error {
	_, _, err := c.rest.PullRequests.Edit(ctx, ref.Owner, ref.Repo, ref.Number, &gh.PullRequest{
		Body: gh.Ptr(description),
	})
	if err != nil {
		return fmt.Errorf("updating description: %w", err)
	}
	return nil
}

// SetDraftState converts the PR to or from draft. The REST API cannot flip
// draft state, so this resolves the PR's node ID and goes through GraphQL.
func (c *Client) SetDraftState(ctx context.Context, ref pr.PRRef, draft bool) error {
	ghPR, _, err := c.rest.PullRequests.Get(ctx, ref.Owner, ref.Repo, ref.Number)
	if err != nil {
		return fmt.Errorf("getting PR node ID: %w", err)
	}
	nodeID := ghPR.GetNodeID()
	if nodeID == "" {
		return fmt.Errorf("PR node ID is empty")
	}

	gql := c.graphQLClient(ctx)

	if draft {
		var m struct {
			ConvertPullRequestToDraft struct {
				PullRequest struct {
					IsDraft bool
				}
			} `graphql:"convertPullRequestToDraft(input: $input)"`
		}
		input := githubv4.ConvertPullRequestToDraftInput{
			PullRequestID: githubv4.ID(nodeID),
		}
		if err := gql.Mutate(ctx, &m, input, nil); err != nil {
			return fmt.Errorf("converting PR to draft: %w", err)
		}
		return nil
	}

	var m struct {
		MarkPullRequestReadyForReview struct {
			PullRequest struct {
				IsDraft bool
			}
		} `graphql:"markPullRequestReadyForReview(input: $input)"`
	}
	input := githubv4.MarkPullRequestReadyForReviewInput{
		PullRequestID: githubv4.ID(nodeID),
	}
	if err := gql.Mutate(ctx, &m, input, nil); err != nil {
		return fmt.Errorf("marking PR ready for review: %w", err)
	}
	return nil
}

// DeleteComments removes review comments by their GraphQL node IDs.
func (c *Client) DeleteComments(ctx context.Context, ref pr.PRRef, commentIDs []string) error {
	gql := c.graphQLClient(ctx)

	for _, id := range commentIDs {
		var m struct {
			DeletePullRequestReviewComment struct {
				PullRequestReviewComment struct {
					ID githubv4.ID
				}
			} `graphql:"deletePullRequestReviewComment(input: $input)"`
		}
		input := githubv4.DeletePullRequestReviewCommentInput{
			ID: githubv4.ID(id),
		}
		if err := gql.Mutate(ctx, &m, input, nil); err != nil {
			return fmt.Errorf("deleting comment %s: %w", id, err)
		}
	}
	return nil
}

// graphQLClient returns (and lazily creates) the GitHub GraphQL client.
// Thread-safe via sync.Once.
func (c *Client) graphQLClient(ctx context.Context) *githubv4.Client {
	c.gqlOnce.Do(func() {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.token})
		httpClient := oauth2.NewClient(ctx, ts)
		if c.gqlURL != "" {
			c.gql = githubv4.NewEnterpriseClient(c.gqlURL, httpClient)
			return
		}
		c.gql = githubv4.NewClient(httpClient)
	})
	return c.gql
}

// Verify Client implements pr.Host at compile time.
var _ pr.Host = (*Client)(nil)
