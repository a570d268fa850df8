package pr

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Host is the platform collaborator. Implementations own transport concerns
// (auth, pagination, rate limiting, transient retries); the engine treats
// each call as either a complete result or an error to surface upward.
type Host interface {
	// FetchSnapshot returns the complete current state of the pull request.
	FetchSnapshot(ctx context.Context, ref PRRef) (*Snapshot, error)

	// PostReply adds a reply to a review thread and optionally resolves it.
	PostReply(ctx context.Context, ref PRRef, threadID, body string, resolve bool) error

	// UpdateDescription replaces the pull request description.
	UpdateDescription(ctx context.Context, ref PRRef, description string) error

	// SetDraftState moves the pull request into or out of draft mode.
	SetDraftState(ctx context.Context, ref PRRef, draft bool) error

	// DeleteComments removes the given review comments.
	DeleteComments(ctx context.Context, ref PRRef, commentIDs []string) error
}

const (
	// DefaultPollInterval is the pause between snapshot fetches.
	DefaultPollInterval = 5 * time.Second

	// MinSettleDelay is the shortest allowed settle delay. A green check set
	// observed sooner than this after a push is not trusted, since CI may not
	// have been triggered yet.
	MinSettleDelay = 30 * time.Second
)

// Poller repeatedly fetches fresh snapshots and blocks until the PR reaches
// a target classification. One fetch is outstanding at a time and every
// iteration starts from a fresh snapshot; nothing is carried between polls.
type Poller struct {
	Host        Host
	Options     ClassifyOptions
	Interval    time.Duration
	SettleDelay time.Duration

	// Now and Sleep are injectable so tests can simulate time.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error

	// OnPoll, when set, runs after each snapshot is classified. The wait
	// loop itself performs no side effects; callers hook status block
	// maintenance in here.
	OnPoll func(ctx context.Context, snap *Snapshot, cl Classification)
}

// NewPoller returns a Poller with the default interval, settle delay, and
// real clock.
func NewPoller(host Host, opts ClassifyOptions) *Poller {
	return &Poller{
		Host:        host,
		Options:     opts,
		Interval:    DefaultPollInterval,
		SettleDelay: MinSettleDelay,
		Now:         time.Now,
		Sleep:       sleepContext,
	}
}

// WaitUntilActionable polls until the PR classifies as Actionable. Happy and
// Waiting never terminate this mode. The returned snapshot is the one the
// terminal classification was computed from, so callers report consistent
// state without re-fetching.
func (p *Poller) WaitUntilActionable(ctx context.Context, ref PRRef) (*Snapshot, Classification, error) {
	return p.wait(ctx, ref, false)
}

// WaitUntilActionableOrHappy polls until the PR classifies as Actionable or
// Happy. Happy is only honored once the settle delay has elapsed since the
// last push; before that it is treated as Waiting and polling continues.
func (p *Poller) WaitUntilActionableOrHappy(ctx context.Context, ref PRRef) (*Snapshot, Classification, error) {
	return p.wait(ctx, ref, true)
}

func (p *Poller) wait(ctx context.Context, ref PRRef, acceptHappy bool) (*Snapshot, Classification, error) {
	settle := p.SettleDelay
	if settle < MinSettleDelay {
		settle = MinSettleDelay
	}

	for {
		snap, err := p.Host.FetchSnapshot(ctx, ref)
		if err != nil {
			return nil, Classification{}, fmt.Errorf("fetching snapshot for %s: %w", ref, err)
		}

		cl := Classify(snap, p.Options)
		slog.Debug("polled PR",
			"pr", ref.String(),
			"state", cl.State.String(),
			"checks", cl.Checks.Status.String(),
			"threadsNeedingResponse", len(cl.Threads.NeedingResponse))

		if p.OnPoll != nil {
			p.OnPoll(ctx, snap, cl)
		}

		switch cl.State {
		case StateActionable:
			return snap, cl, nil
		case StateHappy:
			if acceptHappy {
				if snap.LastPushedAt.IsZero() || p.Now().Sub(snap.LastPushedAt) >= settle {
					return snap, cl, nil
				}
				slog.Debug("all green but within settle delay after last push, continuing to poll",
					"pr", ref.String(),
					"sinceLastPush", p.Now().Sub(snap.LastPushedAt).Round(time.Second))
			}
		}

		// Cancellation is observed here, between iterations. An interrupted
		// run leaves the last written status block as-is rather than racing
		// a final write against process teardown.
		if err := p.Sleep(ctx, p.Interval); err != nil {
			return nil, Classification{}, err
		}
	}
}

// sleepContext sleeps for d or until the context is canceled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
