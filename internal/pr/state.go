package pr

// State is the top-level classification of a pull request.
type State int

const (
	// StateHappy means no further agent action is needed.
	StateHappy State = iota
	// StateActionable means the agent must respond to a failing check or an
	// unaddressed human comment.
	StateActionable
	// StateWaiting means checks are still in flight and no action is possible yet.
	StateWaiting
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateHappy:
		return "happy"
	case StateActionable:
		return "actionable"
	case StateWaiting:
		return "waiting"
	default:
		return "unknown"
	}
}

// ReasonKind identifies what made a PR actionable.
type ReasonKind int

const (
	ReasonFailingCheck ReasonKind = iota
	ReasonThreadNeedsReply
)

// String returns the lowercase name of the reason kind.
func (k ReasonKind) String() string {
	switch k {
	case ReasonFailingCheck:
		return "failing-check"
	case ReasonThreadNeedsReply:
		return "thread-needs-reply"
	default:
		return "unknown"
	}
}

// Reason is one concrete cause of an Actionable classification: a failing
// check name or the ID of a thread awaiting a reply.
type Reason struct {
	Kind ReasonKind
	Name string
}

// Classification is the state machine's verdict plus everything a caller
// needs to report it without re-deriving: the actionable reasons and the
// underlying check and thread classifications.
type Classification struct {
	State   State
	Reasons []Reason
	Checks  CheckClassification
	Threads ThreadClassification
}

// ClassifyOptions configures the state machine.
type ClassifyOptions struct {
	// Filter selects which checks participate in classification.
	Filter CheckFilter
	// RequireChecks blocks Happy when the filtered check set is empty,
	// treating a checkless PR as Waiting instead. Off by default: a repo
	// with no CI is considered green.
	RequireChecks bool
}

// Classify reduces a snapshot to one classification. Priority order: an
// explicit failure or human comment always outranks an in-flight pending
// check, since it is actionable immediately; Happy is never declared while
// anything is still pending.
func Classify(snap *Snapshot, opts ClassifyOptions) Classification {
	checks := ClassifyChecks(snap.Checks, opts.Filter)
	threads := ClassifyThreads(snap.Threads)

	cl := Classification{Checks: checks, Threads: threads}
	for _, name := range checks.Failing {
		cl.Reasons = append(cl.Reasons, Reason{Kind: ReasonFailingCheck, Name: name})
	}
	for _, t := range threads.NeedingResponse {
		cl.Reasons = append(cl.Reasons, Reason{Kind: ReasonThreadNeedsReply, Name: t.ID})
	}

	switch {
	case len(cl.Reasons) > 0:
		cl.State = StateActionable
	case checks.Status == ChecksHasPending:
		cl.State = StateWaiting
	case checks.Status == ChecksNone && opts.RequireChecks:
		cl.State = StateWaiting
	default:
		cl.State = StateHappy
	}
	return cl
}
