package pr

// CheckConclusion is the reduced outcome of a single CI check.
type CheckConclusion int

const (
	ConclusionSuccess CheckConclusion = iota
	ConclusionFailure
	ConclusionPending
	ConclusionSkipped
	ConclusionNeutral
)

// String returns the lowercase name of the conclusion.
func (c CheckConclusion) String() string {
	switch c {
	case ConclusionSuccess:
		return "success"
	case ConclusionFailure:
		return "failure"
	case ConclusionPending:
		return "pending"
	case ConclusionSkipped:
		return "skipped"
	case ConclusionNeutral:
		return "neutral"
	default:
		return "unknown"
	}
}

// CheckResult is one CI check outcome from a snapshot.
type CheckResult struct {
	Name       string
	Conclusion CheckConclusion
	URL        string
}

// CheckStatus is the aggregate status of the filtered check set.
type CheckStatus int

const (
	ChecksAllPassing CheckStatus = iota
	ChecksHasFailure
	ChecksHasPending
	ChecksNone
)

// String returns a human-readable name for the aggregate status.
func (s CheckStatus) String() string {
	switch s {
	case ChecksAllPassing:
		return "all passing"
	case ChecksHasFailure:
		return "has failures"
	case ChecksHasPending:
		return "has pending"
	case ChecksNone:
		return "no checks"
	default:
		return "unknown"
	}
}

// CheckClassification is the aggregate status plus the names that drove it,
// in input order, so callers can report without re-scanning the check set.
type CheckClassification struct {
	Status  CheckStatus
	Failing []string
	Pending []string
}

// ClassifyChecks filters the check set and reduces it to one aggregate
// status. A single failure dominates any number of pendings; neutral and
// skipped conclusions never block; an empty filtered set is reported as
// ChecksNone rather than ChecksAllPassing so diagnostics can tell them apart.
func ClassifyChecks(checks []CheckResult, filter CheckFilter) CheckClassification {
	var cl CheckClassification
	matched := 0

	for _, c := range checks {
		if !filter.Includes(c.Name) {
			continue
		}
		matched++
		switch c.Conclusion {
		case ConclusionFailure:
			cl.Failing = append(cl.Failing, c.Name)
		case ConclusionPending:
			cl.Pending = append(cl.Pending, c.Name)
		}
	}

	switch {
	case matched == 0:
		cl.Status = ChecksNone
	case len(cl.Failing) > 0:
		cl.Status = ChecksHasFailure
	case len(cl.Pending) > 0:
		cl.Status = ChecksHasPending
	default:
		cl.Status = ChecksAllPassing
	}
	return cl
}

// FilterChecks returns the checks that pass the filter, preserving order.
func FilterChecks(checks []CheckResult, filter CheckFilter) []CheckResult {
	out := make([]CheckResult, 0, len(checks))
	for _, c := range checks {
		if filter.Includes(c.Name) {
			out = append(out, c)
		}
	}
	return out
}
