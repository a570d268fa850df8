package pr

import "fmt"

// ConfigError reports an unusable configuration value (malformed pattern,
// conflicting flags). It is raised before any network call.
type ConfigError struct {
	Field  string
	Detail string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Detail)
}

// PreconditionError reports a readiness precondition that does not hold.
// Condition identifies the unmet check; Detail carries the specifics
// (which checks failed, how many commits, which threads are open).
type PreconditionError struct {
	Condition string
	Detail    string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition %s not met: %s", e.Condition, e.Detail)
}

// StateInvariantError reports a malformed status block region in a PR
// description. Callers log it and treat the region as absent rather than
// failing, since descriptions can be hand-edited at any time.
type StateInvariantError struct {
	Detail string
}

func (e *StateInvariantError) Error() string {
	return fmt.Sprintf("malformed status block: %s", e.Detail)
}
