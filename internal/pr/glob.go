package pr

import "strings"

// matchGlob reports whether name matches pattern, where '*' matches any run
// of characters (including none) and every other byte compares literally.
// This is deliberately not path.Match: '?' and '[' carry no special meaning,
// since check names routinely contain them (e.g. "build (ubuntu) [stable]").
func matchGlob(name, pattern string) bool {
	nIdx, pIdx := 0, 0
	starIdx, backtrack := -1, 0

	for nIdx < len(name) {
		switch {
		case pIdx < len(pattern) && pattern[pIdx] == '*':
			starIdx = pIdx
			backtrack = nIdx
			pIdx++
		case pIdx < len(pattern) && pattern[pIdx] == name[nIdx]:
			pIdx++
			nIdx++
		case starIdx >= 0:
			// Mismatch after a star: widen the star by one byte and retry.
			pIdx = starIdx + 1
			backtrack++
			nIdx = backtrack
		default:
			return false
		}
	}

	for pIdx < len(pattern) && pattern[pIdx] == '*' {
		pIdx++
	}
	return pIdx == len(pattern)
}

// matchesAny reports whether name matches at least one of the patterns.
func matchesAny(name string, patterns []string) bool {
	for _, p := range patterns {
		if matchGlob(name, p) {
			return true
		}
	}
	return false
}

// CheckFilter holds include/exclude glob pattern lists for check names.
// An empty include list means every check is included by default.
type CheckFilter struct {
	Include []string
	Exclude []string
}

// Includes reports whether a check with the given name passes the filter:
// it must match some include pattern (when any are configured) and must not
// match any exclude pattern.
func (f CheckFilter) Includes(name string) bool {
	if len(f.Include) > 0 && !matchesAny(name, f.Include) {
		return false
	}
	return !matchesAny(name, f.Exclude)
}

// Validate rejects unusable patterns before any network call is made.
func (f CheckFilter) Validate() error {
	for _, list := range [][]string{f.Include, f.Exclude} {
		for _, p := range list {
			if strings.TrimSpace(p) == "" {
				return &ConfigError{Field: "check patterns", Detail: "empty pattern"}
			}
		}
	}
	return nil
}
