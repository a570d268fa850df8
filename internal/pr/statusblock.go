package pr

import (
	"log/slog"
	"strings"
)

// Marker lines delimiting the agent-managed region in a PR description.
// They must appear alone on their own lines to be recognized.
const (
	StatusBeginMarker = "<!-- prloop:status:begin -->"
	StatusEndMarker   = "<!-- prloop:status:end -->"
)

// RenderStatusBlock produces the delimited status region. An empty message
// still yields the marker pair, since the region's presence alone signals
// that an agent is managing the PR.
func RenderStatusBlock(message string) string {
	if message == "" {
		return StatusBeginMarker + "\n" + StatusEndMarker
	}
	return StatusBeginMarker + "\n" + message + "\n" + StatusEndMarker
}

// UpsertStatusBlock removes every existing status region from the
// description and appends the given block once at the end. Upsert is
// idempotent: re-upserting the same block leaves the description unchanged,
// and upserting a new block replaces the old one without duplication.
func UpsertStatusBlock(description, block string) string {
	cleaned := RemoveStatusBlock(description)
	if cleaned == "" {
		return block + "\n"
	}
	return cleaned + "\n\n" + block + "\n"
}

// RemoveStatusBlock strips all well-formed status regions from the
// description, along with the blank separator the upsert inserted before
// each one. Text outside the marker regions is never touched. A begin
// marker without a matching end marker is malformed: it is reported once
// and left in place as ordinary text, so a later upsert re-inserts a clean
// region after it.
func RemoveStatusBlock(description string) string {
	s := description
	offset := 0
	for {
		start, end, err := findStatusRegion(s[offset:])
		if err != nil {
			slog.Warn("ignoring malformed status block region", "error", err)
			break
		}
		if start < 0 {
			break
		}
		start += offset
		end += offset

		// Swallow the blank separator the upsert inserted. A lone newline
		// before the region terminates the preceding content line and is
		// kept; only a full blank line (two newlines) is separator.
		if start >= 2 && s[start-1] == '\n' && s[start-2] == '\n' {
			start -= 2
		}
		s = s[:start] + s[end:]
		offset = start
	}
	return s
}

// findStatusRegion locates the first well-formed marker region in s.
// It returns the byte offsets of the region start (beginning of the begin
// marker line) and region end (just past the end marker line's newline, or
// end of string). start is -1 when no begin marker exists. A begin marker
// with no end marker yields a StateInvariantError.
func findStatusRegion(s string) (start, end int, err error) {
	start = indexMarkerLine(s, 0, StatusBeginMarker)
	if start < 0 {
		return -1, 0, nil
	}

	afterBegin := start + len(StatusBeginMarker)
	endMarker := indexMarkerLine(s, afterBegin, StatusEndMarker)
	if endMarker < 0 {
		return 0, 0, &StateInvariantError{Detail: "begin marker without matching end marker"}
	}

	end = endMarker + len(StatusEndMarker)
	if end < len(s) && s[end] == '\n' {
		end++
	}
	return start, end, nil
}

// indexMarkerLine finds marker appearing as a whole line in s at or after
// from. Returns -1 when absent.
func indexMarkerLine(s string, from int, marker string) int {
	for i := from; i <= len(s)-len(marker); {
		idx := strings.Index(s[i:], marker)
		if idx < 0 {
			return -1
		}
		pos := i + idx
		atLineStart := pos == 0 || s[pos-1] == '\n'
		lineEnd := pos + len(marker)
		atLineEnd := lineEnd == len(s) || s[lineEnd] == '\n'
		if atLineStart && atLineEnd {
			return pos
		}
		i = pos + 1
	}
	return -1
}

// HasStatusBlock reports whether the description contains a well-formed
// status region.
func HasStatusBlock(description string) bool {
	start, _, err := findStatusRegion(description)
	return err == nil && start >= 0
}
