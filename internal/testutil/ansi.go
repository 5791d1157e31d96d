// Package testutil holds helpers shared by fibmeter's tests.
package testutil

import (
	"regexp"
	"strings"
)

// csi matches ANSI control sequences such as colors and cursor movement.
var csi = regexp.MustCompile(`\x1b\[[0-9;?]*[a-zA-Z]`)

// StripAnsiCodes removes ANSI escape sequences from s.
func StripAnsiCodes(s string) string {
	return csi.ReplaceAllString(s, "")
}

// Lines strips ANSI codes from s and returns its non-empty lines with
// surrounding whitespace trimmed. Spinner redraws use carriage returns, so
// those split lines too.
func Lines(s string) []string {
	s = strings.ReplaceAll(StripAnsiCodes(s), "\r", "\n")
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
