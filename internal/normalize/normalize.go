// Package normalize cleans link labels and rendered text so the two can be
// compared.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// trailer matches any mix of dot runs and digit runs, with surrounding
// whitespace, at the end of a string: dot leaders, page numbers and bare
// section numbers.
var trailer = regexp.MustCompile(`(?:\s*\.+\s*|\s*\d+\s*)+$`)

var spaceRun = regexp.MustCompile(`[\s\p{Zs}]+`)

// Label strips trailing dot leaders and numbers from a raw label, e.g.
// "Introduction .......... 4" becomes "Introduction". The result is only
// used for comparison.
func Label(raw string) string {
	s := strings.TrimSpace(norm.NFKC.String(raw))
	for {
		stripped := strings.TrimSpace(trailer.ReplaceAllString(s, ""))
		if stripped == s {
			return s
		}
		s = stripped
	}
}

// CollapseSpace replaces every whitespace run with a single space.
func CollapseSpace(s string) string {
	return spaceRun.ReplaceAllString(s, " ")
}

// StripDotsAndSpace removes all periods and whitespace.
func StripDotsAndSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '.' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

var leader = regexp.MustCompile(`(?:\.\s*){3,}\d+\s*$`)

// HasLeader reports whether raw reads as a contents entry: text followed by
// a dot leader and a page number.
func HasLeader(raw string) bool {
	return leader.MatchString(norm.NFKC.String(raw))
}
