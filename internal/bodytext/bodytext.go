// Package bodytext removes issue-form sections from issue bodies once their
// contents have been copied onto the board.
package bodytext

import (
	"regexp"
	"strings"
)

var nextHeader = regexp.MustCompile(`\n###\s`)

// StripSections removes every "### <label>" section for each label, from the
// header up to the next "###" header or the end of the body. The result is
// trimmed after each label is processed.
func StripSections(body string, labels []string) string {
	out := body
	for _, label := range labels {
		out = strings.TrimSpace(stripSection(out, label))
	}
	return out
}

func stripSection(s, label string) string {
	header := regexp.MustCompile(`###\s+` + regexp.QuoteMeta(label))

	var b strings.Builder
	for {
		loc := header.FindStringIndex(s)
		if loc == nil {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:loc[0]])
		rest := s[loc[1]:]
		next := nextHeader.FindStringIndex(rest)
		if next == nil {
			return b.String()
		}
		s = rest[next[0]:]
	}
}
