// Package tokens scans issue text for the marker tokens and the labeled
// reach line that issue forms leave behind.
//
// Nothing in here fails: a category with no marker and a reach line that
// does not parse are both "no information" outcomes.
package tokens

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/steveyegge/boardsync/internal/schema"
	"github.com/steveyegge/boardsync/internal/types"
)

// Markers is everything extracted from one issue's text.
type Markers struct {
	// Choices holds at most one option per token category.
	Choices map[types.Field]schema.Option
	Reach   Reach
}

// Choice returns the option matched for f.
func (m Markers) Choice(f types.Field) (schema.Option, bool) {
	o, ok := m.Choices[f]
	return o, ok
}

// Number returns the numeric value of the option matched for f as a
// token-sourced value, or types.Undefined.
func (m Markers) Number(f types.Field) types.Value {
	if o, ok := m.Choices[f]; ok {
		return types.FromToken(o.Value)
	}
	return types.Undefined
}

// Reach is the outcome of reading the labeled reach line.
type Reach struct {
	Value types.Value
	// Line is the raw text found under the label; empty when the label or
	// a following line is missing.
	Line string
}

// ParseFailed reports whether a line was found but yielded no number.
func (r Reach) ParseFailed() bool {
	return r.Line != "" && !r.Value.Defined()
}

// Extract scans the issue body and label names against every token
// vocabulary in the schema and reads the reach line from the body.
func Extract(s *schema.Schema, text types.IssueText) Markers {
	haystack := text.Body
	if len(text.Labels) > 0 {
		haystack += "\n" + strings.Join(text.Labels, "\n")
	}

	m := Markers{Choices: make(map[types.Field]schema.Option)}
	for _, f := range schema.TokenFields {
		if o, ok := Match(s.Vocabulary(f), haystack); ok {
			m.Choices[f] = o
		}
	}
	m.Reach = ReadReach(text.Body, s.ReachLabel)
	return m
}

// Match returns the first option, in vocabulary order, whose token occurs
// in text as a substring. Ordering only matters for vocabularies where one
// token contains another.
func Match(vocab schema.Vocabulary, text string) (schema.Option, bool) {
	for _, o := range vocab {
		if o.Token != "" && strings.Contains(text, o.Token) {
			return o, true
		}
	}
	return schema.Option{}, false
}

// ReadReach finds label in body and parses the first non-blank line after it.
func ReadReach(body, label string) Reach {
	line, ok := LineAfter(body, label)
	if !ok {
		return Reach{Value: types.Undefined}
	}
	n, ok := ParseNumber(line)
	if !ok || n < 0 {
		return Reach{Value: types.Undefined, Line: line}
	}
	return Reach{Value: types.FromToken(n), Line: line}
}

// LineAfter returns the first non-blank line following the line that
// contains label.
func LineAfter(body, label string) (string, bool) {
	if label == "" {
		return "", false
	}
	idx := strings.Index(body, label)
	if idx < 0 {
		return "", false
	}
	rest := body[idx+len(label):]
	// Skip the remainder of the header line.
	nl := strings.IndexByte(rest, '\n')
	if nl < 0 {
		return "", false
	}
	for _, line := range strings.Split(rest[nl+1:], "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return line, true
		}
	}
	return "", false
}

var leadingFloat = regexp.MustCompile(`^-?(?:\d+\.?\d*|\.\d+)`)

// ParseNumber keeps only digits, '.', ',' and '-', turns the first comma
// into a decimal point and parses the longest numeric prefix. "12,5 users"
// parses as 12.5 and "1000-2000" as 1000.
func ParseNumber(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := strings.Replace(b.String(), ",", ".", 1)
	prefix := leadingFloat.FindString(cleaned)
	if prefix == "" || prefix == "-" {
		return 0, false
	}
	n, err := strconv.ParseFloat(prefix, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
