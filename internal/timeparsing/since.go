// Package timeparsing turns --since expressions into a time bound.
//
// Accepted forms, tried in order:
//
//	24h, -2d, +1w, 3m, 1y   offsets in hours, days, weeks, months or years
//	2025-01-10T08:00:00Z    RFC3339
//	2025-01-10T08:00        local wall clock
//	2025-01-10              local midnight
//	yesterday, 3 days ago   English, via olebedev/when
package timeparsing

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var offsetRe = regexp.MustCompile(`^([+-]?)(\d+)([hdwmy])$`)

// Wall-clock layouts are read in the location of now.
var localLayouts = []string{"2006-01-02T15:04", "2006-01-02"}

var english = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

type offset struct {
	n      int
	unit   byte
	signed bool
}

func parseOffset(s string) (offset, bool) {
	m := offsetRe.FindStringSubmatch(s)
	if m == nil {
		return offset{}, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return offset{}, false
	}
	if m[1] == "-" {
		n = -n
	}
	return offset{n: n, unit: m[3][0], signed: m[1] != ""}, true
}

// from applies the offset to base. Months and years use AddDate, so
// Jan 31 + 1m normalizes into March.
func (o offset) from(base time.Time) time.Time {
	switch o.unit {
	case 'h':
		return base.Add(time.Duration(o.n) * time.Hour)
	case 'd':
		return base.AddDate(0, 0, o.n)
	case 'w':
		return base.AddDate(0, 0, 7*o.n)
	case 'm':
		return base.AddDate(0, o.n, 0)
	case 'y':
		return base.AddDate(o.n, 0, 0)
	}
	return base
}

// ParseRelativeTime resolves s against now. Offsets move in the direction
// of their sign, unsigned meaning forward.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty time expression")
	}
	if o, ok := parseOffset(s); ok {
		return o.from(now), nil
	}
	return parseAbsolute(s, now)
}

// ParseSince resolves a lower bound for "changed since". An unsigned offset
// counts back from now ("24h" is a day ago). Bounds after now are rejected.
func ParseSince(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	var (
		t   time.Time
		err error
	)
	if o, ok := parseOffset(s); ok {
		if !o.signed {
			o.n = -o.n
		}
		t = o.from(now)
	} else if t, err = ParseRelativeTime(s, now); err != nil {
		return time.Time{}, err
	}
	if t.After(now) {
		return time.Time{}, fmt.Errorf("since %q is in the future (%s)", s, t.Format(time.RFC3339))
	}
	return t, nil
}

func parseAbsolute(s string, now time.Time) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return t, nil
		}
	}
	r, err := english.Parse(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %q: %w", s, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("not a time: %q", s)
	}
	return r.Time, nil
}
