package gpstime

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/olebedev/when"
	whenCommon "github.com/olebedev/when/rules/common"
	whenEN "github.com/olebedev/when/rules/en"

	"github.com/astrotime/gpstime/internal/leapdata"
)

// ParseError is returned when a string can be interpreted neither as a
// GPS time nor as a calendar date. It carries the offending input.
type ParseError struct {
	Input string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse time string: %q", e.Input)
}

// layouts are tried before the generic date parser. Layouts without a
// zone are interpreted in the local zone.
var layouts = []string{
	"Jan 02 2006 15:04:05 MST",
	"Jan 2 2006 15:04:05 MST",
	"Jan 02 2006 15:04:05",
	"Jan 2 2006 15:04:05",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05.999999 MST",
}

var relative = func() *when.Parser {
	w := when.New(nil)
	w.Add(whenEN.All...)
	w.Add(whenCommon.All...)
	return w
}()

// Parse parses an arbitrary time string. An empty string or "now"
// yields the current time. A numeric string is always interpreted as a
// GPS time, even when it could pass for a calendar year. Anything else
// is handed to the calendar-string parsers, with the local zone
// attached when the string names none. Strings naming a leap second
// itself (a 61st second, "23:59:60") are not parseable; this is a
// known limitation.
func Parse(s string, table *leapdata.Table) (Time, error) {
	s = strings.TrimSpace(s)

	if s == "" || s == "now" {
		return Now(table), nil
	}

	if g, err := strconv.ParseFloat(s, 64); err == nil {
		return FromGPS(g, table), nil
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return FromTime(t, table), nil
		}
	}

	if t, err := dateparse.ParseIn(s, time.Local); err == nil {
		return FromTime(t, table), nil
	}

	// Relative expressions like "2 days ago". Only a match covering
	// the whole string counts, otherwise stray fragments of
	// unparseable input would be accepted.
	if r, err := relative.Parse(s, timeNow()); err == nil && r != nil {
		if r.Index == 0 && strings.TrimSpace(s[len(r.Text):]) == "" {
			return FromTime(r.Time, table), nil
		}
	}

	return Time{}, &ParseError{Input: s}
}
