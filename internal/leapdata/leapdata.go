// Package leapdata manages the leap second tables needed to translate
// between UNIX and GPS time. Tables are parsed from the IETF
// leap-seconds.list bulletin or the tzdata leapseconds file, cached on
// disk and refreshed from the IETF when expired.
package leapdata

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ntpUnixDelta is the number of seconds between the NTP epoch
// (1900-01-01T00:00:00Z) and the UNIX epoch (1970-01-01T00:00:00Z).
const ntpUnixDelta int64 = 2208988800

// nistBaseOffset is the TAI-UTC offset in effect before the first leap
// second entry of the tzdata leapseconds file (1972-06-30).
const nistBaseOffset = 10

//go:embed leap-seconds.list
var packaged []byte

// Event defines a single leap second insertion. Unix is the instant at
// which the new cumulative offset takes effect, Offset the TAI-UTC
// offset in seconds at and after that instant.
type Event struct {
	Unix   int64
	Offset int
}

// Table defines an immutable leap second table. A Table is constructed
// by parsing exactly one source document and is never mutated
// afterwards, so it can be shared freely between goroutines.
type Table struct {
	Events  []Event
	Expires time.Time
	Source  string
}

// Expired returns true when the table must no longer be trusted at the
// given instant. Expiry is evaluated lazily and can become true
// mid-process.
func (t *Table) Expired(now time.Time) bool {
	return !t.Expires.After(now)
}

// ParseError is returned when a leap second document is missing or
// malformed. The source is skipped and resolution proceeds to the next
// candidate.
type ParseError struct {
	Source string
	Err    error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse leap second data error (source: %s): %s", e.Source, e.Err)
}

// Unwrap implements the errors unwrap interface.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse parses a leap second document in either the IETF
// leap-seconds.list format or the tzdata leapseconds format. The given
// source tag is recorded as the provenance of the table.
func Parse(r io.Reader, source string) (*Table, error) {
	table := Table{
		Source: source,
	}

	var (
		expires    int64
		hasExpires bool
		firstRow   = true
		nistOffset = nistBaseOffset
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			// skip
		case strings.HasPrefix(line, "#@"):
			// IETF expiry header, in NTP seconds.
			fields := strings.Fields(line[2:])
			if len(fields) < 1 {
				return nil, &ParseError{Source: source, Err: errors.New("empty #@ expiry header")}
			}
			ntp, err := strconv.ParseInt(fields[0], 10, 64)
			if err != nil {
				return nil, &ParseError{Source: source, Err: errors.Wrap(err, "invalid #@ expiry header")}
			}
			expires = ntp - ntpUnixDelta
			hasExpires = true
		case strings.HasPrefix(line, "#expires"):
			// tzdata expiry header, in UNIX seconds.
			fields := strings.Fields(strings.TrimPrefix(line, "#expires"))
			if len(fields) < 1 {
				return nil, &ParseError{Source: source, Err: errors.New("empty #expires header")}
			}
			unix, err := strconv.ParseInt(fields[0], 10, 64)
			if err != nil {
				return nil, &ParseError{Source: source, Err: errors.Wrap(err, "invalid #expires header")}
			}
			expires = unix
			hasExpires = true
		case strings.HasPrefix(line, "#"):
			// skip
		case strings.HasPrefix(line, "Leap"):
			event, err := parseTZDataRow(line, &nistOffset)
			if err != nil {
				return nil, &ParseError{Source: source, Err: err}
			}
			table.Events = append(table.Events, event)
		default:
			event, err := parseIETFRow(line)
			if err != nil {
				return nil, &ParseError{Source: source, Err: err}
			}
			// The first data row records the offset in effect at the
			// start of the bulletin, not a leap second insertion.
			if firstRow {
				firstRow = false
				continue
			}
			table.Events = append(table.Events, event)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}

	if !hasExpires {
		return nil, &ParseError{Source: source, Err: errors.New("no expiry header found")}
	}
	if len(table.Events) == 0 {
		return nil, &ParseError{Source: source, Err: errors.New("no leap second events found")}
	}

	for i := 1; i < len(table.Events); i++ {
		if table.Events[i].Unix <= table.Events[i-1].Unix {
			return nil, &ParseError{Source: source, Err: errors.New("leap second instants are not strictly increasing")}
		}
	}

	table.Expires = time.Unix(expires, 0).UTC()
	return &table, nil
}

// ParseFile parses the leap second document at the given path.
func ParseFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Source: path, Err: err}
	}
	defer f.Close()

	return Parse(f, path)
}

// Packaged returns the leap second table which is embedded in the
// binary. It is used as the last-resort source when no other candidate
// can be parsed.
func Packaged() (*Table, error) {
	return Parse(bytes.NewReader(packaged), "packaged")
}

// parseIETFRow parses an IETF data row:
//
//	<ntp-seconds> <tai-utc-offset> [# comment]
func parseIETFRow(line string) (Event, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Event{}, fmt.Errorf("invalid data row: %q", line)
	}

	ntp, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Event{}, errors.Wrapf(err, "invalid leap second instant in row: %q", line)
	}
	offset, err := strconv.Atoi(fields[1])
	if err != nil {
		return Event{}, errors.Wrapf(err, "invalid offset in row: %q", line)
	}

	return Event{
		Unix:   ntp - ntpUnixDelta,
		Offset: offset,
	}, nil
}

// parseTZDataRow parses a tzdata leapseconds data row:
//
//	Leap <year> <month> <day> <hh:mm:ss> <+|-> <R|S>
//
// The time-of-day names the inserted second itself (23:59:60), which
// time.Date normalizes to the instant at which the new offset takes
// effect. The cumulative offset is tracked by the caller since tzdata
// rows only carry a correction direction.
func parseTZDataRow(line string, offset *int) (Event, error) {
	fields := strings.Fields(line)
	if len(fields) < 7 {
		return Event{}, fmt.Errorf("invalid Leap row: %q", line)
	}

	year, err := strconv.Atoi(fields[1])
	if err != nil {
		return Event{}, errors.Wrapf(err, "invalid year in row: %q", line)
	}
	mon, err := time.Parse("Jan", fields[2])
	if err != nil {
		return Event{}, errors.Wrapf(err, "invalid month in row: %q", line)
	}
	day, err := strconv.Atoi(fields[3])
	if err != nil {
		return Event{}, errors.Wrapf(err, "invalid day in row: %q", line)
	}

	hms := strings.Split(fields[4], ":")
	if len(hms) != 3 {
		return Event{}, fmt.Errorf("invalid time-of-day in row: %q", line)
	}
	var tod [3]int
	for i, s := range hms {
		tod[i], err = strconv.Atoi(s)
		if err != nil {
			return Event{}, errors.Wrapf(err, "invalid time-of-day in row: %q", line)
		}
	}

	// Negative corrections have never been published and are not
	// supported by the offset bookkeeping below.
	if fields[5] != "+" {
		return Event{}, fmt.Errorf("unsupported leap second correction %q in row: %q", fields[5], line)
	}

	ts := time.Date(year, mon.Month(), day, tod[0], tod[1], tod[2], 0, time.UTC)
	*offset++

	return Event{
		Unix:   ts.Unix(),
		Offset: *offset,
	}, nil
}
