// Package gpstime provides a GPS-aware time value. A Time wraps a
// civil time.Time together with a snapshot of the leap second table
// taken at construction, so a concurrent table refresh never changes
// the meaning of an already constructed value.
package gpstime

import (
	"math"
	"time"

	"github.com/astrotime/gpstime/internal/gps"
	"github.com/astrotime/gpstime/internal/leapdata"
)

// ISOFormat is the layout used by ISO: UTC, microsecond precision,
// Z-suffixed.
const ISOFormat = "2006-01-02T15:04:05.000000Z"

// timeNow can be overridden in tests.
var timeNow = time.Now

// Time defines a point in time bound to a leap second table. The
// embedded location is only used for formatted rendering.
type Time struct {
	time.Time

	table *leapdata.Table
}

// FromTime returns a Time for the given civil time.
func FromTime(t time.Time, table *leapdata.Table) Time {
	return Time{
		Time:  t,
		table: table,
	}
}

// Now returns the current time.
func Now(table *leapdata.Table) Time {
	return FromTime(timeNow(), table)
}

// FromGPS returns the UTC-zoned Time for the given seconds since the
// GPS epoch. The fractional second is reconstructed with
// round-to-nearest-microsecond so that float GPS values round-trip.
func FromGPS(gpsSec float64, table *leapdata.Table) Time {
	unix := gps.GPSToUnix(gpsSec, table)
	sec := math.Floor(unix)
	micro := math.Round((unix - sec) * 1e6)

	t := time.Unix(int64(sec), int64(micro)*int64(time.Microsecond))
	return FromTime(t.UTC(), table)
}

// GPS returns the time as seconds since the GPS epoch.
func (t Time) GPS() float64 {
	unix := float64(t.Unix()) + float64(t.Nanosecond())/float64(time.Second)
	return gps.UnixToGPS(unix, t.table)
}

// ISO returns the time in ISO format, in UTC.
func (t Time) ISO() string {
	return t.UTC().Format(ISOFormat)
}

// In returns the same instant with the given display zone.
func (t Time) In(loc *time.Location) Time {
	return Time{
		Time:  t.Time.In(loc),
		table: t.table,
	}
}
