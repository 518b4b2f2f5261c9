// Package gps implements conversions between the UNIX and GPS time
// scales. GPS time does not observe leap seconds, so every conversion
// walks the leap second insertions that occurred since the GPS epoch.
package gps

import (
	"github.com/astrotime/gpstime/internal/leapdata"
)

// EpochUnix is the UNIX time of the GPS epoch (1980-01-06T00:00:00Z).
const EpochUnix int64 = 315964800

// UnixToGPS converts seconds since the UNIX epoch to seconds since the
// GPS epoch, applying the leap second corrections from the given
// table. A timestamp exactly at a leap second boundary is treated as
// at-or-after the insertion and receives the incremented offset.
// Fractional seconds pass through unaltered.
func UnixToGPS(unix float64, table *leapdata.Table) float64 {
	gps := unix - float64(EpochUnix)
	for _, ev := range table.Events {
		// Insertions at or before the GPS epoch are already part of
		// the epoch constant.
		if ev.Unix <= EpochUnix {
			continue
		}
		if unix < float64(ev.Unix) {
			break
		}
		gps++
	}
	return gps
}

// GPSToUnix converts seconds since the GPS epoch to seconds since the
// UNIX epoch. The scan compares the running UNIX value against each
// boundary, since every subtraction can change which insertions
// qualify. The inserted second itself has no UNIX representation: the
// GPS second naming it maps to the same UNIX second as the one before
// it.
func GPSToUnix(gps float64, table *leapdata.Table) float64 {
	unix := gps + float64(EpochUnix)
	for _, ev := range table.Events {
		if ev.Unix <= EpochUnix {
			continue
		}
		if unix < float64(ev.Unix) {
			break
		}
		unix--
	}
	return unix
}
