package schedule

import (
	"math"
	"time"
)

// unixEpochSerial is the spreadsheet serial number of the Unix epoch.
// Serial day 0 is Dec 30 1899; the fractional part is the time of day.
const unixEpochSerial = 25569

// SerialToTime converts a spreadsheet serial timestamp to a time.Time in loc.
//
// The conversion deliberately preserves the wall-clock hour and minute printed
// in the sheet rather than the absolute instant: the serial is first decoded
// as a UTC timestamp, then the same year/month/day/hour/minute fields are
// reinterpreted in loc. Any finite input is accepted; extreme values produce
// a correspondingly extreme (but well-formed) time.
func SerialToTime(serial float64, loc *time.Location) time.Time {
	ms := math.Round((serial - unixEpochSerial) * 86400 * 1000)
	utc := time.UnixMilli(int64(ms)).UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(),
		utc.Hour(), utc.Minute(), utc.Second(), utc.Nanosecond(), loc)
}

// TimeToSerial converts a time.Time back to a spreadsheet serial timestamp,
// using the wall-clock fields of t (the inverse of SerialToTime for the same
// location).
func TimeToSerial(t time.Time) float64 {
	utc := time.Date(t.Year(), t.Month(), t.Day(),
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	return float64(utc.UnixMilli())/86400/1000 + unixEpochSerial
}
