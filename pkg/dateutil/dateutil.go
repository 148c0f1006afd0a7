package dateutil

import "time"

// BeginningOfUTCDay truncates t to the UTC calendar day boundary. The daily
// spin quota resets on this boundary regardless of the request's time zone.
func BeginningOfUTCDay(t time.Time) time.Time {
	utc := t.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
}

// IsSameUTCDay reports whether a and b fall on the same UTC calendar day.
func IsSameUTCDay(a, b time.Time) bool {
	return BeginningOfUTCDay(a).Equal(BeginningOfUTCDay(b))
}
