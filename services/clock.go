package services

import "time"

// All rate limits and streaks use UTC calendar buckets: a daily quota resets
// at UTC midnight and an hourly quota at the UTC hour boundary, never on a
// rolling window.

func UTCDayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func UTCHour(t time.Time) int {
	return t.UTC().Hour()
}

func SameUTCDay(a, b time.Time) bool {
	return UTCDayStart(a).Equal(UTCDayStart(b))
}

// SameUTCHour reports whether two instants fall into the same UTC
// calendar-day hour bucket.
func SameUTCHour(a, b time.Time) bool {
	return SameUTCDay(a, b) && UTCHour(a) == UTCHour(b)
}

// IsUTCYesterday reports whether prev falls on the UTC calendar day
// immediately before the day containing now.
func IsUTCYesterday(prev, now time.Time) bool {
	return UTCDayStart(prev).AddDate(0, 0, 1).Equal(UTCDayStart(now))
}
