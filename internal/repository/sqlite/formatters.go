package sqlite

import (
	"time"
)

// FormatTimeForDB formats a time.Time value as a UTC RFC3339 string for consistent database storage
func FormatTimeForDB(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTimeFromDB parses an RFC3339 formatted time string from the database.
// Second-precision values written by earlier versions parse as well.
func ParseTimeFromDB(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
