package models

import (
	"time"
)

// TimestampLayout is the wire format for check-in timestamps: ISO-8601 UTC
// with microsecond precision, e.g. 1970-01-01T12:00:00.000000Z.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// Entry represents a single guest on the roster
type Entry struct {
	ID          string     `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	CheckedIn   bool       `json:"checked_in" db:"checked_in"`
	CheckedInAt *time.Time `json:"checked_in_at" db:"checked_in_at"`
}

// FormatTimestamp renders t in the canonical layout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
