package models

import (
	"fmt"
	"time"
)

// RunDateLayout is the canonical run date format used for directories and reports
const RunDateLayout = "2006-01-02"

// ParseRunDate parses a YYYY-MM-DD run date as a UTC midnight
func ParseRunDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(RunDateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidRunDate, s)
	}
	return t, nil
}

// FormatRunDate formats a run date as YYYY-MM-DD
func FormatRunDate(t time.Time) string {
	return t.Format(RunDateLayout)
}

// NormalizeRunDate truncates a timestamp to its UTC calendar date
func NormalizeRunDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
