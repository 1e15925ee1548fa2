package models

import (
	"errors"
	"fmt"
)

// ErrInvalidRunDate is returned when a run date is not a YYYY-MM-DD calendar date
var ErrInvalidRunDate = errors.New("invalid run date")

// MalformedValueError reports a staged value that cannot be cast to its clean type
type MalformedValueError struct {
	Table  string
	Column string
	Key    string
	Value  string
}

func (e *MalformedValueError) Error() string {
	return fmt.Sprintf("malformed value %q in %s.%s for key %q", e.Value, e.Table, e.Column, e.Key)
}
