package service

import (
	"errors"

	"scorecard/models"
)

var (
	// ErrRunNotFound is returned when a batch id has no run row
	ErrRunNotFound = errors.New("run not found")

	// ErrRunAlreadyEnded is returned when ending a run that is not started
	ErrRunAlreadyEnded = errors.New("run already ended")

	// ErrNoActiveStep is returned when a step has no open attempt to terminate
	ErrNoActiveStep = errors.New("no active step attempt")

	// ErrDayDirNotFound is returned when the run date directory does not exist
	ErrDayDirNotFound = errors.New("run date directory not found")

	// ErrInvalidRunDate is returned when a run date is not YYYY-MM-DD
	ErrInvalidRunDate = models.ErrInvalidRunDate

	// ErrNothingToResume is returned when a batch has no failed step
	ErrNothingToResume = errors.New("batch has no failed step to resume")

	// ErrUnknownStep is returned for a step name outside the pipeline
	ErrUnknownStep = errors.New("unknown pipeline step")

	// ErrQualityFailed is returned when strict quality is enabled and checks fail
	ErrQualityFailed = errors.New("data quality checks failed")
)
