package models

import (
	"time"
)

// StepStatus represents the state of a single step attempt
type StepStatus string

const (
	StepStatusStarted   StepStatus = "started"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// Step names a pipeline step
type Step string

const (
	StepQuality   Step = "quality"
	StepStage     Step = "stage"
	StepClean     Step = "clean"
	StepReference Step = "reference"
	StepFact      Step = "fact"
	StepMetrics   Step = "metrics"
)

// PipelineSteps lists the steps in execution order
var PipelineSteps = []Step{
	StepQuality,
	StepStage,
	StepClean,
	StepReference,
	StepFact,
	StepMetrics,
}

// StepIndex returns the position of a step in PipelineSteps, or -1
func StepIndex(step Step) int {
	for i, s := range PipelineSteps {
		if s == step {
			return i
		}
	}
	return -1
}

// StepsFrom returns the step and every step after it
func StepsFrom(step Step) []Step {
	idx := StepIndex(step)
	if idx < 0 {
		return nil
	}
	out := make([]Step, len(PipelineSteps)-idx)
	copy(out, PipelineSteps[idx:])
	return out
}

// StepExecution is one attempt of a step within a batch
type StepExecution struct {
	ID           int64      `db:"id"`
	BatchID      string     `db:"batch_id"`
	StepName     Step       `db:"step_name"`
	Status       StepStatus `db:"status"`
	StartTime    time.Time  `db:"start_time"`
	EndTime      *time.Time `db:"end_time"`
	ErrorMessage *string    `db:"error_message"`
	CreatedAt    time.Time  `db:"created_at"`
}

// Duration returns how long the attempt ran, or zero while it is open
func (s *StepExecution) Duration() time.Duration {
	if s.EndTime == nil {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}
