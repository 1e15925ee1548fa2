package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"scorecard/models"

	log "github.com/sirupsen/logrus"
)

// PipelineConfig holds the filesystem locations a pipeline reads and writes
type PipelineConfig struct {
	DataDir       string
	OutputDir     string
	StrictQuality bool
}

type pipeline struct {
	ledger    Ledger
	quality   QualityGate
	loader    StagingLoader
	cleaner   CleanBuilder
	reference ReferenceLoader
	facts     FactBuilder
	metrics   MetricsEngine
	config    PipelineConfig
}

// NewPipeline creates the batch orchestrator. A nil quality gate skips the quality step.
func NewPipeline(
	ledger Ledger,
	quality QualityGate,
	loader StagingLoader,
	cleaner CleanBuilder,
	reference ReferenceLoader,
	facts FactBuilder,
	metrics MetricsEngine,
	config PipelineConfig,
) Pipeline {
	return &pipeline{
		ledger:    ledger,
		quality:   quality,
		loader:    loader,
		cleaner:   cleaner,
		reference: reference,
		facts:     facts,
		metrics:   metrics,
		config:    config,
	}
}

func (p *pipeline) Run(ctx context.Context, batchID string, runDate time.Time) (*RunResult, error) {
	day := models.NormalizeRunDate(runDate)

	if err := p.ledger.StartRun(ctx, batchID, day); err != nil {
		return nil, fmt.Errorf("failed to start run: %w", err)
	}

	result := newRunResult(batchID, day)
	err := p.runSteps(ctx, models.PipelineSteps, result)
	return p.finish(ctx, result, err)
}

func (p *pipeline) Resume(ctx context.Context, batchID string) (*RunResult, error) {
	run, err := p.ledger.GetRun(ctx, batchID)
	if err != nil {
		return nil, err
	}

	failed, err := p.ledger.FailedStep(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to find failed step: %w", err)
	}
	if failed == "" {
		return nil, fmt.Errorf("%w: batch %s is %s", ErrNothingToResume, batchID, run.Status)
	}

	log.WithFields(log.Fields{
		"batchID":  batchID,
		"runDate":  models.FormatRunDate(run.RunDate),
		"fromStep": failed,
	}).Info("Resuming batch")

	if _, err := p.ledger.CleanupPartialExecution(ctx, batchID, failed); err != nil {
		return nil, err
	}
	if err := p.ledger.StartRun(ctx, batchID, run.RunDate); err != nil {
		return nil, fmt.Errorf("failed to restart run: %w", err)
	}

	result := newRunResult(batchID, run.RunDate)
	err = p.runSteps(ctx, models.StepsFrom(failed), result)
	return p.finish(ctx, result, err)
}

func newRunResult(batchID string, runDate time.Time) *RunResult {
	return &RunResult{
		BatchID: batchID,
		RunDate: runDate,
		Status:  models.RunStatusStarted,
		Staged:  make(map[string]int64),
		Cleaned: make(map[string]int64),
	}
}

// finish records the terminal run status. Ledger writes use a detached
// context so a cancelled run is still closed out.
func (p *pipeline) finish(ctx context.Context, result *RunResult, runErr error) (*RunResult, error) {
	ledgerCtx := context.WithoutCancel(ctx)

	if runErr != nil {
		result.Status = models.RunStatusFailed
		if err := p.ledger.EndRun(ledgerCtx, result.BatchID, models.RunStatusFailed, runErr.Error()); err != nil {
			return result, errors.Join(runErr, fmt.Errorf("failed to end run: %w", err))
		}
		return result, runErr
	}

	message := fmt.Sprintf("%d applications, %d metrics files", result.FactRows, len(result.MetricsFiles))
	if err := p.ledger.EndRun(ledgerCtx, result.BatchID, models.RunStatusSuccess, message); err != nil {
		return result, fmt.Errorf("failed to end run: %w", err)
	}
	result.Status = models.RunStatusSuccess
	return result, nil
}

func (p *pipeline) runSteps(ctx context.Context, steps []models.Step, result *RunResult) error {
	for _, step := range steps {
		if err := p.runStep(ctx, step, result); err != nil {
			return err
		}
	}
	return nil
}

func (p *pipeline) runStep(ctx context.Context, step models.Step, result *RunResult) error {
	batchID := result.BatchID

	if err := p.ledger.StartStep(ctx, batchID, step); err != nil {
		return fmt.Errorf("failed to start step %s: %w", step, err)
	}

	if step == models.StepQuality && p.quality == nil {
		return p.ledger.SkipStep(ctx, batchID, step, "no quality schema configured")
	}

	if err := p.execute(ctx, step, result); err != nil {
		if ferr := p.ledger.FailStep(context.WithoutCancel(ctx), batchID, step, err.Error()); ferr != nil {
			log.WithFields(log.Fields{
				"batchID": batchID,
				"step":    step,
				"error":   ferr,
			}).Error("Failed to record step failure")
		}
		return fmt.Errorf("step %s failed: %w", step, err)
	}

	return p.ledger.CompleteStep(ctx, batchID, step)
}

func (p *pipeline) execute(ctx context.Context, step models.Step, result *RunResult) error {
	day := result.RunDate

	switch step {
	case models.StepQuality:
		passed, err := p.quality.Check(ctx, p.dayDir(day))
		if err != nil {
			return err
		}
		result.QualityPassed = &passed
		if !passed {
			if p.config.StrictQuality {
				return ErrQualityFailed
			}
			log.WithField("runDate", models.FormatRunDate(day)).Warn("Data quality checks failed, continuing")
		}
		return nil

	case models.StepStage:
		staged, err := p.loader.LoadDay(ctx, p.dayDir(day), result.BatchID)
		if err != nil {
			return err
		}
		result.Staged = staged.Loaded
		return nil

	case models.StepClean:
		summary, err := p.cleaner.Build(ctx, day)
		if err != nil {
			return err
		}
		result.Cleaned = summary.Rows
		return nil

	case models.StepReference:
		return p.reference.Load(ctx)

	case models.StepFact:
		rows, err := p.facts.Build(ctx, day, result.BatchID)
		if err != nil {
			return err
		}
		result.FactRows = rows

		enriched, err := p.facts.Enriched(ctx, day)
		if err != nil {
			return err
		}
		result.EnrichedRows = len(enriched)

		matched := 0
		for _, e := range enriched {
			if e.Matched() {
				matched++
			}
		}
		log.WithFields(log.Fields{
			"rows":     len(enriched),
			"enriched": matched,
		}).Info("Enrichment coverage")
		return nil

	case models.StepMetrics:
		files, err := p.metrics.ExportBreakdown(ctx, day, p.config.OutputDir)
		if err != nil {
			return err
		}
		result.MetricsFiles = files

		comparison, err := p.metrics.Compare(ctx, day)
		if err != nil {
			return err
		}
		result.Comparison = comparison
		for _, m := range comparison {
			log.WithFields(log.Fields{
				"scorecard":      m.ScorecardVersion,
				"applications":   m.TotalApplications,
				"approvalRate":   m.ApprovalRatePct,
				"activationRate": m.ActivationRatePct,
				"defaultRate":    m.DefaultRatePct,
			}).Info("Scorecard summary")
		}
		return nil
	}

	return fmt.Errorf("%w: %q", ErrUnknownStep, step)
}

func (p *pipeline) dayDir(day time.Time) string {
	return filepath.Join(p.config.DataDir, models.FormatRunDate(day))
}
