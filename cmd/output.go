package cmd

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"scorecard/models"
	"scorecard/service"
)

const timeLayout = "2006-01-02 15:04:05"

func printRunResult(w io.Writer, r *service.RunResult) {
	fmt.Fprintf(w, "Batch:    %s\n", r.BatchID)
	fmt.Fprintf(w, "Run date: %s\n", models.FormatRunDate(r.RunDate))
	fmt.Fprintf(w, "Status:   %s\n", r.Status)
	if r.QualityPassed != nil {
		verdict := "PASS"
		if !*r.QualityPassed {
			verdict = "FAIL"
		}
		fmt.Fprintf(w, "Quality:  %s\n", verdict)
	}

	if len(r.Staged) > 0 {
		fmt.Fprintln(w, "\nStaged rows:")
		printCounts(w, r.Staged)
	}
	if len(r.Cleaned) > 0 {
		fmt.Fprintln(w, "\nClean rows:")
		printCounts(w, r.Cleaned)
	}
	if r.FactRows > 0 {
		fmt.Fprintf(w, "\nFact rows: %d (%d enriched)\n", r.FactRows, r.EnrichedRows)
	}
	if len(r.Comparison) > 0 {
		fmt.Fprintln(w, "\nScorecard comparison:")
		printMetricsTable(w, r.Comparison, false)
	}
	printPaths(w, r.MetricsFiles)
}

func printCounts(w io.Writer, counts map[string]int64) {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(tw, "  %s\t%d\n", name, counts[name])
	}
	tw.Flush()
}

func printPaths(w io.Writer, paths []string) {
	if len(paths) == 0 {
		return
	}
	fmt.Fprintln(w, "\nWrote:")
	for _, p := range paths {
		fmt.Fprintf(w, "  %s\n", p)
	}
}

func printBatchStatus(w io.Writer, run *models.BatchRun, stats []*models.LoadStat, steps []*models.StepExecution) {
	fmt.Fprintf(w, "Batch:    %s\n", run.BatchID)
	fmt.Fprintf(w, "Run date: %s\n", models.FormatRunDate(run.RunDate))
	fmt.Fprintf(w, "Status:   %s\n", run.Status)
	fmt.Fprintf(w, "Started:  %s\n", run.StartedAt.UTC().Format(timeLayout))
	if run.EndedAt != nil {
		fmt.Fprintf(w, "Ended:    %s\n", run.EndedAt.UTC().Format(timeLayout))
	}
	if run.Message != nil && *run.Message != "" {
		fmt.Fprintf(w, "Message:  %s\n", *run.Message)
	}

	if len(stats) > 0 {
		fmt.Fprintln(w, "\nLoad stats:")
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, s := range stats {
			fmt.Fprintf(tw, "  %s\t%d\t%s\n", s.TableName, s.InsertedRows, s.CreatedAt.UTC().Format(timeLayout))
		}
		tw.Flush()
	}

	if len(steps) > 0 {
		fmt.Fprintln(w, "\nSteps:")
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "  STEP\tSTATUS\tSTARTED\tDURATION\tMESSAGE")
		for _, s := range steps {
			duration := "-"
			if s.EndTime != nil {
				duration = s.Duration().Round(time.Millisecond).String()
			}
			message := ""
			if s.ErrorMessage != nil {
				message = *s.ErrorMessage
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n", s.StepName, s.Status, s.StartTime.UTC().Format(timeLayout), duration, message)
		}
		tw.Flush()
	}
}

func printMetrics(w io.Writer, comparison, breakdown []*models.ScorecardMetrics) {
	if len(comparison) == 0 {
		fmt.Fprintln(w, "No fact rows for this run date")
		return
	}
	fmt.Fprintln(w, "Scorecard comparison:")
	printMetricsTable(w, comparison, false)
	fmt.Fprintln(w, "\nBreakdown:")
	printMetricsTable(w, breakdown, true)
}

func printMetricsTable(w io.Writer, rows []*models.ScorecardMetrics, withDimensions bool) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if withDimensions {
		fmt.Fprintln(tw, "  SCORECARD\tPRODUCT\tCHANNEL\tSEGMENT\tAPPS\tAPPROVAL %\tACTIVATION %\tSCORE\tDEFAULT %\tSPEND 30D\tPAYMENT 30D")
	} else {
		fmt.Fprintln(tw, "  SCORECARD\tAPPS\tAPPROVAL %\tACTIVATION %\tSCORE\tDEFAULT %\tSPEND 30D\tPAYMENT 30D")
	}
	for _, m := range rows {
		if withDimensions {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t", m.ScorecardVersion, m.Product, m.Channel, m.Segment)
		} else {
			fmt.Fprintf(tw, "  %s\t", m.ScorecardVersion)
		}
		fmt.Fprintf(tw, "%d\t%.2f\t%.2f\t%.1f\t%.2f\t%.2f\t%.2f\n",
			m.TotalApplications,
			m.ApprovalRatePct,
			m.ActivationRatePct,
			m.AvgCreditScore,
			m.DefaultRatePct,
			m.AvgSpendAmount30d,
			m.AvgPaymentAmount30d,
		)
	}
	tw.Flush()
}
