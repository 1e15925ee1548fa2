package quality

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

var reportColumns = []string{"table", "check", "severity", "passed", "n_affected", "details"}

// WriteReport writes dq_report_<day>.json and dq_report_<day>.csv into dir
func WriteReport(dir string, report *Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	base := filepath.Join(dir, "dq_report_"+report.Day)
	jsonPath := base + ".json"
	csvPath := base + ".csv"

	results := report.Results
	if results == nil {
		results = []Result{}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode quality report: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", jsonPath, err)
	}

	if err := writeReportCSV(csvPath, results); err != nil {
		return nil, err
	}
	return []string{jsonPath, csvPath}, nil
}

func writeReportCSV(path string, results []Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(reportColumns); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	for _, r := range results {
		record := []string{
			r.Table,
			r.Check,
			string(r.Severity),
			strconv.FormatBool(r.Passed),
			strconv.Itoa(r.Affected),
			r.Details,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
