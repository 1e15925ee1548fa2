package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"scorecard/models"

	log "github.com/sirupsen/logrus"
)

// CSVWriter writes the metrics breakdown as scorecard_metrics_<date>.csv
type CSVWriter struct{}

// NewCSVWriter creates a CSV breakdown writer
func NewCSVWriter() *CSVWriter {
	return &CSVWriter{}
}

// Write streams into a temp file and renames it into place, so readers
// never observe a partial file.
func (w *CSVWriter) Write(dir string, runDate time.Time, rows []*models.ScorecardMetrics) (string, error) {
	tempFile, err := os.CreateTemp(dir, "scorecard_metrics-*.csv.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp export file: %w", err)
	}
	tempPath := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = tempFile.Close()
			_ = os.Remove(tempPath)
		}
	}()

	buffered := bufio.NewWriter(tempFile)
	csvWriter := csv.NewWriter(buffered)
	if err := csvWriter.Write(models.MetricsColumns); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	for _, m := range rows {
		if err := csvWriter.Write(Record(m)); err != nil {
			return "", fmt.Errorf("write row: %w", err)
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return "", fmt.Errorf("final flush: %w", err)
	}
	if err := buffered.Flush(); err != nil {
		return "", fmt.Errorf("final buffered flush: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return "", fmt.Errorf("sync export file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return "", fmt.Errorf("close export file: %w", err)
	}

	finalPath := filepath.Join(dir, FileName(runDate, ".csv"))
	if err := os.Rename(tempPath, finalPath); err != nil {
		return "", fmt.Errorf("promote export file: %w", err)
	}
	cleanup = false

	log.WithFields(log.Fields{
		"path": finalPath,
		"rows": len(rows),
	}).Info("Exported metrics breakdown")
	return finalPath, nil
}
