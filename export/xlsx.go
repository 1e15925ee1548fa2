package export

import (
	"fmt"
	"path/filepath"
	"time"

	"scorecard/models"

	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// MetricsSheet is the worksheet holding the breakdown
const MetricsSheet = "metrics"

// XLSXWriter writes the metrics breakdown as scorecard_metrics_<date>.xlsx
type XLSXWriter struct{}

// NewXLSXWriter creates a spreadsheet breakdown writer
func NewXLSXWriter() *XLSXWriter {
	return &XLSXWriter{}
}

func (w *XLSXWriter) Write(dir string, runDate time.Time, rows []*models.ScorecardMetrics) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", MetricsSheet); err != nil {
		return "", fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(models.MetricsColumns))
	for i, col := range models.MetricsColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(MetricsSheet, "A1", &header); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return "", fmt.Errorf("create header style: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(models.MetricsColumns))
	if err != nil {
		return "", err
	}
	if err := f.SetCellStyle(MetricsSheet, "A1", lastCol+"1", bold); err != nil {
		return "", fmt.Errorf("style header: %w", err)
	}

	for i, m := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", err
		}
		values := []interface{}{
			models.FormatRunDate(m.RunDate),
			m.ScorecardVersion,
			m.Product,
			m.Channel,
			m.Segment,
			m.TotalApplications,
			m.ApprovalRatePct,
			m.ActivationRatePct,
			m.AvgCreditScore,
			m.DefaultRatePct,
			m.AvgSpendAmount30d,
			m.AvgPaymentAmount30d,
		}
		if err := f.SetSheetRow(MetricsSheet, cell, &values); err != nil {
			return "", fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	path := filepath.Join(dir, FileName(runDate, ".xlsx"))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}

	log.WithFields(log.Fields{
		"path": path,
		"rows": len(rows),
	}).Info("Exported metrics workbook")
	return path, nil
}
