package quality

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"scorecard/models"
	"scorecard/service"

	log "github.com/sirupsen/logrus"
)

// Severity of a failed check. Only INFO results never fail a report.
type Severity string

const (
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// Result is the outcome of one check against one table
type Result struct {
	Table    string   `json:"table"`
	Check    string   `json:"check"`
	Severity Severity `json:"severity"`
	Passed   bool     `json:"passed"`
	Affected int      `json:"n_affected"`
	Details  string   `json:"details"`
}

// Report collects every result for a run date directory
type Report struct {
	Day     string
	Results []Result
}

// Passed reports whether every non-INFO check passed
func (r *Report) Passed() bool {
	for _, res := range r.Results {
		if !res.Passed && res.Severity != SeverityInfo {
			return false
		}
	}
	return true
}

// Failures returns the results that fail the report
func (r *Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.Passed && res.Severity != SeverityInfo {
			out = append(out, res)
		}
	}
	return out
}

func (r *Report) record(res Result) {
	r.Results = append(r.Results, res)

	entry := log.WithFields(log.Fields{
		"table":    res.Table,
		"check":    res.Check,
		"passed":   res.Passed,
		"affected": res.Affected,
	})
	if res.Details != "" {
		entry = entry.WithField("details", res.Details)
	}
	switch {
	case res.Passed || res.Severity == SeverityInfo:
		entry.Debug("Quality check")
	case res.Severity == SeverityWarning:
		entry.Warn("Quality check failed")
	default:
		entry.Error("Quality check failed")
	}
}

// Checker evaluates a run date directory against a schema
type Checker struct {
	schema      Schema
	reportDir   string
	checkDupIDs bool
}

// NewChecker creates a checker. Reports are written to reportDir when it is set.
func NewChecker(schema Schema, reportDir string, checkDupIDs bool) *Checker {
	return &Checker{
		schema:      schema,
		reportDir:   reportDir,
		checkDupIDs: checkDupIDs,
	}
}

// Check evaluates dayDir, writes the report and returns the verdict
func (c *Checker) Check(ctx context.Context, dayDir string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	start := time.Now()
	report := c.Evaluate(dayDir)

	if c.reportDir != "" {
		paths, err := WriteReport(c.reportDir, report)
		if err != nil {
			return false, err
		}
		log.WithField("paths", paths).Info("Wrote quality report")
	}

	passed := report.Passed()
	log.WithFields(log.Fields{
		"day":      report.Day,
		"checks":   len(report.Results),
		"failures": len(report.Failures()),
		"passed":   passed,
		"duration": time.Since(start),
	}).Info("Quality checks finished")
	return passed, nil
}

// Evaluate runs every table's checks in load order
func (c *Checker) Evaluate(dayDir string) *Report {
	report := &Report{Day: filepath.Base(dayDir)}
	for _, entity := range models.Entities {
		c.evaluateTable(report, entity, dayDir)
	}
	return report
}

func (c *Checker) evaluateTable(report *Report, entity models.Entity, dayDir string) {
	name := entity.Name
	cfg, ok := c.schema[name]
	if !ok {
		report.record(Result{Table: name, Check: "table_in_schema", Severity: SeverityError, Affected: 1,
			Details: fmt.Sprintf("table %q missing from schema", name)})
		return
	}

	path := filepath.Join(dayDir, entity.FileName())
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		report.record(Result{Table: name, Check: "file_exists", Severity: SeverityError, Affected: 1,
			Details: fmt.Sprintf("missing file: %s", path)})
		return
	}

	batch, err := service.ReadStagingFile(entity, path)
	if err != nil {
		report.record(Result{Table: name, Check: "file_readable", Severity: SeverityError, Affected: 1,
			Details: err.Error()})
		return
	}
	t := newTable(batch)

	checkRequiredColumns(report, t, cfg.Required)
	for _, col := range sortedKeys(cfg.Enums) {
		checkEnum(report, t, col, cfg.Enums[col])
	}
	for _, col := range sortedKeys(cfg.Ranges) {
		checkRange(report, t, col, cfg.Ranges[col][0], cfg.Ranges[col][1])
	}
	for _, col := range cfg.NonNegative {
		checkNonNegative(report, t, col)
	}
	for _, col := range cfg.DateCols {
		checkDate(report, t, col)
	}
	if c.checkDupIDs {
		for _, col := range cfg.DupIDCols {
			checkDuplicateIDs(report, t, col)
		}
	}
}

// table is a column-addressable view of a parsed file
type table struct {
	name    string
	columns []string
	index   map[string]int
	rows    []models.StagingRow
}

func newTable(batch *models.StagingBatch) *table {
	t := &table{
		name:    batch.Entity.Name,
		columns: batch.Columns,
		index:   make(map[string]int, len(batch.Columns)),
		rows:    batch.Rows,
	}
	for i, col := range batch.Columns {
		t.index[col] = i
	}
	return t
}

// values returns the column's cells, or false if the column is absent
func (t *table) values(col string) ([]string, bool) {
	i, ok := t.index[col]
	if !ok {
		return nil, false
	}
	out := make([]string, len(t.rows))
	for r, row := range t.rows {
		out[r] = row[i].Value
	}
	return out, true
}

func checkRequiredColumns(report *Report, t *table, required []string) {
	want := make(map[string]bool, len(required))
	var missing []string
	for _, col := range required {
		want[col] = true
		if _, ok := t.index[col]; !ok {
			missing = append(missing, col)
		}
	}
	report.record(Result{Table: t.name, Check: "required_columns_missing", Severity: SeverityError,
		Passed: len(missing) == 0, Affected: len(missing), Details: formatList(missing)})

	var extra []string
	for _, col := range t.columns {
		if !want[col] {
			extra = append(extra, col)
		}
	}
	if len(extra) > 0 {
		report.record(Result{Table: t.name, Check: "extra_columns_present", Severity: SeverityInfo,
			Passed: true, Affected: len(extra), Details: formatList(extra)})
	}
}

func checkEnum(report *Report, t *table, col string, allowed []string) {
	values, ok := t.values(col)
	if !ok {
		return
	}
	set := make(map[string]bool, len(allowed))
	for _, v := range allowed {
		set[v] = true
	}

	bad := 0
	for _, v := range values {
		if !set[v] {
			bad++
		}
	}
	sorted := append([]string(nil), allowed...)
	sort.Strings(sorted)
	report.record(Result{Table: t.name, Check: fmt.Sprintf("invalid_enum(%s)", col), Severity: SeverityError,
		Passed: bad == 0, Affected: bad, Details: "allowed=" + formatList(sorted)})
}

// checkRange counts blank and non-numeric cells as out of range
func checkRange(report *Report, t *table, col string, lo, hi float64) {
	values, ok := t.values(col)
	if !ok {
		return
	}

	bad := 0
	for _, v := range values {
		f, err := parseNumber(v)
		if err != nil || f < lo || f > hi {
			bad++
		}
	}
	report.record(Result{Table: t.name, Check: fmt.Sprintf("out_of_range(%s)", col), Severity: SeverityError,
		Passed: bad == 0, Affected: bad, Details: fmt.Sprintf("expected %s-%s", formatBound(lo), formatBound(hi))})
}

// checkNonNegative only counts parseable negatives; blanks are another check's concern
func checkNonNegative(report *Report, t *table, col string) {
	values, ok := t.values(col)
	if !ok {
		return
	}

	bad := 0
	for _, v := range values {
		if f, err := parseNumber(v); err == nil && f < 0 {
			bad++
		}
	}
	report.record(Result{Table: t.name, Check: fmt.Sprintf("negative_values(%s)", col), Severity: SeverityError,
		Passed: bad == 0, Affected: bad})
}

func checkDate(report *Report, t *table, col string) {
	values, ok := t.values(col)
	if !ok {
		return
	}

	bad := 0
	for _, v := range values {
		if _, err := time.Parse(models.RunDateLayout, strings.TrimSpace(v)); err != nil {
			bad++
		}
	}
	report.record(Result{Table: t.name, Check: fmt.Sprintf("invalid_date(%s)", col), Severity: SeverityError,
		Passed: bad == 0, Affected: bad})
}

// checkDuplicateIDs counts every row whose id occurs more than once
func checkDuplicateIDs(report *Report, t *table, col string) {
	values, ok := t.values(col)
	if !ok {
		return
	}

	counts := make(map[string]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	dups := 0
	for _, n := range counts {
		if n > 1 {
			dups += n
		}
	}
	report.record(Result{Table: t.name, Check: fmt.Sprintf("duplicate_id(%s)", col), Severity: SeverityError,
		Passed: dups == 0, Affected: dups})
}

func parseNumber(v string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(v), 64)
}

func formatBound(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatList(items []string) string {
	return "[" + strings.Join(items, ", ") + "]"
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
