package service

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"scorecard/models"
)

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// ReadStagingFile parses one source file into a staging batch.
// Cell values are kept verbatim; only header names are normalised.
func ReadStagingFile(entity models.Entity, path string) (*models.StagingBatch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	batch, err := parseStagingCSV(entity, f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	batch.SourceFile = filepath.Base(path)
	return batch, nil
}

func parseStagingCSV(entity models.Entity, r io.Reader) (*models.StagingBatch, error) {
	reader := bufio.NewReader(r)
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1

	header, err := csvReader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("file has no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := sanitizeHeaders(header)
	batch := &models.StagingBatch{Entity: entity, Columns: columns}

	for line := 2; ; line++ {
		record, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		if len(record) > len(columns) {
			return nil, fmt.Errorf("record %d has %d fields, header has %d", line, len(record), len(columns))
		}

		row := make(models.StagingRow, len(columns))
		for i, col := range columns {
			value := ""
			if i < len(record) {
				value = record[i]
			}
			row[i] = models.Field{Column: col, Value: value}
		}
		batch.Rows = append(batch.Rows, row)
	}

	return batch, nil
}

func sanitizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]int)

	for idx, value := range raw {
		name := strings.ToLower(strings.TrimSpace(value))
		name = strings.ReplaceAll(name, " ", "_")
		if name == "" {
			name = fmt.Sprintf("column_%d", idx+1)
		}

		base := name
		count := seen[base]
		if count > 0 {
			name = fmt.Sprintf("%s_%d", base, count+1)
		}
		seen[base] = count + 1

		headers[idx] = name
	}

	return headers
}
