package quality

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TableSchema lists the checks applied to one source file
type TableSchema struct {
	Required    []string             `yaml:"required"`
	Enums       map[string][]string  `yaml:"enums"`
	Ranges      map[string][]float64 `yaml:"ranges"`
	NonNegative []string             `yaml:"non_negative"`
	DateCols    []string             `yaml:"date_cols"`
	DupIDCols   []string             `yaml:"dup_id_cols"`
}

// Schema maps a table name to its checks
type Schema map[string]TableSchema

// LoadSchema reads a schema file. JSON schemas parse as well since
// YAML is a superset of JSON.
func LoadSchema(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read quality schema: %w", err)
	}
	return ParseSchema(data)
}

// ParseSchema decodes and validates schema bytes
func ParseSchema(data []byte) (Schema, error) {
	var schema Schema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("failed to parse quality schema: %w", err)
	}
	if len(schema) == 0 {
		return nil, fmt.Errorf("quality schema defines no tables")
	}

	for table, cfg := range schema {
		for col, bounds := range cfg.Ranges {
			if len(bounds) != 2 {
				return nil, fmt.Errorf("range for %s.%s must have two bounds, got %d", table, col, len(bounds))
			}
			if bounds[0] > bounds[1] {
				return nil, fmt.Errorf("range for %s.%s has lower bound above upper bound", table, col)
			}
		}
	}
	return schema, nil
}
