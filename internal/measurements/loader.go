// Package measurements loads measured flow volumes for one calculation run.
package measurements

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/minesite-tools/water-balance/internal/balance"
	"github.com/spf13/viper"
)

// LoadFile loads measured flows from a file, dispatching on the extension.
// CSV is the interchange format for spreadsheet exports; YAML is accepted
// for hand-written inputs.
func LoadFile(path string) ([]balance.MeasuredFlow, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(path)
	case ".yaml", ".yml":
		return LoadYAML(path)
	}
	return nil, fmt.Errorf("unsupported measurement file type %s, expected .csv, .yaml, or .yml", filepath.Ext(path))
}

// LoadCSV reads a two-column code,volume CSV file. A header row whose second
// column does not parse as a number is tolerated, as are blank lines.
func LoadCSV(path string) ([]balance.MeasuredFlow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open measurement file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	flows, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read measurement file %s: %w", path, err)
	}
	return flows, nil
}

// ParseCSV decodes code,volume rows from a reader, e.g. an uploaded
// spreadsheet export.
func ParseCSV(r io.Reader) ([]balance.MeasuredFlow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2
	reader.TrimLeadingSpace = true

	var flows []balance.MeasuredFlow
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		code := strings.TrimSpace(record[0])
		rawValue := strings.TrimSpace(record[1])
		if code == "" {
			continue
		}

		value, err := strconv.ParseFloat(rawValue, 64)
		if err != nil {
			if line == 1 {
				// Header row.
				continue
			}
			return nil, fmt.Errorf("line %d: flow %s has non-numeric volume %q", line, code, rawValue)
		}

		flows = append(flows, balance.MeasuredFlow{Code: code, Value: value})
	}

	return flows, nil
}

// measurementFile mirrors the YAML layout of a measurement input file.
type measurementFile struct {
	Measurements []measurementEntry `mapstructure:"measurements"`
}

type measurementEntry struct {
	Code  string  `mapstructure:"code"`
	Value float64 `mapstructure:"value"`
}

// LoadYAML reads a measurements: list of {code, value} entries.
func LoadYAML(path string) ([]balance.MeasuredFlow, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading measurement file, %s", err)
	}

	var file measurementFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("unable to decode measurements into struct, %s", err)
	}

	flows := make([]balance.MeasuredFlow, 0, len(file.Measurements))
	for _, entry := range file.Measurements {
		if strings.TrimSpace(entry.Code) == "" {
			return nil, fmt.Errorf("measurement file %s contains an entry with no code", path)
		}
		flows = append(flows, balance.MeasuredFlow{Code: entry.Code, Value: entry.Value})
	}

	return flows, nil
}
