package util

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer/framework"
)

var (
	convergenceColumns = []string{"generation", "avg_cost", "avg_availability", "min_cost", "max_availability"}
	finalColumns       = []string{"selected_services", "cost", "availability", "latency", "dominance_count", "crowding"}
)

// WriteConvergenceCSV writes one row per generation.
func WriteConvergenceCSV(w io.Writer, records []framework.ConvergenceRecord) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(convergenceColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, r := range records {
		row := []string{
			strconv.Itoa(r.Generation),
			formatFloat(r.AvgCost),
			formatFloat(r.AvgAvailability),
			formatFloat(r.MinCost),
			formatFloat(r.MaxAvailability),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row for generation %d: %w", r.Generation, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteFinalGenerationCSV writes one row per individual of the final
// population. Service ids are joined with ';'.
func WriteFinalGenerationCSV(w io.Writer, rows []framework.FinalGenerationRow) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(finalColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for i, r := range rows {
		row := []string{
			strings.Join(serviceIDs(r.Services), ";"),
			formatFloat(r.Cost),
			formatFloat(r.Availability),
			formatFloat(r.Latency),
			strconv.Itoa(r.DominanceCount),
			formatFloat(r.Crowding),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadConvergenceCSV parses a file written by WriteConvergenceCSV.
func ReadConvergenceCSV(path string) ([]framework.ConvergenceRecord, error) {
	lines, err := readCSV(path, convergenceColumns)
	if err != nil {
		return nil, err
	}

	records := make([]framework.ConvergenceRecord, 0, len(lines))
	for i, line := range lines {
		var r framework.ConvergenceRecord
		if r.Generation, err = strconv.Atoi(line[0]); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, i+2, err)
		}
		values, err := parseFloats(line[1:])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, i+2, err)
		}
		r.AvgCost, r.AvgAvailability, r.MinCost, r.MaxAvailability = values[0], values[1], values[2], values[3]
		records = append(records, r)
	}
	return records, nil
}

// ReadFinalGenerationCSV parses a file written by WriteFinalGenerationCSV.
// Services carry their ids only.
func ReadFinalGenerationCSV(path string) ([]framework.FinalGenerationRow, error) {
	lines, err := readCSV(path, finalColumns)
	if err != nil {
		return nil, err
	}

	rows := make([]framework.FinalGenerationRow, 0, len(lines))
	for i, line := range lines {
		var r framework.FinalGenerationRow
		for _, id := range strings.Split(line[0], ";") {
			r.Services = append(r.Services, framework.CatalogEntry{ID: id})
		}
		if r.DominanceCount, err = strconv.Atoi(line[4]); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, i+2, err)
		}
		values, err := parseFloats([]string{line[1], line[2], line[3], line[5]})
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, i+2, err)
		}
		r.Cost, r.Availability, r.Latency, r.Crowding = values[0], values[1], values[2], values[3]
		rows = append(rows, r)
	}
	return rows, nil
}

// readCSV returns the data lines of path after checking its header.
func readCSV(path string, columns []string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = len(columns)
	lines, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%s has no header", path)
	}
	if !slices.Equal(lines[0], columns) {
		return nil, fmt.Errorf("%s: unexpected header %v", path, lines[0])
	}
	return lines[1:], nil
}

func parseFloats(fields []string) ([]float64, error) {
	values := make([]float64, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
