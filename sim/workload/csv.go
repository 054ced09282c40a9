package workload

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lottery-sim/lottery-sim/sim"
)

// LoadCSV reads a process list from a CSV file. See ParseCSV for the format.
func LoadCSV(path string) (*Spec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading workload csv: %w", err)
	}
	defer f.Close()
	procs, err := ParseCSV(f)
	if err != nil {
		return nil, err
	}
	return &Spec{Version: CurrentVersion, Processes: procs}, nil
}

// ParseCSV reads one process per row: id,burst,priority[,server[,tickets]].
// A first row starting with "id" is treated as a header. Lines starting with
// '#' are comments.
func ParseCSV(r io.Reader) ([]ProcessSpec, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: reading CSV", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 && strings.EqualFold(strings.TrimSpace(rows[0][0]), "id") {
		rows = rows[1:]
	}

	procs := make([]ProcessSpec, 0, len(rows))
	for i, row := range rows {
		if len(row) < 3 || len(row) > 5 {
			return nil, fmt.Errorf("csv row %d: want 3 to 5 fields, got %d: %w", i+1, len(row), sim.ErrConfiguration)
		}
		vals := make([]int, 5)
		for j, field := range row {
			v, err := strconv.Atoi(strings.TrimSpace(field))
			if err != nil {
				return nil, fmt.Errorf("csv row %d field %d: %v: %w", i+1, j+1, err, sim.ErrConfiguration)
			}
			vals[j] = v
		}
		procs = append(procs, ProcessSpec{ID: vals[0], Burst: vals[1], Priority: vals[2], Server: vals[3], Tickets: vals[4]})
	}
	return procs, nil
}
