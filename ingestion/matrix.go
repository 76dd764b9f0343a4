package ingestion

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/poiesic/cbr/similarity"
)

// ReadSymbolicTable reads a similarity matrix from delimited text. The
// header row lists the case-side values after one leading label cell, and
// each following row starts with a query-side value followed by one score
// per header value. Whitespace around cells is ignored.
//
//	,suv,sedan
//	suv,1.0,0.3
//	sedan,0.3,1.0
func ReadSymbolicTable(r io.Reader, cfg *Config) (similarity.SymbolicTable, error) {
	records, err := readRecords(r, cfg, true)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty similarity matrix", ErrInvalidFormat)
	}

	header := records[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("%w: matrix header needs at least one value column", ErrInvalidFormat)
	}
	columns := make([]string, len(header)-1)
	for i, h := range header[1:] {
		columns[i] = strings.TrimSpace(h)
	}

	table := make(similarity.SymbolicTable, len(records)-1)
	for i, record := range records[1:] {
		line := i + 2
		if len(record) != len(header) {
			return nil, fmt.Errorf("%w: matrix line %d has %d cells, want %d", ErrInvalidFormat, line, len(record), len(header))
		}

		q := strings.TrimSpace(record[0])
		row := make(map[string]float64, len(columns))
		for j, cell := range record[1:] {
			score, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: matrix line %d column %s: %w", ErrInvalidFormat, line, columns[j], err)
			}
			row[columns[j]] = score
		}
		table[q] = row
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// LoadSymbolicTable reads a similarity matrix file.
func LoadSymbolicTable(path string, cfg *Config) (similarity.SymbolicTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	table, err := ReadSymbolicTable(f, cfg)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return table, nil
}
