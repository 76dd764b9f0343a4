package ingestion

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ReadCSV reads delimited text with a header row. Each following record
// becomes a Row keyed by the header. Short records leave the trailing
// columns unset and values beyond the header are ignored.
func ReadCSV(r io.Reader, cfg *Config) ([]Row, error) {
	records, err := readRecords(r, cfg, false)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []Row{}, nil
	}
	return recordsToRows(records[0], records[1:]), nil
}

// ReadJSON reads a JSON array of objects. Numbers are kept as json.Number
// so integer and float literals stay distinguishable.
func ReadJSON(r io.Reader, cfg *Config) ([]Row, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	decoded, err := decodeText(r, cfg)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(decoded)
	dec.UseNumber()

	var objects []map[string]any
	if err := dec.Decode(&objects); err != nil {
		return nil, fmt.Errorf("%w: expected an array of objects: %w", ErrInvalidFormat, err)
	}

	rows := make([]Row, len(objects))
	for i, obj := range objects {
		rows[i] = Row(obj)
	}
	return rows, nil
}

// ReadXLSX reads a worksheet whose first row holds the column names.
// cfg.Sheet selects the worksheet; empty selects the active one.
func ReadXLSX(r io.Reader, cfg *Config) ([]Row, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	defer f.Close()

	sheet := cfg.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: no sheets found in workbook", ErrInvalidFormat)
		}
		sheet = sheets[0]
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: reading sheet %q: %w", ErrInvalidFormat, sheet, err)
	}
	if len(records) == 0 {
		return []Row{}, nil
	}
	return recordsToRows(records[0], records[1:]), nil
}

func recordsToRows(header []string, records [][]string) []Row {
	rows := make([]Row, 0, len(records))
	for _, record := range records {
		row := make(Row, len(header))
		for j, column := range header {
			if j >= len(record) {
				break
			}
			row[column] = record[j]
		}
		rows = append(rows, row)
	}
	return rows
}

// readRecords reads all records of a delimited text stream.
func readRecords(r io.Reader, cfg *Config, trimLeadingSpace bool) ([][]string, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	decoded, err := decodeText(r, cfg)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(decoded)
	reader.Comma = cfg.Delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = trimLeadingSpace

	records, err := reader.ReadAll()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
		}
		return nil, err
	}
	return records, nil
}

// decodeText converts r from the configured encoding to UTF-8, dropping a
// leading byte order mark.
func decodeText(r io.Reader, cfg *Config) (io.Reader, error) {
	enc, err := cfg.encoding()
	if err != nil {
		return nil, err
	}
	return transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder())), nil
}
