package ingestion

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/cbr/core"
)

// Reader parses a case source into rows.
type Reader func(r io.Reader, cfg *Config) ([]Row, error)

var readers = map[string]Reader{
	".csv":  ReadCSV,
	".json": ReadJSON,
	".xlsx": ReadXLSX,
}

// Load reads the case file at path and splits its rows into cases. The
// format is chosen by extension: .csv, .json or .xlsx. Any other extension
// fails with ErrInvalidFormat.
func Load(path string, schema *core.Schema, cfg *Config) ([]*core.Case, error) {
	ext := strings.ToLower(filepath.Ext(path))
	read, ok := readers[ext]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported extension %q", ErrInvalidFormat, ext)
	}
	return load(path, ext, read, schema, cfg)
}

// LoadCSV reads a delimited text file. The path must end in .csv.
func LoadCSV(path string, schema *core.Schema, cfg *Config) ([]*core.Case, error) {
	return load(path, ".csv", ReadCSV, schema, cfg)
}

// LoadJSON reads a JSON array of objects. The path must end in .json.
func LoadJSON(path string, schema *core.Schema, cfg *Config) ([]*core.Case, error) {
	return load(path, ".json", ReadJSON, schema, cfg)
}

// LoadXLSX reads a spreadsheet. The path must end in .xlsx.
func LoadXLSX(path string, schema *core.Schema, cfg *Config) ([]*core.Case, error) {
	return load(path, ".xlsx", ReadXLSX, schema, cfg)
}

func load(path, ext string, read Reader, schema *core.Schema, cfg *Config) ([]*core.Case, error) {
	if schema == nil {
		return nil, ErrSchemaRequired
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !strings.EqualFold(filepath.Ext(path), ext) {
		return nil, fmt.Errorf("%w: %s is not a %s file", ErrInvalidFormat, path, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	rows, err := read(f, cfg)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cases, err := BuildCases(rows, schema, cfg)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return cases, nil
}
