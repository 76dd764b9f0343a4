package config

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"unicode/utf8"

	"github.com/poiesic/cbr/casebase"
	"github.com/poiesic/cbr/core"
	"github.com/poiesic/cbr/ingestion"
	"github.com/poiesic/cbr/similarity"
	"gopkg.in/yaml.v3"
)

// FieldSpec declares one field and its type name (integer, float, symbol or
// auto). An empty type means auto.
type FieldSpec struct {
	Name string `yaml:"name"`
	Type string `yaml:"type,omitempty"`
}

// SimilaritySpec assigns a registered similarity function to a field.
type SimilaritySpec struct {
	Field    string `yaml:"field"`
	Function string `yaml:"function"`
}

// Project describes how to build a case base.
type Project struct {
	Name           string            `yaml:"name"`
	Source         string            `yaml:"source"`
	Encoding       string            `yaml:"encoding,omitempty"`
	Delimiter      string            `yaml:"delimiter,omitempty"`
	CoerceIntegers bool              `yaml:"coerce_integers,omitempty"`
	Sheet          string            `yaml:"sheet,omitempty"`
	Problem        []FieldSpec       `yaml:"problem"`
	Solution       []FieldSpec       `yaml:"solution"`
	Symbolic       map[string]string `yaml:"symbolic,omitempty"`
	Similarity     []SimilaritySpec  `yaml:"similarity,omitempty"`

	// dir is the directory relative paths are resolved against.
	dir string
}

// Load reads and validates the project file at path.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project %s: %w", path, err)
	}

	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", path, err)
	}
	p.dir = filepath.Dir(path)
	return p, nil
}

// Parse decodes and validates a project. Relative paths in a parsed project
// are resolved against the working directory.
func Parse(data []byte) (*Project, error) {
	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProject, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the project without touching the filesystem.
func (p *Project) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidProject)
	}
	if p.Source == "" {
		return ErrNoSource
	}

	schema, err := p.Schema()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProject, err)
	}
	if err := p.IngestionConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProject, err)
	}
	for field := range p.Symbolic {
		if err := schema.CheckField(field); err != nil {
			return fmt.Errorf("%w: symbolic table: %w", ErrInvalidProject, err)
		}
	}
	if _, err := p.Assignment(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProject, err)
	}
	return nil
}

// Schema builds the field classification.
func (p *Project) Schema() (*core.Schema, error) {
	problem, err := fieldsOf(p.Problem)
	if err != nil {
		return nil, err
	}
	solution, err := fieldsOf(p.Solution)
	if err != nil {
		return nil, err
	}
	return core.NewSchema(problem, solution)
}

func fieldsOf(specs []FieldSpec) ([]core.Field, error) {
	fields := make([]core.Field, len(specs))
	for i, fs := range specs {
		t, err := core.ParseFieldType(fs.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", fs.Name, err)
		}
		fields[i] = core.Field{Name: fs.Name, Type: t}
	}
	return fields, nil
}

// IngestionConfig returns the reader settings. Unset values take the
// ingestion defaults. A delimiter that is not exactly one character is
// reported by Validate.
func (p *Project) IngestionConfig() *ingestion.Config {
	opts := []ingestion.ConfigOption{
		ingestion.WithCoerceIntegers(p.CoerceIntegers),
		ingestion.WithSheet(p.Sheet),
	}
	if p.Encoding != "" {
		opts = append(opts, ingestion.WithEncoding(p.Encoding))
	}
	if p.Delimiter != "" {
		delim := utf8.RuneError
		if utf8.RuneCountInString(p.Delimiter) == 1 {
			delim, _ = utf8.DecodeRuneInString(p.Delimiter)
		}
		opts = append(opts, ingestion.WithDelimiter(delim))
	}
	return ingestion.NewConfig(opts...)
}

// Assignment resolves the similarity section against the function registry.
func (p *Project) Assignment() (casebase.Assignment, error) {
	assignment := make(casebase.Assignment, 0, len(p.Similarity))
	for _, s := range p.Similarity {
		fn, err := similarity.Lookup(s.Function)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", s.Field, err)
		}
		assignment = append(assignment, casebase.Assign(s.Field, fn))
	}
	return assignment, nil
}

// SourcePath returns the case file path.
func (p *Project) SourcePath() string {
	return p.resolve(p.Source)
}

// Tables loads every symbolic table named by the project, keyed by field.
func (p *Project) Tables() (map[string]similarity.SymbolicTable, error) {
	cfg := p.IngestionConfig()
	tables := make(map[string]similarity.SymbolicTable, len(p.Symbolic))

	// Sorted so failures are reported deterministically
	for _, field := range slices.Sorted(maps.Keys(p.Symbolic)) {
		table, err := ingestion.LoadSymbolicTable(p.resolve(p.Symbolic[field]), cfg)
		if err != nil {
			return nil, fmt.Errorf("symbolic table for %s: %w", field, err)
		}
		tables[field] = table
	}
	return tables, nil
}

// Build loads the cases and symbolic tables and returns the assembled case base.
func (p *Project) Build(opts ...casebase.Option) (*casebase.CaseBase, error) {
	schema, err := p.Schema()
	if err != nil {
		return nil, err
	}

	cases, err := ingestion.Load(p.SourcePath(), schema, p.IngestionConfig())
	if err != nil {
		return nil, err
	}

	tables, err := p.Tables()
	if err != nil {
		return nil, err
	}

	cb, err := casebase.New(schema, cases, opts...)
	if err != nil {
		return nil, err
	}
	for field, table := range tables {
		if err := cb.AddSymbolicSim(field, table); err != nil {
			cb.Release()
			return nil, err
		}
	}
	return cb, nil
}

func (p *Project) resolve(path string) string {
	if filepath.IsAbs(path) || p.dir == "" {
		return path
	}
	return filepath.Join(p.dir, path)
}
