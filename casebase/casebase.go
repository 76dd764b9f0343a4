package casebase

import (
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"math"
	"runtime"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/cbr/core"
	"github.com/poiesic/cbr/similarity"
)

const defaultShardSize = 4096

// CaseBase is an in-memory collection of cases plus per-field symbolic
// similarity tables.
type CaseBase struct {
	schema *core.Schema
	cases  []*core.Case

	tablesMu sync.RWMutex
	tables   map[string]similarity.SymbolicTable

	pool      *ants.Pool
	shardSize int
	logger    *slog.Logger
}

// Option configures a CaseBase.
type Option func(*CaseBase) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(cb *CaseBase) error {
		if logger == nil {
			logger = slog.Default()
		}
		cb.logger = logger
		return nil
	}
}

// WithWorkers enables parallel retrieval on a worker pool of the given size.
// A size below 1 uses runtime.NumCPU(). Case bases smaller than the shard
// size are still scanned on the calling goroutine.
func WithWorkers(size int) Option {
	return func(cb *CaseBase) error {
		if size < 1 {
			size = runtime.NumCPU()
		}

		// Release old pool
		if cb.pool != nil {
			cb.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		cb.pool = pool
		return nil
	}
}

// WithShardSize sets how many consecutive cases one worker scores during
// parallel retrieval. Default is 4096.
func WithShardSize(size int) Option {
	return func(cb *CaseBase) error {
		if size < 1 {
			size = 1
		}
		cb.shardSize = size
		return nil
	}
}

// New creates a case base over the given cases. Every case is validated
// against the schema and copied, so later changes by the caller do not
// affect the case base.
func New(schema *core.Schema, cases []*core.Case, opts ...Option) (*CaseBase, error) {
	if schema == nil {
		return nil, ErrSchemaRequired
	}
	if err := core.ValidateSchema(schema); err != nil {
		return nil, err
	}
	for i, c := range cases {
		if err := core.ValidateCase(schema, c); err != nil {
			return nil, fmt.Errorf("case %d: %w", i, err)
		}
	}

	owned := make([]*core.Case, len(cases))
	for i, c := range cases {
		owned[i] = core.NewCase(c.Problem, c.Solution)
	}

	cb := &CaseBase{
		schema:    schema,
		cases:     owned,
		tables:    make(map[string]similarity.SymbolicTable),
		shardSize: defaultShardSize,
		logger:    slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(cb); err != nil {
			cb.Release()
			return nil, err
		}
	}

	return cb, nil
}

// Release releases the worker pool, if any. The case base remains usable
// for sequential retrieval afterwards.
func (cb *CaseBase) Release() {
	if cb.pool != nil {
		cb.pool.Release()
		cb.pool = nil
	}
}

// Schema returns the field classification of the case base.
func (cb *CaseBase) Schema() *core.Schema {
	return cb.schema
}

// Len returns the number of cases.
func (cb *CaseBase) Len() int {
	return len(cb.cases)
}

// Case returns the case at index i in load order. It panics if i is out of range.
func (cb *CaseBase) Case(i int) *core.Case {
	return cb.cases[i]
}

// All iterates over the cases in load order.
func (cb *CaseBase) All() iter.Seq2[int, *core.Case] {
	return func(yield func(int, *core.Case) bool) {
		for i, c := range cb.cases {
			if !yield(i, c) {
				return
			}
		}
	}
}

// ValuesByField returns the distinct values stored under field, in order of
// first appearance. Integers in a float field are reported as floats, and all
// NaN values count as one. It fails with core.ErrUnknownField if the field is
// not declared.
func (cb *CaseBase) ValuesByField(field string) ([]core.Value, error) {
	decl, role, ok := cb.schema.Lookup(field)
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownField, field)
	}

	seen := make(map[core.Value]struct{})
	sawNaN := false
	values := make([]core.Value, 0)
	for _, c := range cb.cases {
		attrs := c.Problem
		if role == core.RoleSolution {
			attrs = c.Solution
		}
		v, ok := attrs[field]
		if !ok {
			continue
		}
		if decl.Type == core.FieldFloat && v.Kind() == core.KindInteger {
			v = core.Float(float64(v.Int64()))
		}
		if v.Kind() == core.KindFloat && math.IsNaN(v.Float64()) {
			if sawNaN {
				continue
			}
			sawNaN = true
			values = append(values, v)
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	return values, nil
}

// AddSymbolicSim attaches a similarity table to a declared field, replacing
// any table previously attached to the same field. Tables for other fields
// are kept. The table is copied.
func (cb *CaseBase) AddSymbolicSim(field string, table similarity.SymbolicTable) error {
	if err := cb.schema.CheckField(field); err != nil {
		return err
	}

	cb.tablesMu.Lock()
	defer cb.tablesMu.Unlock()

	// Copy-on-write so retrievals holding the previous map are unaffected
	next := maps.Clone(cb.tables)
	next[field] = table.Clone()
	cb.tables = next

	cb.logger.Debug("attached symbolic table", "field", field, "values", len(table))
	return nil
}

// SymbolicTable returns a copy of the table attached to field.
func (cb *CaseBase) SymbolicTable(field string) (similarity.SymbolicTable, bool) {
	t, ok := cb.symbolicTables()[field]
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// SymbolicTables returns copies of the attached tables keyed by field.
func (cb *CaseBase) SymbolicTables() map[string]similarity.SymbolicTable {
	tables := cb.symbolicTables()
	out := make(map[string]similarity.SymbolicTable, len(tables))
	for field, t := range tables {
		out[field] = t.Clone()
	}
	return out
}

func (cb *CaseBase) symbolicTables() map[string]similarity.SymbolicTable {
	cb.tablesMu.RLock()
	defer cb.tablesMu.RUnlock()
	return cb.tables
}

// String returns a short summary, e.g. "CaseBase(cases=2, fields=[Price Body | Model])".
func (cb *CaseBase) String() string {
	return fmt.Sprintf("CaseBase(cases=%d, fields=[%s | %s])",
		len(cb.cases),
		strings.Join(cb.schema.ProblemFields(), " "),
		strings.Join(cb.schema.SolutionFields(), " "))
}
