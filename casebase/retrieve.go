package casebase

import (
	"context"
	"fmt"
	"sync"

	"github.com/poiesic/cbr/core"
	"github.com/poiesic/cbr/similarity"
)

// cancelCheckInterval is how many cases are scored between context checks.
const cancelCheckInterval = 1024

// FieldSimilarity assigns a similarity function to one problem field.
type FieldSimilarity struct {
	Field string
	Func  similarity.Func
}

// Assign pairs a field with a similarity function.
func Assign(field string, fn similarity.Func) FieldSimilarity {
	return FieldSimilarity{Field: field, Func: fn}
}

// Assignment lists the fields taking part in a retrieval, each with its
// similarity function. Fields are scored in the order given.
type Assignment []FieldSimilarity

// Fields returns the assigned field names in order.
func (a Assignment) Fields() []string {
	names := make([]string, len(a))
	for i, fs := range a {
		names[i] = fs.Field
	}
	return names
}

// scored is the running best of a scan.
type scored struct {
	index    int
	score    float64
	perField map[string]float64
}

// fieldPlan is one assignment entry resolved against the query and the
// attached tables.
type fieldPlan struct {
	field  string
	fn     similarity.Func
	qNum   float64
	qToken string
	table  similarity.SymbolicTable
}

type plan []fieldPlan

// Retrieve returns the case most similar to query, where similarity is the
// sum of the per-field scores produced by the assignment. Cases are scanned
// in load order and ties keep the earlier case.
//
// Retrieve fails with core.ErrUnknownField when the assignment names an
// undeclared or non-problem field, core.ErrMissingField when the query or a
// case lacks an assigned field, similarity.ErrKeyNotFound when a symbolic
// lookup misses, and ErrNoCaseAvailable when the case base is empty.
func (cb *CaseBase) Retrieve(ctx context.Context, query *core.Query, assignment Assignment) (*core.RetrievedCase, error) {
	return cb.RetrieveWithMonitor(ctx, query, assignment, nil)
}

// RetrieveWithMonitor is Retrieve with monitoring.
// The monitor receives callbacks as cases are scored.
func (cb *CaseBase) RetrieveWithMonitor(ctx context.Context, query *core.Query, assignment Assignment, monitor RetrievalMonitor) (*core.RetrievedCase, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	p, err := cb.plan(query, assignment)
	if err != nil {
		return nil, err
	}
	if len(cb.cases) == 0 {
		return nil, ErrNoCaseAvailable
	}

	monitor.Start(query, assignment)

	var best scored
	if cb.pool != nil && len(cb.cases) > cb.shardSize {
		best, err = cb.scanParallel(ctx, p, monitor)
	} else {
		best, err = p.scan(ctx, cb.cases, 0, len(cb.cases), monitor, true)
	}
	if err != nil {
		cb.logger.Debug("retrieval failed", "err", err)
		return nil, err
	}

	result := core.NewRetrievedCase(cb.cases[best.index], best.score, best.perField, cb.schema.SolutionFields())
	cb.logger.Debug("retrieved case", "index", best.index, "similarity", best.score)
	monitor.Finish(result)

	return result, nil
}

// plan validates the query and assignment and snapshots the symbolic
// tables the retrieval will use.
func (cb *CaseBase) plan(query *core.Query, assignment Assignment) (plan, error) {
	if query == nil {
		return nil, ErrQueryRequired
	}
	if err := core.ValidateQuery(cb.schema, query); err != nil {
		return nil, err
	}

	tables := cb.symbolicTables()
	p := make(plan, 0, len(assignment))
	seen := make(map[string]struct{}, len(assignment))

	for _, fs := range assignment {
		_, role, ok := cb.schema.Lookup(fs.Field)
		if !ok {
			return nil, fmt.Errorf("%w: %s", core.ErrUnknownField, fs.Field)
		}
		if role != core.RoleProblem {
			return nil, fmt.Errorf("%w: %s is not a problem field", core.ErrUnknownField, fs.Field)
		}
		if _, dup := seen[fs.Field]; dup {
			return nil, fmt.Errorf("%w: field %s assigned twice", ErrInvalidAssignment, fs.Field)
		}
		seen[fs.Field] = struct{}{}
		if err := fs.Func.Validate(); err != nil {
			return nil, fmt.Errorf("%w: field %s: %w", ErrInvalidAssignment, fs.Field, err)
		}

		qv, ok := query.Problem[fs.Field]
		if !ok {
			return nil, fmt.Errorf("%w: query has no %s", core.ErrMissingField, fs.Field)
		}

		fp := fieldPlan{field: fs.Field, fn: fs.Func}
		switch fs.Func.Kind() {
		case similarity.Metric:
			n, ok := qv.Number()
			if !ok {
				return nil, fmt.Errorf("%w: %s needs a number for %s, got %s", core.ErrTypeMismatch, fs.Func.Name(), fs.Field, qv.Kind())
			}
			fp.qNum = n
		case similarity.Symbolic:
			table, ok := tables[fs.Field]
			if !ok {
				return nil, fmt.Errorf("%w: no symbolic table attached to %s", similarity.ErrKeyNotFound, fs.Field)
			}
			fp.qToken = qv.String()
			fp.table = table
		case similarity.Text:
			fp.qToken = qv.String()
		}
		p = append(p, fp)
	}

	return p, nil
}

// score computes the aggregate and per-field similarity of one case.
func (p plan) score(index int, c *core.Case) (float64, map[string]float64, error) {
	perField := make(map[string]float64, len(p))
	var total float64

	for _, fp := range p {
		cv, ok := c.Problem[fp.field]
		if !ok {
			return 0, nil, fmt.Errorf("%w: case %d has no %s", core.ErrMissingField, index, fp.field)
		}

		var s float64
		switch fp.fn.Kind() {
		case similarity.Metric:
			n, ok := cv.Number()
			if !ok {
				return 0, nil, fmt.Errorf("%w: case %d field %s is %s", core.ErrTypeMismatch, index, fp.field, cv.Kind())
			}
			s = fp.fn.CompareMetric(fp.qNum, n)
		case similarity.Symbolic:
			var err error
			s, err = fp.fn.CompareSymbolic(fp.qToken, cv.String(), fp.table)
			if err != nil {
				return 0, nil, fmt.Errorf("case %d field %s: %w", index, fp.field, err)
			}
		case similarity.Text:
			s = fp.fn.CompareText(fp.qToken, cv.String())
		}

		perField[fp.field] = s
		total += s
	}

	return total, perField, nil
}

// scan scores cases[lo:hi] and returns the first case with the highest
// aggregate. NewBest is only reported when reportBest is set.
func (p plan) scan(ctx context.Context, cases []*core.Case, lo, hi int, monitor RetrievalMonitor, reportBest bool) (scored, error) {
	best := scored{index: -1}

	for i := lo; i < hi; i++ {
		if (i-lo)%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return scored{}, err
			}
		}

		total, perField, err := p.score(i, cases[i])
		if err != nil {
			return scored{}, err
		}
		monitor.CaseScored(i, cases[i], total, perField)

		// Strictly greater: the earlier case wins ties
		if best.index < 0 || total > best.score {
			best = scored{index: i, score: total, perField: perField}
			if reportBest {
				monitor.NewBest(i, total)
			}
		}
	}

	return best, nil
}

// scanParallel shards the cases across the worker pool and reduces the
// shard winners in shard order, which preserves first-case-wins ties.
func (cb *CaseBase) scanParallel(ctx context.Context, p plan, monitor RetrievalMonitor) (scored, error) {
	type shardResult struct {
		best scored
		err  error
	}

	n := len(cb.cases)
	shards := (n + cb.shardSize - 1) / cb.shardSize
	results := make([]shardResult, shards)

	var wg sync.WaitGroup
	for s := 0; s < shards; s++ {
		lo := s * cb.shardSize
		hi := min(lo+cb.shardSize, n)

		wg.Add(1)
		err := cb.pool.Submit(func() {
			defer wg.Done()
			best, err := p.scan(ctx, cb.cases, lo, hi, monitor, false)
			results[s] = shardResult{best: best, err: err}
		})
		if err != nil {
			wg.Done()
			results[s] = shardResult{err: fmt.Errorf("submitting shard %d: %w", s, err)}
		}
	}
	wg.Wait()

	best := scored{index: -1}
	for _, r := range results {
		if r.err != nil {
			return scored{}, r.err
		}
		if best.index < 0 || r.best.score > best.score {
			best = r.best
			monitor.NewBest(best.index, best.score)
		}
	}

	cb.logger.Debug("parallel retrieval finished", "cases", n, "shards", shards)
	return best, nil
}
