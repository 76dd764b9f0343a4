package similarity

import (
	"fmt"
	"maps"
	"slices"
)

// SymbolicTable maps a (query value, case value) pair to a similarity score.
//
// Structure:
//
//	{
//	    "suv":   {"suv": 1.0, "sedan": 0.3},
//	    "sedan": {"suv": 0.3, "sedan": 1.0},
//	}
//
// A table is expected to cover every pair of values occurring for its field,
// including the identity pairs. Symmetry is not required.
type SymbolicTable map[string]map[string]float64

// Lookup returns table[q][c]. It fails with ErrKeyNotFound when either value
// is missing instead of defaulting to a score.
func (t SymbolicTable) Lookup(q, c string) (float64, error) {
	row, ok := t[q]
	if !ok {
		return 0, fmt.Errorf("%w: query value %q", ErrKeyNotFound, q)
	}
	score, ok := row[c]
	if !ok {
		return 0, fmt.Errorf("%w: case value %q for query value %q", ErrKeyNotFound, c, q)
	}
	return score, nil
}

// Values returns the sorted set of values appearing as rows or columns.
func (t SymbolicTable) Values() []string {
	seen := make(map[string]struct{}, len(t))
	for q, row := range t {
		seen[q] = struct{}{}
		for c := range row {
			seen[c] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

// Validate checks that every score lies in [0, 1].
// Missing identity entries and asymmetric scores are allowed.
func (t SymbolicTable) Validate() error {
	for q, row := range t {
		for c, score := range row {
			if score < 0 || score > 1 || score != score {
				return fmt.Errorf("%w: [%q][%q] = %v", ErrInvalidScore, q, c, score)
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the table.
func (t SymbolicTable) Clone() SymbolicTable {
	if t == nil {
		return nil
	}
	out := make(SymbolicTable, len(t))
	for q, row := range t {
		out[q] = maps.Clone(row)
	}
	return out
}
