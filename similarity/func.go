package similarity

import (
	"fmt"
	"math"
)

// Kind classifies a similarity function by the arguments it takes.
type Kind int

const (
	// Metric functions compare two numeric values.
	Metric Kind = iota + 1
	// Symbolic functions look the value pair up in the field's SymbolicTable.
	Symbolic
	// Text functions compare two symbolic values without a table.
	Text
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case Metric:
		return "metric"
	case Symbolic:
		return "symbolic"
	case Text:
		return "text"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MetricFunc scores two numbers.
type MetricFunc func(q, c float64) float64

// SymbolicFunc scores two symbols using a lookup table.
type SymbolicFunc func(q, c string, table SymbolicTable) (float64, error)

// TextFunc scores two symbols directly.
type TextFunc func(q, c string) float64

// Func is a named similarity function tagged with its Kind.
// Exactly one of the implementations is set, matching the Kind.
type Func struct {
	name     string
	kind     Kind
	metric   MetricFunc
	symbolic SymbolicFunc
	text     TextFunc
}

// NewMetric declares a metric similarity function.
func NewMetric(name string, fn MetricFunc) Func {
	return Func{name: name, kind: Metric, metric: fn}
}

// NewSymbolic declares a table-driven similarity function.
func NewSymbolic(name string, fn SymbolicFunc) Func {
	return Func{name: name, kind: Symbolic, symbolic: fn}
}

// NewText declares a table-free symbolic similarity function.
func NewText(name string, fn TextFunc) Func {
	return Func{name: name, kind: Text, text: fn}
}

// Name returns the registered name of the function.
func (f Func) Name() string {
	return f.name
}

// Kind returns the function's tag.
func (f Func) Kind() Kind {
	return f.kind
}

// IsZero reports whether f is the zero Func.
func (f Func) IsZero() bool {
	return f.kind == 0
}

// Validate checks that f has a name and the implementation its Kind requires.
func (f Func) Validate() error {
	if f.name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidFunction)
	}
	ok := false
	switch f.kind {
	case Metric:
		ok = f.metric != nil
	case Symbolic:
		ok = f.symbolic != nil
	case Text:
		ok = f.text != nil
	}
	if !ok {
		return fmt.Errorf("%w: %s has no %s implementation", ErrInvalidFunction, f.name, f.kind)
	}
	return nil
}

// CompareMetric applies a Metric function. It panics for other kinds.
func (f Func) CompareMetric(q, c float64) float64 {
	if f.kind != Metric {
		panic("similarity: CompareMetric called on " + f.kind.String() + " function " + f.name)
	}
	return f.metric(q, c)
}

// CompareSymbolic applies a Symbolic function. It panics for other kinds.
func (f Func) CompareSymbolic(q, c string, table SymbolicTable) (float64, error) {
	if f.kind != Symbolic {
		panic("similarity: CompareSymbolic called on " + f.kind.String() + " function " + f.name)
	}
	return f.symbolic(q, c, table)
}

// CompareText applies a Text function. It panics for other kinds.
func (f Func) CompareText(q, c string) float64 {
	if f.kind != Text {
		panic("similarity: CompareText called on " + f.kind.String() + " function " + f.name)
	}
	return f.text(q, c)
}

// ManhattanSim returns 1 / (1 + |q - c|). The result is in (0, 1] and equals
// 1 only when q == c.
func ManhattanSim(q, c float64) float64 {
	return 1 / (1 + math.Abs(q-c))
}

// EuclideanSim returns 1 / (1 + sqrt((q - c)^2)), the one-dimensional
// Euclidean similarity. It is numerically the same as ManhattanSim.
func EuclideanSim(q, c float64) float64 {
	d := q - c
	return 1 / (1 + math.Sqrt(d*d))
}

// SymbolicSim returns table[q][c] unchanged.
func SymbolicSim(q, c string, table SymbolicTable) (float64, error) {
	return table.Lookup(q, c)
}

// EditSimilarity returns 1 - d/n where d is the case-insensitive Levenshtein
// distance and n the rune length of the longer token. Two empty tokens score 1.
func EditSimilarity(q, c string) float64 {
	qr, cr := []rune(q), []rune(c)
	n := max(len(qr), len(cr))
	if n == 0 {
		return 1
	}
	return 1 - float64(levenshtein(foldRunes(qr), foldRunes(cr)))/float64(n)
}

var (
	// Manhattan is the registered Metric function for ManhattanSim.
	Manhattan = NewMetric("manhattan", ManhattanSim)
	// Euclidean is the registered Metric function for EuclideanSim.
	Euclidean = NewMetric("euclidean", EuclideanSim)
	// Table is the registered Symbolic function for SymbolicSim.
	Table = NewSymbolic("symbolic", SymbolicSim)
	// Edit is the registered Text function for EditSimilarity.
	Edit = NewText("levenshtein", EditSimilarity)
)
