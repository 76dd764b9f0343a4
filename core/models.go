package core

import (
	"encoding/binary"
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored entities.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Role identifies which side of an entity a field belongs to.
type Role int

const (
	// RoleProblem marks a problem attribute.
	RoleProblem Role = iota + 1
	// RoleSolution marks a solution attribute.
	RoleSolution
)

// Field is a named, typed attribute declared by a Schema.
type Field struct {
	Name string
	Type FieldType
}

// Schema is the field classification of a case base. Problem and Solution
// are ordered and disjoint; a Schema is never changed after construction.
type Schema struct {
	Problem  []Field
	Solution []Field
}

// NewSchema validates and returns a schema over the given fields.
func NewSchema(problem, solution []Field) (*Schema, error) {
	s := &Schema{
		Problem:  slices.Clone(problem),
		Solution: slices.Clone(solution),
	}
	if err := ValidateSchema(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Fields builds untyped (FieldAuto) fields from names.
func Fields(names ...string) []Field {
	fields := make([]Field, len(names))
	for i, name := range names {
		fields[i] = Field{Name: name}
	}
	return fields
}

// ProblemFields returns the problem field names in declaration order.
func (s *Schema) ProblemFields() []string {
	return fieldNames(s.Problem)
}

// SolutionFields returns the solution field names in declaration order.
func (s *Schema) SolutionFields() []string {
	return fieldNames(s.Solution)
}

// Lookup returns the declared field and its role.
func (s *Schema) Lookup(name string) (Field, Role, bool) {
	for _, f := range s.Problem {
		if f.Name == name {
			return f, RoleProblem, true
		}
	}
	for _, f := range s.Solution {
		if f.Name == name {
			return f, RoleSolution, true
		}
	}
	return Field{}, 0, false
}

// Has reports whether name is declared on either side.
func (s *Schema) Has(name string) bool {
	_, _, ok := s.Lookup(name)
	return ok
}

// CheckField returns an ErrUnknownField error when name is not declared.
func (s *Schema) CheckField(name string) error {
	if !s.Has(name) {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	return nil
}

func fieldNames(fields []Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

// Attributes maps field names to attribute values.
type Attributes map[string]Value

// Entity is the common shape of queries and cases.
type Entity struct {
	Problem  Attributes
	Solution Attributes
}

// Query is a problem lacking a known solution. Its Solution is always empty.
type Query struct {
	Entity
}

// NewQuery returns a query over a copy of the given problem attributes.
func NewQuery(problem Attributes) *Query {
	return &Query{Entity{
		Problem:  cloneAttributes(problem),
		Solution: Attributes{},
	}}
}

// Case is a stored problem/solution pair. Cases are never mutated after
// they are added to a case base.
type Case struct {
	Entity
}

// NewCase returns a case over copies of the given attributes.
func NewCase(problem, solution Attributes) *Case {
	return &Case{Entity{
		Problem:  cloneAttributes(problem),
		Solution: cloneAttributes(solution),
	}}
}

// RetrievedCase is a case annotated with its similarity to a query.
type RetrievedCase struct {
	Case
	Similarity    float64            // Sum of the per-field scores
	SimPerField   map[string]float64 // Score contributed by each assigned field
	solutionOrder []string
}

// NewRetrievedCase wraps a copy of c with its aggregate and per-field scores.
// solutionOrder controls the order used by String; nil sorts by field name.
func NewRetrievedCase(c *Case, similarity float64, perField map[string]float64, solutionOrder []string) *RetrievedCase {
	return &RetrievedCase{
		Case:          *NewCase(c.Problem, c.Solution),
		Similarity:    similarity,
		SimPerField:   perField,
		solutionOrder: solutionOrder,
	}
}

// String joins the solution values with spaces and capitalizes the result,
// e.g. "Volkswagen golf".
func (r *RetrievedCase) String() string {
	order := r.solutionOrder
	if order == nil {
		order = slices.Sorted(maps.Keys(r.Solution))
	}
	parts := make([]string, 0, len(r.Solution))
	for _, name := range order {
		if v, ok := r.Solution[name]; ok {
			parts = append(parts, v.String())
		}
	}
	return capitalize(strings.Join(parts, " "))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}

func cloneAttributes(a Attributes) Attributes {
	if a == nil {
		return Attributes{}
	}
	return maps.Clone(a)
}
