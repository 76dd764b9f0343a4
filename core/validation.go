// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

import "fmt"

// ValidateSchema validates a Schema according to domain rules.
//
// Validation rules:
//   - Field names must not be empty
//   - A name may appear at most once per side
//   - Problem and solution fields must be disjoint
//   - Field types must be valid
func ValidateSchema(s *Schema) error {
	if s == nil {
		return fmt.Errorf("%w: schema is nil", ErrInvalidSchema)
	}

	problem := make(map[string]struct{}, len(s.Problem))
	for _, f := range s.Problem {
		if err := validateField(f, problem); err != nil {
			return err
		}
	}

	solution := make(map[string]struct{}, len(s.Solution))
	for _, f := range s.Solution {
		if err := validateField(f, solution); err != nil {
			return err
		}
		if _, ok := problem[f.Name]; ok {
			return fmt.Errorf("%w: %s", ErrFieldOverlap, f.Name)
		}
	}

	return nil
}

func validateField(f Field, seen map[string]struct{}) error {
	if f.Name == "" {
		return ErrEmptyFieldName
	}
	if _, ok := seen[f.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateField, f.Name)
	}
	if err := ValidateFieldType(f.Type); err != nil {
		return fmt.Errorf("field %s: %w", f.Name, err)
	}
	seen[f.Name] = struct{}{}
	return nil
}

// ValidateCase validates a Case against a schema.
//
// Validation rules:
//   - Problem keys must be declared problem fields
//   - Solution keys must be declared solution fields
//   - Every value must be valid and accepted by its field's declared type
//
// NOT validated:
//   - Completeness (a case may omit declared fields; retrieval reports
//     ErrMissingField when an assigned field is absent)
func ValidateCase(s *Schema, c *Case) error {
	if c == nil {
		return fmt.Errorf("%w: case is nil", ErrInvalidCase)
	}
	if err := validateAttributes(s, c.Problem, RoleProblem); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCase, err)
	}
	if err := validateAttributes(s, c.Solution, RoleSolution); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCase, err)
	}
	return nil
}

// ValidateQuery validates a Query against a schema. Only problem fields
// may be set and the solution must be empty.
func ValidateQuery(s *Schema, q *Query) error {
	if q == nil {
		return fmt.Errorf("%w: query is nil", ErrInvalidQuery)
	}
	if len(q.Solution) != 0 {
		return fmt.Errorf("%w: solution must be empty", ErrInvalidQuery)
	}
	if err := validateAttributes(s, q.Problem, RoleProblem); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	return nil
}

func validateAttributes(s *Schema, attrs Attributes, want Role) error {
	for name, v := range attrs {
		field, role, ok := s.Lookup(name)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownField, name)
		}
		if role != want {
			return fmt.Errorf("%w: %s is not a %s field", ErrUnknownField, name, roleName(want))
		}
		if !v.IsValid() {
			return fmt.Errorf("%w: field %s", ErrInvalidValue, name)
		}
		if !field.Type.Accepts(v.Kind()) {
			return fmt.Errorf("%w: field %s is %s, got %s", ErrTypeMismatch, name, field.Type, v.Kind())
		}
	}
	return nil
}

func roleName(r Role) string {
	if r == RoleSolution {
		return "solution"
	}
	return "problem"
}
