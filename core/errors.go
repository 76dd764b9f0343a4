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

import "errors"

// Domain validation errors
var (
	// ErrInvalidSchema indicates a Schema failed validation.
	ErrInvalidSchema = errors.New("invalid schema")

	// ErrUnknownField indicates a reference to a field that the schema does not declare.
	ErrUnknownField = errors.New("unknown field")

	// ErrMissingField indicates a declared field is absent from a query or case.
	ErrMissingField = errors.New("missing field")

	// ErrFieldOverlap indicates a field is declared as both problem and solution.
	ErrFieldOverlap = errors.New("field declared as both problem and solution")

	// ErrDuplicateField indicates a field is declared twice on the same side.
	ErrDuplicateField = errors.New("duplicate field")

	// ErrEmptyFieldName indicates a field was declared without a name.
	ErrEmptyFieldName = errors.New("field name cannot be empty")

	// ErrInvalidFieldType indicates an unrecognized FieldType value.
	ErrInvalidFieldType = errors.New("invalid field type")

	// ErrInvalidValue indicates a raw value could not be parsed as the declared type.
	ErrInvalidValue = errors.New("invalid value")

	// ErrTypeMismatch indicates a value's kind does not fit the operation or declared type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrInvalidCase indicates a Case failed validation against a schema.
	ErrInvalidCase = errors.New("invalid case")

	// ErrInvalidQuery indicates a Query failed validation against a schema.
	ErrInvalidQuery = errors.New("invalid query")
)
