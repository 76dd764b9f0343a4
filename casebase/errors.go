package casebase

import "errors"

var (
	// ErrSchemaRequired is returned when a case base is created without a schema.
	ErrSchemaRequired = errors.New("schema required")

	// ErrNoCaseAvailable is returned when retrieving from an empty case base.
	ErrNoCaseAvailable = errors.New("no case available")

	// ErrQueryRequired is returned when Retrieve is called with a nil query.
	ErrQueryRequired = errors.New("query required")

	// ErrInvalidAssignment is returned for an assignment entry without a function.
	ErrInvalidAssignment = errors.New("invalid similarity assignment")
)
