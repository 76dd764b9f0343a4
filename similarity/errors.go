package similarity

import "errors"

var (
	// ErrKeyNotFound is returned when a value is absent from a symbolic table.
	ErrKeyNotFound = errors.New("key not found")

	// ErrUnknownFunction is returned when Lookup is given an unregistered name.
	ErrUnknownFunction = errors.New("unknown similarity function")

	// ErrDuplicateFunction is returned when Register is given a name already in use.
	ErrDuplicateFunction = errors.New("similarity function already registered")

	// ErrInvalidFunction is returned for a Func without a name or implementation.
	ErrInvalidFunction = errors.New("invalid similarity function")

	// ErrInvalidScore is returned when a table holds a score outside [0, 1].
	ErrInvalidScore = errors.New("similarity score must be between 0 and 1")
)
