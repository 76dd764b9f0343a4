package ingestion

import "errors"

var (
	// ErrInvalidFormat is returned for a file whose extension or structure is not supported.
	ErrInvalidFormat = errors.New("invalid file format")

	// ErrUnknownEncoding is returned when the configured text encoding is not recognized.
	ErrUnknownEncoding = errors.New("unknown encoding")

	// ErrInvalidDelimiter is returned when the configured delimiter cannot be used.
	ErrInvalidDelimiter = errors.New("invalid delimiter")

	// ErrSchemaRequired is returned when cases are built without a schema.
	ErrSchemaRequired = errors.New("schema required")

	// ErrInvalidRow is returned when a row value cannot be parsed as its field's type.
	ErrInvalidRow = errors.New("invalid row")
)
