// Package ingestion turns delimited text, JSON and spreadsheet files into
// cases and symbolic similarity tables.
//
// Rows are read into column→raw value mappings, then split into problem and
// solution attributes by the schema; columns the schema does not declare
// are dropped. Each value is parsed according to its field's declared type.
// Files are read once, in full, at startup.
package ingestion
