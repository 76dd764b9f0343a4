package ingestion

import (
	"fmt"
	"strings"

	"github.com/poiesic/cbr/core"
)

// Row maps column names to raw values. Delimited text and spreadsheets
// produce strings; JSON may also produce json.Number and bool values.
type Row map[string]any

// BuildCases splits each row into a case. Columns declared as problem
// fields go to the problem side, solution fields to the solution side and
// all other columns are dropped. Row order is preserved.
//
// Blank cells in Integer and Float fields leave the attribute unset.
func BuildCases(rows []Row, schema *core.Schema, cfg *Config) ([]*core.Case, error) {
	if schema == nil {
		return nil, ErrSchemaRequired
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	cases := make([]*core.Case, 0, len(rows))
	for i, row := range rows {
		problem := make(core.Attributes)
		solution := make(core.Attributes)

		for column, raw := range row {
			field, role, ok := schema.Lookup(column)
			if !ok {
				continue
			}
			if isBlankNumeric(field.Type, raw) {
				continue
			}

			v, err := field.Type.Coerce(raw, cfg.CoerceIntegers)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d column %s: %w", ErrInvalidRow, i+1, column, err)
			}
			if role == core.RoleProblem {
				problem[column] = v
			} else {
				solution[column] = v
			}
		}

		cases = append(cases, &core.Case{Entity: core.Entity{Problem: problem, Solution: solution}})
	}

	return cases, nil
}

func isBlankNumeric(t core.FieldType, raw any) bool {
	if t != core.FieldInteger && t != core.FieldFloat {
		return false
	}
	s, ok := raw.(string)
	return ok && strings.TrimSpace(s) == ""
}
