package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ValueKind identifies the representation held by a Value.
type ValueKind int

const (
	// KindInteger is a whole number.
	KindInteger ValueKind = iota + 1
	// KindFloat is a floating point number.
	KindFloat
	// KindSymbol is a discrete string token.
	KindSymbol
)

// String returns the lowercase name of the kind.
func (k ValueKind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindSymbol:
		return "symbol"
	default:
		return "invalid"
	}
}

// Value is a single attribute value: an integer, a float or a symbol.
// The zero Value is invalid. Values are comparable and can be used as map keys.
type Value struct {
	kind ValueKind
	i    int64
	f    float64
	s    string
}

// Int returns an integer Value.
func Int(v int64) Value {
	return Value{kind: KindInteger, i: v}
}

// Float returns a float Value.
func Float(v float64) Value {
	return Value{kind: KindFloat, f: v}
}

// Symbol returns a symbolic Value.
func Symbol(v string) Value {
	return Value{kind: KindSymbol, s: v}
}

// Kind returns the kind of the value.
func (v Value) Kind() ValueKind {
	return v.kind
}

// IsValid reports whether v was produced by one of the constructors.
func (v Value) IsValid() bool {
	return v.kind >= KindInteger && v.kind <= KindSymbol
}

// IsNumeric reports whether v is an integer or a float.
func (v Value) IsNumeric() bool {
	return v.kind == KindInteger || v.kind == KindFloat
}

// Number returns v as a float64. The second result is false for symbols.
func (v Value) Number() (float64, bool) {
	switch v.kind {
	case KindInteger:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	default:
		return 0, false
	}
}

// Token returns the symbol held by v. The second result is false for numbers.
func (v Value) Token() (string, bool) {
	if v.kind != KindSymbol {
		return "", false
	}
	return v.s, true
}

// Int64 returns the integer held by v, or 0 for other kinds.
func (v Value) Int64() int64 {
	return v.i
}

// Float64 returns the float held by v, or 0 for other kinds.
func (v Value) Float64() float64 {
	return v.f
}

// String formats the value for display. Symbols are returned verbatim.
func (v Value) String() string {
	switch v.kind {
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindSymbol:
		return v.s
	default:
		return "<invalid>"
	}
}

// FieldType is the declared type of a schema field.
type FieldType int

const (
	// FieldAuto keeps raw strings as symbols, converting decimal digit strings
	// to integers only when integer coercion is enabled.
	FieldAuto FieldType = iota
	// FieldInteger parses values as base-10 integers.
	FieldInteger
	// FieldFloat parses values as floating point numbers.
	FieldFloat
	// FieldSymbol keeps values as symbolic tokens.
	FieldSymbol
)

// String returns the name used for the type in configuration files.
func (t FieldType) String() string {
	switch t {
	case FieldAuto:
		return "auto"
	case FieldInteger:
		return "integer"
	case FieldFloat:
		return "float"
	case FieldSymbol:
		return "symbol"
	default:
		return fmt.Sprintf("FieldType(%d)", int(t))
	}
}

// ParseFieldType converts a configuration name into a FieldType.
// The empty string maps to FieldAuto.
func ParseFieldType(name string) (FieldType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return FieldAuto, nil
	case "integer", "int":
		return FieldInteger, nil
	case "float", "number":
		return FieldFloat, nil
	case "symbol", "symbolic", "string":
		return FieldSymbol, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidFieldType, name)
	}
}

// ValidateFieldType validates that a FieldType has a known value.
func ValidateFieldType(t FieldType) error {
	if t < FieldAuto || t > FieldSymbol {
		return fmt.Errorf("%w: value %d", ErrInvalidFieldType, t)
	}
	return nil
}

// Accepts reports whether a value of the given kind satisfies the declared type.
func (t FieldType) Accepts(kind ValueKind) bool {
	switch t {
	case FieldAuto:
		return kind >= KindInteger && kind <= KindSymbol
	case FieldInteger:
		return kind == KindInteger
	case FieldFloat:
		return kind == KindFloat || kind == KindInteger
	case FieldSymbol:
		return kind == KindSymbol
	default:
		return false
	}
}

// Parse converts a raw string into a Value of the declared type.
// coerceIntegers only affects FieldAuto.
func (t FieldType) Parse(raw string, coerceIntegers bool) (Value, error) {
	switch t {
	case FieldAuto:
		if coerceIntegers && isDecimal(raw) {
			if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
				return Int(n), nil
			}
		}
		return Symbol(raw), nil
	case FieldInteger:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not an integer", ErrInvalidValue, raw)
		}
		return Int(n), nil
	case FieldFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, raw)
		}
		return Float(f), nil
	case FieldSymbol:
		return Symbol(raw), nil
	default:
		return Value{}, fmt.Errorf("%w: value %d", ErrInvalidFieldType, t)
	}
}

// Coerce converts a decoded value (string, json.Number, Go number or bool)
// into a Value of the declared type.
func (t FieldType) Coerce(raw any, coerceIntegers bool) (Value, error) {
	switch v := raw.(type) {
	case string:
		return t.Parse(v, coerceIntegers)
	case json.Number:
		return t.coerceNumber(v.String())
	case float64:
		return t.coerceNumber(strconv.FormatFloat(v, 'f', -1, 64))
	case float32:
		return t.coerceNumber(strconv.FormatFloat(float64(v), 'f', -1, 32))
	case int:
		return t.coerceNumber(strconv.Itoa(v))
	case int64:
		return t.coerceNumber(strconv.FormatInt(v, 10))
	case bool:
		if t == FieldAuto || t == FieldSymbol {
			return Symbol(strconv.FormatBool(v)), nil
		}
		return Value{}, fmt.Errorf("%w: boolean for %s field", ErrTypeMismatch, t)
	case nil:
		return Value{}, fmt.Errorf("%w: null", ErrInvalidValue)
	default:
		return Value{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidValue, raw)
	}
}

// coerceNumber handles values that arrived already typed as numbers, so
// FieldAuto keeps them numeric regardless of integer coercion.
func (t FieldType) coerceNumber(literal string) (Value, error) {
	switch t {
	case FieldAuto:
		if n, err := strconv.ParseInt(literal, 10, 64); err == nil {
			return Int(n), nil
		}
		return FieldFloat.Parse(literal, false)
	case FieldSymbol:
		return Symbol(literal), nil
	default:
		return t.Parse(literal, false)
	}
}

func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
