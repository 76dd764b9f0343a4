package storage

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/cbr/core"
	"github.com/poiesic/cbr/similarity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var valueComparer = cmp.Comparer(func(a, b core.Value) bool { return a == b })

func TestMarshalUnmarshalCase(t *testing.T) {
	tests := []struct {
		name string
		c    *core.Case
	}{
		{
			name: "mixed kinds",
			c: core.NewCase(
				core.Attributes{
					"Price":  core.Int(-10000),
					"Weight": core.Float(1234.5),
					"Body":   core.Symbol("suv"),
				},
				core.Attributes{"Model": core.Symbol("tiguan")},
			),
		},
		{
			name: "empty sides",
			c:    core.NewCase(nil, nil),
		},
		{
			name: "unicode and extreme values",
			c: core.NewCase(
				core.Attributes{
					"Farbe": core.Symbol("blé"),
					"Max":   core.Int(math.MaxInt64),
					"Tiny":  core.Float(math.SmallestNonzeroFloat64),
				},
				nil,
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalCase(tt.c)
			decoded, err := UnmarshalCase(data)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.c, decoded, valueComparer); diff != "" {
				t.Errorf("case mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMarshalCase_Deterministic(t *testing.T) {
	c := core.NewCase(
		core.Attributes{"a": core.Int(1), "b": core.Int(2), "c": core.Int(3), "d": core.Int(4)},
		core.Attributes{"x": core.Symbol("y")},
	)
	first := MarshalCase(c)
	for range 20 {
		assert.Equal(t, first, MarshalCase(c))
	}
}

func TestMarshalUnmarshalInfo(t *testing.T) {
	schema, err := core.NewSchema(
		[]core.Field{{Name: "Price", Type: core.FieldInteger}, {Name: "Body"}, {Name: "Weight", Type: core.FieldFloat}},
		[]core.Field{{Name: "Model", Type: core.FieldSymbol}},
	)
	require.NoError(t, err)
	info := &Info{Name: "cars", Schema: schema, CaseCount: 3}

	decoded, err := UnmarshalInfo(MarshalInfo(info))
	require.NoError(t, err)
	assert.Equal(t, info, decoded)
}

func TestMarshalUnmarshalTable(t *testing.T) {
	table := similarity.SymbolicTable{
		"suv":   {"suv": 1, "sedan": 0.3},
		"sedan": {"suv": 0.25, "sedan": 1},
		"van":   {},
	}

	decoded, err := UnmarshalTable(MarshalTable(table))
	require.NoError(t, err)
	assert.Equal(t, table, decoded)
}

func TestUnmarshal_Invalid(t *testing.T) {
	valid := MarshalCase(core.NewCase(core.Attributes{"Body": core.Symbol("suv")}, nil))

	tests := []struct {
		name      string
		unmarshal func([]byte) error
		data      []byte
	}{
		{"empty case", func(b []byte) error { _, err := UnmarshalCase(b); return err }, []byte{}},
		{"truncated case", func(b []byte) error { _, err := UnmarshalCase(b); return err }, valid[:len(valid)-2]},
		{"empty info", func(b []byte) error { _, err := UnmarshalInfo(b); return err }, []byte{}},
		{"empty table", func(b []byte) error { _, err := UnmarshalTable(b); return err }, []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.unmarshal(tt.data)
			assert.ErrorIs(t, err, ErrSerializationFailed)
		})
	}
}

func TestValueMUS_UnknownKind(t *testing.T) {
	bs := make([]byte, varint.Int.Size(9))
	varint.Int.Marshal(9, bs)
	_, _, err := ValueMUS.Unmarshal(bs)
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestSnapshot_Validate(t *testing.T) {
	schema, err := core.NewSchema(core.Fields("Body"), core.Fields("Model"))
	require.NoError(t, err)
	cases := []*core.Case{core.NewCase(core.Attributes{"Body": core.Symbol("suv")}, core.Attributes{"Model": core.Symbol("x")})}

	t.Run("valid", func(t *testing.T) {
		s := NewSnapshot("cars", schema, cases, map[string]similarity.SymbolicTable{"Body": {"suv": {"suv": 1}}})
		assert.NoError(t, s.Validate())
		assert.Equal(t, 1, s.CaseCount)
	})

	tests := []struct {
		name     string
		snapshot *Snapshot
	}{
		{"nil", nil},
		{"missing name", NewSnapshot("", schema, cases, nil)},
		{"nil schema", NewSnapshot("cars", nil, cases, nil)},
		{"count mismatch", &Snapshot{Info: Info{Name: "cars", Schema: schema, CaseCount: 2}, Cases: cases}},
		{"invalid case", NewSnapshot("cars", schema, []*core.Case{core.NewCase(core.Attributes{"Doors": core.Int(4)}, nil)}, nil)},
		{"table for undeclared field", NewSnapshot("cars", schema, cases, map[string]similarity.SymbolicTable{"Doors": {}})},
		{"table out of range", NewSnapshot("cars", schema, cases, map[string]similarity.SymbolicTable{"Body": {"suv": {"suv": 2}}})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.snapshot.Validate(), ErrInvalidSnapshot)
		})
	}
}
