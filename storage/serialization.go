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

package storage

import (
	"fmt"
	"maps"
	"slices"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/cbr/core"
	"github.com/poiesic/cbr/similarity"
)

// Records are encoded with mus-go primitives. Maps are written in sorted key
// order so equal records always encode to equal bytes.

// ValueMUS serializes a core.Value as its kind followed by the payload.
var ValueMUS = valueMUS{}

// AttributesMUS serializes core.Attributes.
var AttributesMUS = attributesMUS{}

// CaseMUS serializes a core.Case.
var CaseMUS = caseMUS{}

// SchemaMUS serializes a core.Schema.
var SchemaMUS = schemaMUS{}

// InfoMUS serializes case base metadata.
var InfoMUS = infoMUS{}

// TableMUS serializes a similarity.SymbolicTable.
var TableMUS = tableMUS{}

type valueMUS struct{}

func (valueMUS) Marshal(v core.Value, bs []byte) (n int) {
	n = varint.Int.Marshal(int(v.Kind()), bs)
	switch v.Kind() {
	case core.KindInteger:
		n += varint.Int64.Marshal(v.Int64(), bs[n:])
	case core.KindFloat:
		n += raw.Float64.Marshal(v.Float64(), bs[n:])
	case core.KindSymbol:
		n += ord.String.Marshal(v.String(), bs[n:])
	}
	return
}

func (valueMUS) Unmarshal(bs []byte) (v core.Value, n int, err error) {
	kind, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	switch core.ValueKind(kind) {
	case core.KindInteger:
		var i int64
		i, n1, err = varint.Int64.Unmarshal(bs[n:])
		v = core.Int(i)
	case core.KindFloat:
		var f float64
		f, n1, err = raw.Float64.Unmarshal(bs[n:])
		v = core.Float(f)
	case core.KindSymbol:
		var s string
		s, n1, err = ord.String.Unmarshal(bs[n:])
		v = core.Symbol(s)
	default:
		err = fmt.Errorf("%w: unknown value kind %d", ErrSerializationFailed, kind)
	}
	n += n1
	return
}

func (valueMUS) Size(v core.Value) (size int) {
	size = varint.Int.Size(int(v.Kind()))
	switch v.Kind() {
	case core.KindInteger:
		size += varint.Int64.Size(v.Int64())
	case core.KindFloat:
		size += raw.Float64.Size(v.Float64())
	case core.KindSymbol:
		size += ord.String.Size(v.String())
	}
	return
}

type attributesMUS struct{}

func (attributesMUS) Marshal(a core.Attributes, bs []byte) (n int) {
	n = varint.Int.Marshal(len(a), bs)
	for _, name := range slices.Sorted(maps.Keys(a)) {
		n += ord.String.Marshal(name, bs[n:])
		n += ValueMUS.Marshal(a[name], bs[n:])
	}
	return
}

func (attributesMUS) Unmarshal(bs []byte) (a core.Attributes, n int, err error) {
	length, n, err := unmarshalLength(bs)
	if err != nil {
		return
	}
	a = make(core.Attributes, length)
	var (
		name string
		v    core.Value
		n1   int
	)
	for range length {
		name, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		v, n1, err = ValueMUS.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		a[name] = v
	}
	return
}

func (attributesMUS) Size(a core.Attributes) (size int) {
	size = varint.Int.Size(len(a))
	for name, v := range a {
		size += ord.String.Size(name) + ValueMUS.Size(v)
	}
	return
}

type caseMUS struct{}

func (caseMUS) Marshal(c core.Case, bs []byte) (n int) {
	n = AttributesMUS.Marshal(c.Problem, bs)
	n += AttributesMUS.Marshal(c.Solution, bs[n:])
	return
}

func (caseMUS) Unmarshal(bs []byte) (c core.Case, n int, err error) {
	c.Problem, n, err = AttributesMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	c.Solution, n1, err = AttributesMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (caseMUS) Size(c core.Case) int {
	return AttributesMUS.Size(c.Problem) + AttributesMUS.Size(c.Solution)
}

type schemaMUS struct{}

func (schemaMUS) Marshal(s core.Schema, bs []byte) (n int) {
	n = marshalFields(s.Problem, bs)
	n += marshalFields(s.Solution, bs[n:])
	return
}

func (schemaMUS) Unmarshal(bs []byte) (s core.Schema, n int, err error) {
	s.Problem, n, err = unmarshalFields(bs)
	if err != nil {
		return
	}
	var n1 int
	s.Solution, n1, err = unmarshalFields(bs[n:])
	n += n1
	return
}

func (schemaMUS) Size(s core.Schema) int {
	return sizeFields(s.Problem) + sizeFields(s.Solution)
}

func marshalFields(fields []core.Field, bs []byte) (n int) {
	n = varint.Int.Marshal(len(fields), bs)
	for _, f := range fields {
		n += ord.String.Marshal(f.Name, bs[n:])
		n += varint.Int.Marshal(int(f.Type), bs[n:])
	}
	return
}

func unmarshalFields(bs []byte) (fields []core.Field, n int, err error) {
	length, n, err := unmarshalLength(bs)
	if err != nil {
		return
	}
	fields = make([]core.Field, length)
	var (
		t  int
		n1 int
	)
	for i := range fields {
		fields[i].Name, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		t, n1, err = varint.Int.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		fields[i].Type = core.FieldType(t)
	}
	return
}

func sizeFields(fields []core.Field) (size int) {
	size = varint.Int.Size(len(fields))
	for _, f := range fields {
		size += ord.String.Size(f.Name) + varint.Int.Size(int(f.Type))
	}
	return
}

type infoMUS struct{}

func (infoMUS) Marshal(info Info, bs []byte) (n int) {
	n = ord.String.Marshal(info.Name, bs)
	n += SchemaMUS.Marshal(*info.Schema, bs[n:])
	n += varint.Int.Marshal(info.CaseCount, bs[n:])
	return
}

func (infoMUS) Unmarshal(bs []byte) (info Info, n int, err error) {
	info.Name, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var (
		schema core.Schema
		n1     int
	)
	schema, n1, err = SchemaMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	info.Schema = &schema
	info.CaseCount, n1, err = unmarshalLength(bs[n:])
	n += n1
	return
}

func (infoMUS) Size(info Info) int {
	return ord.String.Size(info.Name) + SchemaMUS.Size(*info.Schema) + varint.Int.Size(info.CaseCount)
}

type tableMUS struct{}

func (tableMUS) Marshal(t similarity.SymbolicTable, bs []byte) (n int) {
	n = varint.Int.Marshal(len(t), bs)
	for _, q := range slices.Sorted(maps.Keys(t)) {
		row := t[q]
		n += ord.String.Marshal(q, bs[n:])
		n += varint.Int.Marshal(len(row), bs[n:])
		for _, c := range slices.Sorted(maps.Keys(row)) {
			n += ord.String.Marshal(c, bs[n:])
			n += raw.Float64.Marshal(row[c], bs[n:])
		}
	}
	return
}

func (tableMUS) Unmarshal(bs []byte) (t similarity.SymbolicTable, n int, err error) {
	rows, n, err := unmarshalLength(bs)
	if err != nil {
		return
	}
	t = make(similarity.SymbolicTable, rows)
	var (
		q, c  string
		cols  int
		score float64
		n1    int
	)
	for range rows {
		q, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		cols, n1, err = unmarshalLength(bs[n:])
		n += n1
		if err != nil {
			return
		}
		row := make(map[string]float64, cols)
		for range cols {
			c, n1, err = ord.String.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
			score, n1, err = raw.Float64.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
			row[c] = score
		}
		t[q] = row
	}
	return
}

func (tableMUS) Size(t similarity.SymbolicTable) (size int) {
	size = varint.Int.Size(len(t))
	for q, row := range t {
		size += ord.String.Size(q) + varint.Int.Size(len(row))
		for c, score := range row {
			size += ord.String.Size(c) + raw.Float64.Size(score)
		}
	}
	return
}

// unmarshalLength reads a collection length and rejects negative values.
func unmarshalLength(bs []byte) (length int, n int, err error) {
	length, n, err = varint.Int.Unmarshal(bs)
	if err == nil && length < 0 {
		err = fmt.Errorf("%w: negative length %d", ErrSerializationFailed, length)
	}
	return
}

// MarshalCase serializes a Case to bytes.
func MarshalCase(c *core.Case) []byte {
	buf := make([]byte, CaseMUS.Size(*c))
	CaseMUS.Marshal(*c, buf)
	return buf
}

// UnmarshalCase deserializes a Case from bytes.
func UnmarshalCase(data []byte) (*core.Case, error) {
	c, _, err := CaseMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: case: %w", ErrSerializationFailed, err)
	}
	return &c, nil
}

// MarshalInfo serializes case base metadata to bytes.
func MarshalInfo(info *Info) []byte {
	buf := make([]byte, InfoMUS.Size(*info))
	InfoMUS.Marshal(*info, buf)
	return buf
}

// UnmarshalInfo deserializes case base metadata from bytes.
func UnmarshalInfo(data []byte) (*Info, error) {
	info, _, err := InfoMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: info: %w", ErrSerializationFailed, err)
	}
	return &info, nil
}

// MarshalTable serializes a SymbolicTable to bytes.
func MarshalTable(t similarity.SymbolicTable) []byte {
	buf := make([]byte, TableMUS.Size(t))
	TableMUS.Marshal(t, buf)
	return buf
}

// UnmarshalTable deserializes a SymbolicTable from bytes.
func UnmarshalTable(data []byte) (similarity.SymbolicTable, error) {
	t, _, err := TableMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: table: %w", ErrSerializationFailed, err)
	}
	return t, nil
}
