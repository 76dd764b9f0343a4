package ingestion

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadCSV(t *testing.T) {
	t.Run("header keyed rows", func(t *testing.T) {
		input := "Price,Body,Model\n10000,suv,tiguan\n12000,sedan,a4\n"
		rows, err := ReadCSV(strings.NewReader(input), nil)
		require.NoError(t, err)
		assert.Equal(t, []Row{
			{"Price": "10000", "Body": "suv", "Model": "tiguan"},
			{"Price": "12000", "Body": "sedan", "Model": "a4"},
		}, rows)
	})

	t.Run("custom delimiter", func(t *testing.T) {
		rows, err := ReadCSV(strings.NewReader("a;b\n1;2\n"), NewConfig(WithDelimiter(';')))
		require.NoError(t, err)
		assert.Equal(t, []Row{{"a": "1", "b": "2"}}, rows)
	})

	t.Run("short records leave columns unset", func(t *testing.T) {
		rows, err := ReadCSV(strings.NewReader("a,b,c\n1\n1,2,3,4\n"), nil)
		require.NoError(t, err)
		assert.Equal(t, []Row{{"a": "1"}, {"a": "1", "b": "2", "c": "3"}}, rows)
	})

	t.Run("latin1 is decoded", func(t *testing.T) {
		input := []byte("Color\nbl\xe9\n")
		rows, err := ReadCSV(bytes.NewReader(input), NewConfig(WithEncoding("latin1")))
		require.NoError(t, err)
		assert.Equal(t, []Row{{"Color": "blé"}}, rows)
	})

	t.Run("utf-8 byte order mark is dropped", func(t *testing.T) {
		rows, err := ReadCSV(strings.NewReader("\ufeffModel\nx\n"), nil)
		require.NoError(t, err)
		assert.Equal(t, []Row{{"Model": "x"}}, rows)
	})

	t.Run("empty input", func(t *testing.T) {
		rows, err := ReadCSV(strings.NewReader(""), nil)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("malformed quoting", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader("a\n\"unterminated\n"), nil)
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})

	t.Run("unknown encoding", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader("a\n1\n"), NewConfig(WithEncoding("nope")))
		assert.ErrorIs(t, err, ErrUnknownEncoding)
	})
}

func TestReadJSON(t *testing.T) {
	t.Run("array of objects", func(t *testing.T) {
		input := `[{"Price": 10000, "Body": "suv"}, {"Price": 1.5, "Body": "sedan", "Used": true}]`
		rows, err := ReadJSON(strings.NewReader(input), nil)
		require.NoError(t, err)
		assert.Equal(t, []Row{
			{"Price": json.Number("10000"), "Body": "suv"},
			{"Price": json.Number("1.5"), "Body": "sedan", "Used": true},
		}, rows)
	})

	t.Run("not an array", func(t *testing.T) {
		_, err := ReadJSON(strings.NewReader(`{"Price": 1}`), nil)
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})
}

func TestReadXLSX(t *testing.T) {
	workbook := func(t *testing.T, sheet string, cells map[string]any) *bytes.Buffer {
		t.Helper()
		f := excelize.NewFile()
		defer f.Close()
		if sheet != "Sheet1" {
			_, err := f.NewSheet(sheet)
			require.NoError(t, err)
		}
		for cell, v := range cells {
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
		buf, err := f.WriteToBuffer()
		require.NoError(t, err)
		return buf
	}

	t.Run("active sheet", func(t *testing.T) {
		buf := workbook(t, "Sheet1", map[string]any{
			"A1": "Price", "B1": "Model",
			"A2": 10000, "B2": "tiguan",
		})
		rows, err := ReadXLSX(buf, nil)
		require.NoError(t, err)
		assert.Equal(t, []Row{{"Price": "10000", "Model": "tiguan"}}, rows)
	})

	t.Run("named sheet", func(t *testing.T) {
		buf := workbook(t, "Cars", map[string]any{"A1": "Model", "A2": "a4"})
		rows, err := ReadXLSX(buf, NewConfig(WithSheet("Cars")))
		require.NoError(t, err)
		assert.Equal(t, []Row{{"Model": "a4"}}, rows)
	})

	t.Run("missing sheet", func(t *testing.T) {
		buf := workbook(t, "Sheet1", map[string]any{"A1": "Model"})
		_, err := ReadXLSX(buf, NewConfig(WithSheet("Nope")))
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})

	t.Run("not a workbook", func(t *testing.T) {
		_, err := ReadXLSX(strings.NewReader("Price,Model\n"), nil)
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})
}
