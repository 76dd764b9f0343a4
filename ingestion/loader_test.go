package ingestion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/cbr/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	schema := carSchema(t)

	t.Run("csv", func(t *testing.T) {
		path := writeFile(t, "cars.csv", "Price,Body,Color,Manufacturer,Model\n10000,suv,red,volkswagen,tiguan\n12000,sedan,blue,audi,a4\n")
		cases, err := Load(path, schema, nil)
		require.NoError(t, err)
		require.Len(t, cases, 2)
		assert.Equal(t, core.Int(12000), cases[1].Problem["Price"])
		assert.Equal(t, core.Symbol("a4"), cases[1].Solution["Model"])
	})

	t.Run("json", func(t *testing.T) {
		path := writeFile(t, "cars.json", `[{"Price": 10000, "Model": "tiguan"}]`)
		cases, err := Load(path, schema, nil)
		require.NoError(t, err)
		require.Len(t, cases, 1)
		assert.Equal(t, core.Int(10000), cases[0].Problem["Price"])
	})

	t.Run("xlsx", func(t *testing.T) {
		f := excelize.NewFile()
		defer f.Close()
		require.NoError(t, f.SetCellValue("Sheet1", "A1", "Price"))
		require.NoError(t, f.SetCellValue("Sheet1", "B1", "Model"))
		require.NoError(t, f.SetCellValue("Sheet1", "A2", 9000))
		require.NoError(t, f.SetCellValue("Sheet1", "B2", "kodiaq"))
		path := filepath.Join(t.TempDir(), "cars.xlsx")
		require.NoError(t, f.SaveAs(path))

		cases, err := Load(path, schema, nil)
		require.NoError(t, err)
		require.Len(t, cases, 1)
		assert.Equal(t, core.Int(9000), cases[0].Problem["Price"])
		assert.Equal(t, core.Symbol("kodiaq"), cases[0].Solution["Model"])
	})

	t.Run("extension is case insensitive", func(t *testing.T) {
		path := writeFile(t, "CARS.CSV", "Model\nx\n")
		cases, err := Load(path, schema, nil)
		require.NoError(t, err)
		assert.Len(t, cases, 1)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := writeFile(t, "cars.txt", "Model\nx\n")
		_, err := Load(path, schema, nil)
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "none.csv"), schema, nil)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("schema required", func(t *testing.T) {
		_, err := Load("cars.csv", nil, nil)
		assert.ErrorIs(t, err, ErrSchemaRequired)
	})

	t.Run("invalid value", func(t *testing.T) {
		path := writeFile(t, "cars.csv", "Price\ncheap\n")
		_, err := Load(path, schema, nil)
		assert.ErrorIs(t, err, ErrInvalidRow)
	})
}

func TestLoadByFormat(t *testing.T) {
	schema := carSchema(t)
	csvPath := writeFile(t, "cars.csv", "Model\nx\n")
	jsonPath := writeFile(t, "cars.json", `[{"Model": "x"}]`)

	t.Run("LoadCSV", func(t *testing.T) {
		cases, err := LoadCSV(csvPath, schema, nil)
		require.NoError(t, err)
		assert.Len(t, cases, 1)

		_, err = LoadCSV(jsonPath, schema, nil)
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})

	t.Run("LoadJSON", func(t *testing.T) {
		cases, err := LoadJSON(jsonPath, schema, nil)
		require.NoError(t, err)
		assert.Len(t, cases, 1)

		_, err = LoadJSON(csvPath, schema, nil)
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})

	t.Run("LoadXLSX rejects other extensions", func(t *testing.T) {
		_, err := LoadXLSX(csvPath, schema, nil)
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})
}
