package cbr

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/cbr/casebase"
	"github.com/poiesic/cbr/config"
	"github.com/poiesic/cbr/core"
	"github.com/poiesic/cbr/similarity"
	"github.com/poiesic/cbr/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCarBase(t *testing.T) *casebase.CaseBase {
	t.Helper()
	schema, err := core.NewSchema(
		[]core.Field{{Name: "Price", Type: core.FieldInteger}, {Name: "Body", Type: core.FieldSymbol}},
		core.Fields("Manufacturer", "Model"),
	)
	require.NoError(t, err)

	cb, err := casebase.New(schema, []*core.Case{
		core.NewCase(
			core.Attributes{"Price": core.Int(10000), "Body": core.Symbol("suv")},
			core.Attributes{"Manufacturer": core.Symbol("volkswagen"), "Model": core.Symbol("tiguan")},
		),
		core.NewCase(
			core.Attributes{"Price": core.Int(12000), "Body": core.Symbol("sedan")},
			core.Attributes{"Manufacturer": core.Symbol("audi"), "Model": core.Symbol("a4")},
		),
		core.NewCase(
			core.Attributes{"Price": core.Int(10000), "Body": core.Symbol("suv")},
			core.Attributes{"Manufacturer": core.Symbol("skoda"), "Model": core.Symbol("kodiaq")},
		),
	})
	require.NoError(t, err)
	require.NoError(t, cb.AddSymbolicSim("Body", similarity.SymbolicTable{
		"suv":   {"suv": 1, "sedan": 0.3},
		"sedan": {"suv": 0.3, "sedan": 1},
	}))
	return cb
}

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase("", WithInMemory())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewDatabase(t *testing.T) {
	t.Run("create new database", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		db, err := NewDatabase(tmpDir)
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()

		assert.NotNil(t, db.Repository())
		assert.NotNil(t, db.backend)
		assert.NotNil(t, db.logger)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(tmpFile, []byte("test"), 0644))

		db, err := NewDatabase(tmpFile)
		assert.Error(t, err)
		assert.Nil(t, db)
	})
}

func TestDatabase_ImportOpen(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)

	var progress bytes.Buffer
	require.NoError(t, db.Import(ctx, "cars", newCarBase(t), &progress))
	assert.Contains(t, progress.String(), "cars: 3/3 cases")

	cb, err := db.Open(ctx, "cars")
	require.NoError(t, err)
	defer cb.Release()
	assert.Equal(t, 3, cb.Len())

	query := core.NewQuery(core.Attributes{"Price": core.Int(10000), "Body": core.Symbol("suv")})
	result, err := cb.Retrieve(ctx, query, casebase.Assignment{
		casebase.Assign("Price", similarity.Manhattan),
		casebase.Assign("Body", similarity.Table),
	})
	require.NoError(t, err)
	assert.Equal(t, "Volkswagen tiguan", result.String())
	assert.InDelta(t, 2.0, result.Similarity, 1e-9)
}

func TestDatabase_OpenWithWorkers(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	require.NoError(t, db.Import(ctx, "cars", newCarBase(t), nil))

	cb, err := db.Open(ctx, "cars", casebase.WithWorkers(2), casebase.WithShardSize(1))
	require.NoError(t, err)
	defer cb.Release()

	query := core.NewQuery(core.Attributes{"Price": core.Int(12000), "Body": core.Symbol("sedan")})
	result, err := cb.Retrieve(ctx, query, casebase.Assignment{casebase.Assign("Price", similarity.Euclidean)})
	require.NoError(t, err)
	assert.Equal(t, "Audi a4", result.String())
}

func TestDatabase_OpenMissing(t *testing.T) {
	db := newTestDatabase(t)
	_, err := db.Open(context.Background(), "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDatabase_ListDelete(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)

	require.NoError(t, db.Import(ctx, "cars", newCarBase(t), nil))
	require.NoError(t, db.Import(ctx, "autos", newCarBase(t), nil))

	infos, err := db.List(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "autos", infos[0].Name)

	require.NoError(t, db.Delete(ctx, "autos"))
	infos, err = db.List(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "cars", infos[0].Name)
}

func TestDatabase_ImportProject(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	files := map[string]string{
		"cars.yaml": "name: cars\nsource: cars.json\nproblem: [{name: Price, type: integer}]\nsolution: [{name: Model}]\n",
		"cars.json": `[{"Price": 10000, "Model": "tiguan"}, {"Price": 12000, "Model": "a4"}]`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	project, err := config.Load(filepath.Join(dir, "cars.yaml"))
	require.NoError(t, err)

	db := newTestDatabase(t)
	built, err := db.ImportProject(ctx, project, nil)
	require.NoError(t, err)
	defer built.Release()
	assert.Equal(t, 2, built.Len())

	info, err := db.Repository().GetCaseBaseInfo(ctx, "cars")
	require.NoError(t, err)
	assert.Equal(t, 2, info.CaseCount)
}
