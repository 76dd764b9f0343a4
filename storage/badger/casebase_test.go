package badger

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/poiesic/cbr/core"
	"github.com/poiesic/cbr/similarity"
	"github.com/poiesic/cbr/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var valueComparer = cmp.Comparer(func(a, b core.Value) bool { return a == b })

func newTestRepository(t *testing.T) storage.CaseBaseRepository {
	t.Helper()
	repo, err := NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func carSnapshot(t *testing.T, name string, n int) *storage.Snapshot {
	t.Helper()
	schema, err := core.NewSchema(
		[]core.Field{{Name: "Price", Type: core.FieldInteger}, {Name: "Body", Type: core.FieldSymbol}},
		core.Fields("Model"),
	)
	require.NoError(t, err)

	bodies := []string{"suv", "sedan"}
	cases := make([]*core.Case, n)
	for i := range cases {
		cases[i] = core.NewCase(
			core.Attributes{"Price": core.Int(int64(10000 + i)), "Body": core.Symbol(bodies[i%2])},
			core.Attributes{"Model": core.Symbol(fmt.Sprintf("model-%d", i))},
		)
	}
	tables := map[string]similarity.SymbolicTable{
		"Body": {"suv": {"suv": 1, "sedan": 0.3}, "sedan": {"suv": 0.3, "sedan": 1}},
	}
	return storage.NewSnapshot(name, schema, cases, tables)
}

func TestCaseRepository_SaveLoad(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	snapshot := carSnapshot(t, "cars", 2500)

	var written []int
	require.NoError(t, repo.SaveCaseBase(ctx, snapshot, func(n int) { written = append(written, n) }))
	assert.Equal(t, []int{1000, 1000, 500}, written)

	loaded, err := repo.LoadCaseBase(ctx, "cars")
	require.NoError(t, err)

	if diff := cmp.Diff(snapshot, loaded, valueComparer); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestCaseRepository_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	require.NoError(t, repo.SaveCaseBase(ctx, carSnapshot(t, "cars", 10), nil))

	smaller := carSnapshot(t, "cars", 3)
	smaller.Tables = nil
	require.NoError(t, repo.SaveCaseBase(ctx, smaller, nil))

	loaded, err := repo.LoadCaseBase(ctx, "cars")
	require.NoError(t, err)
	assert.Len(t, loaded.Cases, 3)
	assert.Equal(t, 3, loaded.CaseCount)
	assert.Empty(t, loaded.Tables)
}

func TestCaseRepository_EmptyCaseBase(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	require.NoError(t, repo.SaveCaseBase(ctx, carSnapshot(t, "empty", 0), nil))

	loaded, err := repo.LoadCaseBase(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, loaded.Cases)
}

func TestCaseRepository_Errors(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	t.Run("load missing", func(t *testing.T) {
		_, err := repo.LoadCaseBase(ctx, "nope")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("info missing", func(t *testing.T) {
		_, err := repo.GetCaseBaseInfo(ctx, "nope")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("delete missing", func(t *testing.T) {
		assert.ErrorIs(t, repo.DeleteCaseBase(ctx, "nope"), storage.ErrNotFound)
	})

	t.Run("invalid snapshot", func(t *testing.T) {
		err := repo.SaveCaseBase(ctx, carSnapshot(t, "", 1), nil)
		assert.ErrorIs(t, err, storage.ErrInvalidSnapshot)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		err := repo.SaveCaseBase(cctx, carSnapshot(t, "big", 1500), nil)
		assert.ErrorIs(t, err, context.Canceled)

		_, err = repo.LoadCaseBase(ctx, "big")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestCaseRepository_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	for _, name := range []string{"trucks", "cars", "bikes"} {
		require.NoError(t, repo.SaveCaseBase(ctx, carSnapshot(t, name, 2), nil))
	}

	infos, err := repo.ListCaseBases(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 3)
	assert.Equal(t, "bikes", infos[0].Name)
	assert.Equal(t, "cars", infos[1].Name)
	assert.Equal(t, "trucks", infos[2].Name)
	assert.Equal(t, 2, infos[0].CaseCount)
	assert.Equal(t, []string{"Price", "Body"}, infos[0].Schema.ProblemFields())

	require.NoError(t, repo.DeleteCaseBase(ctx, "cars"))

	infos, err = repo.ListCaseBases(ctx)
	require.NoError(t, err)
	assert.Len(t, infos, 2)

	_, err = repo.LoadCaseBase(ctx, "cars")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	loaded, err := repo.LoadCaseBase(ctx, "trucks")
	require.NoError(t, err)
	assert.Len(t, loaded.Cases, 2)
}

func TestCaseRepository_Closed(t *testing.T) {
	repo, err := NewMemoryRepository()
	require.NoError(t, err)
	require.NoError(t, repo.Close())
	require.NoError(t, repo.Close())

	_, err = repo.ListCaseBases(context.Background())
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestCaseRepository_SharedBackend(t *testing.T) {
	backend, err := OpenBackend("", true, nil)
	require.NoError(t, err)
	defer backend.Close()

	repo := NewCaseRepository(backend)
	require.NoError(t, repo.SaveCaseBase(context.Background(), carSnapshot(t, "cars", 1), nil))
	require.NoError(t, repo.Close())
	assert.False(t, backend.IsClosed())
}

func TestNewRepository_FileSystem(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	repo, err := NewRepository(dir)
	require.NoError(t, err)
	require.NoError(t, repo.SaveCaseBase(ctx, carSnapshot(t, "cars", 5), nil))
	require.NoError(t, repo.Close())

	reopened, err := NewRepository(dir)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.LoadCaseBase(ctx, "cars")
	require.NoError(t, err)
	assert.Len(t, loaded.Cases, 5)
	assert.Equal(t, core.Symbol("model-4"), loaded.Cases[4].Solution["Model"])
}
