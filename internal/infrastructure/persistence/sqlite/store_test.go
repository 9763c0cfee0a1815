package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solvecircle/dailyproof/internal/domain/storage"
	"github.com/solvecircle/dailyproof/internal/infrastructure/persistence/sqlite"
)

func openStore(t *testing.T) *sqlite.PartitionStore {
	t.Helper()
	store, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCreatePartition_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	require.NoError(t, store.CreatePartition(ctx, "2026-01-15"))
	require.NoError(t, store.AppendRow(ctx, "2026-01-15", storage.Row{"a", "b"}))

	// Second create must not fail or disturb existing rows.
	require.NoError(t, store.CreatePartition(ctx, "2026-01-15"))

	rows, err := store.ReadAllRows(ctx, "2026-01-15")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, storage.Row{"a", "b"}, rows[0])
}

func TestGetPartition_NotFound(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	err := store.GetPartition(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrPartitionNotFound)
}

func TestAppendRow_MissingPartition(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	err := store.AppendRow(ctx, "missing", storage.Row{"x"})
	assert.ErrorIs(t, err, storage.ErrPartitionNotFound)
}

func TestReadAllRows_AppendOrder(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	require.NoError(t, store.CreatePartition(ctx, "p"))
	require.NoError(t, store.AppendRow(ctx, "p", storage.Row{"first"}))
	require.NoError(t, store.AppendRow(ctx, "p", storage.Row{"second"}))
	require.NoError(t, store.AppendRow(ctx, "p", storage.Row{"third"}))

	rows, err := store.ReadAllRows(ctx, "p")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "first", rows[0][0])
	assert.Equal(t, "second", rows[1][0])
	assert.Equal(t, "third", rows[2][0])
}

func TestReadAllRows_MissingPartition(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	_, err := store.ReadAllRows(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrPartitionNotFound)
}

func TestListPartitionNames_Sorted(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	for _, name := range []string{"2026-01-02", "Registered_Members", "2026-01-01"} {
		require.NoError(t, store.CreatePartition(ctx, name))
	}

	names, err := store.ListPartitionNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-01-01", "2026-01-02", "Registered_Members"}, names)
}

func TestRows_PreserveUnicodeCells(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	require.NoError(t, store.CreatePartition(ctx, "p"))
	require.NoError(t, store.AppendRow(ctx, "p", storage.Row{"2026-01-15", "Әлия", "https://x/y", "екі қосынды"}))

	rows, err := store.ReadAllRows(ctx, "p")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Әлия", rows[0][1])
}
