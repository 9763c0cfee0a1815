package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solvecircle/dailyproof/internal/domain/member"
	"github.com/solvecircle/dailyproof/internal/domain/storage"
)

func TestStore_CreatePartitionIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	require.NoError(t, s.CreatePartition(ctx, "2024-01-01"))
	require.NoError(t, s.AppendRow(ctx, "2024-01-01", storage.Row{"a"}))

	// Second create is success and must not wipe rows.
	require.NoError(t, s.CreatePartition(ctx, "2024-01-01"))

	rows, err := s.ReadAllRows(ctx, "2024-01-01")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestStore_MissingPartition(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	assert.ErrorIs(t, s.GetPartition(ctx, "nope"), storage.ErrPartitionNotFound)
	assert.ErrorIs(t, s.AppendRow(ctx, "nope", storage.Row{"a"}), storage.ErrPartitionNotFound)

	_, err := s.ReadAllRows(ctx, "nope")
	assert.ErrorIs(t, err, storage.ErrPartitionNotFound)
}

func TestStore_AppendOrderPreserved(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.CreatePartition(ctx, "p"))

	require.NoError(t, s.AppendRow(ctx, "p", storage.Row{"first"}))
	require.NoError(t, s.AppendRow(ctx, "p", storage.Row{"second"}))
	require.NoError(t, s.AppendRow(ctx, "p", storage.Row{"third"}))

	rows, err := s.ReadAllRows(ctx, "p")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "first", rows[0][0])
	assert.Equal(t, "third", rows[2][0])
}

func TestStore_ListPartitionNamesSorted(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	for _, name := range []string{"2024-01-03", "Registered_Members", "2024-01-01", "2024-01-02"} {
		require.NoError(t, s.CreatePartition(ctx, name))
	}

	names, err := s.ListPartitionNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03", "Registered_Members"}, names)
}

func TestStore_ReadReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.CreatePartition(ctx, "p"))
	require.NoError(t, s.AppendRow(ctx, "p", storage.Row{"original"}))

	rows, err := s.ReadAllRows(ctx, "p")
	require.NoError(t, err)
	rows[0][0] = "mutated"

	rows, err = s.ReadAllRows(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "original", rows[0][0])
}

func TestCounter_IncrementAndGet(t *testing.T) {
	ctx := context.Background()
	c := NewCounter()

	for i := 1; i <= 3; i++ {
		n, err := c.Increment(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}

	n, err := c.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = c.Get(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestCounter_ResetAll(t *testing.T) {
	ctx := context.Background()
	c := NewCounter()

	_, err := c.Increment(ctx, "alice")
	require.NoError(t, err)
	_, err = c.Increment(ctx, "bob")
	require.NoError(t, err)

	require.NoError(t, c.ResetAll(ctx))

	for _, h := range []member.Handle{"alice", "bob"} {
		n, err := c.Get(ctx, h)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	}
}

func TestCounter_Submitted(t *testing.T) {
	ctx := context.Background()
	c := NewCounter()

	_, err := c.Increment(ctx, "alice")
	require.NoError(t, err)

	submitted, err := c.Submitted(ctx)
	require.NoError(t, err)

	_, aliceIn := submitted["alice"]
	_, bobIn := submitted["bob"]
	assert.True(t, aliceIn)
	assert.False(t, bobIn)
}
