// Package storage defines the durable-store collaborator contract: a
// key-value-of-rows persistence where partition names double as calendar
// dates (day partitions) and report titles. The core depends on this
// interface and never on a concrete backend; implementations live in
// internal/infrastructure/persistence.
package storage

import (
	"context"
	"errors"
)

// Row is one appended record. Rows are positional string tuples, matching
// the sheet-like shape of the backing store.
type Row []string

// ErrPartitionNotFound is returned by GetPartition and ReadAllRows for an
// unknown partition name.
var ErrPartitionNotFound = errors.New("partition not found")

// Store is the durable persistence collaborator.
//
// Invariants every implementation must hold:
//   - CreatePartition is idempotent: creating an existing partition is
//     success, not error. A concurrent create must never corrupt rows.
//   - AppendRow is append-only; there is no update or delete path.
//   - Partition names, once created, are never renamed.
type Store interface {
	// CreatePartition creates the named partition if absent.
	CreatePartition(ctx context.Context, name string) error

	// GetPartition checks that the named partition exists.
	// Returns ErrPartitionNotFound if it does not.
	GetPartition(ctx context.Context, name string) error

	// AppendRow appends one row to the named partition.
	// Returns ErrPartitionNotFound if the partition does not exist.
	AppendRow(ctx context.Context, partition string, row Row) error

	// ReadAllRows returns every row of the named partition in append order.
	// Returns ErrPartitionNotFound if the partition does not exist.
	ReadAllRows(ctx context.Context, partition string) ([]Row, error)

	// ListPartitionNames returns the names of all partitions, sorted
	// lexicographically. Day-shaped names therefore sort chronologically.
	ListPartitionNames(ctx context.Context) ([]string, error)
}
