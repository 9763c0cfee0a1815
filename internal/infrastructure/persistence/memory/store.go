// Package memory implements in-process infrastructure: a durable-store
// stand-in used by tests and dev mode, and the default daily counter.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/solvecircle/dailyproof/internal/domain/storage"
)

// Store is an in-memory storage.Store. It honors the same contracts as
// the durable backends (idempotent creation, append-only rows) so the
// core behaves identically under test and in --dev mode. Contents are
// lost on restart.
type Store struct {
	mu         sync.RWMutex
	partitions map[string][]storage.Row
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		partitions: make(map[string][]storage.Row),
	}
}

// CreatePartition creates the named partition if absent. Idempotent.
func (s *Store) CreatePartition(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.partitions[name]; !exists {
		s.partitions[name] = []storage.Row{}
	}
	return nil
}

// GetPartition checks that the named partition exists.
func (s *Store) GetPartition(ctx context.Context, name string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.partitions[name]; !exists {
		return storage.ErrPartitionNotFound
	}
	return nil
}

// AppendRow appends one row to the named partition.
func (s *Store) AppendRow(ctx context.Context, partition string, row storage.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, exists := s.partitions[partition]
	if !exists {
		return storage.ErrPartitionNotFound
	}

	copied := make(storage.Row, len(row))
	copy(copied, row)
	s.partitions[partition] = append(rows, copied)
	return nil
}

// ReadAllRows returns every row of the partition in append order.
func (s *Store) ReadAllRows(ctx context.Context, partition string) ([]storage.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, exists := s.partitions[partition]
	if !exists {
		return nil, storage.ErrPartitionNotFound
	}

	out := make([]storage.Row, len(rows))
	for i, row := range rows {
		copied := make(storage.Row, len(row))
		copy(copied, row)
		out[i] = copied
	}
	return out, nil
}

// ListPartitionNames returns all partition names sorted lexicographically.
func (s *Store) ListPartitionNames(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.partitions))
	for name := range s.partitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
