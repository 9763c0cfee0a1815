package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/solvecircle/dailyproof/internal/domain/storage"
)

// ══════════════════════════════════════════════════════════════════════════════
// PARTITION STORE IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// PartitionStore implements storage.Store on PostgreSQL.
type PartitionStore struct {
	conn *Connection
}

// NewPartitionStore creates a new PartitionStore.
func NewPartitionStore(conn *Connection) *PartitionStore {
	return &PartitionStore{conn: conn}
}

var _ storage.Store = (*PartitionStore)(nil)

// CreatePartition creates a named partition. Idempotent: ON CONFLICT DO
// NOTHING makes a lost race or a repeat call indistinguishable from
// success, which the domain's lazy day-partition creation relies on.
func (s *PartitionStore) CreatePartition(ctx context.Context, name string) error {
	_, err := s.conn.Exec(ctx,
		"INSERT INTO partitions (name) VALUES ($1) ON CONFLICT (name) DO NOTHING",
		name,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to create partition %q: %w", name, err)
	}
	return nil
}

// GetPartition checks that a partition exists.
func (s *PartitionStore) GetPartition(ctx context.Context, name string) error {
	var id int
	err := s.conn.QueryRow(ctx, "SELECT id FROM partitions WHERE name = $1", name).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.ErrPartitionNotFound
		}
		return fmt.Errorf("postgres: failed to get partition %q: %w", name, err)
	}
	return nil
}

// AppendRow appends one row to a partition. The insert resolves the
// partition id in the same statement; zero affected rows means the
// partition does not exist.
func (s *PartitionStore) AppendRow(ctx context.Context, partition string, row storage.Row) error {
	cells, err := json.Marshal([]string(row))
	if err != nil {
		return fmt.Errorf("postgres: failed to encode row: %w", err)
	}

	tag, err := s.conn.Exec(ctx, `
		INSERT INTO partition_rows (partition_id, cells)
		SELECT id, $2 FROM partitions WHERE name = $1
	`, partition, cells)
	if err != nil {
		return fmt.Errorf("postgres: failed to append row to %q: %w", partition, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrPartitionNotFound
	}
	return nil
}

// ReadAllRows returns every row of a partition in append order.
func (s *PartitionStore) ReadAllRows(ctx context.Context, partition string) ([]storage.Row, error) {
	if err := s.GetPartition(ctx, partition); err != nil {
		return nil, err
	}

	rows, err := s.conn.Query(ctx, `
		SELECT r.cells
		FROM partition_rows r
		JOIN partitions p ON p.id = r.partition_id
		WHERE p.name = $1
		ORDER BY r.id
	`, partition)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to read partition %q: %w", partition, err)
	}
	defer rows.Close()

	var out []storage.Row
	for rows.Next() {
		var cells []byte
		if err := rows.Scan(&cells); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan row: %w", err)
		}
		var row []string
		if err := json.Unmarshal(cells, &row); err != nil {
			return nil, fmt.Errorf("postgres: corrupt row in partition %q: %w", partition, err)
		}
		out = append(out, storage.Row(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to iterate partition %q: %w", partition, err)
	}
	return out, nil
}

// ListPartitionNames returns all partition names in lexicographic order.
func (s *PartitionStore) ListPartitionNames(ctx context.Context) ([]string, error) {
	rows, err := s.conn.Query(ctx, "SELECT name FROM partitions ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list partitions: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan partition name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
