// Package sqlite implements the durable store on an embedded SQLite
// database. It is the local-development and single-host deployment
// backend; the schema mirrors the PostgreSQL one.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/solvecircle/dailyproof/internal/domain/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS partitions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS partition_rows (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    partition_id INTEGER NOT NULL REFERENCES partitions(id) ON DELETE CASCADE,
    cells TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_partition_rows_partition_order
    ON partition_rows(partition_id, id);
`

// PartitionStore implements storage.Store on SQLite.
type PartitionStore struct {
	db *sql.DB
}

var _ storage.Store = (*PartitionStore)(nil)

// Open opens (or creates) the database at path, applies the production
// pragmas and the schema, and returns the store. Use ":memory:" for an
// ephemeral database; note each ":memory:" connection is its own
// database, so the pool is pinned to one connection in that case.
func Open(path string) (*PartitionStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	return &PartitionStore{db: db}, nil
}

// Close closes the underlying database.
func (s *PartitionStore) Close() error {
	return s.db.Close()
}

// CreatePartition creates a named partition. Idempotent.
func (s *PartitionStore) CreatePartition(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO partitions (name) VALUES (?) ON CONFLICT (name) DO NOTHING",
		name,
	)
	if err != nil {
		return fmt.Errorf("sqlite: failed to create partition %q: %w", name, err)
	}
	return nil
}

// GetPartition checks that a partition exists.
func (s *PartitionStore) GetPartition(ctx context.Context, name string) error {
	var id int64
	err := s.db.QueryRowContext(ctx, "SELECT id FROM partitions WHERE name = ?", name).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrPartitionNotFound
		}
		return fmt.Errorf("sqlite: failed to get partition %q: %w", name, err)
	}
	return nil
}

// AppendRow appends one row to a partition.
func (s *PartitionStore) AppendRow(ctx context.Context, partition string, row storage.Row) error {
	cells, err := json.Marshal([]string(row))
	if err != nil {
		return fmt.Errorf("sqlite: failed to encode row: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO partition_rows (partition_id, cells)
		SELECT id, ? FROM partitions WHERE name = ?
	`, string(cells), partition)
	if err != nil {
		return fmt.Errorf("sqlite: failed to append row to %q: %w", partition, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: failed to check append result: %w", err)
	}
	if affected == 0 {
		return storage.ErrPartitionNotFound
	}
	return nil
}

// ReadAllRows returns every row of a partition in append order.
func (s *PartitionStore) ReadAllRows(ctx context.Context, partition string) ([]storage.Row, error) {
	if err := s.GetPartition(ctx, partition); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.cells
		FROM partition_rows r
		JOIN partitions p ON p.id = r.partition_id
		WHERE p.name = ?
		ORDER BY r.id
	`, partition)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to read partition %q: %w", partition, err)
	}
	defer rows.Close()

	var out []storage.Row
	for rows.Next() {
		var cells string
		if err := rows.Scan(&cells); err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan row: %w", err)
		}
		var row []string
		if err := json.Unmarshal([]byte(cells), &row); err != nil {
			return nil, fmt.Errorf("sqlite: corrupt row in partition %q: %w", partition, err)
		}
		out = append(out, storage.Row(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: failed to iterate partition %q: %w", partition, err)
	}
	return out, nil
}

// ListPartitionNames returns all partition names in lexicographic order.
func (s *PartitionStore) ListPartitionNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM partitions ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to list partitions: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan partition name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
