package vector

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLiteTable is a Table backed by a SQLite database. It takes ownership of
// the *sql.DB: Close closes it.
//
// Nearest relies on the vec_l2 SQL function, which engine.Open registers
// before any connection is created.
type SQLiteTable struct {
	db    *sql.DB
	table string
}

// NewSQLiteTable creates a SQLite-backed Table using the default table name.
// It ensures the schema exists in the provided database.
func NewSQLiteTable(db *sql.DB) (*SQLiteTable, error) {
	return NewNamedSQLiteTable(db, DefaultTableName)
}

// NewNamedSQLiteTable is NewSQLiteTable with an explicit table name. The
// name is interpolated into SQL and must come from trusted configuration.
func NewNamedSQLiteTable(db *sql.DB, table string) (*SQLiteTable, error) {
	if db == nil {
		return nil, fmt.Errorf("vector: db is nil")
	}
	if table == "" {
		table = DefaultTableName
	}
	if err := EnsureSchema(db, table); err != nil {
		return nil, err
	}
	return &SQLiteTable{db: db, table: table}, nil
}

// DB returns the underlying database handle.
func (s *SQLiteTable) DB() *sql.DB { return s.db }

// Append inserts d at position. The insert trigger rejects out-of-sequence
// positions and dimension changes.
func (s *SQLiteTable) Append(ctx context.Context, position uint64, d Descriptor) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := Validate(d); err != nil {
		return err
	}
	blob, err := EncodeDescriptor(d)
	if err != nil {
		return err
	}
	stmt := fmt.Sprintf(`INSERT INTO %s(position, dim, components) VALUES(?, ?, ?)`, s.table)
	if _, err := s.db.ExecContext(ctx, stmt, int64(position), len(d), blob); err != nil {
		return fmt.Errorf("vector: append position %d: %w", position, err)
	}
	return nil
}

// Load reads every descriptor in position order and verifies that positions
// are dense and dimensions uniform.
func (s *SQLiteTable) Load(ctx context.Context) ([]Descriptor, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT position, dim, components FROM %s ORDER BY position`, s.table))
	if err != nil {
		return nil, fmt.Errorf("vector: load: %w", err)
	}
	defer rows.Close()

	var out []Descriptor
	dim := 0
	for rows.Next() {
		var (
			position int64
			rowDim   int
			blob     []byte
		)
		if err := rows.Scan(&position, &rowDim, &blob); err != nil {
			return nil, err
		}
		if position != int64(len(out)) {
			return nil, fmt.Errorf("vector: load: position gap: expected %d, found %d", len(out), position)
		}
		d, err := DecodeDescriptor(blob)
		if err != nil {
			return nil, fmt.Errorf("vector: load position %d: %w", position, err)
		}
		if len(d) != rowDim {
			return nil, fmt.Errorf("vector: load position %d: blob holds %d components, row says %d", position, len(d), rowDim)
		}
		if dim == 0 {
			dim = rowDim
		} else if rowDim != dim {
			return nil, fmt.Errorf("vector: load position %d: %w", position, &DimensionMismatchError{Expected: dim, Actual: rowDim})
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of stored descriptors.
func (s *SQLiteTable) Count(ctx context.Context) (uint64, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var n int64
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("vector: count: %w", err)
	}
	return uint64(n), nil
}

// Dim returns the established dimension, or 0 when the table is empty.
func (s *SQLiteTable) Dim(ctx context.Context) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var dim int
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT dim FROM %s ORDER BY position LIMIT 1`, s.table)).Scan(&dim)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("vector: dim: %w", err)
	}
	return dim, nil
}

// Nearest scans the table inside SQLite using vec_l2 and returns the closest
// position and its distance. Ties resolve to the lowest position. ok is false
// when the table is empty.
func (s *SQLiteTable) Nearest(ctx context.Context, query Descriptor) (position uint64, distance float64, ok bool, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	dim, err := s.Dim(ctx)
	if err != nil || dim == 0 {
		return 0, 0, false, err
	}
	if err := CheckDimension(query, dim); err != nil {
		return 0, 0, false, err
	}
	if err := Validate(query); err != nil {
		return 0, 0, false, err
	}
	q, err := EncodeDescriptor(query)
	if err != nil {
		return 0, 0, false, err
	}
	stmt := fmt.Sprintf(`SELECT position, vec_l2(components, ?) AS distance FROM %s ORDER BY distance ASC, position ASC LIMIT 1`, s.table)
	var pos int64
	if err := s.db.QueryRowContext(ctx, stmt, q).Scan(&pos, &distance); err != nil {
		return 0, 0, false, fmt.Errorf("vector: nearest: %w", err)
	}
	return uint64(pos), distance, true, nil
}

// Close closes the underlying database.
func (s *SQLiteTable) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ensure SQLiteTable satisfies the Table interface.
var _ Table = (*SQLiteTable)(nil)
