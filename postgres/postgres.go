// Package postgres provides a PostgreSQL-backed descriptor table. Components
// are stored as DOUBLE PRECISION[] so float64 values round-trip exactly.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/viant/facevec/config"
	"github.com/viant/facevec/vector"
)

// DefaultTableName is the PostgreSQL table holding descriptors.
const DefaultTableName = "face_descriptors"

// Table implements vector.Table on PostgreSQL.
type Table struct {
	db    *sql.DB
	table string
}

// Open connects to PostgreSQL, verifies the connection and runs migrations.
func Open(ctx context.Context, cfg config.BackendConfig) (*Table, error) {
	if cfg.DSN == "" {
		return nil, errors.New("postgres: database URL is required")
	}
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	t := &Table{db: db, table: cfg.Table}
	if t.table == "" {
		t.table = DefaultTableName
	}
	if err := t.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return t, nil
}

// Migrate creates the descriptor table if it does not exist.
func (t *Table) Migrate(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    position   BIGINT PRIMARY KEY CHECK (position >= 0),
    components DOUBLE PRECISION[] NOT NULL CHECK (cardinality(components) > 0),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`, pq.QuoteIdentifier(t.table))
	if _, err := t.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("postgres: migrate: %w", err)
	}
	return nil
}

// Append inserts d at position. It runs in a transaction that locks the
// table so the position and dimension checks cannot race another writer.
func (t *Table) Append(ctx context.Context, position uint64, d vector.Descriptor) error {
	if err := vector.Validate(d); err != nil {
		return err
	}
	name := pq.QuoteIdentifier(t.table)
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`LOCK TABLE %s IN SHARE ROW EXCLUSIVE MODE`, name)); err != nil {
		return fmt.Errorf("postgres: lock: %w", err)
	}
	var (
		count int64
		dim   sql.NullInt64
	)
	err = tx.QueryRowContext(ctx, fmt.Sprintf(
		`SELECT COUNT(*), (SELECT cardinality(components) FROM %[1]s ORDER BY position LIMIT 1) FROM %[1]s`, name),
	).Scan(&count, &dim)
	if err != nil {
		return fmt.Errorf("postgres: inspect: %w", err)
	}
	if uint64(count) != position {
		return fmt.Errorf("postgres: append position %d out of sequence, table holds %d", position, count)
	}
	if dim.Valid {
		if err := vector.CheckDimension(d, int(dim.Int64)); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (position, components) VALUES ($1, $2)`, name),
		int64(position), pq.Float64Array(d),
	); err != nil {
		return fmt.Errorf("postgres: append position %d: %w", position, err)
	}
	return tx.Commit()
}

// Load reads every descriptor ordered by position.
func (t *Table) Load(ctx context.Context) ([]vector.Descriptor, error) {
	rows, err := t.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT position, components FROM %s ORDER BY position`, pq.QuoteIdentifier(t.table)))
	if err != nil {
		return nil, fmt.Errorf("postgres: load: %w", err)
	}
	defer rows.Close()

	var out []vector.Descriptor
	for rows.Next() {
		var (
			position   int64
			components pq.Float64Array
		)
		if err := rows.Scan(&position, &components); err != nil {
			return nil, err
		}
		if position != int64(len(out)) {
			return nil, fmt.Errorf("postgres: load: position gap: expected %d, found %d", len(out), position)
		}
		out = append(out, vector.Descriptor(components))
	}
	return out, rows.Err()
}

// Count returns the number of stored descriptors.
func (t *Table) Count(ctx context.Context) (uint64, error) {
	var n int64
	if err := t.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, pq.QuoteIdentifier(t.table))).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count: %w", err)
	}
	return uint64(n), nil
}

// Close closes the connection pool.
func (t *Table) Close() error {
	if t.db == nil {
		return nil
	}
	if err := t.db.Close(); err != nil {
		return fmt.Errorf("postgres: close: %w", err)
	}
	return nil
}

var _ vector.Table = (*Table)(nil)
