package vector

import (
	"database/sql"
	"fmt"
	"strings"
)

// DefaultTableName is the SQLite table holding descriptors.
const DefaultTableName = "descriptors"

// TableDDL returns the CREATE TABLE statement for a descriptor table.
// position is the descriptor index; dim is repeated per row so a damaged
// table can be detected on load.
func TableDDL(table string) string {
	return `CREATE TABLE IF NOT EXISTS ` + table + ` (
    position   INTEGER PRIMARY KEY,
    dim        INTEGER NOT NULL CHECK (dim > 0),
    components BLOB NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`
}

// AppendOnlyTriggers returns trigger DDL that keeps a descriptor table dense,
// uniform and immutable: inserts must land at the next position with the
// established dimension, and updates and deletes are aborted.
func AppendOnlyTriggers(table string) []string {
	base := sanitizeIdentifier(table)

	insertTrig := fmt.Sprintf(`CREATE TRIGGER IF NOT EXISTS %[1]s_bi BEFORE INSERT ON %[2]s
BEGIN
    SELECT RAISE(ABORT, 'descriptor position out of sequence')
    WHERE NEW.position != (SELECT COUNT(*) FROM %[2]s);
    SELECT RAISE(ABORT, 'descriptor dimension mismatch')
    WHERE EXISTS (SELECT 1 FROM %[2]s WHERE dim != NEW.dim LIMIT 1);
END;`, base, table)

	updateTrig := fmt.Sprintf(`CREATE TRIGGER IF NOT EXISTS %[1]s_bu BEFORE UPDATE ON %[2]s
BEGIN
    SELECT RAISE(ABORT, 'descriptors are immutable');
END;`, base, table)

	deleteTrig := fmt.Sprintf(`CREATE TRIGGER IF NOT EXISTS %[1]s_bd BEFORE DELETE ON %[2]s
BEGIN
    SELECT RAISE(ABORT, 'descriptors are append-only');
END;`, base, table)

	return []string{insertTrig, updateTrig, deleteTrig}
}

// EnsureSchema creates the descriptor table and its triggers in the provided
// database if they do not already exist.
func EnsureSchema(db *sql.DB, table string) error {
	if table == "" {
		table = DefaultTableName
	}
	if _, err := db.Exec(TableDDL(table)); err != nil {
		return fmt.Errorf("vector: create table %s: %w", table, err)
	}
	for _, trig := range AppendOnlyTriggers(table) {
		if _, err := db.Exec(trig); err != nil {
			return fmt.Errorf("vector: create trigger on %s: %w", table, err)
		}
	}
	return nil
}

func sanitizeIdentifier(name string) string {
	if name == "" {
		return ""
	}
	replacer := strings.NewReplacer(".", "_", "-", "_")
	return replacer.Replace(name)
}
