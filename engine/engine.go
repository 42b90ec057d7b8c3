package engine

import (
	"database/sql"
	"strings"

	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

// filePragmas apply to every pooled connection of a file database.
const filePragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"

// Open opens a SQLite database using the modernc.org/sqlite driver. The
// vector SQL functions are registered before the first connection.
//
// For file-based databases, pass a path like "./faces.db"; busy timeout and
// WAL pragmas are appended unless the DSN already carries parameters. For
// in-memory databases, pass ":memory:"; the pool is then pinned to a single
// connection so every query sees the same database.
func Open(dsn string) (*sql.DB, error) {
	if err := RegisterVectorFunctions(nil); err != nil {
		return nil, err
	}
	memory := isMemory(dsn)
	if !memory && !strings.Contains(dsn, "?") {
		dsn += "?" + filePragmas
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if memory {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

func isMemory(dsn string) bool {
	return dsn == ":memory:" || strings.HasPrefix(dsn, "file::memory:") || strings.Contains(dsn, "mode=memory")
}
