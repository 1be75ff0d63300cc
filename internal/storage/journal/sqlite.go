package journal

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

var sqliteDialect = dialect{
	name: DriverSQLite,
	schema: `CREATE TABLE IF NOT EXISTS journal (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence    INTEGER NOT NULL,
		hash        TEXT NOT NULL,
		tx_type     TEXT NOT NULL,
		account     TEXT NOT NULL,
		tx_json     TEXT NOT NULL,
		result      TEXT NOT NULL,
		applied     INTEGER NOT NULL,
		events_json TEXT NOT NULL,
		ids_json    TEXT NOT NULL,
		created_at  INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS journal_sequence_idx ON journal (sequence);
	CREATE INDEX IF NOT EXISTS journal_account_idx ON journal (account);`,
}

// OpenSQLite opens a file-backed journal. The DSN is a file path or a
// modernc.org/sqlite URI.
func OpenSQLite(ctx context.Context, cfg Config) (*SQLJournal, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, NewConnectionError("open", "failed to open sqlite database", err)
	}
	// SQLite serializes writers
	db.SetMaxOpenConns(1)

	j, err := NewSQLite(ctx, db, cfg.Timeout)
	if err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

// NewSQLite wraps an existing sqlite handle.
func NewSQLite(ctx context.Context, db *sql.DB, timeout time.Duration) (*SQLJournal, error) {
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		return nil, NewSchemaError("open", "failed to enable WAL", err)
	}
	return newSQLJournal(ctx, db, sqliteDialect, timeout)
}
