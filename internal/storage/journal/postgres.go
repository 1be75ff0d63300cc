package journal

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

var postgresDialect = dialect{
	name:     DriverPostgres,
	numbered: true,
	schema: `CREATE TABLE IF NOT EXISTS journal (
		id          BIGSERIAL PRIMARY KEY,
		sequence    BIGINT NOT NULL,
		hash        TEXT NOT NULL,
		tx_type     TEXT NOT NULL,
		account     TEXT NOT NULL,
		tx_json     TEXT NOT NULL,
		result      TEXT NOT NULL,
		applied     BOOLEAN NOT NULL,
		events_json TEXT NOT NULL,
		ids_json    TEXT NOT NULL,
		created_at  BIGINT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS journal_sequence_idx ON journal (sequence);
	CREATE INDEX IF NOT EXISTS journal_account_idx ON journal (account);`,
}

// OpenPostgres connects with lib/pq and creates the schema.
func OpenPostgres(ctx context.Context, cfg Config) (*SQLJournal, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, NewConnectionError("open", "failed to open postgres connection", err)
	}
	configurePool(db, cfg)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, NewConnectionError("open", "failed to ping postgres", err)
	}

	j, err := NewPostgres(ctx, db, cfg.Timeout)
	if err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

// NewPostgres wraps an existing postgres handle.
func NewPostgres(ctx context.Context, db *sql.DB, timeout time.Duration) (*SQLJournal, error) {
	return newSQLJournal(ctx, db, postgresDialect, timeout)
}

func configurePool(db *sql.DB, cfg Config) {
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
}
