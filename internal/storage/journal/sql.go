package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"
)

// iteratePage bounds the rows fetched per query during Iterate
const iteratePage = 500

const defaultTimeout = 10 * time.Second

// dialect captures the differences between the supported SQL engines.
type dialect struct {
	name   string
	schema string

	// numbered placeholders ($1, $2) instead of ?
	numbered bool
}

// SQLJournal implements Journal over database/sql.
type SQLJournal struct {
	mu      sync.RWMutex
	db      *sql.DB
	dialect dialect
	timeout time.Duration
}

const columns = "id, sequence, hash, tx_type, account, tx_json, result, applied, events_json, ids_json, created_at"

// newSQLJournal wraps an open handle and creates the schema.
func newSQLJournal(ctx context.Context, db *sql.DB, d dialect, timeout time.Duration) (*SQLJournal, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	j := &SQLJournal{db: db, dialect: d, timeout: timeout}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if _, err := db.ExecContext(ctx, d.schema); err != nil {
		return nil, NewSchemaError("open", "failed to initialize "+d.name+" schema", err)
	}
	return j, nil
}

// rebind rewrites ? placeholders for dialects that number them.
func (j *SQLJournal) rebind(query string) string {
	if !j.dialect.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (j *SQLJournal) handle() (*sql.DB, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.db == nil {
		return nil, ErrClosed
	}
	return j.db, nil
}

func (j *SQLJournal) Append(ctx context.Context, e *Entry) error {
	db, err := j.handle()
	if err != nil {
		return err
	}
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}

	ids, err := json.Marshal(e.IDs)
	if err != nil {
		return NewDataError("append", "failed to encode ids", err)
	}
	events := []byte(e.Events)
	if len(events) == 0 {
		events = []byte("[]")
	}

	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	query := j.rebind(`INSERT INTO journal (sequence, hash, tx_type, account, tx_json, result, applied, events_json, ids_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	err = db.QueryRowContext(ctx, query,
		int64(e.Sequence), e.Hash, e.TxType, e.Account, string(e.Tx),
		e.Result, e.Applied, string(events), string(ids), e.Time.UnixNano(),
	).Scan(&e.ID)
	if err != nil {
		return NewQueryError("append", "failed to insert entry", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var (
		e       Entry
		seq     int64
		tx      string
		events  string
		ids     string
		created int64
	)
	if err := row.Scan(&e.ID, &seq, &e.Hash, &e.TxType, &e.Account, &tx, &e.Result, &e.Applied, &events, &ids, &created); err != nil {
		return nil, err
	}
	e.Sequence = uint64(seq)
	e.Tx = json.RawMessage(tx)
	e.Events = json.RawMessage(events)
	e.Time = time.Unix(0, created).UTC()
	if ids != "" && ids != "null" {
		if err := json.Unmarshal([]byte(ids), &e.IDs); err != nil {
			return nil, NewDataError("scan", "failed to decode ids", err)
		}
	}
	return &e, nil
}

func (j *SQLJournal) Get(ctx context.Context, id int64) (*Entry, error) {
	db, err := j.handle()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	row := db.QueryRowContext(ctx, j.rebind("SELECT "+columns+" FROM journal WHERE id = ?"), id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, NewQueryError("get", "failed to read entry", err)
	}
	return e, nil
}

func (j *SQLJournal) Iterate(ctx context.Context, after int64, fn func(*Entry) error) error {
	db, err := j.handle()
	if err != nil {
		return err
	}
	query := j.rebind("SELECT " + columns + " FROM journal WHERE id > ? ORDER BY id LIMIT ?")

	for {
		page, err := j.page(ctx, db, query, after)
		if err != nil {
			return err
		}
		for _, e := range page {
			if err := fn(e); err != nil {
				return err
			}
			after = e.ID
		}
		if len(page) < iteratePage {
			return nil
		}
	}
}

// page reads one batch so fn never runs while a cursor is open.
func (j *SQLJournal) page(ctx context.Context, db *sql.DB, query string, after int64) ([]*Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	rows, err := db.QueryContext(ctx, query, after, iteratePage)
	if err != nil {
		return nil, NewQueryError("iterate", "failed to query entries", err)
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, NewQueryError("iterate", "failed to scan entry", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, NewQueryError("iterate", "row iteration failed", err)
	}
	return out, nil
}

func (j *SQLJournal) LastSequence(ctx context.Context) (uint64, error) {
	db, err := j.handle()
	if err != nil {
		return 0, err
	}
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	var seq sql.NullInt64
	if err := db.QueryRowContext(ctx, "SELECT MAX(sequence) FROM journal").Scan(&seq); err != nil {
		return 0, NewQueryError("last_sequence", "failed to query max sequence", err)
	}
	if !seq.Valid {
		return 0, nil
	}
	return uint64(seq.Int64), nil
}

func (j *SQLJournal) Count(ctx context.Context) (int64, error) {
	db, err := j.handle()
	if err != nil {
		return 0, err
	}
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	var count int64
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM journal").Scan(&count); err != nil {
		return 0, NewQueryError("count", "failed to count entries", err)
	}
	return count, nil
}

func (j *SQLJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.db == nil {
		return nil
	}
	err := j.db.Close()
	j.db = nil
	if err != nil {
		return NewConnectionError("close", "failed to close journal", err)
	}
	return nil
}
