// Package journal records every submitted transaction and its outcome in
// a relational database so the ledger state can be rebuilt by replay.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Driver names accepted by the [journal] config section
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNone     = "none"
)

// Entry is one submitted transaction.
type Entry struct {
	// ID orders entries in submission order. Assigned by Append.
	ID int64 `json:"id"`

	// Sequence is the engine sequence, zero when the transaction was not applied
	Sequence uint64 `json:"sequence"`

	Hash    string          `json:"hash"`
	TxType  string          `json:"tx_type"`
	Account string          `json:"account"`
	Tx      json.RawMessage `json:"tx"`
	Result  string          `json:"result"`
	Applied bool            `json:"applied"`
	Events  json.RawMessage `json:"events,omitempty"`
	IDs     []uint64        `json:"ids,omitempty"`
	Time    time.Time       `json:"time"`
}

// Journal is an append-only transaction log.
type Journal interface {
	// Append stores e and sets e.ID.
	Append(ctx context.Context, e *Entry) error

	// Get returns the entry with the given ID, or ErrNotFound.
	Get(ctx context.Context, id int64) (*Entry, error)

	// Iterate calls fn for every entry with ID greater than after, in ID
	// order. A non-nil error from fn stops the walk and is returned.
	Iterate(ctx context.Context, after int64, fn func(*Entry) error) error

	// LastSequence returns the highest applied sequence, or zero.
	LastSequence(ctx context.Context) (uint64, error)

	// Count returns the number of entries.
	Count(ctx context.Context) (int64, error)

	Close() error
}

// Config configures the relational journal.
type Config struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// Validate checks the configuration for the selected driver.
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverNone, "":
		return nil
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.Driver)
	}
	if c.DSN == "" {
		return ErrMissingDSN
	}
	if c.MaxOpenConns > 0 && c.MaxIdleConns > c.MaxOpenConns {
		return ErrInvalidPool
	}
	return nil
}

// Open opens the journal selected by cfg. The "none" driver returns a
// journal that discards entries.
func Open(ctx context.Context, cfg Config) (Journal, error) {
	if err := cfg.Validate(); err != nil {
		return nil, NewConfigurationError("open", "invalid configuration", err)
	}
	switch cfg.Driver {
	case DriverSQLite:
		return OpenSQLite(ctx, cfg)
	case DriverPostgres:
		return OpenPostgres(ctx, cfg)
	default:
		return Discard{}, nil
	}
}

// Discard is a Journal that stores nothing.
type Discard struct{}

func (Discard) Append(context.Context, *Entry) error { return nil }

func (Discard) Get(context.Context, int64) (*Entry, error) { return nil, ErrNotFound }

func (Discard) Iterate(context.Context, int64, func(*Entry) error) error { return nil }

func (Discard) LastSequence(context.Context) (uint64, error) { return 0, nil }

func (Discard) Count(context.Context) (int64, error) { return 0, nil }

func (Discard) Close() error { return nil }
