// Package node wires the transaction engine to persistent state, the
// journal and event subscribers, and answers read queries.
package node

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/LeJamon/goPayloadd/internal/compliance"
	"github.com/LeJamon/goPayloadd/internal/core/state"
	"github.com/LeJamon/goPayloadd/internal/core/tx"
	_ "github.com/LeJamon/goPayloadd/internal/core/tx/all"
	"github.com/LeJamon/goPayloadd/internal/storage/journal"
	log "github.com/sirupsen/logrus"
)

// Version is the node version reported by server_info and the CLI
var Version = "0.1.0-dev"

var (
	// ErrBadTransaction is returned when submitted JSON is not a known transaction
	ErrBadTransaction = errors.New("malformed transaction")

	// ErrNotFound is returned by queries for missing entries
	ErrNotFound = errors.New("entry not found")
)

// Notification is published for every submitted transaction.
type Notification struct {
	Hash     string     `json:"hash"`
	TxType   string     `json:"tx_type"`
	Account  string     `json:"account"`
	Result   string     `json:"result"`
	Applied  bool       `json:"applied"`
	Sequence uint64     `json:"sequence,omitempty"`
	IDs      []uint64   `json:"ids,omitempty"`
	Events   []tx.Event `json:"events,omitempty"`
}

// Publisher receives notifications after a transaction is processed.
// Publish must not block.
type Publisher interface {
	Publish(n Notification)
}

// Options configures a Service.
type Options struct {
	Engine  tx.EngineConfig
	Metrics *Metrics
}

// Service serializes submissions and serves consistent reads.
type Service struct {
	mu      sync.RWMutex
	engine  *tx.Engine
	store   *state.Store
	journal journal.Journal
	metrics *Metrics
	started time.Time

	pubMu      sync.RWMutex
	publishers []Publisher
}

// New creates a service over store. The engine resumes at the sequence
// recorded in the store. A nil journal discards entries.
func New(store *state.Store, j journal.Journal, opts Options) (*Service, error) {
	if j == nil {
		j = journal.Discard{}
	}
	if opts.Engine.Gates == nil {
		opts.Engine.Gates = compliance.NewResolver()
	}

	seq, err := store.Sequence()
	if err != nil {
		return nil, fmt.Errorf("load sequence: %w", err)
	}
	engine := tx.NewEngine(store, opts.Engine)
	engine.SetSequence(seq)

	log.WithField("sequence", seq).Info("node service ready")
	return &Service{
		engine:  engine,
		store:   store,
		journal: j,
		metrics: opts.Metrics,
		started: time.Now(),
	}, nil
}

// AddPublisher registers p for notifications.
func (s *Service) AddPublisher(p Publisher) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	s.publishers = append(s.publishers, p)
}

// Engine returns the underlying engine.
func (s *Service) Engine() *tx.Engine {
	return s.engine
}

// Store returns the state store.
func (s *Service) Store() *state.Store {
	return s.store
}

// Submit decodes and applies a JSON transaction.
func (s *Service) Submit(ctx context.Context, raw json.RawMessage) (tx.ApplyResult, error) {
	t, err := tx.FromJSON(raw)
	if err != nil {
		return tx.ApplyResult{}, fmt.Errorf("%w: %v", ErrBadTransaction, err)
	}
	return s.apply(ctx, t, raw, true)
}

// SubmitTx applies a typed transaction.
func (s *Service) SubmitTx(ctx context.Context, t tx.Transaction) (tx.ApplyResult, error) {
	raw, err := json.Marshal(t)
	if err != nil {
		return tx.ApplyResult{}, fmt.Errorf("%w: %v", ErrBadTransaction, err)
	}
	return s.apply(ctx, t, raw, true)
}

func (s *Service) apply(ctx context.Context, t tx.Transaction, raw json.RawMessage, record bool) (tx.ApplyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	res := s.engine.Apply(t)
	txType := t.TxType().String()
	account := t.GetCommon().Account.String()
	s.metrics.observe(txType, res.Result.String(), s.engine.Sequence(), time.Since(start))

	if res.Applied {
		if err := s.store.SetSequence(res.Sequence); err != nil {
			return res, fmt.Errorf("persist sequence: %w", err)
		}
	}

	if record {
		if err := s.record(ctx, txType, account, raw, res); err != nil {
			s.metrics.journalFailed()
			log.WithError(err).WithField("hash", res.Hash).Error("failed to journal transaction")
			return res, err
		}
		s.publish(Notification{
			Hash:     res.Hash,
			TxType:   txType,
			Account:  account,
			Result:   res.Result.String(),
			Applied:  res.Applied,
			Sequence: res.Sequence,
			IDs:      res.IDs,
			Events:   res.Events,
		})
	}
	return res, nil
}

func (s *Service) record(ctx context.Context, txType, account string, raw json.RawMessage, res tx.ApplyResult) error {
	events, err := json.Marshal(res.Events)
	if err != nil {
		return fmt.Errorf("encode events: %w", err)
	}
	return s.journal.Append(ctx, &journal.Entry{
		Sequence: res.Sequence,
		Hash:     res.Hash,
		TxType:   txType,
		Account:  account,
		Tx:       raw,
		Result:   res.Result.String(),
		Applied:  res.Applied,
		Events:   events,
		IDs:      res.IDs,
	})
}

func (s *Service) publish(n Notification) {
	s.pubMu.RLock()
	defer s.pubMu.RUnlock()
	for _, p := range s.publishers {
		p.Publish(n)
	}
}

// ReplayStats summarizes a journal replay.
type ReplayStats struct {
	Entries    int            `json:"entries"`
	Applied    int            `json:"applied"`
	Mismatches int            `json:"mismatches"`
	Results    map[string]int `json:"results"`
}

// Replay re-applies every journal entry in order without journaling or
// publishing. Entries whose result differs from the recorded one are
// counted as mismatches.
func (s *Service) Replay(ctx context.Context, src journal.Journal) (ReplayStats, error) {
	stats := ReplayStats{Results: make(map[string]int)}
	err := src.Iterate(ctx, 0, func(e *journal.Entry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		t, err := tx.FromJSON(e.Tx)
		if err != nil {
			return fmt.Errorf("entry %d: %w: %v", e.ID, ErrBadTransaction, err)
		}
		res, err := s.apply(ctx, t, e.Tx, false)
		if err != nil {
			return fmt.Errorf("entry %d: %w", e.ID, err)
		}

		stats.Entries++
		stats.Results[res.Result.String()]++
		if res.Applied {
			stats.Applied++
		}
		if res.Result.String() != e.Result {
			stats.Mismatches++
			log.WithFields(log.Fields{
				"entry":    e.ID,
				"tx_type":  e.TxType,
				"recorded": e.Result,
				"replayed": res.Result.String(),
			}).Warn("replay result mismatch")
		}
		return nil
	})
	return stats, err
}

// Info is the server_info answer.
type Info struct {
	Version  string           `json:"version"`
	Sequence uint64           `json:"sequence"`
	Uptime   int64            `json:"uptime"`
	Cache    state.CacheStats `json:"state_cache"`
	Journal  int64            `json:"journal_entries"`
}

// Info reports node status.
func (s *Service) Info(ctx context.Context) (Info, error) {
	count, err := s.journal.Count(ctx)
	if err != nil {
		return Info{}, err
	}
	return Info{
		Version:  Version,
		Sequence: s.engine.Sequence(),
		Uptime:   int64(time.Since(s.started).Seconds()),
		Cache:    s.store.CacheStats(),
		Journal:  count,
	}, nil
}
