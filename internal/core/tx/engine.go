package tx

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/LeJamon/goPayloadd/internal/core/ledger/keylet"
	log "github.com/sirupsen/logrus"
)

// Defaults for EngineConfig
const (
	// DefaultRoyaltyDepth is the number of generations paid by the royalty cascade
	DefaultRoyaltyDepth = 2

	// DefaultMaxRoyaltyRate caps any asset's royalty rate (25%)
	DefaultMaxRoyaltyRate uint32 = 2500

	// DefaultMaxFeeRate caps the market operator fee (25%)
	DefaultMaxFeeRate uint32 = 2500

	// DefaultMaxDivisions caps the ids minted by a single division transaction
	DefaultMaxDivisions uint32 = 1000
)

// Engine processes transactions against a ledger view.
// Apply is serialized: one transaction runs to completion before the next starts.
type Engine struct {
	mu sync.Mutex

	// View provides access to ledger state
	view LedgerView

	// Config holds engine configuration
	config EngineConfig

	// sequence counts applied transactions
	sequence uint64
}

// EngineConfig holds configuration for the transaction engine
type EngineConfig struct {
	// Gates resolves a ledger's compliance registry to a Gate
	Gates GateResolver

	// RoyaltyDepth is the number of royalty-bearing generations paid on a fill
	RoyaltyDepth int

	// MaxRoyaltyRate bounds asset royalty rates (bps)
	MaxRoyaltyRate uint32

	// MaxFeeRate bounds market operator fees (bps)
	MaxFeeRate uint32

	// MaxDivisions bounds the ids minted by one division transaction
	MaxDivisions uint32
}

// DefaultEngineConfig returns the engine defaults without a gate resolver.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		RoyaltyDepth:   DefaultRoyaltyDepth,
		MaxRoyaltyRate: DefaultMaxRoyaltyRate,
		MaxFeeRate:     DefaultMaxFeeRate,
		MaxDivisions:   DefaultMaxDivisions,
	}
}

// LedgerView provides read/write access to ledger state
type LedgerView interface {
	// Read reads a ledger entry. A missing entry returns nil data and no error.
	Read(k keylet.Keylet) ([]byte, error)

	// Exists checks if an entry exists
	Exists(k keylet.Keylet) (bool, error)

	// Insert adds a new entry
	Insert(k keylet.Keylet, data []byte) error

	// Update modifies an existing entry
	Update(k keylet.Keylet, data []byte) error

	// Erase removes an entry
	Erase(k keylet.Keylet) error

	// ForEach iterates over all state entries
	// If fn returns false, iteration stops early
	ForEach(fn func(key [32]byte, data []byte) bool) error
}

// ApplyResult contains the result of applying a transaction
type ApplyResult struct {
	// Result is the transaction result code
	Result Result `json:"result"`

	// Applied indicates if the transaction changed ledger state
	Applied bool `json:"applied"`

	// Sequence is the engine sequence assigned to an applied transaction
	Sequence uint64 `json:"sequence,omitempty"`

	// Hash identifies the transaction
	Hash string `json:"hash"`

	// IDs lists the ids created by the transaction, in creation order
	IDs []uint64 `json:"ids,omitempty"`

	// Events are the facts emitted by the transaction
	Events []Event `json:"events,omitempty"`

	// AffectedNodes lists the entries created, modified or deleted
	AffectedNodes []AffectedNode `json:"affected_nodes,omitempty"`

	// Message is a human-readable result message
	Message string `json:"message"`
}

// Err returns nil for an applied transaction and the Result otherwise.
func (r ApplyResult) Err() error {
	if r.Applied {
		return nil
	}
	return r.Result
}

// NewEngine creates a new transaction engine
func NewEngine(view LedgerView, config EngineConfig) *Engine {
	if config.RoyaltyDepth <= 0 {
		config.RoyaltyDepth = DefaultRoyaltyDepth
	}
	if config.MaxRoyaltyRate == 0 {
		config.MaxRoyaltyRate = DefaultMaxRoyaltyRate
	}
	if config.MaxFeeRate == 0 {
		config.MaxFeeRate = DefaultMaxFeeRate
	}
	if config.MaxDivisions == 0 {
		config.MaxDivisions = DefaultMaxDivisions
	}
	return &Engine{
		view:   view,
		config: config,
	}
}

// Config returns the engine configuration
func (e *Engine) Config() EngineConfig {
	return e.config
}

// View returns the committed ledger view
func (e *Engine) View() LedgerView {
	return e.view
}

// Sequence returns the sequence of the last applied transaction
func (e *Engine) Sequence() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sequence
}

// SetSequence restores the applied-transaction counter, e.g. after a restart.
func (e *Engine) SetSequence(seq uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sequence = seq
}

func computeTransactionHash(tx Transaction) ([32]byte, error) {
	data, err := json.Marshal(tx)
	if err != nil {
		return [32]byte{}, err
	}
	return keylet.Sha512Half([]byte("TXN\x00"), data), nil
}

// Apply validates and applies a transaction. On any result other than
// tesSUCCESS the ledger view is left untouched.
func (e *Engine) Apply(tx Transaction) ApplyResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	logger := log.WithFields(log.Fields{
		"tx_type": tx.TxType().String(),
		"account": tx.GetCommon().Account.String(),
	})

	// Step 1: Preflight checks (syntax validation)
	result := e.preflight(tx)
	if !result.IsSuccess() {
		logger.WithField("result", result.String()).Debug("transaction failed preflight")
		return ApplyResult{
			Result:  result,
			Message: result.Message(),
		}
	}

	appliable, ok := tx.(Appliable)
	if !ok {
		return ApplyResult{
			Result:  TemUNKNOWN,
			Message: TemUNKNOWN.Message(),
		}
	}

	// Step 2: Compute transaction hash
	txHash, err := computeTransactionHash(tx)
	if err != nil {
		return ApplyResult{
			Result:  TefINTERNAL,
			Message: "failed to compute transaction hash: " + err.Error(),
		}
	}
	hash := strings.ToUpper(hex.EncodeToString(txHash[:]))

	// Step 3: Apply against an overlay - all operations go through the table
	table := NewApplyStateTable(e.view)
	ctx := &ApplyContext{
		View:    table,
		Account: tx.GetCommon().Account,
		Config:  e.config,
		TxHash:  txHash,
		Engine:  e,
	}
	result = appliable.Apply(ctx)
	if !result.IsSuccess() {
		logger.WithField("result", result.String()).Debug("transaction rejected")
		return ApplyResult{
			Result:  result,
			Hash:    hash,
			Message: result.Message(),
		}
	}

	// Step 4: Commit
	nodes, err := table.Apply()
	if err != nil {
		logger.WithError(err).Error("failed to commit transaction")
		return ApplyResult{
			Result:  TefINTERNAL,
			Hash:    hash,
			Message: "failed to commit: " + err.Error(),
		}
	}

	e.sequence++
	logger.WithFields(log.Fields{
		"sequence": e.sequence,
		"ids":      ctx.ids,
	}).Debug("transaction applied")

	return ApplyResult{
		Result:        TesSUCCESS,
		Applied:       true,
		Sequence:      e.sequence,
		Hash:          hash,
		IDs:           ctx.ids,
		Events:        ctx.events,
		AffectedNodes: nodes,
		Message:       TesSUCCESS.Message(),
	}
}

// preflight performs stateless validation
func (e *Engine) preflight(tx Transaction) Result {
	if err := tx.GetCommon().Validate(); err != nil {
		return parseValidationError(err)
	}
	if err := tx.Validate(); err != nil {
		return parseValidationError(err)
	}
	return TesSUCCESS
}

// parseValidationError maps a validation error to a Result. Errors are
// either Results themselves or carry a tem token prefix, e.g.
// "temBAD_AMOUNT: amount must be positive".
func parseValidationError(err error) Result {
	var r Result
	if errors.As(err, &r) {
		return r
	}

	msg := err.Error()
	token := msg
	if i := strings.IndexAny(msg, ": "); i >= 0 {
		token = msg[:i]
	}
	if r, ok := ResultFromString(token); ok && r.IsTem() {
		return r
	}

	// Default to temINVALID
	return TemINVALID
}
